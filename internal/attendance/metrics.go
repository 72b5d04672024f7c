package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companion_attendance_windows_opened_total",
		Help: "Check-in windows opened by organizers.",
	})

	marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_attendance_marks_total",
		Help: "Presence marks by result.",
	}, []string{"result"})

	sharesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companion_attendance_shares_total",
		Help: "Sharing actions taken by organizers.",
	})
)
