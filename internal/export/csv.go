// Package export renders attendance record sets as CSV downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	"companion/internal/attendance"
)

// timeLayout is the human-facing timestamp format used in exports.
const timeLayout = "2006-01-02 15:04:05"

// AttendanceCSV renders one row per record with the columns
// Name, Roll Number, Attendance Time. A missing roll number renders as N/A.
func AttendanceCSV(records []attendance.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Name", "Roll Number", "Attendance Time"}); err != nil {
		return nil, err
	}
	for _, rec := range records {
		roll := rec.RollNumber
		if roll == "" {
			roll = "N/A"
		}
		if err := w.Write([]string{rec.Name, roll, rec.MarkedAt.Format(timeLayout)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename derives the download name from the session title, with
// whitespace replaced by underscores.
func Filename(sessionTitle string) string {
	title := strings.Join(strings.Fields(sessionTitle), "_")
	if title == "" {
		title = "session"
	}
	return title + "_attendance.csv"
}
