package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"companion/internal/attendance"
	"companion/internal/auth"
	"companion/internal/catalog"
	"companion/internal/export"
	"companion/internal/identity"
	"companion/internal/qr"
	"companion/internal/queue"
)

// windowInactiveMsg is the student-facing wording for a rejected mark.
const windowInactiveMsg = "attendance window may be closed or expired"

var validRoles = map[string]bool{
	identity.RoleOrganizer: true,
	identity.RoleTeacher:   true,
	identity.RoleStudent:   true,
	identity.RoleCommunity: true,
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Role       string `json:"role" binding:"required"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		RollNumber string `json:"roll_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	uid := req.Role + "_" + uuid.NewString()
	if s.Accounts != nil {
		profile := identity.Profile{
			UID:        uid,
			Role:       req.Role,
			Name:       req.Name,
			Email:      req.Email,
			RollNumber: req.RollNumber,
		}
		if err := s.Accounts.Upsert(c.Request.Context(), profile); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile save failed"})
			return
		}
	}

	tokens, err := auth.Issue(uid, req.Role, s.Cfg.JWTIssuer, s.Cfg.JWTSigningKey, s.Cfg.AccessTTL, s.Cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"uid":           uid,
		"role":          req.Role,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.Catalog.List()})
}

func (s *Server) openWindow(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := s.Catalog.Get(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	claims, _ := auth.FromContext(c)

	w, err := s.Att.OpenWindow(c.Request.Context(), sessionID, claims.Subject)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"window": w})
}

func (s *Server) getWindow(c *gin.Context) {
	w, err := s.Att.GetWindow(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attendance window"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": w})
}

func (s *Server) sessionQR(c *gin.Context) {
	sessionID := c.Param("id")
	w, err := s.Att.GetWindow(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if w == nil || !w.Active {
		c.JSON(http.StatusConflict, gin.H{"error": windowInactiveMsg})
		return
	}

	payload := qr.NewPayload(sessionID, time.Now())
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{"payload": payload, "expires_at": w.ExpiresAt})
		return
	}

	size := 256
	if v := c.Query("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 1024 {
			size = parsed
		}
	}
	png, err := payload.PNG(size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) scan(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	payload, err := qr.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, _ := auth.FromContext(c)

	if err := s.Att.Mark(c.Request.Context(), payload.SessionID, claims.Subject); err != nil {
		if errors.Is(err, attendance.ErrWindowInactive) {
			c.JSON(http.StatusConflict, gin.H{"error": windowInactiveMsg})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.Queue != nil {
		msg, err := queue.NewMarkMessage(payload.SessionID, claims.Subject)
		if err == nil {
			err = s.Queue.Publish(c.Request.Context(), msg)
		}
		if err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"session_id": payload.SessionID, "status": "marked"})
}

func (s *Server) myAttendance(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	recs, err := s.Att.UserRecords(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *Server) shareSession(c *gin.Context) {
	sessionID := c.Param("id")
	sess, err := s.Catalog.Get(sessionID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	claims, _ := auth.FromContext(c)

	snap := attendance.SessionSnapshot{Title: sess.Title, Speaker: sess.Speaker, Time: sess.Time}
	if err := s.Att.Share(c.Request.Context(), sessionID, claims.Subject, snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "shared": true})
}

func (s *Server) listShared(c *gin.Context) {
	shared, err := s.Att.ListShared(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shared": shared})
}

// recordsSummary is the teacher-view footer computed over the filtered set.
type recordsSummary struct {
	Count        int        `json:"count"`
	FirstCheckIn *time.Time `json:"first_check_in,omitempty"`
	LastCheckIn  *time.Time `json:"last_check_in,omitempty"`
}

func (s *Server) sharedRecords(c *gin.Context) {
	recs, ok := s.loadSharedRecords(c)
	if !ok {
		return
	}
	recs = filterRecords(recs, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"records": recs,
		"summary": summarize(recs),
	})
}

func (s *Server) exportShared(c *gin.Context) {
	sessionID := c.Param("id")
	recs, ok := s.loadSharedRecords(c)
	if !ok {
		return
	}
	recs = filterRecords(recs, c.Query("q"))

	csvData, err := export.AttendanceCSV(recs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "csv render failed"})
		return
	}

	title := ""
	if sh, err := s.Att.SharedDetails(c.Request.Context(), sessionID); err == nil && sh != nil {
		title = sh.SessionTitle
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(title)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvData)
}

func (s *Server) sessionStats(c *gin.Context) {
	sessionID := c.Param("id")
	ctx := c.Request.Context()

	if s.Redis != nil {
		if cached, err := s.Redis.CachedStats(ctx, sessionID); err == nil && cached != nil {
			var st attendance.Stats
			if json.Unmarshal(cached, &st) == nil {
				c.JSON(http.StatusOK, gin.H{"stats": st, "cached": true})
				return
			}
		}
	}

	st, err := s.Att.Stats(ctx, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.Redis != nil {
		if payload, err := json.Marshal(st); err == nil {
			if err := s.Redis.CacheStats(ctx, sessionID, payload, s.Cfg.StatsCacheTTL); err != nil {
				log.Printf("stats cache write failed: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"stats": st})
}

// loadSharedRecords fetches enriched records for a shared session and
// writes the error response itself when the session is not shared.
func (s *Server) loadSharedRecords(c *gin.Context) ([]attendance.Record, bool) {
	recs, err := s.Att.SessionRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, attendance.ErrNotShared) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendance not shared for this session"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return recs, true
}

// filterRecords keeps records whose name or roll number contains the term,
// case-insensitively. An empty term keeps everything.
func filterRecords(recs []attendance.Record, term string) []attendance.Record {
	if term == "" {
		return recs
	}
	term = strings.ToLower(term)
	out := recs[:0:0]
	for _, rec := range recs {
		if strings.Contains(strings.ToLower(rec.Name), term) ||
			strings.Contains(strings.ToLower(rec.RollNumber), term) {
			out = append(out, rec)
		}
	}
	return out
}

// summarize computes first/last check-in over the filtered set; an empty
// set yields a bare count so no min/max runs over empty input.
func summarize(recs []attendance.Record) recordsSummary {
	sum := recordsSummary{Count: len(recs)}
	if len(recs) == 0 {
		return sum
	}
	first, last := recs[0].MarkedAt, recs[0].MarkedAt
	for _, rec := range recs[1:] {
		if rec.MarkedAt.Before(first) {
			first = rec.MarkedAt
		}
		if rec.MarkedAt.After(last) {
			last = rec.MarkedAt
		}
	}
	sum.FirstCheckIn = &first
	sum.LastCheckIn = &last
	return sum
}
