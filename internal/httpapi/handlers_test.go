package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion/internal/attendance"
	"companion/internal/auth"
	"companion/internal/catalog"
	"companion/internal/config"
	"companion/internal/identity"
	"companion/internal/queue"
)

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		JWTIssuer:     "companion-test",
		JWTSigningKey: "test-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		WindowTTL:     10 * time.Minute,
	}
	accounts := identity.NewStaticDirectory(
		identity.Profile{UID: "stu-1", Role: identity.RoleStudent, Name: "Aarav Sharma", RollNumber: "21CS001"},
		identity.Profile{UID: "stu-2", Role: identity.RoleStudent, Name: "Priya Patel"},
	)
	srv := &Server{
		Cfg:      cfg,
		Att:      attendance.NewService(attendance.NewMemStore(), accounts, cfg.WindowTTL),
		Catalog:  catalog.Seed(),
		Accounts: accounts,
		Queue:    queue.NewInMemory(16),
	}

	r := gin.New()
	srv.Routes(r)
	return srv, r
}

func token(t *testing.T, srv *Server, uid, role string) string {
	t.Helper()
	tokens, err := auth.Issue(uid, role, srv.Cfg.JWTIssuer, srv.Cfg.JWTSigningKey, srv.Cfg.AccessTTL, srv.Cfg.RefreshTTL)
	require.NoError(t, err)
	return tokens.AccessToken
}

func doJSON(r *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/v1/auth/register", "", `{"role":"student","name":"New Student","roll_number":"21CS099"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		UID         string `json:"uid"`
		Role        string `json:"role"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "student", resp.Role)
	assert.True(t, strings.HasPrefix(resp.UID, "student_"))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	_, r := newTestServer(t)
	w := doJSON(r, http.MethodPost, "/v1/auth/register", "", `{"role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOpenWindowAuthz(t *testing.T) {
	srv, r := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/v1/sessions/1/window", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", token(t, srv, "stu-1", identity.RoleStudent), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", token(t, srv, "org-1", identity.RoleOrganizer), "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/sessions/nope/window", token(t, srv, "org-1", identity.RoleOrganizer), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanFlow(t *testing.T) {
	srv, r := newTestServer(t)
	orgTok := token(t, srv, "org-1", identity.RoleOrganizer)
	stuTok := token(t, srv, "stu-1", identity.RoleStudent)

	// No window yet: the scan is rejected.
	w := doJSON(r, http.MethodPost, "/v1/attendance/scan", stuTok, `{"sessionId":"1","timestamp":1,"type":"attendance"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "closed or expired")

	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", orgTok, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/attendance/scan", stuTok, `{"sessionId":"1","timestamp":1,"type":"attendance"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Non-attendance payloads never reach the recorder.
	w = doJSON(r, http.MethodPost, "/v1/attendance/scan", stuTok, `{"sessionId":"1","timestamp":1,"type":"ticket"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/attendance/me", stuTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Records []attendance.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Len(t, me.Records, 1)
	assert.Equal(t, "1", me.Records[0].SessionID)
}

func TestSessionQR(t *testing.T) {
	srv, r := newTestServer(t)
	orgTok := token(t, srv, "org-1", identity.RoleOrganizer)

	w := doJSON(r, http.MethodGet, "/v1/sessions/1/qr", orgTok, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", orgTok, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/sessions/1/qr", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(r, http.MethodGet, "/v1/sessions/1/qr?format=json", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessionId":"1"`)
	assert.Contains(t, w.Body.String(), `"type":"attendance"`)
}

func TestSharedRecordsFlow(t *testing.T) {
	srv, r := newTestServer(t)
	orgTok := token(t, srv, "org-1", identity.RoleOrganizer)
	teaTok := token(t, srv, "tea-1", identity.RoleTeacher)

	w := doJSON(r, http.MethodGet, "/v1/shared/1/records", teaTok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not shared")

	// Mark two students, then share.
	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", orgTok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	for _, uid := range []string{"stu-1", "stu-2"} {
		w = doJSON(r, http.MethodPost, "/v1/attendance/scan", token(t, srv, uid, identity.RoleStudent), `{"sessionId":"1","timestamp":1,"type":"attendance"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = doJSON(r, http.MethodPost, "/v1/sessions/1/share", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/shared", teaTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Shared []attendance.SharedAttendance `json:"shared"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Shared, 1)
	assert.Equal(t, "Machine Learning with TensorFlow", list.Shared[0].SessionTitle)
	assert.Equal(t, "Dr. Sarah Chen", list.Shared[0].SessionSpeaker)

	w = doJSON(r, http.MethodGet, "/v1/shared/1/records", teaTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Records []attendance.Record `json:"records"`
		Summary recordsSummary      `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "Aarav Sharma", resp.Records[0].Name)
	assert.Equal(t, "Priya Patel", resp.Records[1].Name)
	assert.Equal(t, 2, resp.Summary.Count)
	require.NotNil(t, resp.Summary.FirstCheckIn)
	require.NotNil(t, resp.Summary.LastCheckIn)

	// Filter narrows the set and the summary follows it.
	w = doJSON(r, http.MethodGet, "/v1/shared/1/records?q=priya", teaTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Priya Patel", resp.Records[0].Name)
	assert.Equal(t, 1, resp.Summary.Count)

	// No match: bare count, no check-in bounds.
	w = doJSON(r, http.MethodGet, "/v1/shared/1/records?q=zzz", teaTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	// Reset before unmarshal: fields omitted from the JSON would otherwise
	// keep their values from the previous response.
	resp.Records, resp.Summary = nil, recordsSummary{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Records)
	assert.Equal(t, 0, resp.Summary.Count)
	assert.Nil(t, resp.Summary.FirstCheckIn)
}

func TestExportShared(t *testing.T) {
	srv, r := newTestServer(t)
	orgTok := token(t, srv, "org-1", identity.RoleOrganizer)
	teaTok := token(t, srv, "tea-1", identity.RoleTeacher)

	w := doJSON(r, http.MethodPost, "/v1/sessions/1/window", orgTok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, http.MethodPost, "/v1/attendance/scan", token(t, srv, "stu-2", identity.RoleStudent), `{"sessionId":"1","timestamp":1,"type":"attendance"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, "/v1/sessions/1/share", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/shared/1/export", teaTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Machine_Learning_with_TensorFlow_attendance.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Roll Number,Attendance Time", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Priya Patel,N/A,"))
}

func TestSessionStats(t *testing.T) {
	srv, r := newTestServer(t)
	orgTok := token(t, srv, "org-1", identity.RoleOrganizer)

	w := doJSON(r, http.MethodGet, "/v1/sessions/1/stats", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Stats attendance.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, attendance.Stats{}, resp.Stats)

	w = doJSON(r, http.MethodPost, "/v1/sessions/1/window", orgTok, "")
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, http.MethodPost, "/v1/attendance/scan", token(t, srv, "stu-1", identity.RoleStudent), `{"sessionId":"1","timestamp":1,"type":"attendance"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/sessions/1/stats", orgTok, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, attendance.Stats{Total: 1, Present: 1, Percentage: 100}, resp.Stats)
}

func TestListSessions(t *testing.T) {
	srv, r := newTestServer(t)
	w := doJSON(r, http.MethodGet, "/v1/sessions", token(t, srv, "any", identity.RoleCommunity), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Machine Learning with TensorFlow")
}
