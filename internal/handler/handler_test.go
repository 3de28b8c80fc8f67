package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	"github.com/noah-isme/attendance-dashboard-api/internal/service"
)

const testCookie = "admin_session"

type responseEnvelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	ID      *int64                 `json:"id"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeConfigSrv struct {
	applied []string
	dims    []models.Dimension
	err     error
}

func (f *fakeConfigSrv) List(context.Context) ([]models.Dimension, error) {
	return f.dims, f.err
}

func (f *fakeConfigSrv) Apply(_ context.Context, mutationType string, _ json.RawMessage) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.applied = append(f.applied, mutationType)
	if mutationType == dto.MutationCreateCard {
		return 7, nil
	}
	return 0, nil
}

type fakeAttendanceSrv struct {
	dashboard *models.AttendanceDashboard
	err       error
	lastRange models.TimeRange
}

func (f *fakeAttendanceSrv) Dashboard(_ context.Context, tr models.TimeRange) (*models.AttendanceDashboard, error) {
	f.lastRange = tr
	return f.dashboard, f.err
}

type fakeExportSrv struct{}

func (fakeExportSrv) Export(_ context.Context, q dto.AttendanceExportQuery) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: q.Series + ".csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
}

func newTestSessions() *service.SessionService {
	return service.NewSessionService(nil, nil, nil, service.SessionConfig{
		Username: "admin",
		Password: "s3cret",
		Secret:   "test-secret",
		TTL:      time.Hour,
	})
}

func newTestRouter(attendance attendanceService, config dashboardConfigService, public bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := newTestSessions()
	r := gin.New()
	Routes{
		Attendance:       NewAttendanceHandler(attendance, fakeExportSrv{}),
		AdminConfig:      NewAdminConfigHandler(config),
		Auth:             NewAuthHandler(sessions, CookieConfig{Name: testCookie}),
		Metrics:          NewMetricsHandler(nil, nil),
		Sessions:         sessions,
		CookieName:       testCookie,
		PublicConfigRead: public,
	}.Register(r, "/api")
	return r
}

func login(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(dto.LoginRequest{Username: "admin", Password: "s3cret"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookie {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestAuthHandlerLoginSetsHTTPOnlyCookie(t *testing.T) {
	r := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{}, false)
	cookie := login(t, r)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestAuthHandlerLoginRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials", env.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandlerSessionAndLogout(t *testing.T) {
	r := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{}, false)
	cookie := login(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)
	var status dto.SessionStatus
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, "admin", status.Username)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestAdminConfigMutationRequiresSession(t *testing.T) {
	cases := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"forged cookie", &http.Cookie{Name: testCookie, Value: "forged.token.value"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := &fakeConfigSrv{}
			r := newTestRouter(&fakeAttendanceSrv{}, config, false)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/config", bytes.NewBufferString(`{"type":"delete_dimension","data":{"id":1}}`))
			req.Header.Set("Content-Type", "application/json")
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
			assert.Empty(t, config.applied)
		})
	}
}

func TestAdminConfigMutationWithSession(t *testing.T) {
	config := &fakeConfigSrv{}
	r := newTestRouter(&fakeAttendanceSrv{}, config, false)
	cookie := login(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/config", bytes.NewBufferString(`{"type":"card","data":{"dimension_id":1,"title":"x","sql_query":"SELECT 1 AS value"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.ID)
	assert.Equal(t, int64(7), *env.ID)
	assert.Equal(t, []string{dto.MutationCreateCard}, config.applied)
}

func TestAdminConfigMutationRequiresType(t *testing.T) {
	config := &fakeConfigSrv{}
	r := newTestRouter(&fakeAttendanceSrv{}, config, false)
	cookie := login(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/config", bytes.NewBufferString(`{"data":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, config.applied)
}

func TestAdminConfigListReadPolicy(t *testing.T) {
	dims := []models.Dimension{{ID: 1, KeyName: "day", Cards: []models.KpiCardConfig{}, Charts: []models.ChartConfig{}}}

	private := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{dims: dims}, false)
	rec := httptest.NewRecorder()
	private.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/config", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	public := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{dims: dims}, true)
	rec = httptest.NewRecorder()
	public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var got []models.Dimension
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "day", got[0].KeyName)
}

func TestAttendanceHandlerRejectsUnknownRange(t *testing.T) {
	attendance := &fakeAttendanceSrv{}
	r := newTestRouter(attendance, &fakeConfigSrv{}, false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attendance?timeRange=year", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, attendance.lastRange)
}

func TestAttendanceHandlerDefaultsToToday(t *testing.T) {
	attendance := &fakeAttendanceSrv{dashboard: &models.AttendanceDashboard{TimeRange: models.TimeRangeToday}}
	r := newTestRouter(attendance, &fakeConfigSrv{}, false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attendance", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TimeRangeToday, attendance.lastRange)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, float64(0), env.Meta["degraded_series"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestAttendanceHandlerExport(t *testing.T) {
	r := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{}, false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attendance/export?series=overtimeData", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="overtimeData.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(&fakeAttendanceSrv{}, &fakeConfigSrv{}, false)

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
