package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absentee/internal/config"
	"absentee/internal/session"
)

const testCSV = `Sex,Age,Num_sick_days,Department
М,25,2,Sales
М,31,6,IT
М,44,9,IT
М,52,4,Ops
Ж,23,1,Sales
Ж,36,5,Ops
Ж,47,3,IT
Ж,58,8,Sales
`

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "8080", GinMode: gin.TestMode},
		Session:   config.SessionConfig{TTL: time.Hour, SweepInterval: time.Minute, CookieName: "absentee_session"},
		Upload:    config.UploadConfig{MaxBytes: 1 << 20},
		Dashboard: config.DashboardConfig{TableRowLimit: 3, HistogramBins: 10},
	}
}

func newTestServer(t *testing.T) (*Server, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Hour)
	srv, err := NewServer(testConfig(), store)
	require.NoError(t, err)
	return srv, store
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// upload posts testCSV and returns the session cookie
func upload(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rec := serve(srv, uploadRequest(t, "stats.csv", testCSV))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == "absentee_session" {
			return c
		}
	}
	t.Fatal("upload did not set a session cookie")
	return nil
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return serve(srv, req)
}

func TestIndexShowsUploadForm(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="dataset"`)
	assert.Contains(t, rec.Body.String(), "Up to 1 MB")
}

func TestUploadCreatesSessionAndRendersDashboard(t *testing.T) {
	srv, store := newTestServer(t)
	cookie := upload(t, srv)
	assert.Equal(t, 1, store.Len())

	rec := get(srv, "/", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = get(srv, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `name="age" min="23" max="58"`)
	assert.Contains(t, body, `name="sick_days" min="1" max="9"`)
	assert.Contains(t, body, "Department")
	assert.Contains(t, body, "showing the first 3")
	assert.Contains(t, body, "/charts/box_sex.svg?age=23&amp;sick_days=1")
	assert.Contains(t, body, "Hypothesis 1:")
	assert.Contains(t, body, "Hypothesis 2:")
}

func TestUploadReplacesPreviousSession(t *testing.T) {
	srv, store := newTestServer(t)
	first := upload(t, srv)

	req := uploadRequest(t, "again.csv", testCSV)
	req.AddCookie(first)
	rec := serve(srv, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, http.StatusSeeOther, get(srv, "/dashboard", first).Code)
}

func TestUploadRejectsMalformedFile(t *testing.T) {
	srv, store := newTestServer(t)

	rec := serve(srv, uploadRequest(t, "bad.csv", "Sex,Age\nМ,30\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Num_sick_days")
	assert.Zero(t, store.Len())
	assert.Empty(t, rec.Result().Cookies())

	req := uploadRequest(t, "bad.csv", "Sex,Age,Num_sick_days\nМ,abc,1\n")
	req.Header.Set("Accept", "application/json")
	rec = serve(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "PARSE_ERROR", payload.Error.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	rec := serve(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(srv, "/api/dashboard", &http.Cookie{Name: "absentee_session", Value: "stale"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardOutOfRangeShowsBanner(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := upload(t, srv)

	rec := get(srv, "/dashboard?age=99&sick_days=3", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "banner-error")
	assert.Contains(t, rec.Body.String(), "outside observed range")
}

func TestAPIDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := upload(t, srv)

	rec := get(srv, "/api/dashboard?age=35&sick_days=3", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Rows       int `json:"rows"`
		Thresholds struct {
			Age      int `json:"age_threshold"`
			SickDays int `json:"sick_days_threshold"`
		} `json:"thresholds"`
		Hypotheses []struct {
			Key     string `json:"key"`
			Verdict struct {
				Status string `json:"status"`
				Text   string `json:"text"`
			} `json:"verdict"`
		} `json:"hypotheses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 8, payload.Rows)
	assert.Equal(t, 35, payload.Thresholds.Age)
	assert.Equal(t, 3, payload.Thresholds.SickDays)
	require.Len(t, payload.Hypotheses, 2)
	assert.Equal(t, "sex", payload.Hypotheses[0].Key)
	assert.NotEmpty(t, payload.Hypotheses[0].Verdict.Text)

	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/dashboard?age=10&sick_days=3", cookie).Code)
	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/dashboard?age=abc", cookie).Code)
}

func TestCharts(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := upload(t, srv)

	for _, name := range []string{"box_sex", "hist_sex", "box_age", "hist_age"} {
		rec := get(srv, "/charts/"+name+".svg?age=35&sick_days=2", cookie)
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}

	assert.Equal(t, http.StatusNotFound, get(srv, "/charts/pie.svg", cookie).Code)
	assert.Equal(t, http.StatusNotFound, get(srv, "/charts/box_sex.png", cookie).Code)
}

func TestReport(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := upload(t, srv)

	rec := get(srv, "/report.md?age=35&sick_days=3", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Sick-day analysis of stats.csv")

	rec = get(srv, "/report?age=35&sick_days=3", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<table>")
	assert.Contains(t, rec.Body.String(), "older than 35")
}

func TestResetDropsSession(t *testing.T) {
	srv, store := newTestServer(t)
	cookie := upload(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.AddCookie(cookie)
	rec := serve(srv, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, store.Len())
	assert.Equal(t, http.StatusSeeOther, get(srv, "/dashboard", cookie).Code)
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/static/css/dashboard.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".verdict")
}

func TestRenderTemplateFailureIsInternalError(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	srv.renderTemplate(c, http.StatusOK, "missing.html", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"template rendering failed"}}`, rec.Body.String())
}

func TestReportEscapesUploadedFilename(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := serve(srv, uploadRequest(t, "<img src=x onerror=alert(1)>.csv", testCSV))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "absentee_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	rec = get(srv, "/report", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<img src=x")
}
