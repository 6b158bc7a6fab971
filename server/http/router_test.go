package serverhttp

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"name-matcher/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		AllowOrigins:   []string{"*"},
		MaxUploadMB:    1,
		RateLimitRPS:   0.001,
		RateLimitBurst: 1,
		Matching: config.MatchDefaults{
			LeftName:  "Contacto Nombre",
			LeftID:    "Caso #",
			RightName: "Cli Nombre",
			RightID:   "Fic Numero",
			Threshold: 0.8,
		},
	}
}

func matchRequest(t *testing.T, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	a, err := mw.CreateFormFile("fileA", "a.csv")
	require.NoError(t, err)
	_, _ = a.Write([]byte("Contacto Nombre\nJuan Perez\n" + strings.Repeat(" ", size)))
	b, err := mw.CreateFormFile("fileB", "b.csv")
	require.NoError(t, err)
	_, _ = b.Write([]byte("Cli Nombre\nPerez Juan\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/match", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.1:5000"
	return req
}

func TestHealth(t *testing.T) {
	r := NewRouter(testConfig(), zerolog.Nop())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIndex(t *testing.T) {
	r := NewRouter(testConfig(), zerolog.Nop())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/match"`)
	assert.Contains(t, body, `value="Contacto Nombre"`)
	assert.Contains(t, body, `value="Fic Numero"`)
}

func TestMatchRoute(t *testing.T) {
	r := NewRouter(testConfig(), zerolog.Nop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, matchRequest(t, 0))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"count": 1`)

	// burst of one is spent
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, matchRequest(t, 0))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMatchRouteBodyTooLarge(t *testing.T) {
	r := NewRouter(testConfig(), zerolog.Nop())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, matchRequest(t, 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMatchRouteMethod(t *testing.T) {
	r := NewRouter(testConfig(), zerolog.Nop())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
