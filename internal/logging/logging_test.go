package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupFallsBackToInfo(t *testing.T) {
	is := is.New(t)

	Setup("nonsense", "json")
	is.Equal(zerolog.GlobalLevel(), zerolog.InfoLevel)

	Setup("debug", "json")
	is.Equal(zerolog.GlobalLevel(), zerolog.DebugLevel)

	Setup("info", "json")
}

func TestRequestLoggerCapturesStatus(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	is.Equal(rec.Code, http.StatusNotFound)
	out := buf.String()
	is.True(strings.Contains(out, `"status":404`))
	is.True(strings.Contains(out, `"path":"/missing"`))
	is.True(strings.Contains(out, `"method":"GET"`))
}
