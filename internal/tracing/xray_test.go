package tracing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchday-consensus/internal/config"
)

type message string

func (m message) String() string { return string(m) }

func TestDisabledTracingIsTransparent(t *testing.T) {
	require.NoError(t, Initialize(config.TracingConfig{Enabled: false}, "test", logrus.New()))
	assert.False(t, Enabled())

	called := false
	err := Capture(context.Background(), "analysis", func(ctx context.Context) error {
		called = true
		return errors.New("boom")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	Middleware("matchday")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	AddAnnotation(context.Background(), "fixture_id", 1)
}

func TestLoggerAdapterLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)

	a := &xrayLoggerAdapter{logger: l}
	a.Log(xraylog.LogLevelDebug, message("debug line"))
	a.Log(xraylog.LogLevelWarn, message("warn line"))
	a.Log(xraylog.LogLevelError, message("error line"))

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=debug msg=\"debug line\""))
	assert.True(t, strings.Contains(out, "level=warning msg=\"warn line\""))
	assert.True(t, strings.Contains(out, "level=error msg=\"error line\""))
}

func TestInitializeRoutesSDKLogsThroughLogrus(t *testing.T) {
	t.Cleanup(func() { enabled.Store(false) })

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)

	cfg := config.TracingConfig{Enabled: true, SamplingRate: 1, DaemonAddr: "127.0.0.1:2000"}
	require.NoError(t, Initialize(cfg, "test", l))
	assert.True(t, Enabled())
	assert.Contains(t, buf.String(), "AWS X-Ray initialized")

	ran := false
	err := Capture(context.Background(), "analysis.pipeline", func(ctx context.Context) error {
		ran = true
		AddAnnotation(ctx, "fixture_id", 7)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}
