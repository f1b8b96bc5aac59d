package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/metrics"
	"github.com/vortex-fintech/contactform/submit"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandler_ExposesCollector(t *testing.T) {
	c := metrics.NewCollector("contactd")
	h, _, err := metrics.New(metrics.Options{Register: c.Register})
	require.NoError(t, err)

	c.ObserveValidation(contact.FieldEmail, contact.Result{Kind: contact.PatternMismatch})
	c.ObserveSubmission(submit.OutcomeSuccess, 2*time.Second)

	srv := httptest.NewServer(h)
	defer srv.Close()

	code, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `contactd_contact_validations_total{field="email",result="pattern_mismatch"} 1`)
	assert.Contains(t, body, "# TYPE contactd_contact_submission_duration_seconds histogram")

	code, body = get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)
}

func TestHandler_CustomHealth(t *testing.T) {
	h, _, err := metrics.New(metrics.Options{
		Health: func(context.Context, *http.Request) error {
			return errors.New("redis down")
		},
		HealthTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	code, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "redis down")
}

func TestHandler_HealthTimeout(t *testing.T) {
	h, _, err := metrics.New(metrics.Options{
		Health: func(ctx context.Context, _ *http.Request) error {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return nil
		},
		HealthTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	code, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "health timeout")
}

func TestHandler_RegisterError(t *testing.T) {
	_, _, err := metrics.New(metrics.Options{
		Register: func(prometheus.Registerer) error { return errors.New("bad collector") },
	})
	assert.EqualError(t, err, "bad collector")
}

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector("t")
	require.NoError(t, c.Register(reg))
	require.NoError(t, c.Register(reg), "registering twice is tolerated")

	c.ObserveValidation(contact.FieldName, contact.Result{Valid: true})
	c.ObserveValidation(contact.FieldName, contact.Result{Kind: contact.TooShort})
	c.ObserveSubmission(submit.OutcomeInvalid, 0)
	c.ObserveSubmission(submit.OutcomeFailed, time.Second)
	c.IncRateLimited()
	c.IncStopTotal("success")
	c.IncServeError("http")
	c.IncServerStopResult("http", "force")
	c.ObserveGracefulDuration(150 * time.Millisecond)

	count, err := testutil.GatherAndCount(reg,
		"t_contact_validations_total",
		"t_contact_submissions_total",
		"t_contact_submission_duration_seconds",
		"t_http_rate_limited_total",
		"t_graceful_stop_total",
		"t_graceful_serve_errors_total",
		"t_graceful_server_stop_total",
		"t_graceful_stop_duration_seconds",
	)
	require.NoError(t, err)
	// two validation series, two submission series, one latency series
	// (invalid attempts have no latency) and five single series.
	assert.Equal(t, 10, count)
}
