package errors_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/errors"
	"github.com/vortex-fintech/contactform/submit"
)

func invalidReport() contact.Report {
	return contact.ValidateForm(contact.Form{
		Name:    "John Smith",
		Email:   "test@",
		Phone:   "0123456789",
		Message: "Valid message here",
	}, contact.DefaultLimits())
}

func TestFromReport(t *testing.T) {
	e := errors.FromReport(invalidReport())

	assert.Equal(t, codes.InvalidArgument, e.Code)
	assert.Equal(t, errors.Reason("validation_failed"), e.Reason)
	assert.Equal(t, "email", e.Details["focus"])
	assert.Equal(t, []errors.FieldViolation{
		{Field: "email", Reason: "pattern_mismatch", Description: "Please enter a valid email address."},
		{Field: "phone", Reason: "pattern_mismatch", Description: "Phone number cannot start with 0."},
	}, e.Violations)
}

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   codes.Code
		reason errors.Reason
		status int
	}{
		{"nil", nil, codes.Internal, "unexpected_error", http.StatusInternalServerError},
		{"invalid form", &submit.FormError{Report: invalidReport()}, codes.InvalidArgument, "validation_failed", http.StatusBadRequest},
		{"in progress", fmt.Errorf("acquire: %w", submit.ErrInProgress), codes.Aborted, "submission_in_progress", http.StatusConflict},
		{"transient", fmt.Errorf("simulated: %w", submit.ErrTransientNetwork), codes.Unavailable, "transient_network_error", http.StatusServiceUnavailable},
		{"canceled", context.Canceled, codes.Canceled, "canceled", 499},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), codes.DeadlineExceeded, "deadline_exceeded", http.StatusGatewayTimeout},
		{"unknown field", contact.ErrUnknownField, codes.NotFound, "unknown_field", http.StatusNotFound},
		{"passthrough", errors.RateLimited(time.Second), codes.ResourceExhausted, "rate_limited", http.StatusTooManyRequests},
		{"other", stderrors.New("boom"), codes.Internal, "unexpected_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := errors.ToErrorResponse(tt.err)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.reason, e.Reason)
			assert.Equal(t, tt.status, errors.HTTPStatus(e.Code))
			assert.Equal(t, errors.Domain, e.Domain)
		})
	}
}

func TestToErrorResponse_FailureNotice(t *testing.T) {
	e := errors.ToErrorResponse(submit.ErrTransientNetwork)
	assert.Equal(t, "There was an error sending your message. Please try again.", e.Message)
}

func TestWithDetail_DoesNotMutatePreset(t *testing.T) {
	base := errors.InvalidArgument().WithDetail("a", "1")
	derived := base.WithDetail("b", "2")

	assert.Equal(t, map[string]string{"a": "1"}, base.Details)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, derived.Details)
}

func TestToHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	errors.FromReport(invalidReport()).ToHTTP(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "InvalidArgument", got["code"])
	assert.Equal(t, "validation_failed", got["reason"])
	assert.Len(t, got["violations"], 2)
}

func TestToHTTPWithRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	errors.RateLimited(1500*time.Millisecond).ToHTTPWithRetry(rec, 1500*time.Millisecond)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"retry_after_ms":"1500"`)
}

func TestGRPCRoundTrip(t *testing.T) {
	in := errors.FromReport(invalidReport())
	out := errors.FromGRPC(in.ToGRPC())

	assert.Equal(t, in.Code, out.Code)
	assert.Equal(t, in.Reason, out.Reason)
	assert.Equal(t, in.Domain, out.Domain)
	assert.Equal(t, in.Message, out.Message)
	assert.Equal(t, in.Details, out.Details)
	assert.Equal(t, in.Violations, out.Violations)
}

func TestFromGRPC_PlainError(t *testing.T) {
	out := errors.FromGRPC(stderrors.New("not a status"))
	assert.Equal(t, codes.Unknown, out.Code)
}

func TestGRPCRateLimited(t *testing.T) {
	st, ok := status.FromError(errors.GRPCRateLimited(2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())

	var sawRetry bool
	for _, d := range st.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok {
			sawRetry = true
			assert.Equal(t, 2*time.Second, ri.GetRetryDelay().AsDuration())
		}
	}
	assert.True(t, sawRetry)
}

func TestError_IsJSON(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(errors.Aborted().Error()), &got))
	assert.Equal(t, "Aborted", got["code"])
}
