package errors

import (
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
)

func Unknown() ErrorResponse {
	return New("Unknown error occurred", codes.Unknown, nil).WithReason("unknown")
}
func InvalidArgument() ErrorResponse {
	return New("Invalid argument", codes.InvalidArgument, nil).WithReason("invalid_argument")
}
func Canceled() ErrorResponse {
	return New("Request canceled", codes.Canceled, nil).WithReason("canceled")
}
func DeadlineExceeded() ErrorResponse {
	return New("Deadline exceeded", codes.DeadlineExceeded, nil).WithReason("deadline_exceeded")
}
func NotFound() ErrorResponse {
	return New("Resource not found", codes.NotFound, nil).WithReason("not_found")
}
func ResourceExhausted() ErrorResponse {
	return New("Quota or limit exceeded", codes.ResourceExhausted, nil).WithReason("resource_exhausted")
}
func Aborted() ErrorResponse { return New("Request aborted", codes.Aborted, nil).WithReason("aborted") }
func Internal() ErrorResponse {
	return New("Internal error", codes.Internal, nil).WithReason("internal")
}
func Unavailable() ErrorResponse {
	return New("Service unavailable", codes.Unavailable, nil).WithReason("unavailable")
}

// ValidationFields builds validation_failed from a field -> reason map.
func ValidationFields(fields map[string]string) ErrorResponse {
	return InvalidArgument().WithReason("validation_failed").WithDetails(fields).WithViolations(ViolationsFromMap(fields))
}

func ValidationViolations(v []FieldViolation) ErrorResponse {
	return InvalidArgument().WithReason("validation_failed").WithViolations(v)
}

// ViolationsFromMap is unordered; use ValidationViolations when order matters.
func ViolationsFromMap(m map[string]string) []FieldViolation {
	if len(m) == 0 {
		return nil
	}
	out := make([]FieldViolation, 0, len(m))
	for f, r := range m {
		out = append(out, FieldViolation{Field: f, Reason: r})
	}
	return out
}

// RateLimited carries the retry delay in milliseconds.
func RateLimited(retryAfter time.Duration) ErrorResponse {
	ms := retryAfter.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ResourceExhausted().
		WithReason("rate_limited").
		WithDetail("retry_after_ms", strconv.FormatInt(ms, 10))
}
