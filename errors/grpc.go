package errors

import (
	"strconv"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Violation reasons travel in ErrorInfo metadata under this prefix because
// BadRequest has no reason slot.
const violationReasonPrefix = "violation_reason."

// ToGRPC encodes e as a status with ErrorInfo and, for validation
// failures, BadRequest field violations in order.
func (e ErrorResponse) ToGRPC() error {
	st := status.New(e.Code, e.Message)

	metadata := cloneDetails(e.Details)
	for _, v := range e.Violations {
		if v.Field == "" || v.Reason == "" {
			continue
		}
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata[violationReasonPrefix+v.Field] = v.Reason
	}

	if e.Reason != "" || len(metadata) > 0 || e.Domain != "" {
		ei := &errdetails.ErrorInfo{
			Reason:   string(e.Reason),
			Domain:   e.Domain,
			Metadata: metadata,
		}
		if st2, err := st.WithDetails(ei); err == nil {
			st = st2
		}
	}

	if len(e.Violations) > 0 && e.Code == codes.InvalidArgument {
		br := &errdetails.BadRequest{
			FieldViolations: make([]*errdetails.BadRequest_FieldViolation, 0, len(e.Violations)),
		}
		for _, v := range e.Violations {
			desc := v.Description
			if desc == "" {
				desc = v.Reason
			}
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: desc,
			})
		}
		if st2, err := st.WithDetails(br); err == nil {
			st = st2
		}
	}

	return st.Err()
}

// FromGRPC is the inverse of ToGRPC. Errors without a status map to Unknown.
func FromGRPC(err error) ErrorResponse {
	st, ok := status.FromError(err)
	if !ok {
		return Unknown()
	}
	out := ErrorResponse{Code: st.Code(), Message: st.Message()}

	var reasons map[string]string
	for _, d := range st.Details() {
		switch x := d.(type) {
		case *errdetails.ErrorInfo:
			out.Reason = Reason(x.GetReason())
			out.Domain = x.GetDomain()
			details := map[string]string{}
			for k, v := range x.GetMetadata() {
				if field, ok := strings.CutPrefix(k, violationReasonPrefix); ok {
					if reasons == nil {
						reasons = map[string]string{}
					}
					reasons[field] = v
					continue
				}
				details[k] = v
			}
			out = out.WithDetails(details)
		case *errdetails.BadRequest:
			vs := make([]FieldViolation, 0, len(x.GetFieldViolations()))
			for _, fv := range x.GetFieldViolations() {
				vs = append(vs, FieldViolation{Field: fv.GetField(), Description: fv.GetDescription()})
			}
			out.Violations = vs
		}
	}
	for i := range out.Violations {
		out.Violations[i].Reason = reasons[out.Violations[i].Field]
	}
	return out
}

// GRPCRateLimited returns ResourceExhausted with RetryInfo and ErrorInfo.
func GRPCRateLimited(retryAfter time.Duration) error {
	if retryAfter < 0 {
		retryAfter = 0
	}

	st := status.New(codes.ResourceExhausted, "Rate limited")
	ri := &errdetails.RetryInfo{RetryDelay: durationpb.New(retryAfter)}
	ei := &errdetails.ErrorInfo{
		Reason:   "rate_limited",
		Domain:   Domain,
		Metadata: map[string]string{"retry_after_ms": strconv.FormatInt(retryAfter.Milliseconds(), 10)},
	}

	st2, err := st.WithDetails(ri, ei)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}
