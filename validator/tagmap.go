package validator

var tagMap = map[string]string{
	"required":      "required",
	"email":         "invalid_email",
	"hostname_port": "invalid_address",
	"url":           "invalid_url",
	"max":           "too_long",
	"min":           "too_short",
	"gt":            "too_small",
	"lt":            "too_large",
	"gte":           "too_small",
	"lte":           "too_large",
	"gtefield":      "below_lower_bound",
	"oneof":         "invalid_choice",
	"required_if":   "required",
}

func mapTagToCode(tag string) string {
	if code, ok := tagMap[tag]; ok {
		return code
	}
	return "invalid"
}
