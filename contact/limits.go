package contact

// NameCharset selects which letters the name rule accepts.
type NameCharset string

const (
	// CharsetUnicode accepts any Unicode letter (and combining marks), so
	// "José María" passes.
	CharsetUnicode NameCharset = "unicode"
	// CharsetASCII accepts A-Z and a-z only.
	CharsetASCII NameCharset = "ascii"
)

// Limits is the immutable set of bounds the validators check against.
// It is passed by value; nothing in this package mutates it.
type Limits struct {
	MinNameLength    int         `yaml:"min_name_length" json:"min_name_length" validate:"gte=1"`
	MaxNameLength    int         `yaml:"max_name_length" json:"max_name_length" validate:"gtefield=MinNameLength"`
	MinMessageLength int         `yaml:"min_message_length" json:"min_message_length" validate:"gte=1"`
	MaxMessageLength int         `yaml:"max_message_length" json:"max_message_length" validate:"gtefield=MinMessageLength"`
	MaxEmailLength   int         `yaml:"max_email_length" json:"max_email_length" validate:"gte=3"`
	MinPhoneDigits   int         `yaml:"min_phone_digits" json:"min_phone_digits" validate:"gte=1"`
	MaxPhoneDigits   int         `yaml:"max_phone_digits" json:"max_phone_digits" validate:"gtefield=MinPhoneDigits"`
	NameCharset      NameCharset `yaml:"name_charset" json:"name_charset" validate:"oneof=unicode ascii"`
}

func DefaultLimits() Limits {
	return Limits{
		MinNameLength:    2,
		MaxNameLength:    50,
		MinMessageLength: 10,
		MaxMessageLength: 500,
		MaxEmailLength:   254,
		MinPhoneDigits:   10,
		MaxPhoneDigits:   15,
		NameCharset:      CharsetUnicode,
	}
}
