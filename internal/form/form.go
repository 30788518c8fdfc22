// Package form holds the airdrop form's value types shared by the validator,
// the debounce coordinator, the orchestrator and the UI.
package form

// Field identifies one of the three text inputs.
type Field int

const (
	FieldToken Field = iota
	FieldRecipients
	FieldAmounts
)

// AllFields lists the inputs in display order.
var AllFields = []Field{FieldToken, FieldRecipients, FieldAmounts}

func (f Field) String() string {
	switch f {
	case FieldToken:
		return "token"
	case FieldRecipients:
		return "recipients"
	case FieldAmounts:
		return "amounts"
	default:
		return "unknown"
	}
}

// Fields are the raw text inputs exactly as the user typed them.
type Fields struct {
	TokenAddress string `json:"tokenAddress"`
	Recipients   string `json:"recipients"`
	Amounts      string `json:"amounts"`
}

// Get returns the raw value of f.
func (fs Fields) Get(f Field) string {
	switch f {
	case FieldToken:
		return fs.TokenAddress
	case FieldRecipients:
		return fs.Recipients
	case FieldAmounts:
		return fs.Amounts
	}
	return ""
}

// With returns a copy of fs with f set to value.
func (fs Fields) With(f Field, value string) Fields {
	switch f {
	case FieldToken:
		fs.TokenAddress = value
	case FieldRecipients:
		fs.Recipients = value
	case FieldAmounts:
		fs.Amounts = value
	}
	return fs
}

// Complete reports whether all three inputs are non-empty.
func (fs Fields) Complete() bool {
	return fs.TokenAddress != "" && fs.Recipients != "" && fs.Amounts != ""
}

// Errors carries one human-readable reason per field; empty means valid.
type Errors struct {
	Token      string
	Recipients string
	Amounts    string
}

// Any reports whether at least one field has an error.
func (e Errors) Any() bool {
	return e.Token != "" || e.Recipients != "" || e.Amounts != ""
}

// Get returns the error text for f.
func (e Errors) Get(f Field) string {
	switch f {
	case FieldToken:
		return e.Token
	case FieldRecipients:
		return e.Recipients
	case FieldAmounts:
		return e.Amounts
	}
	return ""
}

// State is a snapshot of the whole form.
type State struct {
	Fields
	Errors     Errors
	Submitting bool
}
