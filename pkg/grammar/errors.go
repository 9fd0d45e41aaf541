package grammar

import "fmt"

// ErrorKind classifies grammar violations
type ErrorKind int

const (
	ErrUnknownCommand ErrorKind = iota + 1
	ErrMalformedCommand
	ErrMalformedFilter
	ErrMalformedRoute
	ErrUnknownFlag
	ErrUnexpectedToken
)

// ParseError describes a grammar violation. It is always produced before
// execution: a parse failure leaves the filesystem untouched.
type ParseError struct {
	Kind    ErrorKind
	Keyword string // filter keyword or flag letter, when relevant
	Raw     string // the offending token
	Reason  string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrUnknownCommand:
		return fmt.Sprintf("unknown command %q", e.Raw)
	case ErrMalformedCommand:
		return fmt.Sprintf("malformed command: %s", e.Reason)
	case ErrMalformedFilter:
		return fmt.Sprintf("malformed filter %q: %s", e.Raw, e.Reason)
	case ErrMalformedRoute:
		return fmt.Sprintf("malformed route %q: %s", e.Raw, e.Reason)
	case ErrUnknownFlag:
		return fmt.Sprintf("unknown flag -%s in %q", e.Keyword, e.Raw)
	case ErrUnexpectedToken:
		return fmt.Sprintf("unexpected token %q: %s", e.Raw, e.Reason)
	default:
		return fmt.Sprintf("parse error on %q", e.Raw)
	}
}
