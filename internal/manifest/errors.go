package manifest

import (
	"errors"
	"fmt"
)

// Kind classifies a manifest failure.
type Kind string

const (
	// KindParse means the document could not be read or is not a mapping.
	KindParse Kind = "parse"
	// KindSchema means a structural, typing, version or closed-set rule failed.
	KindSchema Kind = "schema"
	// KindEnforcement means a declared deployment constraint was true.
	KindEnforcement Kind = "enforcement"
)

// Error is the single failure type for manifest loading, validation and
// enforcement. Reason names the violated rule; Constraint is set only for
// KindEnforcement.
type Error struct {
	Kind       Kind
	Reason     string
	Constraint string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindEnforcement:
		return fmt.Sprintf("enforcement blocked: %s", e.Constraint)
	case e.Cause != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Reason, e.Cause)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Reason)
	}
}

// Unwrap returns the underlying I/O or YAML error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewParseError reports an unreadable or non-mapping document.
func NewParseError(reason string, cause error) *Error {
	return &Error{Kind: KindParse, Reason: reason, Cause: cause}
}

// NewSchemaError reports a violated schema rule.
func NewSchemaError(reason string) *Error {
	return &Error{Kind: KindSchema, Reason: reason}
}

// NewEnforcementError reports a deployment constraint declared true.
func NewEnforcementError(constraint string) *Error {
	return &Error{Kind: KindEnforcement, Reason: constraint, Constraint: constraint}
}

// KindOf returns the kind of a manifest error, or "" for any other error.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool { return KindOf(err) == KindParse }

// IsSchema reports whether err is a schema failure.
func IsSchema(err error) bool { return KindOf(err) == KindSchema }

// IsEnforcement reports whether err is an enforcement failure.
func IsEnforcement(err error) bool { return KindOf(err) == KindEnforcement }
