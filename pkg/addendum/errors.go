package addendum

import (
	"errors"
	"fmt"

	"github.com/toyz/addendum/internal/docparser"
)

// AnnotationError is implemented by every error the engine reports
type AnnotationError interface {
	error
	Code() ErrorCode
}

// ErrorCode represents the kind of an annotation error
type ErrorCode int

const (
	CircularReferenceCode ErrorCode = iota
	InvalidPropertyCode
	InvalidValueCode
	UnresolvedTagCode
	NoNestingAllowedCode
	NestingNotAllowedCode
	UnknownTypeCode
	ConstraintCode
	SyntaxErrorCode
	NotFoundCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (c ErrorCode) String() string {
	switch c {
	case CircularReferenceCode:
		return "CircularAnnotationReference"
	case InvalidPropertyCode:
		return "InvalidProperty"
	case InvalidValueCode:
		return "InvalidValue"
	case UnresolvedTagCode:
		return "UnresolvedTag"
	case NoNestingAllowedCode:
		return "NoNestingAllowed"
	case NestingNotAllowedCode:
		return "NestingNotAllowed"
	case UnknownTypeCode:
		return "UnknownType"
	case ConstraintCode:
		return "ConstraintError"
	case SyntaxErrorCode:
		return "SyntaxError"
	case NotFoundCode:
		return "NotFound"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// CodeOf returns the code of the first AnnotationError in err's chain
func CodeOf(err error) (ErrorCode, bool) {
	var annErr AnnotationError
	if errors.As(err, &annErr) {
		return annErr.Code(), true
	}
	return 0, false
}

// CircularReferenceError is returned when a type is constructed while an
// instance of it is already under construction on the same engine.
type CircularReferenceError struct {
	Type string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular annotation reference encountered on '%s'", e.Type)
}

func (e *CircularReferenceError) Code() ErrorCode { return CircularReferenceCode }

// InvalidPropertyError is returned for a named parameter the type does not declare
type InvalidPropertyError struct {
	Type     string
	Property string
}

func (e *InvalidPropertyError) Error() string {
	return fmt.Sprintf("property '%s' not defined for annotation '%s'", e.Property, e.Type)
}

func (e *InvalidPropertyError) Code() ErrorCode { return InvalidPropertyCode }

// InvalidValueError is returned when a value cannot be stored in the Go field
// backing a typed annotation property.
type InvalidValueError struct {
	Type     string
	Property string
	Err      error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for property '%s' of annotation '%s': %v", e.Property, e.Type, e.Err)
}

func (e *InvalidValueError) Code() ErrorCode { return InvalidValueCode }
func (e *InvalidValueError) Unwrap() error   { return e.Err }

// UnresolvedTagError is returned when a tag matches more than one type, or a
// custom resolver cannot resolve it at all.
type UnresolvedTagError struct {
	Tag        string
	Candidates []string
}

func (e *UnresolvedTagError) Error() string {
	if len(e.Candidates) > 1 {
		return fmt.Sprintf("unresolved annotation encountered: @%s (ambiguous: %v)", e.Tag, e.Candidates)
	}
	return fmt.Sprintf("unresolved annotation encountered: @%s", e.Tag)
}

func (e *UnresolvedTagError) Code() ErrorCode { return UnresolvedTagCode }

// NoNestingAllowedError is returned when a type is used as a parameter value
// but its Target does not list "nested".
type NoNestingAllowedError struct {
	Type string
}

func (e *NoNestingAllowedError) Error() string {
	return fmt.Sprintf("annotation '%s' nesting not allowed", e.Type)
}

func (e *NoNestingAllowedError) Code() ErrorCode { return NoNestingAllowedCode }

// NestingNotAllowedError is returned when a type is attached to a class,
// method or property its Target does not allow.
type NestingNotAllowedError struct {
	Type   string
	Target string
}

func (e *NestingNotAllowedError) Error() string {
	return fmt.Sprintf("annotation '%s' not allowed on %s", e.Type, e.Target)
}

func (e *NestingNotAllowedError) Code() ErrorCode { return NestingNotAllowedCode }

// UnknownTypeError is returned when a resolved name is not a registered type
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown annotation type '%s'", e.Name)
}

func (e *UnknownTypeError) Code() ErrorCode { return UnknownTypeCode }

// ConstraintError wraps a failure of a type-specific constraint check
type ConstraintError struct {
	Type   string
	Target string
	Err    error
}

func (e *ConstraintError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("annotation '%s' constraint failed: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("annotation '%s' on %s constraint failed: %v", e.Type, e.Target, e.Err)
}

func (e *ConstraintError) Code() ErrorCode { return ConstraintCode }
func (e *ConstraintError) Unwrap() error   { return e.Err }

// ParseError is returned when a doc comment holds a malformed declaration
type ParseError struct {
	Target string
	Err    *docparser.SyntaxError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Target, e.Err)
}

func (e *ParseError) Code() ErrorCode { return SyntaxErrorCode }
func (e *ParseError) Unwrap() error   { return e.Err }

// NotFoundError is returned when the provider knows no such class or member
type NotFoundError struct {
	Class  string
	Member string
}

func (e *NotFoundError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("member '%s' not found on class '%s'", e.Member, e.Class)
	}
	return fmt.Sprintf("class '%s' not found", e.Class)
}

func (e *NotFoundError) Code() ErrorCode { return NotFoundCode }

// RegistrationError represents an error during annotation type registration
type RegistrationError struct {
	Type string
	Msg  string
}

func (e *RegistrationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("registration error: %s", e.Msg)
	}
	return fmt.Sprintf("registration error for '%s': %s", e.Type, e.Msg)
}

func (e *RegistrationError) Code() ErrorCode { return RegistrationErrorCode }

// Kind sentinels for errors.Is matching, e.g.
// errors.Is(err, addendum.ErrCircularReference)
var (
	ErrCircularReference = kindError(CircularReferenceCode)
	ErrInvalidProperty   = kindError(InvalidPropertyCode)
	ErrInvalidValue      = kindError(InvalidValueCode)
	ErrUnresolvedTag     = kindError(UnresolvedTagCode)
	ErrNoNestingAllowed  = kindError(NoNestingAllowedCode)
	ErrNestingNotAllowed = kindError(NestingNotAllowedCode)
	ErrUnknownType       = kindError(UnknownTypeCode)
	ErrConstraint        = kindError(ConstraintCode)
	ErrSyntax            = kindError(SyntaxErrorCode)
	ErrNotFound          = kindError(NotFoundCode)
	ErrRegistration      = kindError(RegistrationErrorCode)
)

type kindError ErrorCode

func (k kindError) Error() string { return ErrorCode(k).String() }

func isKind(target error, code ErrorCode) bool {
	k, ok := target.(kindError)
	return ok && ErrorCode(k) == code
}

func (e *CircularReferenceError) Is(target error) bool { return isKind(target, e.Code()) }
func (e *InvalidPropertyError) Is(target error) bool   { return isKind(target, e.Code()) }
func (e *InvalidValueError) Is(target error) bool      { return isKind(target, e.Code()) }
func (e *UnresolvedTagError) Is(target error) bool     { return isKind(target, e.Code()) }
func (e *NoNestingAllowedError) Is(target error) bool  { return isKind(target, e.Code()) }
func (e *NestingNotAllowedError) Is(target error) bool { return isKind(target, e.Code()) }
func (e *UnknownTypeError) Is(target error) bool       { return isKind(target, e.Code()) }
func (e *ConstraintError) Is(target error) bool        { return isKind(target, e.Code()) }
func (e *ParseError) Is(target error) bool             { return isKind(target, e.Code()) }
func (e *NotFoundError) Is(target error) bool          { return isKind(target, e.Code()) }
func (e *RegistrationError) Is(target error) bool      { return isKind(target, e.Code()) }
