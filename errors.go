package rhema

import "fmt"

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	ErrSyntax  ErrorKind = iota // malformed special form
	ErrType                     // wrong kind of value
	ErrUnbound                  // symbol lookup reached the root
	ErrArity                    // argument count incompatible with parameter pattern
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrType:
		return "type error"
	case ErrUnbound:
		return "unbound variable"
	case ErrArity:
		return "arity error"
	default:
		return "error"
	}
}

// EvalError is the structured failure surfaced to the embedder: kind,
// message, and the offending datum where one applies.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Datum   *Datum // may be nil
}

func (e *EvalError) Error() string {
	if e.Datum != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Datum)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func syntaxErrf(datum *Datum, format string, args ...any) error {
	return &EvalError{Kind: ErrSyntax, Message: fmt.Sprintf(format, args...), Datum: datum}
}

func typeErrf(datum *Datum, format string, args ...any) error {
	return &EvalError{Kind: ErrType, Message: fmt.Sprintf(format, args...), Datum: datum}
}

func arityErrf(datum *Datum, format string, args ...any) error {
	return &EvalError{Kind: ErrArity, Message: fmt.Sprintf(format, args...), Datum: datum}
}

func unboundErr(name string) error {
	return &EvalError{Kind: ErrUnbound, Message: name}
}
