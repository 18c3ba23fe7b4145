package rhema

// Quasiquote is implemented by expansion: the template is rewritten into
// ordinary code built from quote, cons and append, and that code is then
// evaluated like any other. Unquoted sub-forms survive the rewrite
// verbatim, so they are evaluated in the caller's environment.

var (
	symQuote  = SymbolVal("quote")
	symCons   = SymbolVal("cons")
	symAppend = SymbolVal("append")
)

// qqExpand rewrites one quasiquote template into evaluable code.
func qqExpand(template *Datum) (*Datum, error) {
	if template.Kind != DatPair {
		return List(symQuote, template), nil
	}
	if template.First.IsSymbol("unquote") {
		return qqUnquoteArg(template)
	}
	if template.First.IsSymbol("unquote-splicing") {
		return nil, syntaxErrf(template, "unquote-splicing: not inside a list")
	}
	return qqExpandList(template)
}

// qqExpandList rewrites the elements of a template list, splicing where
// unquote-splicing appears and preserving dotted tails.
func qqExpandList(template *Datum) (*Datum, error) {
	switch template.Kind {
	case DatNil:
		return List(symQuote, Nil), nil
	case DatPair:
	default:
		// improper tail, e.g. `(a . b)
		return List(symQuote, template), nil
	}
	// dotted unquote: `(a . ,b)
	if template.First.IsSymbol("unquote") {
		return qqUnquoteArg(template)
	}

	head := template.First
	rest, err := qqExpandList(template.Second)
	if err != nil {
		return nil, err
	}

	if head.Kind == DatPair && head.First.IsSymbol("unquote-splicing") {
		expr, err := qqUnquoteArg(head)
		if err != nil {
			return nil, err
		}
		return List(symAppend, expr, rest), nil
	}

	elem, err := qqExpand(head)
	if err != nil {
		return nil, err
	}
	return List(symCons, elem, rest), nil
}

// qqUnquoteArg extracts the single argument of an (unquote x) or
// (unquote-splicing x) form.
func qqUnquoteArg(form *Datum) (*Datum, error) {
	name := form.First.Str
	args, ok := ListToSlice(form.Second)
	if !ok || len(args) != 1 {
		return nil, syntaxErrf(form, "%s: expected 1 arg", name)
	}
	return args[0], nil
}
