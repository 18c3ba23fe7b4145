package rhema

type DatumKind int

const (
	DatNil     DatumKind = iota
	DatSymbol
	DatPair
	DatAtom
	DatProc
	DatMacro
	DatSpecial
)

// SpecialKind identifies one of the built-in special forms.
type SpecialKind int

const (
	SpecQuote      SpecialKind = iota
	SpecQuasiquote
	SpecDefine
	SpecSet
	SpecLambda
	SpecMacro
	SpecIf
	SpecBegin
)

// Builtin is a procedure implemented in Go, called with eagerly
// evaluated arguments.
type Builtin func(args []*Datum) (*Datum, error)

// ProcValue is a callable: either a closure (Params/Body/Env) or a
// Go builtin (Builtin non-nil). Macros wrap a ProcValue too.
type ProcValue struct {
	Name    string // diagnostic name, filled in by define
	Params  *Datum // parameter pattern: symbol list, dotted list, bare symbol or ()
	Body    *Datum
	Env     *Env
	Builtin Builtin
}

// Datum is the universal value: every expression and every result is one.
type Datum struct {
	Kind    DatumKind
	Str     string      // symbol name
	Val     any         // atom scalar: int64, *big.Int, goarith number, string or bool
	First   *Datum      // pair car
	Second  *Datum      // pair cdr
	Proc    *ProcValue  // procedure or macro target
	Special SpecialKind
}

// Nil is the unique empty-list sentinel. It compares by identity and
// terminates every proper list.
var Nil = &Datum{Kind: DatNil}

func SymbolVal(name string) *Datum { return &Datum{Kind: DatSymbol, Str: name} }
func IntVal(n int64) *Datum        { return &Datum{Kind: DatAtom, Val: n} }
func StringVal(s string) *Datum    { return &Datum{Kind: DatAtom, Val: s} }
func BoolVal(b bool) *Datum        { return &Datum{Kind: DatAtom, Val: b} }
func AtomVal(v any) *Datum         { return &Datum{Kind: DatAtom, Val: v} }
func Cons(first, second *Datum) *Datum {
	return &Datum{Kind: DatPair, First: first, Second: second}
}
func ProcVal(p *ProcValue) *Datum  { return &Datum{Kind: DatProc, Proc: p} }
func MacroVal(p *ProcValue) *Datum { return &Datum{Kind: DatMacro, Proc: p} }
func SpecialVal(k SpecialKind) *Datum {
	return &Datum{Kind: DatSpecial, Special: k}
}

// BuiltinVal wraps a Go function as a procedure datum.
func BuiltinVal(name string, fn Builtin) *Datum {
	return ProcVal(&ProcValue{Name: name, Builtin: fn})
}

// Truthy implements the conditional test: Nil and #f are falsy,
// everything else is truthy.
func (d *Datum) Truthy() bool {
	switch d.Kind {
	case DatNil:
		return false
	case DatAtom:
		if b, ok := d.Val.(bool); ok {
			return b
		}
		return true
	default:
		return true
	}
}

func (d *Datum) KindName() string {
	switch d.Kind {
	case DatNil:
		return "Nil"
	case DatSymbol:
		return "Symbol"
	case DatPair:
		return "Pair"
	case DatAtom:
		return "Atom"
	case DatProc:
		return "Procedure"
	case DatMacro:
		return "Macro"
	case DatSpecial:
		return "SpecialForm"
	default:
		return "Unknown"
	}
}

// IsSymbol reports whether d is the symbol with the given name.
func (d *Datum) IsSymbol(name string) bool {
	return d.Kind == DatSymbol && d.Str == name
}

// ListToSlice flattens a proper list into a slice. The second result is
// false if the list is improper (ends in a non-Nil terminal).
func ListToSlice(d *Datum) ([]*Datum, bool) {
	var out []*Datum
	for d.Kind == DatPair {
		out = append(out, d.First)
		d = d.Second
	}
	return out, d.Kind == DatNil
}

// SliceToList builds a Nil-terminated list from a slice.
func SliceToList(elems []*Datum) *Datum {
	out := Nil
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

// List builds a proper list from its arguments.
func List(elems ...*Datum) *Datum {
	return SliceToList(elems)
}

// ListLength returns the length of a proper list, or -1 if improper.
func ListLength(d *Datum) int {
	n := 0
	for d.Kind == DatPair {
		n++
		d = d.Second
	}
	if d.Kind != DatNil {
		return -1
	}
	return n
}

// DatumsEqual compares two datums structurally. Pairs recurse, atoms
// compare by scalar value, procedures and macros by identity.
func DatumsEqual(a, b *Datum) bool {
	for {
		if a == b {
			return true
		}
		if a.Kind != b.Kind {
			return false
		}
		switch a.Kind {
		case DatNil:
			return true
		case DatSymbol:
			return a.Str == b.Str
		case DatAtom:
			return scalarEqual(a.Val, b.Val)
		case DatPair:
			if !DatumsEqual(a.First, b.First) {
				return false
			}
			a, b = a.Second, b.Second
		default:
			// procedures, macros, specials compare by identity only
			return false
		}
	}
}

func scalarEqual(a, b any) bool {
	if an, bn := asNumberAny(a), asNumberAny(b); an != nil && bn != nil {
		return an.Cmp(bn) == 0
	}
	return a == b
}
