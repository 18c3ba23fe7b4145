package rhema

import (
	"fmt"
	"strings"

	"github.com/nukata/goarith"
)

// NewRootEnv builds a fresh root environment: special forms, primitive
// procedures, and the bootstrap prelude evaluated on top.
func NewRootEnv() (*Env, error) {
	env := NewBareEnv()
	if err := LoadBootstrap(env); err != nil {
		return nil, err
	}
	return env, nil
}

// NewBareEnv builds a root environment without the prelude: special forms
// and Go builtins only.
func NewBareEnv() *Env {
	env := NewEnv(nil)
	for name, kind := range specialForms() {
		env.Define(name, SpecialVal(kind))
	}
	for name, fn := range CoreBuiltins() {
		env.Define(name, BuiltinVal(name, fn))
	}
	return env
}

// specialForms maps surface names to special-form kinds. The forms are
// first-class values in the root environment, so lexical bindings can
// shadow them like anything else.
func specialForms() map[string]SpecialKind {
	return map[string]SpecialKind{
		"quote":      SpecQuote,
		"quasiquote": SpecQuasiquote,
		"define":     SpecDefine,
		"set!":       SpecSet,
		"lambda":     SpecLambda,
		"macro":      SpecMacro,
		"if":         SpecIf,
		"begin":      SpecBegin,
	}
}

// CoreBuiltins returns the primitive procedures.
func CoreBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"cons":     builtinCons,
		"car":      builtinCar,
		"cdr":      builtinCdr,
		"list":     builtinList,
		"pair?":    builtinIsPair,
		"null?":    builtinIsNull,
		"symbol?":  builtinIsSymbol,
		"eq?":      builtinEq,
		"equal?":   builtinEqual,
		"not":      builtinNot,
		"length":   builtinLength,
		"append":   builtinAppend,
		// Arithmetic
		"+":         builtinAdd,
		"-":         builtinSub,
		"*":         builtinMul,
		"quotient":  builtinQuotient,
		"remainder": builtinRemainder,
		// Comparison
		"<": builtinLt,
		"=": builtinNumEq,
		">": builtinGt,
		// Strings and output
		"string-append": builtinStringAppend,
		"to-string":     builtinToString,
		"display":       builtinDisplay,
		"newline":       builtinNewline,
	}
}

// --- Pairs and lists ---

func builtinCons(args []*Datum) (*Datum, error) {
	if len(args) != 2 {
		return nil, arityErrf(nil, "cons: expected 2 args, got %d", len(args))
	}
	return Cons(args[0], args[1]), nil
}

func builtinCar(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "car: expected 1 arg, got %d", len(args))
	}
	if args[0].Kind != DatPair {
		return nil, typeErrf(args[0], "car: expected pair, got %s", args[0].KindName())
	}
	return args[0].First, nil
}

func builtinCdr(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "cdr: expected 1 arg, got %d", len(args))
	}
	if args[0].Kind != DatPair {
		return nil, typeErrf(args[0], "cdr: expected pair, got %s", args[0].KindName())
	}
	return args[0].Second, nil
}

func builtinList(args []*Datum) (*Datum, error) {
	return SliceToList(args), nil
}

func builtinIsPair(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "pair?: expected 1 arg, got %d", len(args))
	}
	return BoolVal(args[0].Kind == DatPair), nil
}

func builtinIsNull(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "null?: expected 1 arg, got %d", len(args))
	}
	return BoolVal(args[0].Kind == DatNil), nil
}

func builtinIsSymbol(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "symbol?: expected 1 arg, got %d", len(args))
	}
	return BoolVal(args[0].Kind == DatSymbol), nil
}

func builtinLength(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "length: expected 1 arg, got %d", len(args))
	}
	n := ListLength(args[0])
	if n < 0 {
		return nil, typeErrf(args[0], "length: expected proper list")
	}
	return IntVal(int64(n)), nil
}

// builtinAppend concatenates proper lists; the last argument may be any
// datum and becomes the tail, so dotted results are expressible.
func builtinAppend(args []*Datum) (*Datum, error) {
	if len(args) == 0 {
		return Nil, nil
	}
	var elems []*Datum
	for _, a := range args[:len(args)-1] {
		s, ok := ListToSlice(a)
		if !ok {
			return nil, typeErrf(a, "append: expected proper list")
		}
		elems = append(elems, s...)
	}
	out := args[len(args)-1]
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out, nil
}

// --- Equality ---

func builtinEq(args []*Datum) (*Datum, error) {
	if len(args) != 2 {
		return nil, arityErrf(nil, "eq?: expected 2 args, got %d", len(args))
	}
	a, b := args[0], args[1]
	if a == b {
		return BoolVal(true), nil
	}
	if a.Kind == DatAtom && b.Kind == DatAtom {
		return BoolVal(scalarEqual(a.Val, b.Val)), nil
	}
	if a.Kind == DatSymbol && b.Kind == DatSymbol {
		return BoolVal(a.Str == b.Str), nil
	}
	return BoolVal(false), nil
}

func builtinEqual(args []*Datum) (*Datum, error) {
	if len(args) != 2 {
		return nil, arityErrf(nil, "equal?: expected 2 args, got %d", len(args))
	}
	return BoolVal(DatumsEqual(args[0], args[1])), nil
}

func builtinNot(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "not: expected 1 arg, got %d", len(args))
	}
	return BoolVal(!args[0].Truthy()), nil
}

// --- Arithmetic ---

// asNumberAny adapts an atom scalar to a goarith number, nil if it isn't
// numeric. Results of arithmetic stay goarith numbers, so integer math
// widens past int64 instead of overflowing.
func asNumberAny(v any) goarith.Number {
	if n, ok := v.(goarith.Number); ok {
		return n
	}
	return goarith.AsNumber(v)
}

func argNumber(name string, d *Datum) (goarith.Number, error) {
	if d.Kind == DatAtom {
		if n := asNumberAny(d.Val); n != nil {
			return n, nil
		}
	}
	return nil, typeErrf(d, "%s: expected number, got %s", name, d.KindName())
}

func builtinAdd(args []*Datum) (*Datum, error) {
	acc := asNumberAny(int64(0))
	for _, a := range args {
		n, err := argNumber("+", a)
		if err != nil {
			return nil, err
		}
		acc = acc.Add(n)
	}
	return AtomVal(acc), nil
}

func builtinSub(args []*Datum) (*Datum, error) {
	if len(args) == 0 {
		return nil, arityErrf(nil, "-: expected at least 1 arg, got 0")
	}
	first, err := argNumber("-", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return AtomVal(asNumberAny(int64(0)).Sub(first)), nil
	}
	acc := first
	for _, a := range args[1:] {
		n, err := argNumber("-", a)
		if err != nil {
			return nil, err
		}
		acc = acc.Sub(n)
	}
	return AtomVal(acc), nil
}

func builtinMul(args []*Datum) (*Datum, error) {
	acc := asNumberAny(int64(1))
	for _, a := range args {
		n, err := argNumber("*", a)
		if err != nil {
			return nil, err
		}
		acc = acc.Mul(n)
	}
	return AtomVal(acc), nil
}

// argInt64 extracts an int64 atom for the int-only division builtins.
func argInt64(name string, d *Datum) (int64, error) {
	if d.Kind == DatAtom {
		if n, ok := d.Val.(int64); ok {
			return n, nil
		}
	}
	return 0, typeErrf(d, "%s: expected integer, got %s", name, d.KindName())
}

func builtinQuotient(args []*Datum) (*Datum, error) {
	if len(args) != 2 {
		return nil, arityErrf(nil, "quotient: expected 2 args, got %d", len(args))
	}
	a, err := argInt64("quotient", args[0])
	if err != nil {
		return nil, err
	}
	b, err := argInt64("quotient", args[1])
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, typeErrf(args[1], "quotient: division by zero")
	}
	return IntVal(a / b), nil
}

func builtinRemainder(args []*Datum) (*Datum, error) {
	if len(args) != 2 {
		return nil, arityErrf(nil, "remainder: expected 2 args, got %d", len(args))
	}
	a, err := argInt64("remainder", args[0])
	if err != nil {
		return nil, err
	}
	b, err := argInt64("remainder", args[1])
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, typeErrf(args[1], "remainder: division by zero")
	}
	return IntVal(a % b), nil
}

// --- Comparison ---

// compareChain checks cmp over each adjacent pair of args.
func compareChain(name string, args []*Datum, ok func(int) bool) (*Datum, error) {
	if len(args) < 2 {
		return nil, arityErrf(nil, "%s: expected at least 2 args, got %d", name, len(args))
	}
	prev, err := argNumber(name, args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := argNumber(name, a)
		if err != nil {
			return nil, err
		}
		if !ok(prev.Cmp(n)) {
			return BoolVal(false), nil
		}
		prev = n
	}
	return BoolVal(true), nil
}

func builtinLt(args []*Datum) (*Datum, error) {
	return compareChain("<", args, func(c int) bool { return c < 0 })
}

func builtinNumEq(args []*Datum) (*Datum, error) {
	return compareChain("=", args, func(c int) bool { return c == 0 })
}

func builtinGt(args []*Datum) (*Datum, error) {
	return compareChain(">", args, func(c int) bool { return c > 0 })
}

// --- Strings and output ---

func builtinStringAppend(args []*Datum) (*Datum, error) {
	var sb strings.Builder
	for _, a := range args {
		s, ok := a.Val.(string)
		if a.Kind != DatAtom || !ok {
			return nil, typeErrf(a, "string-append: expected string, got %s", a.KindName())
		}
		sb.WriteString(s)
	}
	return StringVal(sb.String()), nil
}

func builtinToString(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "to-string: expected 1 arg, got %d", len(args))
	}
	return StringVal(args[0].String()), nil
}

func builtinDisplay(args []*Datum) (*Datum, error) {
	if len(args) != 1 {
		return nil, arityErrf(nil, "display: expected 1 arg, got %d", len(args))
	}
	fmt.Print(DisplayString(args[0]))
	return Nil, nil
}

func builtinNewline(args []*Datum) (*Datum, error) {
	if len(args) != 0 {
		return nil, arityErrf(nil, "newline: expected 0 args, got %d", len(args))
	}
	fmt.Println()
	return Nil, nil
}
