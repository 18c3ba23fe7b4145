package rhema

import (
	"fmt"
	"strings"
)

// String renders the datum in its written form: strings are quoted and
// escaped so the output reads back as the same datum.
func (d *Datum) String() string {
	var sb strings.Builder
	writeDatum(&sb, d, false)
	return sb.String()
}

// DisplayString renders the datum for display: string atoms appear
// without quotes or escapes.
func DisplayString(d *Datum) string {
	var sb strings.Builder
	writeDatum(&sb, d, true)
	return sb.String()
}

func writeDatum(sb *strings.Builder, d *Datum, display bool) {
	switch d.Kind {
	case DatNil:
		sb.WriteString("()")
	case DatSymbol:
		sb.WriteString(d.Str)
	case DatAtom:
		writeAtom(sb, d.Val, display)
	case DatPair:
		writePair(sb, d, display)
	case DatProc:
		if d.Proc.Builtin != nil {
			fmt.Fprintf(sb, "#<builtin %s>", d.Proc.Name)
		} else if d.Proc.Name != "" {
			fmt.Fprintf(sb, "#<procedure %s>", d.Proc.Name)
		} else {
			sb.WriteString("#<procedure>")
		}
	case DatMacro:
		if d.Proc.Name != "" {
			fmt.Fprintf(sb, "#<macro %s>", d.Proc.Name)
		} else {
			sb.WriteString("#<macro>")
		}
	case DatSpecial:
		fmt.Fprintf(sb, "#<special %s>", specialName(d.Special))
	default:
		fmt.Fprintf(sb, "#<unknown:%d>", d.Kind)
	}
}

func writeAtom(sb *strings.Builder, val any, display bool) {
	switch v := val.(type) {
	case bool:
		if v {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case string:
		if display {
			sb.WriteString(v)
		} else {
			fmt.Fprintf(sb, "%q", v)
		}
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

func writePair(sb *strings.Builder, d *Datum, display bool) {
	sb.WriteByte('(')
	writeDatum(sb, d.First, display)
	rest := d.Second
	for rest.Kind == DatPair {
		sb.WriteByte(' ')
		writeDatum(sb, rest.First, display)
		rest = rest.Second
	}
	if rest.Kind != DatNil {
		sb.WriteString(" . ")
		writeDatum(sb, rest, display)
	}
	sb.WriteByte(')')
}

func specialName(k SpecialKind) string {
	switch k {
	case SpecQuote:
		return "quote"
	case SpecQuasiquote:
		return "quasiquote"
	case SpecDefine:
		return "define"
	case SpecSet:
		return "set!"
	case SpecLambda:
		return "lambda"
	case SpecMacro:
		return "macro"
	case SpecIf:
		return "if"
	case SpecBegin:
		return "begin"
	default:
		return "unknown"
	}
}
