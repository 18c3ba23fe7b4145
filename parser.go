package rhema

import "io"

// Parser consumes the token stream and emits top-level datums one at a
// time. Whitespace and comment tokens are filtered here, not in the
// lexer and not in the engine.
type Parser struct {
	lex *Lexer
}

func NewParser(file, input string) *Parser {
	return &Parser{lex: NewLexer(file, input)}
}

// Next returns the next top-level datum, or io.EOF when the input is
// exhausted.
func (p *Parser) Next() (*Datum, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokEOF {
		return nil, io.EOF
	}
	return p.parseDatum(tok)
}

// ParseOne parses exactly one datum from input and rejects trailing text.
func ParseOne(file, input string) (*Datum, error) {
	p := NewParser(file, input)
	d, err := p.Next()
	if err == io.EOF {
		return nil, p.lex.errorAt(1, 1, "empty input")
	}
	if err != nil {
		return nil, err
	}
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokEOF {
		return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected input after expression")
	}
	return d, nil
}

// nextToken skips whitespace and comments.
func (p *Parser) nextToken() (Token, error) {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		if tok.Kind == TokWhitespace || tok.Kind == TokComment {
			continue
		}
		return tok, nil
	}
}

func (p *Parser) parseDatum(tok Token) (*Datum, error) {
	switch tok.Kind {
	case TokInt:
		return AtomVal(tok.Num), nil
	case TokString:
		return StringVal(tok.Text), nil
	case TokBool:
		return BoolVal(tok.Bool), nil
	case TokSymbol:
		return SymbolVal(tok.Text), nil
	case TokLParen:
		return p.parseList(tok)
	case TokQuote:
		return p.parseAbbrev(tok, "quote")
	case TokQuasiquote:
		return p.parseAbbrev(tok, "quasiquote")
	case TokUnquote:
		return p.parseAbbrev(tok, "unquote")
	case TokUnquoteSplicing:
		return p.parseAbbrev(tok, "unquote-splicing")
	case TokRParen:
		return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected )")
	case TokDot:
		return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected . outside a list")
	default:
		return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected token %q", tok.Text)
	}
}

// parseAbbrev wraps the following datum: 'x reads as (quote x), and
// likewise for ` , ,@.
func (p *Parser) parseAbbrev(tok Token, name string) (*Datum, error) {
	inner, err := p.Next()
	if err == io.EOF {
		return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected end of input after %s", tok.Text)
	}
	if err != nil {
		return nil, err
	}
	return List(SymbolVal(name), inner), nil
}

// parseList reads elements until ), with . introducing an improper tail.
func (p *Parser) parseList(open Token) (*Datum, error) {
	var elems []*Datum
	for {
		tok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokEOF:
			return nil, p.lex.errorAt(open.Line, open.Col, "unclosed list")
		case TokRParen:
			return SliceToList(elems), nil
		case TokDot:
			if len(elems) == 0 {
				return nil, p.lex.errorAt(tok.Line, tok.Col, "unexpected . at start of list")
			}
			tailTok, err := p.nextToken()
			if err != nil {
				return nil, err
			}
			if tailTok.Kind == TokEOF || tailTok.Kind == TokRParen {
				return nil, p.lex.errorAt(tok.Line, tok.Col, "expected datum after . in list")
			}
			tail, err := p.parseDatum(tailTok)
			if err != nil {
				return nil, err
			}
			closeTok, err := p.nextToken()
			if err != nil {
				return nil, err
			}
			if closeTok.Kind != TokRParen {
				return nil, p.lex.errorAt(closeTok.Line, closeTok.Col, "expected ) after dotted tail")
			}
			out := tail
			for i := len(elems) - 1; i >= 0; i-- {
				out = Cons(elems[i], out)
			}
			return out, nil
		default:
			elem, err := p.parseDatum(tok)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
	}
}
