package rhema

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenKind int

const (
	TokEOF             TokenKind = iota
	TokSymbol
	TokInt
	TokString
	TokBool
	TokLParen
	TokRParen
	TokDot
	TokQuote
	TokQuasiquote
	TokUnquote
	TokUnquoteSplicing
	TokWhitespace
	TokComment
)

type Token struct {
	Kind TokenKind
	Text string
	Num  any  // int64, or *big.Int past the int64 range
	Bool bool
	Line int // 1-based
	Col  int // 1-based, in runes
}

// SourceError is a lex or parse failure pinned to a source location. The
// context block shows up to three preceding lines, the failing line, and
// a caret under the failing column.
type SourceError struct {
	File    string
	Line    int
	Col     int
	Message string
	Context string
}

func (e *SourceError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s\n%s", e.File, e.Line, e.Col, e.Message, e.Context)
}

// Lexer converts source text into a token stream. Whitespace and comment
// tokens are produced like any other; filtering them is the parser's job.
type Lexer struct {
	file  string
	input []rune
	pos   int
	line  int
	col   int
	lines []string
}

func NewLexer(file, input string) *Lexer {
	return &Lexer{
		file:  file,
		input: []rune(input),
		line:  1,
		col:   1,
		lines: strings.Split(input, "\n"),
	}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos], true
}

func (l *Lexer) advance() rune {
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// errorAt builds a SourceError with the context block for a location.
func (l *Lexer) errorAt(line, col int, format string, args ...any) error {
	var ctx strings.Builder
	first := line - 3
	if first < 1 {
		first = 1
	}
	for i := first; i <= line && i <= len(l.lines); i++ {
		fmt.Fprintf(&ctx, "%4d | %s\n", i, l.lines[i-1])
	}
	ctx.WriteString(strings.Repeat(" ", 7+col-1))
	ctx.WriteString("^")
	return &SourceError{
		File:    l.file,
		Line:    line,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
		Context: ctx.String(),
	}
}

// Next returns the next token, or TokEOF at end of input.
func (l *Lexer) Next() (Token, error) {
	ch, ok := l.peek()
	if !ok {
		return Token{Kind: TokEOF, Line: l.line, Col: l.col}, nil
	}
	line, col := l.line, l.col

	switch {
	case unicode.IsSpace(ch):
		var sb strings.Builder
		for {
			ch, ok := l.peek()
			if !ok || !unicode.IsSpace(ch) {
				break
			}
			sb.WriteRune(l.advance())
		}
		return Token{Kind: TokWhitespace, Text: sb.String(), Line: line, Col: col}, nil

	case ch == ';':
		var sb strings.Builder
		for {
			ch, ok := l.peek()
			if !ok || ch == '\n' {
				break
			}
			sb.WriteRune(l.advance())
		}
		return Token{Kind: TokComment, Text: sb.String(), Line: line, Col: col}, nil

	case ch == '(':
		l.advance()
		return Token{Kind: TokLParen, Text: "(", Line: line, Col: col}, nil

	case ch == ')':
		l.advance()
		return Token{Kind: TokRParen, Text: ")", Line: line, Col: col}, nil

	case ch == '\'':
		l.advance()
		return Token{Kind: TokQuote, Text: "'", Line: line, Col: col}, nil

	case ch == '`':
		l.advance()
		return Token{Kind: TokQuasiquote, Text: "`", Line: line, Col: col}, nil

	case ch == ',':
		l.advance()
		if next, ok := l.peek(); ok && next == '@' {
			l.advance()
			return Token{Kind: TokUnquoteSplicing, Text: ",@", Line: line, Col: col}, nil
		}
		return Token{Kind: TokUnquote, Text: ",", Line: line, Col: col}, nil

	case ch == '"':
		return l.lexString(line, col)

	case ch == '#':
		l.advance()
		next, ok := l.peek()
		if !ok {
			return Token{}, l.errorAt(line, col, "unexpected end of input after #")
		}
		switch next {
		case 't', 'T':
			l.advance()
			return Token{Kind: TokBool, Text: "#" + string(next), Bool: true, Line: line, Col: col}, nil
		case 'f', 'F':
			l.advance()
			return Token{Kind: TokBool, Text: "#" + string(next), Bool: false, Line: line, Col: col}, nil
		default:
			return Token{}, l.errorAt(line, col, "expected t or f after #, got %q", string(next))
		}

	case isSymbolStart(ch) || unicode.IsDigit(ch) || ch == '.':
		return l.lexAtom(line, col)

	default:
		return Token{}, l.errorAt(line, col, "unexpected character %q", string(ch))
	}
}

func (l *Lexer) lexString(line, col int) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		ch, ok := l.peek()
		if !ok {
			return Token{}, l.errorAt(line, col, "unterminated string")
		}
		l.advance()
		switch ch {
		case '"':
			return Token{Kind: TokString, Text: sb.String(), Line: line, Col: col}, nil
		case '\\':
			esc, ok := l.peek()
			if !ok {
				return Token{}, l.errorAt(line, col, "unexpected end of input in string escape")
			}
			l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			default:
				return Token{}, l.errorAt(line, col, "unknown escape sequence \\%s", string(esc))
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

// lexAtom scans a maximal run of symbol-continue characters and
// classifies it as a dot, an integer, or a symbol.
func (l *Lexer) lexAtom(line, col int) (Token, error) {
	var sb strings.Builder
	for {
		ch, ok := l.peek()
		if !ok || !isSymbolCont(ch) {
			break
		}
		sb.WriteRune(l.advance())
	}
	text := sb.String()

	if text == "." {
		return Token{Kind: TokDot, Text: text, Line: line, Col: col}, nil
	}
	if isInteger(text) {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Token{Kind: TokInt, Text: text, Num: n, Line: line, Col: col}, nil
		}
		// past int64: fall back to a big integer
		z, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return Token{}, l.errorAt(line, col, "malformed number %q", text)
		}
		return Token{Kind: TokInt, Text: text, Num: z, Line: line, Col: col}, nil
	}
	first, _ := utf8.DecodeRuneInString(text)
	if isSymbolStart(first) {
		return Token{Kind: TokSymbol, Text: text, Line: line, Col: col}, nil
	}
	return Token{}, l.errorAt(line, col, "malformed token %q", text)
}

func isSymbolStart(ch rune) bool {
	return unicode.IsLetter(ch) || strings.ContainsRune("!$%&+-*/:<=>?^_~", ch)
}

func isSymbolCont(ch rune) bool {
	return isSymbolStart(ch) || unicode.IsDigit(ch) || ch == '.' || ch == '@'
}

func isInteger(text string) bool {
	body := text
	if strings.HasPrefix(body, "-") {
		body = body[1:]
	}
	if body == "" {
		return false
	}
	for _, ch := range body {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}
