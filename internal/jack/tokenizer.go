package jack

import (
	"strconv"

	"nand2tetris.dev/jackc/internal/diag"
)

// Tokenizer converts Jack source text into a token stream. It exposes a
// lazy, single-token-of-lookahead cursor (Peek/Advance/Position), and is
// restartable only by constructing a new instance.
type Tokenizer struct {
	file string
	src  []byte
	pos  int
	line int

	pending    Token
	hasPending bool
}

// NewTokenizer returns a Tokenizer over src, attributing diagnostics to file.
func NewTokenizer(file string, src []byte) *Tokenizer {
	return &Tokenizer{file: file, src: src, line: 1}
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if !t.hasPending {
		tok, err := t.scan()
		if err != nil {
			return Token{}, err
		}
		t.pending, t.hasPending = tok, true
	}
	return t.pending, nil
}

// Advance consumes and returns the next token.
func (t *Tokenizer) Advance() (Token, error) {
	tok, err := t.Peek()
	if err != nil {
		return Token{}, err
	}
	t.hasPending = false
	return tok, nil
}

// Position returns the current 1-based source line the cursor sits on.
func (t *Tokenizer) Position() int { return t.line }

func (t *Tokenizer) errf(format string, args ...any) error {
	return diag.New(t.file, t.line, diag.Lexical, format, args...)
}

// scan skips whitespace/comments and recognizes exactly one token.
func (t *Tokenizer) scan() (Token, error) {
	if err := t.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	if t.pos >= len(t.src) {
		return Token{Kind: EOFTok, Line: t.line}, nil
	}

	line := t.line
	c := t.src[t.pos]

	switch {
	case c == '"':
		return t.scanString(line)
	case isDigit(c):
		return t.scanInt(line)
	case isIdentStart(c):
		return t.scanIdentOrKeyword(line)
	case isSymbolChar(c):
		t.pos++
		return Token{Kind: SymbolTok, Text: string(c), Line: line}, nil
	default:
		return Token{}, t.errf("unexpected character %q", c)
	}
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for t.pos < len(t.src) {
		c := t.src[t.pos]

		switch {
		case c == '\n':
			t.line++
			t.pos++
		case c == ' ' || c == '\t' || c == '\r':
			t.pos++
		case c == '/' && t.peekAt(1) == '/':
			for t.pos < len(t.src) && t.src[t.pos] != '\n' {
				t.pos++
			}
		case c == '/' && t.peekAt(1) == '*':
			if err := t.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (t *Tokenizer) skipBlockComment() error {
	start := t.line
	t.pos += 2 // consume "/*"
	for {
		if t.pos >= len(t.src) {
			return t.errorAt(start, "unterminated block comment")
		}
		if t.src[t.pos] == '*' && t.peekAt(1) == '/' {
			t.pos += 2
			return nil
		}
		if t.src[t.pos] == '\n' {
			t.line++
		}
		t.pos++
	}
}

func (t *Tokenizer) errorAt(line int, format string, args ...any) error {
	return diag.New(t.file, line, diag.Lexical, format, args...)
}

func (t *Tokenizer) peekAt(offset int) byte {
	if t.pos+offset >= len(t.src) {
		return 0
	}
	return t.src[t.pos+offset]
}

func (t *Tokenizer) scanString(line int) (Token, error) {
	t.pos++ // consume opening quote
	start := t.pos
	for {
		if t.pos >= len(t.src) {
			return Token{}, t.errorAt(line, "unterminated string constant")
		}
		c := t.src[t.pos]
		if c == '\n' {
			return Token{}, t.errorAt(line, "newline in string constant")
		}
		if c == '"' {
			text := string(t.src[start:t.pos])
			t.pos++ // consume closing quote
			return Token{Kind: StringConstTok, Text: text, Line: line}, nil
		}
		t.pos++
	}
}

func (t *Tokenizer) scanInt(line int) (Token, error) {
	start := t.pos
	for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
		t.pos++
	}
	text := string(t.src[start:t.pos])
	n, err := strconv.Atoi(text)
	if err != nil || n > 32767 {
		return Token{}, t.errorAt(line, "integer constant %q out of range [0, 32767]", text)
	}
	return Token{Kind: IntConstTok, Text: text, Int: n, Line: line}, nil
}

func (t *Tokenizer) scanIdentOrKeyword(line int) (Token, error) {
	start := t.pos
	for t.pos < len(t.src) && isIdentPart(t.src[t.pos]) {
		t.pos++
	}
	text := string(t.src[start:t.pos])
	if Keywords[text] {
		return Token{Kind: KeywordTok, Text: text, Line: line}, nil
	}
	return Token{Kind: IdentifierTok, Text: text, Line: line}, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
