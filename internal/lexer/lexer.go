package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/busy-build/busy/internal/charclass"
)

// Lexer tokenizes BUSY source over a byte buffer with an attached source
// name. It is the bottom scanner a hierarchical lexer stacks on top of;
// Lexer itself knows nothing about macro expansion.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
	file         string

	peekBuf []Token // FIFO filled by Peek, drained by Next
}

// New creates a Lexer over input, reporting positions against file.
// Callers should pass input through Normalize first.
func New(input string, file string) *Lexer {
	l := &Lexer{input: input, file: file, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	ch, width := charclass.Decode(l.input[l.readPosition:])
	if width == 0 {
		ch, width = utf8.RuneError, 1
	}
	l.position = l.readPosition
	l.readPosition += width
	l.ch = ch
	l.column++
	if ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := charclass.Decode(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) peekAhead(n int) rune {
	pos := l.readPosition
	for i := 1; i < n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		_, w := charclass.Decode(l.input[pos:])
		if w == 0 {
			w = 1
		}
		pos += w
	}
	if pos >= len(l.input) {
		return 0
	}
	ch, _ := charclass.Decode(l.input[pos:])
	return ch
}

// Next returns the next token, draining the Peek FIFO first.
func (l *Lexer) Next() Token {
	if len(l.peekBuf) > 0 {
		tok := l.peekBuf[0]
		l.peekBuf = l.peekBuf[1:]
		return tok
	}
	return l.scan()
}

// Peek returns the token offset positions ahead (offset >= 1) without
// consuming it, queuing intervening tokens in the FIFO.
func (l *Lexer) Peek(offset int) Token {
	for len(l.peekBuf) < offset {
		l.peekBuf = append(l.peekBuf, l.scan())
	}
	return l.peekBuf[offset-1]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipBlockComment consumes a /* ... */ comment, honoring nesting.
func (l *Lexer) skipBlockComment() {
	depth := 0
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	depth++
	for depth > 0 && l.ch != 0 {
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			depth++
			continue
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			depth--
			continue
		}
		l.readChar()
	}
}

// scan produces the next raw token from the underlying buffer.
func (l *Lexer) scan() Token {
	l.skipWhitespaceAndComments()

	line, column := l.line, l.column

	switch {
	case l.ch == 0:
		return NewToken(EOF, "", line, column, l.file)
	case charclass.IsLetter(l.ch):
		return l.scanIdentOrKeyword(line, column)
	case charclass.IsDigit(l.ch):
		return l.scanNumber(line, column)
	case l.ch == '"':
		return l.scanString(line, column)
	case l.ch == '\'':
		return l.scanQuotedPath(line, column)
	case l.ch == '`' || l.ch == '$':
		return l.scanSymbol(line, column)
	case l.ch == '/' && l.peekChar() == '/':
		return l.scanAbsolutePath(line, column)
	case l.ch == '.' && (l.peekChar() == '/' || (l.peekChar() == '.' && l.peekAhead(2) == '/')):
		return l.scanRelativePath(line, column)
	case l.ch == '.' && l.peekChar() == '.' && isPathBoundary(l.peekAhead(2)):
		return l.scanBareDotPath(line, column, 2)
	case l.ch == '.' && isPathBoundary(l.peekChar()):
		return l.scanBareDotPath(line, column, 1)
	}

	return l.scanOperator(line, column)
}

// isPathBoundary reports whether ch can follow a standalone "." or ".."
// path token: end of input, whitespace, a forbidden filesystem character,
// or a structural delimiter. Anything else (e.g. another '.' or an
// identifier character) means the dots are part of a longer token, such
// as the leading segments of "../sub" or the '.' of a member access.
func isPathBoundary(ch rune) bool {
	if ch == 0 || charclass.IsSpace(ch) || charclass.IsForbiddenFSChar(ch) {
		return true
	}
	switch ch {
	case ',', ';', ')', '(', '{', '}', '[', ']':
		return true
	}
	return false
}

func (l *Lexer) scanIdentOrKeyword(line, column int) Token {
	start := l.position
	for charclass.IsLetter(l.ch) || charclass.IsDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return NewToken(LookupIdent(lit), lit, line, column, l.file)
}

func (l *Lexer) scanNumber(line, column int) Token {
	start := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for charclass.IsHexDigit(l.ch) {
			l.readChar()
		}
		return NewToken(INT, l.input[start:l.position], line, column, l.file)
	}

	for charclass.IsDigit(l.ch) {
		l.readChar()
	}
	isReal := false
	if l.ch == '.' && charclass.IsDigit(l.peekChar()) {
		isReal = true
		l.readChar()
		for charclass.IsDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isReal = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for charclass.IsDigit(l.ch) {
			l.readChar()
		}
	}

	typ := INT
	if isReal {
		typ = REAL
	}
	return NewToken(typ, l.input[start:l.position], line, column, l.file)
}

func (l *Lexer) scanString(line, column int) Token {
	var out strings.Builder
	l.readChar() // skip opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				out.WriteRune('\\')
				out.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar()
	}
	return NewToken(STRING, out.String(), line, column, l.file)
}

// scanSymbol reads a back-tick or $-prefixed symbol literal, keeping the
// leading marker in the literal text.
func (l *Lexer) scanSymbol(line, column int) Token {
	start := l.position
	l.readChar() // consume marker
	for charclass.IsLetter(l.ch) || charclass.IsDigit(l.ch) {
		l.readChar()
	}
	return NewToken(SYMBOL, l.input[start:l.position], line, column, l.file)
}

// scanQuotedPath reads a '…' quoted path literal, which may contain spaces
// and the \' escape.
func (l *Lexer) scanQuotedPath(line, column int) Token {
	var out strings.Builder
	l.readChar() // skip opening quote
	for l.ch != '\'' && l.ch != 0 {
		if l.ch == '\\' && l.peekChar() == '\'' {
			l.readChar()
			out.WriteRune('\'')
			l.readChar()
			continue
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '\'' {
		l.readChar()
	}
	return NewToken(PATH, out.String(), line, column, l.file)
}

func (l *Lexer) scanAbsolutePath(line, column int) Token {
	start := l.position
	l.readChar()
	l.readChar()
	l.scanPathTail()
	return NewToken(PATH, l.input[start:l.position], line, column, l.file)
}

// scanBareDotPath consumes a standalone "." or ".." (n dots, not followed
// by a '/') and emits it as a PATH token denoting the current or parent
// directory.
func (l *Lexer) scanBareDotPath(line, column, n int) Token {
	start := l.position
	for i := 0; i < n; i++ {
		l.readChar()
	}
	return NewToken(PATH, l.input[start:l.position], line, column, l.file)
}

func (l *Lexer) scanRelativePath(line, column int) Token {
	start := l.position
	for l.ch == '.' && l.peekChar() == '.' && l.peekAhead(2) == '/' {
		l.readChar()
		l.readChar()
		l.readChar()
	}
	if l.ch == '.' && l.peekChar() == '/' {
		l.readChar()
		l.readChar()
	}
	l.scanPathTail()
	return NewToken(PATH, l.input[start:l.position], line, column, l.file)
}

// scanPathTail consumes path segment characters after a recognized prefix,
// stopping at whitespace, a delimiter, or a forbidden character.
func (l *Lexer) scanPathTail() {
	for l.ch != 0 && !charclass.IsSpace(l.ch) && !charclass.IsForbiddenFSChar(l.ch) {
		switch l.ch {
		case ',', ';', ')', '(', '{', '}', '[', ']':
			return
		}
		l.readChar()
	}
}

func (l *Lexer) scanOperator(line, column int) Token {
	ch := l.ch
	switch ch {
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(PLUSEQ, "+=", line, column, l.file)
		}
		l.readChar()
		return NewToken(PLUS, "+", line, column, l.file)
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(MINUSEQ, "-=", line, column, l.file)
		}
		l.readChar()
		return NewToken(MINUS, "-", line, column, l.file)
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(STAREQ, "*=", line, column, l.file)
		}
		l.readChar()
		return NewToken(STAR, "*", line, column, l.file)
	case '/':
		l.readChar()
		return NewToken(SLASH, "/", line, column, l.file)
	case '%':
		l.readChar()
		return NewToken(PERCENT, "%", line, column, l.file)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(EQ, "==", line, column, l.file)
		}
		l.readChar()
		return NewToken(ASSIGN, "=", line, column, l.file)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(NEQ, "!=", line, column, l.file)
		}
		l.readChar()
		return NewToken(NOT, "!", line, column, l.file)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(LTE, "<=", line, column, l.file)
		}
		l.readChar()
		return NewToken(LT, "<", line, column, l.file)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(GTE, ">=", line, column, l.file)
		}
		l.readChar()
		return NewToken(GT, ">", line, column, l.file)
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return NewToken(AND, "&&", line, column, l.file)
		}
		l.readChar()
		return NewToken(AMP, "&", line, column, l.file)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return NewToken(OR, "||", line, column, l.file)
		}
		l.readChar()
		return NewToken(ILLEGAL, "|", line, column, l.file)
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return NewToken(DEFINEQ, ":=", line, column, l.file)
		}
		l.readChar()
		return NewToken(COLON, ":", line, column, l.file)
	case '?':
		l.readChar()
		return NewToken(QUESTION, "?", line, column, l.file)
	case '^':
		l.readChar()
		return NewToken(CARET, "^", line, column, l.file)
	case '.':
		l.readChar()
		return NewToken(DOT, ".", line, column, l.file)
	case ',':
		l.readChar()
		return NewToken(COMMA, ",", line, column, l.file)
	case ';':
		l.readChar()
		return NewToken(SEMICOLON, ";", line, column, l.file)
	case '(':
		l.readChar()
		return NewToken(LPAREN, "(", line, column, l.file)
	case ')':
		l.readChar()
		return NewToken(RPAREN, ")", line, column, l.file)
	case '{':
		l.readChar()
		return NewToken(LBRACE, "{", line, column, l.file)
	case '}':
		l.readChar()
		return NewToken(RBRACE, "}", line, column, l.file)
	case '[':
		if l.peekChar() == ']' {
			l.readChar()
			l.readChar()
			return NewToken(LBRACKETRBRACKET, "[]", line, column, l.file)
		}
		l.readChar()
		return NewToken(LBRACKET, "[", line, column, l.file)
	case ']':
		l.readChar()
		return NewToken(RBRACKET, "]", line, column, l.file)
	}

	l.readChar()
	return NewToken(ILLEGAL, string(ch), line, column, l.file)
}
