package step

import (
	"fmt"
	"strconv"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokReal
	tokString
	tokEnum
	tokRef
	tokLParen
	tokRParen
	tokComma
	tokSemicolon
	tokEqual
	tokDollar
	tokStar
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokReal:
		return "real"
	case tokString:
		return "string"
	case tokEnum:
		return "enumeration"
	case tokRef:
		return "reference"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	case tokEqual:
		return "'='"
	case tokDollar:
		return "'$'"
	case tokStar:
		return "'*'"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	pos  int
	text string
	num  int64
	real float64
}

// scanner tokenizes the exchange structure byte stream. It only understands
// the subset of ISO 10303-21 lexemes IFC files use.
type scanner struct {
	src []byte
	pos int
}

func (s *scanner) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Offset: pos, Msg: fmt.Sprintf(format, args...)}
}

// skipSpace advances over whitespace and /* */ comments.
func (s *scanner) skipSpace() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			start := s.pos
			s.pos += 2
			for {
				if s.pos+1 >= len(s.src) {
					return s.errorf(start, "unterminated comment")
				}
				if s.src[s.pos] == '*' && s.src[s.pos+1] == '/' {
					s.pos += 2
					break
				}
				s.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) next() (token, error) {
	if err := s.skipSpace(); err != nil {
		return token{}, err
	}
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, pos: s.pos}, nil
	}

	start := s.pos
	c := s.src[s.pos]
	switch {
	case c == '(':
		s.pos++
		return token{kind: tokLParen, pos: start}, nil
	case c == ')':
		s.pos++
		return token{kind: tokRParen, pos: start}, nil
	case c == ',':
		s.pos++
		return token{kind: tokComma, pos: start}, nil
	case c == ';':
		s.pos++
		return token{kind: tokSemicolon, pos: start}, nil
	case c == '=':
		s.pos++
		return token{kind: tokEqual, pos: start}, nil
	case c == '$':
		s.pos++
		return token{kind: tokDollar, pos: start}, nil
	case c == '*':
		s.pos++
		return token{kind: tokStar, pos: start}, nil
	case c == '#':
		return s.scanRef()
	case c == '\'':
		return s.scanString()
	case c == '.':
		return s.scanEnum()
	case c == '+' || c == '-' || (c >= '0' && c <= '9'):
		return s.scanNumber()
	case isIdentStart(c):
		return s.scanIdent()
	default:
		return token{}, s.errorf(start, "unexpected character %q", c)
	}
}

func (s *scanner) scanRef() (token, error) {
	start := s.pos
	s.pos++ // '#'
	digits := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == digits {
		return token{}, s.errorf(start, "instance reference without a number")
	}
	id, err := strconv.ParseInt(string(s.src[digits:s.pos]), 10, 64)
	if err != nil {
		return token{}, s.errorf(start, "invalid instance reference: %v", err)
	}
	return token{kind: tokRef, pos: start, num: id}, nil
}

func (s *scanner) scanString() (token, error) {
	start := s.pos
	s.pos++ // opening quote
	var buf []byte
	for {
		if s.pos >= len(s.src) {
			return token{}, s.errorf(start, "unterminated string")
		}
		c := s.src[s.pos]
		if c == '\'' {
			// '' is an escaped quote
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
				buf = append(buf, '\'')
				s.pos += 2
				continue
			}
			s.pos++
			return token{kind: tokString, pos: start, text: string(buf)}, nil
		}
		buf = append(buf, c)
		s.pos++
	}
}

func (s *scanner) scanEnum() (token, error) {
	start := s.pos
	s.pos++ // opening dot
	lit := s.pos
	for s.pos < len(s.src) && isEnumChar(s.src[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.src) || s.src[s.pos] != '.' {
		return token{}, s.errorf(start, "unterminated enumeration literal")
	}
	text := string(s.src[lit:s.pos])
	s.pos++ // closing dot
	if text == "" {
		return token{}, s.errorf(start, "empty enumeration literal")
	}
	return token{kind: tokEnum, pos: start, text: text}, nil
}

func (s *scanner) scanNumber() (token, error) {
	start := s.pos
	if s.src[s.pos] == '+' || s.src[s.pos] == '-' {
		s.pos++
	}
	isReal := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c >= '0' && c <= '9' {
			s.pos++
			continue
		}
		if c == '.' || c == 'E' || c == 'e' {
			isReal = true
			s.pos++
			if (c == 'E' || c == 'e') && s.pos < len(s.src) &&
				(s.src[s.pos] == '+' || s.src[s.pos] == '-') {
				s.pos++
			}
			continue
		}
		break
	}
	text := string(s.src[start:s.pos])
	if isReal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, s.errorf(start, "invalid real literal %q", text)
		}
		return token{kind: tokReal, pos: start, real: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, s.errorf(start, "invalid integer literal %q", text)
	}
	return token{kind: tokInt, pos: start, num: n}, nil
}

func (s *scanner) scanIdent() (token, error) {
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	return token{kind: tokIdent, pos: start, text: string(s.src[start:s.pos])}, nil
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

// Identifiers cover type names (IFCWALL) and the section keywords, including
// the dashed file markers (ISO-10303-21, END-ISO-10303-21).
func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}

func isEnumChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
