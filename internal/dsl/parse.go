package dsl

import (
	"strings"
	"unicode"
)

// The script grammar is one call per line:
//
//	PrimitiveName(arg, arg, ...)
//
// Arguments are double- or single-quoted strings, bare numbers, bare
// words (treated as strings), lists [a, b, ...], or (code,label) pairs.
// Blank lines and lines starting with # are ignored by the runner.

type litKind int

const (
	litString litKind = iota
	litNumber
	litBareword
	litList
	litPair
)

// literal is one parsed argument before decoding into a typed command.
type literal struct {
	kind  litKind
	text  string
	items []literal
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) eof() bool {
	s.skipSpace()
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	s.skipSpace()
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *scanner) expect(c byte) *Error {
	if s.peek() != c {
		return parseErrorf("expected %q at position %d", string(c), s.pos)
	}
	s.pos++
	return nil
}

func (s *scanner) ident() (string, *Error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) {
		r := rune(s.src[s.pos])
		if unicode.IsLetter(r) || r == '_' || (s.pos > start && unicode.IsDigit(r)) {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return "", parseErrorf("expected identifier at position %d", start)
	}
	return s.src[start:s.pos], nil
}

func (s *scanner) quotedString(quote byte) (string, *Error) {
	s.pos++ // opening quote
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '\\':
			if s.pos+1 >= len(s.src) {
				return "", parseErrorf("dangling escape in string")
			}
			next := s.src[s.pos+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(next)
			}
			s.pos += 2
		case quote:
			s.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", parseErrorf("unterminated string")
}

func (s *scanner) number() (string, *Error) {
	start := s.pos
	if s.src[s.pos] == '-' {
		s.pos++
	}
	digits := 0
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
		digits++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
			digits++
		}
	}
	if digits == 0 {
		return "", parseErrorf("malformed number at position %d", start)
	}
	return s.src[start:s.pos], nil
}

func (s *scanner) argument() (literal, *Error) {
	switch c := s.peek(); {
	case c == '"' || c == '\'':
		s.skipSpace()
		text, err := s.quotedString(c)
		if err != nil {
			return literal{}, err
		}
		return literal{kind: litString, text: text}, nil

	case c == '-' || (c >= '0' && c <= '9'):
		s.skipSpace()
		text, err := s.number()
		if err != nil {
			return literal{}, err
		}
		return literal{kind: litNumber, text: text}, nil

	case c == '[':
		s.pos++
		items, err := s.sequence(']')
		if err != nil {
			return literal{}, err
		}
		return literal{kind: litList, items: items}, nil

	case c == '(':
		s.pos++
		items, err := s.sequence(')')
		if err != nil {
			return literal{}, err
		}
		if len(items) != 2 {
			return literal{}, parseErrorf("pair must have exactly 2 elements, got %d", len(items))
		}
		return literal{kind: litPair, items: items}, nil

	default:
		word, err := s.ident()
		if err != nil {
			return literal{}, err
		}
		return literal{kind: litBareword, text: word}, nil
	}
}

// sequence parses comma-separated arguments up to the closing delimiter.
func (s *scanner) sequence(close byte) ([]literal, *Error) {
	var items []literal
	if s.peek() == close {
		s.pos++
		return items, nil
	}
	for {
		item, err := s.argument()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		switch s.peek() {
		case ',':
			s.pos++
		case close:
			s.pos++
			return items, nil
		default:
			return nil, parseErrorf("expected %q or %q at position %d", ",", string(close), s.pos)
		}
	}
}

// ParseLine parses one script line into a typed command.
//
// A malformed line or an unknown primitive name returns a recoverable
// error; a known primitive with arguments of the wrong number or type
// returns a fatal contract error, since the script generator promised an
// exact arity it did not deliver.
func ParseLine(line string) (Command, *Error) {
	s := &scanner{src: line}
	name, err := s.ident()
	if err != nil {
		return nil, err
	}
	if err := s.expect('('); err != nil {
		return nil, err
	}
	args, err := s.sequence(')')
	if err != nil {
		return nil, err
	}
	if !s.eof() {
		return nil, parseErrorf("trailing input after call at position %d", s.pos)
	}
	return decode(name, args)
}
