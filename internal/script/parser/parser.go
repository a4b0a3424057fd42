package parser

import (
	"fmt"
	"strings"
)

// Line is one parsed command line.
type Line struct {
	Command string
	Args    []string
}

// SyntaxError describes a malformed line.
type SyntaxError struct {
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d: %s", e.Column, e.Msg)
}

// ParseLine parses a script line. Blank lines and comment lines yield a nil
// Line and a nil error.
func ParseLine(line string) (*Line, error) {
	s := strings.TrimSpace(line)
	if s == "" || s[0] == '#' {
		return nil, nil
	}

	p := &lineParser{src: s}
	name := p.identifier()
	if name == "" {
		return nil, p.errorf("expected command name")
	}

	out := &Line{Command: name, Args: []string{}}
	if p.pos < len(p.src) && !isSpace(p.peek()) && !isArgStart(p.peek()) {
		return nil, p.errorf("unexpected %q after command name", p.peek())
	}

	for {
		p.skipSpace()
		if p.done() || p.peek() == '#' {
			return out, nil
		}
		arg, err := p.argument()
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, arg)
	}
}

type lineParser struct {
	src string
	pos int
}

func (p *lineParser) done() bool { return p.pos >= len(p.src) }

func (p *lineParser) peek() byte { return p.src[p.pos] }

func (p *lineParser) errorf(format string, args ...any) error {
	return &SyntaxError{Column: p.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func (p *lineParser) skipSpace() {
	for !p.done() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *lineParser) identifier() string {
	start := p.pos
	for !p.done() {
		c := p.peek()
		if c == '_' || isLetter(c) || (p.pos > start && isDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *lineParser) argument() (string, error) {
	if c := p.peek(); c == '"' || c == '\'' {
		return p.quoted(c)
	}
	start := p.pos
	for !p.done() {
		c := p.peek()
		if isSpace(c) || c == '#' || c == '"' || c == '\'' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos], nil
}

// quoted reads a string delimited by q. A backslash before q or before
// another backslash yields that character; other backslash pairs are kept
// as written. A doubled q is a literal q.
func (p *lineParser) quoted(q byte) (string, error) {
	open := p.pos
	p.pos++
	var b strings.Builder
	for !p.done() {
		c := p.peek()
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			next := p.src[p.pos+1]
			if next != q && next != '\\' {
				b.WriteByte(c)
			}
			b.WriteByte(next)
			p.pos += 2
		case c == q:
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == q {
				b.WriteByte(q)
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = open
	return "", p.errorf("unterminated %c-quoted string", q)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isArgStart(c byte) bool {
	return c == '#' || c == '"' || c == '\''
}
