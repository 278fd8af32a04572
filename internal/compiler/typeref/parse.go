package typeref

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse reads a reference written as "a.b.C" or "a.b.C<x.Y, z.W<q.R>>".
// Trailing "[]" pairs become array dimensions, so "a.B<c.D>[]" keeps its
// argument list. '$' is accepted as part of a name.
func Parse(s string) (Ref, error) {
	p := &parser{src: s}
	p.skipSpace()
	if p.done() {
		return Ref{}, fmt.Errorf("empty type reference")
	}
	ref, err := p.ref()
	if err != nil {
		return Ref{}, err
	}
	p.skipSpace()
	if !p.done() {
		return Ref{}, p.unexpected()
	}
	return ref, nil
}

// MustParse is Parse for literals known to be well formed
func MustParse(s string) Ref {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

// peek returns the rune at the current position and its width in bytes
func (p *parser) peek() (rune, int) {
	return utf8.DecodeRuneInString(p.src[p.pos:])
}

func (p *parser) unexpected() error {
	c, _ := p.peek()
	return fmt.Errorf("unexpected %q at offset %d in %q", c, p.pos, p.src)
}

func (p *parser) skipSpace() {
	for !p.done() {
		c, size := p.peek()
		if !unicode.IsSpace(c) {
			return
		}
		p.pos += size
	}
}

func (p *parser) ref() (Ref, error) {
	name := p.name()
	if name == "" {
		if p.done() {
			return Ref{}, fmt.Errorf("missing type name at end of %q", p.src)
		}
		return Ref{}, fmt.Errorf("expected type name at offset %d in %q", p.pos, p.src)
	}
	r := Ref{Name: name}

	p.skipSpace()
	if p.done() || p.src[p.pos] != '<' {
		r.Dims = p.dims()
		return r, nil
	}
	p.pos++

	for {
		p.skipSpace()
		arg, err := p.ref()
		if err != nil {
			return Ref{}, err
		}
		r.Args = append(r.Args, arg)
		p.skipSpace()
		if p.done() {
			return Ref{}, fmt.Errorf("unterminated type arguments in %q", p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			r.Dims = p.dims()
			return r, nil
		default:
			return Ref{}, p.unexpected()
		}
	}
}

func (p *parser) name() string {
	start := p.pos
	for !p.done() {
		c, size := p.peek()
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("._$?", c) {
			p.pos += size
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// dims consumes "[]" pairs and returns how many there were
func (p *parser) dims() int {
	n := 0
	for strings.HasPrefix(p.src[p.pos:], "[]") {
		p.pos += 2
		n++
	}
	return n
}
