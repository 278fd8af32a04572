// Package typeref provides symbolic type references used throughout the bean
// compiler. A reference names a type by its fully-qualified name and, for
// parameterized types, carries its bound type arguments. References are plain
// data: the compiler runs before any runtime type exists.
package typeref

import (
	"sort"
	"strings"
)

// Kind distinguishes the two shapes a reference can take
type Kind int

const (
	// KindNamed is a reference to a type by name only
	KindNamed Kind = iota
	// KindGeneric is a reference to a parameterized type with bound arguments
	KindGeneric
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Ref is a symbolic type reference. The zero Ref means "no type".
// Dims counts array dimensions and applies to the whole parameterized type.
type Ref struct {
	Name string `json:"name" yaml:"name"`
	Args []Ref  `json:"args,omitempty" yaml:"args,omitempty"`
	Dims int    `json:"dims,omitempty" yaml:"dims,omitempty"`
}

// Named returns a reference to the named type
func Named(name string) Ref {
	return Ref{Name: name}
}

// Generic returns a reference to a parameterized type
func Generic(name string, args ...Ref) Ref {
	r := Ref{Name: name}
	if len(args) > 0 {
		r.Args = make([]Ref, len(args))
		for i, a := range args {
			r.Args[i] = a.Clone()
		}
	}
	return r
}

// Kind reports whether the reference carries type arguments
func (r Ref) Kind() Kind {
	if len(r.Args) > 0 {
		return KindGeneric
	}
	return KindNamed
}

// IsZero reports whether the reference is absent
func (r Ref) IsZero() bool {
	return r.Name == "" && len(r.Args) == 0 && r.Dims == 0
}

// Equal reports structural equality
func (r Ref) Equal(other Ref) bool {
	if r.Name != other.Name || r.Dims != other.Dims || len(r.Args) != len(other.Args) {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (r Ref) Clone() Ref {
	out := Ref{Name: r.Name, Dims: r.Dims}
	if len(r.Args) > 0 {
		out.Args = make([]Ref, len(r.Args))
		for i, a := range r.Args {
			out.Args[i] = a.Clone()
		}
	}
	return out
}

// PackageName returns everything before the last dot of the raw name
func (r Ref) PackageName() string {
	if i := strings.LastIndex(r.Name, "."); i >= 0 {
		return r.Name[:i]
	}
	return ""
}

// SimpleName returns the last segment of the raw name
func (r Ref) SimpleName() string {
	if i := strings.LastIndex(r.Name, "."); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// String renders the reference as "a.b.C<x.Y, z.W>[]"
func (r Ref) String() string {
	if r.Kind() == KindNamed && r.Dims == 0 {
		return r.Name
	}
	var b strings.Builder
	r.write(&b)
	return b.String()
}

func (r Ref) write(b *strings.Builder) {
	b.WriteString(r.Name)
	if len(r.Args) > 0 {
		b.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		b.WriteByte('>')
	}
	for i := 0; i < r.Dims; i++ {
		b.WriteString("[]")
	}
}

// Generics maps type-parameter names to their bound references.
// Order of insertion carries no meaning.
type Generics map[string]Ref

// Clone returns a deep copy. A nil map clones to nil.
func (g Generics) Clone() Generics {
	if g == nil {
		return nil
	}
	out := make(Generics, len(g))
	for k, v := range g {
		out[k] = v.Clone()
	}
	return out
}

// Equal compares two generic maps by key and structural reference equality.
// A nil map equals an empty one.
func (g Generics) Equal(other Generics) bool {
	if len(g) != len(other) {
		return false
	}
	for k, v := range g {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// Keys returns the type-parameter names in sorted order
func (g Generics) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
