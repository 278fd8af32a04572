package beandef

import (
	"fmt"

	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// InjectionKind discriminates the injection point variants
type InjectionKind int

const (
	// KindField injects a field directly
	KindField InjectionKind = iota + 1
	// KindFieldValue injects a configuration value into a field
	KindFieldValue
	// KindSetter injects through a setter paired with a field
	KindSetter
	// KindSetterValue injects a configuration value through a setter paired with a field
	KindSetterValue
	// KindValueSetter injects a configuration value through a setter with no backing field
	KindValueSetter
	// KindMethod invokes a method with injected arguments
	KindMethod
	// KindPostConstruct invokes a method after construction and injection
	KindPostConstruct
	// KindPreDestroy invokes a method before the bean is discarded
	KindPreDestroy
)

var kindNames = map[InjectionKind]string{
	KindField:         "field",
	KindFieldValue:    "field-value",
	KindSetter:        "setter",
	KindSetterValue:   "setter-value",
	KindValueSetter:   "value-setter",
	KindMethod:        "method",
	KindPostConstruct: "post-construct",
	KindPreDestroy:    "pre-destroy",
}

// String returns the kind name used in facts and artifact documents
func (k InjectionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseInjectionKind resolves a kind name. "setter-with-field" is accepted
// as an alias of "setter".
func ParseInjectionKind(name string) (InjectionKind, bool) {
	if name == "setter-with-field" {
		return KindSetter, true
	}
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// AllowsOptional reports whether injection of this kind may be skipped
// when no provider exists
func (k InjectionKind) AllowsOptional() bool {
	switch k {
	case KindFieldValue, KindSetterValue, KindValueSetter:
		return true
	default:
		return false
	}
}

func (k InjectionKind) family() specFamily {
	switch k {
	case KindField, KindFieldValue:
		return familyField
	case KindSetter, KindSetterValue, KindValueSetter:
		return familySetter
	case KindMethod, KindPostConstruct, KindPreDestroy:
		return familyMethod
	default:
		return familyUnknown
	}
}

type specFamily int

const (
	familyUnknown specFamily = iota
	familyField
	familySetter
	familyMethod
)

func (f specFamily) String() string {
	switch f {
	case familyField:
		return "field spec"
	case familySetter:
		return "setter spec"
	case familyMethod:
		return "method spec"
	default:
		return "unknown spec"
	}
}

// InjectionSpec is what the analyzer supplies for one injection point.
// It is one of FieldSpec, SetterSpec or MethodSpec.
type InjectionSpec interface {
	family() specFamily
}

// FieldSpec describes a field injection point
type FieldSpec struct {
	DeclaringType      typeref.Ref
	Qualifier          typeref.Ref
	RequiresReflection bool
	FieldType          typeref.Ref
	FieldName          string
	Generics           typeref.Generics
	Optional           bool
}

func (FieldSpec) family() specFamily { return familyField }

// SetterSpec describes a setter injection point. FieldName is empty for
// KindValueSetter.
type SetterSpec struct {
	DeclaringType      typeref.Ref
	Qualifier          typeref.Ref
	RequiresReflection bool
	ValueType          typeref.Ref
	FieldName          string
	SetterName         string
	Generics           typeref.Generics
	Optional           bool
}

func (SetterSpec) family() specFamily { return familySetter }

// MethodSpec describes a method, post-construct or pre-destroy injection
// point. It has no optional flag: failures there always propagate.
type MethodSpec struct {
	DeclaringType      typeref.Ref
	RequiresReflection bool
	ReturnType         typeref.Ref
	MethodName         string
	Signature          Signature
}

func (MethodSpec) family() specFamily { return familyMethod }

// InjectionPoint is one recorded injection point. Exactly one of Field,
// Setter or Method is set, according to Kind.
type InjectionPoint struct {
	Kind               InjectionKind
	DeclaringType      typeref.Ref
	RequiresReflection bool
	// Name is the field name for field kinds, the setter name for setter
	// kinds and the method name for method kinds
	Name   string
	Field  *FieldInjection
	Setter *SetterInjection
	Method *MethodInjection
}

// FieldInjection holds the field-specific part of an injection point
type FieldInjection struct {
	Type      typeref.Ref
	Qualifier typeref.Ref
	Generics  typeref.Generics
	Optional  bool
}

// SetterInjection holds the setter-specific part of an injection point
type SetterInjection struct {
	ValueType typeref.Ref
	Qualifier typeref.Ref
	FieldName string
	Generics  typeref.Generics
	Optional  bool
}

// MethodInjection holds the method-specific part of an injection point
type MethodInjection struct {
	ReturnType typeref.Ref
	Parameters []Parameter
}

// IsOptional reports whether the container may skip this injection point
// when no provider exists. Always false for method kinds.
func (ip InjectionPoint) IsOptional() bool {
	switch {
	case ip.Field != nil:
		return ip.Field.Optional
	case ip.Setter != nil:
		return ip.Setter.Optional
	default:
		return false
	}
}

// Generics returns the generic-argument map of a field or setter point
func (ip InjectionPoint) Generics() typeref.Generics {
	switch {
	case ip.Field != nil:
		return ip.Field.Generics.Clone()
	case ip.Setter != nil:
		return ip.Setter.Generics.Clone()
	default:
		return nil
	}
}

// Subject names the injection point for diagnostics
func (ip InjectionPoint) Subject() string {
	return subjectOf(ip.Kind, ip.DeclaringType, ip.Name)
}

func (ip InjectionPoint) clone() InjectionPoint {
	out := ip
	out.DeclaringType = ip.DeclaringType.Clone()
	if ip.Field != nil {
		f := *ip.Field
		f.Type = f.Type.Clone()
		f.Qualifier = f.Qualifier.Clone()
		f.Generics = f.Generics.Clone()
		out.Field = &f
	}
	if ip.Setter != nil {
		s := *ip.Setter
		s.ValueType = s.ValueType.Clone()
		s.Qualifier = s.Qualifier.Clone()
		s.Generics = s.Generics.Clone()
		out.Setter = &s
	}
	if ip.Method != nil {
		m := *ip.Method
		m.ReturnType = m.ReturnType.Clone()
		m.Parameters = cloneParameters(m.Parameters)
		out.Method = &m
	}
	return out
}

func subjectOf(kind InjectionKind, declaring typeref.Ref, name string) string {
	owner := declaring.String()
	if owner == "" {
		owner = "?"
	}
	switch kind.family() {
	case familyField:
		return fmt.Sprintf("%s %s.%s", kind, owner, name)
	default:
		return fmt.Sprintf("%s %s#%s", kind, owner, name)
	}
}
