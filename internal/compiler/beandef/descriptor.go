// Package beandef builds bean artifact descriptors: the static, validated
// description of a bean that a reflection-free container instantiates,
// populates and invokes at run time.
//
// A Builder accepts declarations about one declared type in the order the
// analyzer discovers them and seals them into an immutable Descriptor.
// Builders are single-writer objects; distinct builders share no state and
// may be driven in parallel.
package beandef

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// ProxySuffix is appended to the simple name of generated intercepted types
const ProxySuffix = "$Intercepted"

// Parameter is one constructor or method parameter
type Parameter struct {
	Name      string
	Type      typeref.Ref
	Qualifier typeref.Ref
	Generics  typeref.Generics
}

func cloneParameters(in []Parameter) []Parameter {
	if in == nil {
		return nil
	}
	out := make([]Parameter, len(in))
	for i, p := range in {
		out[i] = Parameter{
			Name:      p.Name,
			Type:      p.Type.Clone(),
			Qualifier: p.Qualifier.Clone(),
			Generics:  p.Generics.Clone(),
		}
	}
	return out
}

// Constructor is the recorded constructor signature
type Constructor struct {
	DeclaringType typeref.Ref
	Parameters    []Parameter
}

func (c *Constructor) clone() *Constructor {
	if c == nil {
		return nil
	}
	return &Constructor{
		DeclaringType: c.DeclaringType.Clone(),
		Parameters:    cloneParameters(c.Parameters),
	}
}

// SuperKind tells what a descriptor's supertype reference points at
type SuperKind int

const (
	// SuperNone means the descriptor delegates to nothing
	SuperNone SuperKind = iota
	// SuperDefinition delegates to a named ancestor artifact
	SuperDefinition
	// SuperFactory delegates to a named factory bean
	SuperFactory
)

// String returns the kind name
func (k SuperKind) String() string {
	switch k {
	case SuperDefinition:
		return "definition"
	case SuperFactory:
		return "factory"
	default:
		return "none"
	}
}

// SuperType is the optional supertype-or-factory reference
type SuperType struct {
	Kind SuperKind
	Name string
}

// MethodKey identifies an executable method by declaring type, name and
// parameter types
type MethodKey string

// KeyOf builds the identity of a method
func KeyOf(declaring typeref.Ref, name string, paramTypes ...typeref.Ref) MethodKey {
	var b strings.Builder
	b.WriteString(declaring.String())
	b.WriteByte('#')
	b.WriteString(name)
	b.WriteByte('(')
	for i, t := range paramTypes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	return MethodKey(b.String())
}

// MethodHandle correlates an executable method with its entry in the
// descriptor's method table
type MethodHandle struct {
	Index int
	Name  string
}

// ExecutableMethodSpec describes a method exposed for invocation without
// reflection
type ExecutableMethodSpec struct {
	DeclaringType typeref.Ref
	ReturnType    typeref.Ref
	// GenericReturnType is the resolved generic return type; it defaults to
	// ReturnType when absent
	GenericReturnType typeref.Ref
	ReturnGenerics    typeref.Generics
	MethodName        string
	Signature         Signature
	Annotations       AnnotationMetadata
}

// Key returns the identity of the described method
func (s ExecutableMethodSpec) Key() MethodKey {
	types := make([]typeref.Ref, len(s.Signature.ArgumentTypes))
	for i, e := range s.Signature.ArgumentTypes {
		types[i] = e.Value
	}
	return KeyOf(s.DeclaringType, s.MethodName, types...)
}

// ExecutableMethod is a recorded executable method
type ExecutableMethod struct {
	Handle            MethodHandle
	DeclaringType     typeref.Ref
	ReturnType        typeref.Ref
	GenericReturnType typeref.Ref
	ReturnGenerics    typeref.Generics
	Name              string
	Parameters        []Parameter
	Annotations       AnnotationMetadata
}

// Key returns the identity of the method
func (m ExecutableMethod) Key() MethodKey {
	types := make([]typeref.Ref, len(m.Parameters))
	for i, p := range m.Parameters {
		types[i] = p.Type
	}
	return KeyOf(m.DeclaringType, m.Name, types...)
}

func (m ExecutableMethod) clone() ExecutableMethod {
	out := m
	out.DeclaringType = m.DeclaringType.Clone()
	out.ReturnType = m.ReturnType.Clone()
	out.GenericReturnType = m.GenericReturnType.Clone()
	out.ReturnGenerics = m.ReturnGenerics.Clone()
	out.Parameters = cloneParameters(m.Parameters)
	return out
}

// TargetKind tells whether a configuration builder is held by a field or
// returned by a method
type TargetKind int

const (
	// TargetField is a builder held in a declared field
	TargetField TargetKind = iota + 1
	// TargetMethod is a builder returned by a declared method
	TargetMethod
)

// String returns the target kind name
func (k TargetKind) String() string {
	switch k {
	case TargetField:
		return "field"
	case TargetMethod:
		return "method"
	default:
		return "unknown"
	}
}

// BuilderTarget is the member of the bean a configuration builder is bound to
type BuilderTarget struct {
	Kind TargetKind
	Name string
}

// FieldTarget binds a configuration builder to a field
func FieldTarget(name string) BuilderTarget {
	return BuilderTarget{Kind: TargetField, Name: name}
}

// MethodTarget binds a configuration builder to a method
func MethodTarget(name string) BuilderTarget {
	return BuilderTarget{Kind: TargetMethod, Name: name}
}

func (t BuilderTarget) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

// MethodForm is the call shape of a configuration builder method
type MethodForm int

const (
	// FormValue calls the method with a single converted value
	FormValue MethodForm = iota
	// FormDuration calls the method with a (value, unit) pair
	FormDuration
)

// String returns the form name
func (f MethodForm) String() string {
	if f == FormDuration {
		return "duration"
	}
	return "value"
}

// BuilderMethod is one builder call of a configuration builder binding
type BuilderMethod struct {
	Prefix       string
	ConfigPrefix string
	ReturnType   typeref.Ref
	MethodName   string
	ParamType    typeref.Ref
	Generics     typeref.Generics
	Form         MethodForm
}

// ConfigurationPath returns the configuration key the method reads
func (m BuilderMethod) ConfigurationPath() string {
	name := strings.TrimPrefix(m.MethodName, m.Prefix)
	if name == "" {
		name = m.MethodName
	}
	if name == "" {
		return m.ConfigPrefix
	}
	name = strings.ToLower(name[:1]) + name[1:]
	return m.ConfigPrefix + name
}

// ConfigBuilder binds a field or method of the bean to a builder type
type ConfigBuilder struct {
	Type        typeref.Ref
	Target      BuilderTarget
	Annotations AnnotationMetadata
	Methods     []BuilderMethod
}

func (c ConfigBuilder) clone() ConfigBuilder {
	out := c
	out.Type = c.Type.Clone()
	if c.Methods != nil {
		out.Methods = make([]BuilderMethod, len(c.Methods))
		for i, m := range c.Methods {
			m.ReturnType = m.ReturnType.Clone()
			m.ParamType = m.ParamType.Clone()
			m.Generics = m.Generics.Clone()
			out.Methods[i] = m
		}
	}
	return out
}

// Descriptor is a bean artifact descriptor. It is mutated only by its
// Builder and is immutable once sealed; every accessor returns a copy.
type Descriptor struct {
	beanType                 typeref.Ref
	providedType             typeref.Ref
	proxy                    bool
	singleton                bool
	iface                    bool
	validated                bool
	requiresMethodProcessing bool
	annotations              AnnotationMetadata

	superType          SuperType
	markers            []typeref.Ref
	constructor        *Constructor
	proxiedConstructor *Constructor
	injectionPoints    []InjectionPoint
	executables        []ExecutableMethod
	executableIndex    map[MethodKey]int
	configBuilders     []ConfigBuilder
	sealed             bool
}

// BeanTypeName returns the fully-qualified name of the bean type. For a
// proxy descriptor this is the generated intercepted type.
func (d *Descriptor) BeanTypeName() string {
	if d.proxy {
		return d.beanType.Name + ProxySuffix
	}
	return d.beanType.Name
}

// BeanType returns the declared bean type
func (d *Descriptor) BeanType() typeref.Ref {
	return d.beanType.Clone()
}

// ProvidedType returns the type the bean provides. It equals the bean type
// unless a factory produces a different one.
func (d *Descriptor) ProvidedType() typeref.Ref {
	return d.providedType.Clone()
}

// PackageName returns the package of the bean type
func (d *Descriptor) PackageName() string {
	return d.beanType.PackageName()
}

// SimpleName returns the short name of the bean type
func (d *Descriptor) SimpleName() string {
	if d.proxy {
		return d.beanType.SimpleName() + ProxySuffix
	}
	return d.beanType.SimpleName()
}

// DefinitionName returns the name of the generated definition artifact
func (d *Descriptor) DefinitionName() string {
	name := "$" + d.SimpleName() + "Definition"
	if pkg := d.PackageName(); pkg != "" {
		return pkg + "." + name
	}
	return name
}

// IsProxy reports whether the descriptor describes a generated intercepted type
func (d *Descriptor) IsProxy() bool { return d.proxy }

// IsInterface reports whether the provided type is an interface
func (d *Descriptor) IsInterface() bool { return d.iface }

// IsSingleton reports whether the bean is a singleton
func (d *Descriptor) IsSingleton() bool { return d.singleton }

// IsValidated reports whether the bean is subject to validation
func (d *Descriptor) IsValidated() bool { return d.validated }

// RequiresMethodProcessing reports whether executable methods are handed to
// method processors when the container starts
func (d *Descriptor) RequiresMethodProcessing() bool { return d.requiresMethodProcessing }

// IsSealed reports whether the descriptor has been sealed
func (d *Descriptor) IsSealed() bool { return d.sealed }

// AnnotationMetadata returns the bean's annotation metadata
func (d *Descriptor) AnnotationMetadata() AnnotationMetadata { return d.annotations }

// SuperType returns the supertype-or-factory reference
func (d *Descriptor) SuperType() SuperType { return d.superType }

// MarkerInterfaces returns the additional interfaces the artifact implements
func (d *Descriptor) MarkerInterfaces() []typeref.Ref {
	out := make([]typeref.Ref, len(d.markers))
	for i, m := range d.markers {
		out[i] = m.Clone()
	}
	return out
}

// Constructor returns the primary constructor, or nil when none was recorded
func (d *Descriptor) Constructor() *Constructor {
	return d.constructor.clone()
}

// ProxiedConstructor returns the proxied parent constructor, or nil
func (d *Descriptor) ProxiedConstructor() *Constructor {
	return d.proxiedConstructor.clone()
}

// InjectionPoints returns the injection points in declaration order
func (d *Descriptor) InjectionPoints() []InjectionPoint {
	out := make([]InjectionPoint, len(d.injectionPoints))
	for i, ip := range d.injectionPoints {
		out[i] = ip.clone()
	}
	return out
}

// ExecutableMethods returns the executable methods in handle order
func (d *Descriptor) ExecutableMethods() []ExecutableMethod {
	out := make([]ExecutableMethod, len(d.executables))
	for i, m := range d.executables {
		out[i] = m.clone()
	}
	return out
}

// ExecutableMethod looks up the handle of an executable method by identity
func (d *Descriptor) ExecutableMethod(key MethodKey) (MethodHandle, bool) {
	i, ok := d.executableIndex[key]
	if !ok {
		return MethodHandle{}, false
	}
	return d.executables[i].Handle, true
}

// ConfigBuilders returns the configuration builder bindings in declaration order
func (d *Descriptor) ConfigBuilders() []ConfigBuilder {
	out := make([]ConfigBuilder, len(d.configBuilders))
	for i, c := range d.configBuilders {
		out[i] = c.clone()
	}
	return out
}
