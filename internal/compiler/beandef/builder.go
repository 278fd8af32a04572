package beandef

import (
	"fmt"

	"github.com/conduit-lang/beanc/internal/compiler/errors"
	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// Signature is a parameter list as the analyzer hands it over: three
// parallel keyed lists. QualifierTypes and GenericTypes may be empty; when
// present they must carry exactly the keys of ArgumentTypes, in order.
// A zero qualifier value marks an unqualified argument.
type Signature struct {
	ArgumentTypes  typeref.Ordered[typeref.Ref]
	QualifierTypes typeref.Ordered[typeref.Ref]
	GenericTypes   typeref.Ordered[typeref.Generics]
}

func (s Signature) parameters(subject string) ([]Parameter, *errors.CompilerError) {
	if name, dup := s.ArgumentTypes.DuplicateKey(); dup {
		return nil, errors.NewDuplicateParameter(subject, name)
	}
	if len(s.QualifierTypes) > 0 && !typeref.SameKeys(s.ArgumentTypes, s.QualifierTypes) {
		return nil, errors.NewMismatchedArguments(subject, "Qualifier type",
			s.ArgumentTypes.Keys(), s.QualifierTypes.Keys())
	}
	if len(s.GenericTypes) > 0 && !typeref.SameKeys(s.ArgumentTypes, s.GenericTypes) {
		return nil, errors.NewMismatchedArguments(subject, "Generic type",
			s.ArgumentTypes.Keys(), s.GenericTypes.Keys())
	}

	params := make([]Parameter, len(s.ArgumentTypes))
	for i, arg := range s.ArgumentTypes {
		p := Parameter{Name: arg.Key, Type: arg.Value.Clone()}
		if len(s.QualifierTypes) > 0 {
			p.Qualifier = s.QualifierTypes[i].Value.Clone()
		}
		if len(s.GenericTypes) > 0 {
			p.Generics = s.GenericTypes[i].Value.Clone()
		}
		params[i] = p
	}
	return params, nil
}

// Options describe the declared type a Builder is created for
type Options struct {
	// BeanType is the declared type; required
	BeanType typeref.Ref
	// ProvidedType is the type the bean provides; defaults to BeanType
	ProvidedType typeref.Ref
	// Proxy marks the descriptor as describing the generated intercepted subclass
	Proxy       bool
	Singleton   bool
	Interface   bool
	Annotations AnnotationMetadata
}

type configState int

const (
	configClosed configState = iota
	configOpen
)

// Builder accumulates declarations about one declared type and seals them
// into a Descriptor.
//
// The first usage error is sticky: every later call, including Seal,
// returns it. A Builder is spent after Seal, whether sealing succeeded or
// not. A Builder is not safe for concurrent use.
type Builder struct {
	d      *Descriptor
	config configState
	open   *ConfigBuilder
	err    *errors.CompilerError
	spent  bool
}

// NewBuilder creates a builder for the declared type
func NewBuilder(opts Options) (*Builder, error) {
	if opts.BeanType.IsZero() || opts.BeanType.Name == "" {
		return nil, errors.NewInvalidOptions("bean type is required")
	}

	provided := opts.ProvidedType
	if provided.IsZero() {
		provided = opts.BeanType
	}

	return &Builder{
		d: &Descriptor{
			beanType:                 opts.BeanType.Clone(),
			providedType:             provided.Clone(),
			proxy:                    opts.Proxy,
			singleton:                opts.Singleton,
			iface:                    opts.Interface,
			validated:                false,
			requiresMethodProcessing: false,
			annotations:              opts.Annotations,
			executableIndex:          make(map[MethodKey]int),
		},
		config: configClosed,
	}, nil
}

// check returns the sticky error, or a sealed-builder error once spent
func (b *Builder) check(op string) error {
	if b.err != nil {
		return b.err
	}
	if b.spent {
		return b.fail(errors.NewBuilderSealed(op))
	}
	return nil
}

func (b *Builder) fail(err *errors.CompilerError) error {
	err.WithBean(b.d.beanType.Name)
	if b.err == nil {
		b.err = err
	}
	return err
}

// Err returns the first usage error recorded by the builder, if any
func (b *Builder) Err() error {
	if b.err == nil {
		return nil
	}
	return b.err
}

// VisitConstructor records the primary constructor. An empty Signature
// records a no-argument constructor.
func (b *Builder) VisitConstructor(sig Signature) error {
	if err := b.check("VisitConstructor"); err != nil {
		return err
	}
	subject := "constructor " + b.d.beanType.Name
	if b.d.constructor != nil {
		return b.fail(errors.NewDuplicateConstructor(subject))
	}
	params, cerr := sig.parameters(subject)
	if cerr != nil {
		return b.fail(cerr)
	}
	b.d.constructor = &Constructor{
		DeclaringType: b.d.beanType.Clone(),
		Parameters:    params,
	}
	return nil
}

// VisitProxiedConstructor records the constructor of the parent of a
// generated proxy. It is recorded in addition to the primary constructor.
func (b *Builder) VisitProxiedConstructor(declaringType typeref.Ref, sig Signature) error {
	if err := b.check("VisitProxiedConstructor"); err != nil {
		return err
	}
	subject := "proxied constructor " + declaringType.String()
	if b.d.proxiedConstructor != nil {
		return b.fail(errors.NewDuplicateProxiedConstructor(subject))
	}
	params, cerr := sig.parameters(subject)
	if cerr != nil {
		return b.fail(cerr)
	}
	b.d.proxiedConstructor = &Constructor{
		DeclaringType: declaringType.Clone(),
		Parameters:    params,
	}
	return nil
}

// SetSuperType makes the artifact delegate to a named ancestor artifact
func (b *Builder) SetSuperType(name string) error {
	return b.setSuper("SetSuperType", SuperType{Kind: SuperDefinition, Name: name})
}

// SetSuperTypeFactory makes the artifact delegate to a named factory bean
func (b *Builder) SetSuperTypeFactory(beanName string) error {
	return b.setSuper("SetSuperTypeFactory", SuperType{Kind: SuperFactory, Name: beanName})
}

func (b *Builder) setSuper(op string, st SuperType) error {
	if err := b.check(op); err != nil {
		return err
	}
	if cur := b.d.superType; cur.Kind != SuperNone {
		return b.fail(errors.NewDuplicateSuperType(op+" "+st.Name, fmt.Sprintf("%s %s", cur.Kind, cur.Name)))
	}
	b.d.superType = st
	return nil
}

// AddMarkerInterface records an additional interface the artifact
// implements. Adding an equal reference twice records it once.
func (b *Builder) AddMarkerInterface(t typeref.Ref) error {
	if err := b.check("AddMarkerInterface"); err != nil {
		return err
	}
	for _, m := range b.d.markers {
		if m.Equal(t) {
			return nil
		}
	}
	b.d.markers = append(b.d.markers, t.Clone())
	return nil
}

// AddInjectionPoint appends an injection point in encounter order
func (b *Builder) AddInjectionPoint(kind InjectionKind, spec InjectionSpec) error {
	if err := b.check("AddInjectionPoint"); err != nil {
		return err
	}

	family := kind.family()
	if family == familyUnknown {
		return b.fail(errors.NewUnknownInjectionKind("AddInjectionPoint", int(kind)))
	}
	if spec == nil || spec.family() != family {
		got := "nil spec"
		if spec != nil {
			got = spec.family().String()
		}
		return b.fail(errors.NewSpecKindMismatch("AddInjectionPoint", kind.String(), got))
	}

	var ip InjectionPoint
	switch s := spec.(type) {
	case FieldSpec:
		ip = InjectionPoint{
			Kind:               kind,
			DeclaringType:      s.DeclaringType.Clone(),
			RequiresReflection: s.RequiresReflection,
			Name:               s.FieldName,
			Field: &FieldInjection{
				Type:      s.FieldType.Clone(),
				Qualifier: s.Qualifier.Clone(),
				Generics:  s.Generics.Clone(),
				Optional:  s.Optional,
			},
		}
		if s.Optional && !kind.AllowsOptional() {
			return b.fail(errors.NewSpecKindMismatch(ip.Subject(), kind.String(), "optional field spec"))
		}
	case SetterSpec:
		ip = InjectionPoint{
			Kind:               kind,
			DeclaringType:      s.DeclaringType.Clone(),
			RequiresReflection: s.RequiresReflection,
			Name:               s.SetterName,
			Setter: &SetterInjection{
				ValueType: s.ValueType.Clone(),
				Qualifier: s.Qualifier.Clone(),
				FieldName: s.FieldName,
				Generics:  s.Generics.Clone(),
				Optional:  s.Optional,
			},
		}
		if s.Optional && !kind.AllowsOptional() {
			return b.fail(errors.NewSpecKindMismatch(ip.Subject(), kind.String(), "optional setter spec"))
		}
		if kind == KindValueSetter && s.FieldName != "" {
			return b.fail(errors.NewSpecKindMismatch(ip.Subject(), kind.String(), "setter spec naming a backing field"))
		}
	case MethodSpec:
		ip = InjectionPoint{
			Kind:               kind,
			DeclaringType:      s.DeclaringType.Clone(),
			RequiresReflection: s.RequiresReflection,
			Name:               s.MethodName,
		}
		params, cerr := s.Signature.parameters(ip.Subject())
		if cerr != nil {
			return b.fail(cerr)
		}
		ip.Method = &MethodInjection{
			ReturnType: s.ReturnType.Clone(),
			Parameters: params,
		}
	default:
		return b.fail(errors.NewSpecKindMismatch("AddInjectionPoint", kind.String(), fmt.Sprintf("%T", spec)))
	}

	b.d.injectionPoints = append(b.d.injectionPoints, ip)
	return nil
}

// AddExecutableMethod records a method exposed for invocation without
// reflection and returns its handle
func (b *Builder) AddExecutableMethod(spec ExecutableMethodSpec) (MethodHandle, error) {
	if err := b.check("AddExecutableMethod"); err != nil {
		return MethodHandle{}, err
	}

	key := spec.Key()
	if _, exists := b.d.executableIndex[key]; exists {
		return MethodHandle{}, b.fail(errors.NewDuplicateExecutable(string(key)))
	}
	params, cerr := spec.Signature.parameters(string(key))
	if cerr != nil {
		return MethodHandle{}, b.fail(cerr)
	}

	genericReturn := spec.GenericReturnType
	if genericReturn.IsZero() {
		genericReturn = spec.ReturnType
	}

	index := len(b.d.executables)
	handle := MethodHandle{
		Index: index,
		Name:  fmt.Sprintf("%s$Exec%d", b.d.DefinitionName(), index),
	}
	b.d.executables = append(b.d.executables, ExecutableMethod{
		Handle:            handle,
		DeclaringType:     spec.DeclaringType.Clone(),
		ReturnType:        spec.ReturnType.Clone(),
		GenericReturnType: genericReturn.Clone(),
		ReturnGenerics:    spec.ReturnGenerics.Clone(),
		Name:              spec.MethodName,
		Parameters:        params,
		Annotations:       spec.Annotations,
	})
	b.d.executableIndex[key] = index
	return handle, nil
}

// BeginConfigBuilder opens a configuration builder binding
func (b *Builder) BeginConfigBuilder(builderType typeref.Ref, target BuilderTarget, annotations AnnotationMetadata) error {
	if err := b.check("BeginConfigBuilder"); err != nil {
		return err
	}
	if b.config == configOpen {
		return b.fail(errors.NewConfigBuilderOpen("BeginConfigBuilder "+target.String(), b.open.Target.String()))
	}
	b.open = &ConfigBuilder{
		Type:        builderType.Clone(),
		Target:      target,
		Annotations: annotations,
	}
	b.config = configOpen
	return nil
}

// AddConfigBuilderMethod appends a single-value builder call to the open
// binding. paramType and generics may be zero.
func (b *Builder) AddConfigBuilderMethod(prefix, configPrefix string, returnType typeref.Ref, methodName string, paramType typeref.Ref, generics typeref.Generics) error {
	return b.addBuilderMethod("AddConfigBuilderMethod", BuilderMethod{
		Prefix:       prefix,
		ConfigPrefix: configPrefix,
		ReturnType:   returnType.Clone(),
		MethodName:   methodName,
		ParamType:    paramType.Clone(),
		Generics:     generics.Clone(),
		Form:         FormValue,
	})
}

// AddConfigBuilderDurationMethod appends a (value, unit) builder call to the
// open binding
func (b *Builder) AddConfigBuilderDurationMethod(prefix, configPrefix string, returnType typeref.Ref, methodName string) error {
	return b.addBuilderMethod("AddConfigBuilderDurationMethod", BuilderMethod{
		Prefix:       prefix,
		ConfigPrefix: configPrefix,
		ReturnType:   returnType.Clone(),
		MethodName:   methodName,
		Form:         FormDuration,
	})
}

func (b *Builder) addBuilderMethod(op string, m BuilderMethod) error {
	if err := b.check(op); err != nil {
		return err
	}
	if b.config != configOpen {
		return b.fail(errors.NewConfigBuilderNotOpen(op + " " + m.MethodName))
	}
	b.open.Methods = append(b.open.Methods, m)
	return nil
}

// EndConfigBuilder closes the open configuration builder binding
func (b *Builder) EndConfigBuilder() error {
	if err := b.check("EndConfigBuilder"); err != nil {
		return err
	}
	if b.config != configOpen {
		return b.fail(errors.NewConfigBuilderNotOpen("EndConfigBuilder"))
	}
	b.d.configBuilders = append(b.d.configBuilders, *b.open)
	b.open = nil
	b.config = configClosed
	return nil
}

// SetValidated marks whether the bean is subject to validation
func (b *Builder) SetValidated(validated bool) error {
	if err := b.check("SetValidated"); err != nil {
		return err
	}
	b.d.validated = validated
	return nil
}

// SetRequiresMethodProcessing marks whether executable methods are handed
// to method processors when the container starts
func (b *Builder) SetRequiresMethodProcessing(requires bool) error {
	if err := b.check("SetRequiresMethodProcessing"); err != nil {
		return err
	}
	b.d.requiresMethodProcessing = requires
	return nil
}

// Seal validates the accumulated declarations and returns the immutable
// descriptor. On failure no descriptor is returned and the error is an
// errors.ErrorList of validation failures, or the sticky usage error.
func (b *Builder) Seal() (*Descriptor, error) {
	if err := b.check("Seal"); err != nil {
		return nil, err
	}
	b.spent = true

	if problems := b.validate(); len(problems) > 0 {
		for _, p := range problems {
			p.WithBean(b.d.beanType.Name)
		}
		return nil, problems
	}

	b.d.sealed = true
	return b.d, nil
}

// Read accessors, legal before and after sealing.

// BeanTypeName returns the fully-qualified bean type name
func (b *Builder) BeanTypeName() string { return b.d.BeanTypeName() }

// ProvidedType returns the type the bean provides
func (b *Builder) ProvidedType() typeref.Ref { return b.d.ProvidedType() }

// PackageName returns the package of the bean type
func (b *Builder) PackageName() string { return b.d.PackageName() }

// SimpleName returns the short name of the bean type
func (b *Builder) SimpleName() string { return b.d.SimpleName() }

// DefinitionName returns the name of the generated definition artifact
func (b *Builder) DefinitionName() string { return b.d.DefinitionName() }

// IsInterface reports whether the provided type is an interface
func (b *Builder) IsInterface() bool { return b.d.IsInterface() }

// IsSingleton reports whether the bean is a singleton
func (b *Builder) IsSingleton() bool { return b.d.IsSingleton() }

// IsValidated reports whether the bean is subject to validation
func (b *Builder) IsValidated() bool { return b.d.IsValidated() }

// RequiresMethodProcessing reports whether method processing is required
func (b *Builder) RequiresMethodProcessing() bool { return b.d.RequiresMethodProcessing() }

// AnnotationMetadata returns the bean's annotation metadata
func (b *Builder) AnnotationMetadata() AnnotationMetadata { return b.d.AnnotationMetadata() }
