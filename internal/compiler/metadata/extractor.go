package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/conduit-lang/beanc/internal/compiler/beandef"
	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// Extractor turns sealed descriptors into artifact documents
type Extractor struct {
	version    string
	sourceHash string // Hash of the facts file currently being processed
}

// NewExtractor creates a new artifact extractor
func NewExtractor(version string) *Extractor {
	if version == "" {
		version = SchemaVersion
	}
	return &Extractor{version: version}
}

// SetSourceHash sets the facts hash stamped on subsequent artifacts
func (e *Extractor) SetSourceHash(hash string) {
	e.sourceHash = hash
}

// Extract generates the artifact document for a sealed descriptor
func (e *Extractor) Extract(d *beandef.Descriptor) (*Artifact, error) {
	if d == nil {
		return nil, fmt.Errorf("descriptor cannot be nil")
	}
	if !d.IsSealed() {
		return nil, fmt.Errorf("descriptor %s is not sealed", d.BeanTypeName())
	}

	a := &Artifact{
		Version:                  e.version,
		SourceHash:               e.sourceHash,
		Definition:               d.DefinitionName(),
		BeanType:                 d.BeanTypeName(),
		ProvidedType:             d.ProvidedType(),
		Package:                  d.PackageName(),
		SimpleName:               d.SimpleName(),
		Proxy:                    d.IsProxy(),
		Singleton:                d.IsSingleton(),
		Interface:                d.IsInterface(),
		Validated:                d.IsValidated(),
		RequiresMethodProcessing: d.RequiresMethodProcessing(),
		Markers:                  d.MarkerInterfaces(),
		Annotations:              d.AnnotationMetadata().ToMap(),
		Constructor:              constructorMetadata(d.Constructor()),
		ProxiedConstructor:       constructorMetadata(d.ProxiedConstructor()),
		InjectionPoints:          make([]InjectionPointMetadata, 0),
		ExecutableMethods:        make([]ExecutableMethodMetadata, 0),
	}

	if st := d.SuperType(); st.Kind != beandef.SuperNone {
		a.SuperType = &SuperTypeMetadata{Kind: st.Kind.String(), Name: st.Name}
	}

	for _, ip := range d.InjectionPoints() {
		a.InjectionPoints = append(a.InjectionPoints, injectionPointMetadata(ip))
	}

	for _, m := range d.ExecutableMethods() {
		a.ExecutableMethods = append(a.ExecutableMethods, ExecutableMethodMetadata{
			Handle:            m.Handle.Name,
			Index:             m.Handle.Index,
			Key:               string(m.Key()),
			DeclaringType:     m.DeclaringType,
			Name:              m.Name,
			ReturnType:        m.ReturnType,
			GenericReturnType: m.GenericReturnType,
			ReturnGenerics:    m.ReturnGenerics,
			Parameters:        parameterMetadata(m.Parameters),
			Annotations:       m.Annotations.ToMap(),
		})
	}

	for _, c := range d.ConfigBuilders() {
		cb := ConfigBuilderMetadata{
			Type:        c.Type,
			Target:      c.Target.Kind.String(),
			TargetName:  c.Target.Name,
			Annotations: c.Annotations.ToMap(),
			Methods:     make([]BuilderMethodMetadata, 0, len(c.Methods)),
		}
		for _, m := range c.Methods {
			cb.Methods = append(cb.Methods, BuilderMethodMetadata{
				Prefix:            m.Prefix,
				ConfigPrefix:      m.ConfigPrefix,
				ConfigurationPath: m.ConfigurationPath(),
				ReturnType:        m.ReturnType,
				MethodName:        m.MethodName,
				ParamType:         optionalRef(m.ParamType),
				Generics:          m.Generics,
				Form:              m.Form.String(),
			})
		}
		a.ConfigBuilders = append(a.ConfigBuilders, cb)
	}

	digest, err := computeDigest(a)
	if err != nil {
		return nil, err
	}
	a.Digest = digest

	return a, nil
}

// computeDigest hashes the serialized document with its digest cleared
func computeDigest(a *Artifact) (string, error) {
	clone := *a
	clone.Digest = ""
	clone.SourceHash = ""
	data, err := Serialize(&clone)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func injectionPointMetadata(ip beandef.InjectionPoint) InjectionPointMetadata {
	out := InjectionPointMetadata{
		Kind:               ip.Kind.String(),
		DeclaringType:      ip.DeclaringType,
		RequiresReflection: ip.RequiresReflection,
		Name:               ip.Name,
	}
	switch {
	case ip.Field != nil:
		t := ip.Field.Type
		out.Type = &t
		out.Qualifier = optionalRef(ip.Field.Qualifier)
		out.Generics = ip.Field.Generics
	case ip.Setter != nil:
		t := ip.Setter.ValueType
		out.Type = &t
		out.Qualifier = optionalRef(ip.Setter.Qualifier)
		out.FieldName = ip.Setter.FieldName
		out.Generics = ip.Setter.Generics
	case ip.Method != nil:
		out.ReturnType = optionalRef(ip.Method.ReturnType)
		out.Parameters = parameterMetadata(ip.Method.Parameters)
	}
	if ip.Kind.AllowsOptional() {
		optional := ip.IsOptional()
		out.Optional = &optional
	}
	return out
}

func constructorMetadata(c *beandef.Constructor) *ConstructorMetadata {
	if c == nil {
		return nil
	}
	return &ConstructorMetadata{
		DeclaringType: c.DeclaringType,
		Parameters:    parameterMetadata(c.Parameters),
	}
}

func parameterMetadata(params []beandef.Parameter) []ParameterMetadata {
	out := make([]ParameterMetadata, 0, len(params))
	for _, p := range params {
		out = append(out, ParameterMetadata{
			Name:      p.Name,
			Type:      p.Type,
			Qualifier: optionalRef(p.Qualifier),
			Generics:  p.Generics,
		})
	}
	return out
}

func optionalRef(r typeref.Ref) *typeref.Ref {
	if r.IsZero() {
		return nil
	}
	return &r
}
