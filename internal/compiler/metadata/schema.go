// Package metadata provides the artifact document produced for each sealed
// bean descriptor: the self-describing shape a reflection-free container
// consumes, written as deterministic JSON.
package metadata

import (
	"encoding/json"

	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// SchemaVersion is the version of the artifact document layout
const SchemaVersion = "1"

// Artifact represents the complete artifact document for one bean
type Artifact struct {
	Version                  string                     `json:"version"`
	SourceHash               string                     `json:"source_hash,omitempty"` // Hash of the facts file the bean came from
	Digest                   string                     `json:"digest"`                // Hash of this document's content
	Definition               string                     `json:"definition"`
	BeanType                 string                     `json:"bean_type"`
	ProvidedType             typeref.Ref                `json:"provided_type"`
	Package                  string                     `json:"package,omitempty"`
	SimpleName               string                     `json:"simple_name"`
	Proxy                    bool                       `json:"proxy"`
	Singleton                bool                       `json:"singleton"`
	Interface                bool                       `json:"interface"`
	Validated                bool                       `json:"validated"`
	RequiresMethodProcessing bool                       `json:"requires_method_processing"`
	SuperType                *SuperTypeMetadata         `json:"super_type,omitempty"`
	Markers                  []typeref.Ref              `json:"markers,omitempty"`
	Annotations              map[string]map[string]any  `json:"annotations,omitempty"`
	Constructor              *ConstructorMetadata       `json:"constructor,omitempty"`
	ProxiedConstructor       *ConstructorMetadata       `json:"proxied_constructor,omitempty"`
	InjectionPoints          []InjectionPointMetadata   `json:"injection_points"`
	ExecutableMethods        []ExecutableMethodMetadata `json:"executable_methods"`
	ConfigBuilders           []ConfigBuilderMetadata    `json:"config_builders,omitempty"`
}

// SuperTypeMetadata describes the supertype-or-factory reference
type SuperTypeMetadata struct {
	Kind string `json:"kind"` // definition, factory
	Name string `json:"name"`
}

// ParameterMetadata describes a constructor or method parameter
type ParameterMetadata struct {
	Name      string           `json:"name"`
	Type      typeref.Ref      `json:"type"`
	Qualifier *typeref.Ref     `json:"qualifier,omitempty"`
	Generics  typeref.Generics `json:"generics,omitempty"`
}

// ConstructorMetadata describes a constructor
type ConstructorMetadata struct {
	DeclaringType typeref.Ref         `json:"declaring_type"`
	Parameters    []ParameterMetadata `json:"parameters"`
}

// InjectionPointMetadata describes one injection point. Optional is only
// present for kinds that may be skipped.
type InjectionPointMetadata struct {
	Kind               string              `json:"kind"`
	DeclaringType      typeref.Ref         `json:"declaring_type"`
	RequiresReflection bool                `json:"requires_reflection"`
	Name               string              `json:"name"`
	Type               *typeref.Ref        `json:"type,omitempty"`
	Qualifier          *typeref.Ref        `json:"qualifier,omitempty"`
	FieldName          string              `json:"field_name,omitempty"`
	Generics           typeref.Generics    `json:"generics,omitempty"`
	Optional           *bool               `json:"optional,omitempty"`
	ReturnType         *typeref.Ref        `json:"return_type,omitempty"`
	Parameters         []ParameterMetadata `json:"parameters,omitempty"`
}

// ExecutableMethodMetadata describes an executable method and its handle
type ExecutableMethodMetadata struct {
	Handle            string                    `json:"handle"`
	Index             int                       `json:"index"`
	Key               string                    `json:"key"`
	DeclaringType     typeref.Ref               `json:"declaring_type"`
	Name              string                    `json:"name"`
	ReturnType        typeref.Ref               `json:"return_type"`
	GenericReturnType typeref.Ref               `json:"generic_return_type"`
	ReturnGenerics    typeref.Generics          `json:"return_generics,omitempty"`
	Parameters        []ParameterMetadata       `json:"parameters"`
	Annotations       map[string]map[string]any `json:"annotations,omitempty"`
}

// ConfigBuilderMetadata describes a configuration builder binding
type ConfigBuilderMetadata struct {
	Type        typeref.Ref               `json:"type"`
	Target      string                    `json:"target"` // field, method
	TargetName  string                    `json:"target_name"`
	Annotations map[string]map[string]any `json:"annotations,omitempty"`
	Methods     []BuilderMethodMetadata   `json:"methods"`
}

// BuilderMethodMetadata describes one builder call
type BuilderMethodMetadata struct {
	Prefix            string           `json:"prefix"`
	ConfigPrefix      string           `json:"config_prefix"`
	ConfigurationPath string           `json:"configuration_path"`
	ReturnType        typeref.Ref      `json:"return_type"`
	MethodName        string           `json:"method_name"`
	ParamType         *typeref.Ref     `json:"param_type,omitempty"`
	Generics          typeref.Generics `json:"generics,omitempty"`
	Form              string           `json:"form"` // value, duration
}

// ToJSON converts the artifact to a JSON string
func (a *Artifact) ToJSON() (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON parses an artifact from a JSON string
func FromJSON(data string) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Handle returns the executable method entry with the given handle name
func (a *Artifact) Handle(name string) (ExecutableMethodMetadata, bool) {
	for _, m := range a.ExecutableMethods {
		if m.Handle == name {
			return m, true
		}
	}
	return ExecutableMethodMetadata{}, false
}
