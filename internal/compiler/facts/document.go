// Package facts reads the structural facts an analyzer reports about declared
// types and replays them, in encounter order, into bean definition builders.
//
// A facts document is YAML. JSON documents are accepted as well since JSON is
// a subset of YAML.
package facts

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/beanc/internal/compiler/errors"
)

// Document is one facts file
type Document struct {
	Beans []Bean `yaml:"beans"`
}

// Bean holds everything known about one declared type
type Bean struct {
	Type                     string                    `yaml:"type"`
	ProvidedType             string                    `yaml:"provided_type,omitempty"`
	Singleton                bool                      `yaml:"singleton,omitempty"`
	Interface                bool                      `yaml:"interface,omitempty"`
	Proxy                    bool                      `yaml:"proxy,omitempty"`
	Validated                bool                      `yaml:"validated,omitempty"`
	RequiresMethodProcessing bool                      `yaml:"requires_method_processing,omitempty"`
	Annotations              map[string]map[string]any `yaml:"annotations,omitempty"`
	SuperType                *SuperType                `yaml:"super_type,omitempty"`
	Markers                  []string                  `yaml:"markers,omitempty"`
	Declarations             []Declaration             `yaml:"declarations,omitempty"`
}

// SuperType names either a supertype definition or the factory bean that
// produces this one. Exactly one must be set.
type SuperType struct {
	Definition string `yaml:"definition,omitempty"`
	Factory    string `yaml:"factory,omitempty"`
}

// Declaration is one analyzer event. Exactly one field is set.
type Declaration struct {
	Constructor        *Constructor        `yaml:"constructor,omitempty"`
	ProxiedConstructor *ProxiedConstructor `yaml:"proxied_constructor,omitempty"`
	Injection          *Injection          `yaml:"injection,omitempty"`
	Executable         *Executable         `yaml:"executable,omitempty"`
	ConfigBuilder      *ConfigBuilder      `yaml:"config_builder,omitempty"`
}

// Param is a constructor or method parameter
type Param struct {
	Name      string            `yaml:"name"`
	Type      string            `yaml:"type"`
	Qualifier string            `yaml:"qualifier,omitempty"`
	Generics  map[string]string `yaml:"generics,omitempty"`
}

// Constructor is the primary constructor
type Constructor struct {
	Params []Param `yaml:"params,omitempty"`
}

// ProxiedConstructor is the constructor of the intercepted target
type ProxiedConstructor struct {
	DeclaringType string  `yaml:"declaring_type"`
	Params        []Param `yaml:"params,omitempty"`
}

// Injection is a field, setter, method or lifecycle injection point.
// For setter kinds Setter is the method name and Name the backing field;
// for field and method kinds Name is the member name.
type Injection struct {
	Kind               string            `yaml:"kind"`
	DeclaringType      string            `yaml:"declaring_type"`
	Type               string            `yaml:"type,omitempty"`
	Name               string            `yaml:"name,omitempty"`
	Setter             string            `yaml:"setter,omitempty"`
	Qualifier          string            `yaml:"qualifier,omitempty"`
	Generics           map[string]string `yaml:"generics,omitempty"`
	Optional           bool              `yaml:"optional,omitempty"`
	RequiresReflection bool              `yaml:"requires_reflection,omitempty"`
	ReturnType         string            `yaml:"return_type,omitempty"`
	Params             []Param           `yaml:"params,omitempty"`
}

// Executable is a method exposed for reflection-free invocation
type Executable struct {
	DeclaringType     string                    `yaml:"declaring_type"`
	ReturnType        string                    `yaml:"return_type"`
	GenericReturnType string                    `yaml:"generic_return_type,omitempty"`
	ReturnGenerics    map[string]string         `yaml:"return_generics,omitempty"`
	Name              string                    `yaml:"name"`
	Params            []Param                   `yaml:"params,omitempty"`
	Annotations       map[string]map[string]any `yaml:"annotations,omitempty"`
}

// ConfigBuilder is a configuration builder binding on a field or method.
// Open leaves the binding unclosed.
type ConfigBuilder struct {
	Type        string                    `yaml:"type"`
	Field       string                    `yaml:"field,omitempty"`
	Method      string                    `yaml:"method,omitempty"`
	Annotations map[string]map[string]any `yaml:"annotations,omitempty"`
	Methods     []BuilderMethod           `yaml:"methods,omitempty"`
	Open        bool                      `yaml:"open,omitempty"`
}

// BuilderMethod is one builder call. Duration selects the (value, unit) form.
type BuilderMethod struct {
	Prefix       string            `yaml:"prefix,omitempty"`
	ConfigPrefix string            `yaml:"config_prefix,omitempty"`
	ReturnType   string            `yaml:"return_type"`
	Name         string            `yaml:"name"`
	ParamType    string            `yaml:"param_type,omitempty"`
	Generics     map[string]string `yaml:"generics,omitempty"`
	Duration     bool              `yaml:"duration,omitempty"`
}

// Load reads and parses the facts document at path
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		if el, ok := err.(errors.ErrorList); ok {
			return nil, el.WithFile(path)
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes a facts document and checks its shape. Shape problems are
// reported together as an errors.ErrorList.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&doc)
	if err != nil && err != io.EOF {
		return nil, errors.ErrorList{errors.NewInvalidFacts("<document>", err.Error())}
	}
	if err == nil {
		// one document per file
		var extra yaml.Node
		switch err := dec.Decode(&extra); {
		case err == nil:
			return nil, errors.ErrorList{errors.NewInvalidFacts("<document>", "facts file holds more than one YAML document")}
		case err != io.EOF:
			return nil, errors.ErrorList{errors.NewInvalidFacts("<document>", err.Error())}
		}
	}

	if problems := doc.check(); len(problems) > 0 {
		return nil, problems
	}
	return &doc, nil
}

func (d *Document) check() errors.ErrorList {
	var problems errors.ErrorList

	if len(d.Beans) == 0 {
		problems = append(problems, errors.NewInvalidFacts("<document>", "no beans declared"))
	}

	seen := make(map[string]bool)
	for i, b := range d.Beans {
		subject := fmt.Sprintf("beans[%d]", i)
		if b.Type == "" {
			problems = append(problems, errors.NewInvalidFacts(subject, "bean type is required"))
			continue
		}
		if seen[b.Type] {
			problems = append(problems, errors.NewInvalidFacts(subject, "duplicate bean "+b.Type).WithBean(b.Type))
		}
		seen[b.Type] = true

		if st := b.SuperType; st != nil && (st.Definition == "") == (st.Factory == "") {
			problems = append(problems,
				errors.NewInvalidFacts(subject+".super_type", "exactly one of definition or factory must be set").WithBean(b.Type))
		}

		for j, decl := range b.Declarations {
			if n := decl.count(); n != 1 {
				problems = append(problems, errors.NewInvalidFacts(
					fmt.Sprintf("%s.declarations[%d]", subject, j),
					fmt.Sprintf("expected exactly one declaration, found %d", n),
				).WithBean(b.Type))
			}
		}
	}

	return problems
}

func (d Declaration) count() int {
	n := 0
	if d.Constructor != nil {
		n++
	}
	if d.ProxiedConstructor != nil {
		n++
	}
	if d.Injection != nil {
		n++
	}
	if d.Executable != nil {
		n++
	}
	if d.ConfigBuilder != nil {
		n++
	}
	return n
}
