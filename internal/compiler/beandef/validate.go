package beandef

import (
	"fmt"

	"github.com/conduit-lang/beanc/internal/compiler/errors"
	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// validate checks the structural invariants of the draft descriptor and
// returns every violation found
func (b *Builder) validate() errors.ErrorList {
	var problems errors.ErrorList
	d := b.d

	if b.config == configOpen {
		problems = append(problems, errors.NewUnclosedConfigBuilder("config builder "+b.open.Target.String()))
	}

	if d.proxiedConstructor != nil && d.constructor == nil {
		problems = append(problems, errors.NewProxiedWithoutPrimary("proxied constructor "+d.proxiedConstructor.DeclaringType.String()))
	}
	if d.constructor != nil {
		problems = append(problems, checkParameters("constructor "+d.beanType.Name, d.constructor.Parameters)...)
	}
	if d.proxiedConstructor != nil {
		if d.proxiedConstructor.DeclaringType.Name == "" {
			problems = append(problems, errors.NewMissingDeclaringType("proxied constructor"))
		}
		problems = append(problems, checkParameters("proxied constructor "+d.proxiedConstructor.DeclaringType.String(), d.proxiedConstructor.Parameters)...)
	}

	for _, m := range d.markers {
		if m.Name == "" {
			problems = append(problems, errors.NewMissingType("marker interface", "Marker interface"))
		}
	}

	for _, ip := range d.injectionPoints {
		problems = append(problems, checkInjectionPoint(ip)...)
	}

	for _, m := range d.executables {
		subject := string(m.Key())
		if m.DeclaringType.Name == "" {
			problems = append(problems, errors.NewMissingDeclaringType(subject))
		}
		if m.Name == "" {
			problems = append(problems, errors.NewMissingName(subject, "Executable method"))
		}
		if m.ReturnType.Name == "" {
			problems = append(problems, errors.NewMissingType(subject, "Return type"))
		}
		problems = append(problems, checkParameters(subject, m.Parameters)...)
	}

	for _, c := range d.configBuilders {
		subject := "config builder " + c.Target.String()
		if c.Target.Name == "" {
			problems = append(problems, errors.NewMissingName(subject, "Configuration builder target"))
		}
		if c.Target.Kind != TargetField && c.Target.Kind != TargetMethod {
			problems = append(problems, errors.NewUnknownBuilderTarget(subject))
		}
		if c.Type.Name == "" {
			problems = append(problems, errors.NewMissingType(subject, "Configuration builder"))
		}
		for i, m := range c.Methods {
			if m.MethodName == "" {
				problems = append(problems, errors.NewMissingBuilderMethod(fmt.Sprintf("%s call %d", subject, i)))
			}
		}
	}

	return problems
}

func checkInjectionPoint(ip InjectionPoint) errors.ErrorList {
	var problems errors.ErrorList
	subject := ip.Subject()

	if ip.DeclaringType.Name == "" {
		problems = append(problems, errors.NewMissingDeclaringType(subject))
	}
	if ip.Name == "" {
		problems = append(problems, errors.NewMissingName(subject, "Injection point"))
	}

	switch {
	case ip.Field != nil:
		problems = append(problems, checkTyped(subject, "Field", ip.Field.Type, ip.Field.Qualifier)...)
	case ip.Setter != nil:
		problems = append(problems, checkTyped(subject, "Setter value", ip.Setter.ValueType, ip.Setter.Qualifier)...)
		if ip.Kind != KindValueSetter && ip.Setter.FieldName == "" {
			problems = append(problems, errors.NewMissingName(subject, "Backing field"))
		}
	case ip.Method != nil:
		problems = append(problems, checkParameters(subject, ip.Method.Parameters)...)
	}
	return problems
}

func checkParameters(subject string, params []Parameter) errors.ErrorList {
	var problems errors.ErrorList
	for _, p := range params {
		psubject := fmt.Sprintf("%s parameter %s", subject, p.Name)
		if p.Name == "" {
			problems = append(problems, errors.NewMissingName(psubject, "Parameter"))
		}
		problems = append(problems, checkTyped(psubject, "Parameter", p.Type, p.Qualifier)...)
	}
	return problems
}

// checkTyped rejects a declaration with no type; a qualifier without a
// type is reported as such
func checkTyped(subject, what string, t, qualifier typeref.Ref) errors.ErrorList {
	if t.Name != "" {
		return nil
	}
	if !qualifier.IsZero() {
		return errors.ErrorList{errors.NewQualifierWithoutType(subject, qualifier.String())}
	}
	return errors.ErrorList{errors.NewMissingType(subject, what)}
}
