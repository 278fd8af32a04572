package facts

import (
	"fmt"

	"github.com/conduit-lang/beanc/internal/compiler/beandef"
	"github.com/conduit-lang/beanc/internal/compiler/errors"
	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// Replay creates a builder for the bean and feeds it every recorded fact in
// order. The returned builder is unsealed. The first failing call stops the
// replay: usage errors come back as the builder reported them, unparsable
// type names as GEN601.
func Replay(bean Bean) (*beandef.Builder, error) {
	r := replayer{bean: bean}

	beanType, err := r.ref("type", bean.Type)
	if err != nil {
		return nil, err
	}
	provided, err := r.optionalRef("provided_type", bean.ProvidedType)
	if err != nil {
		return nil, err
	}

	b, err := beandef.NewBuilder(beandef.Options{
		BeanType:     beanType,
		ProvidedType: provided,
		Proxy:        bean.Proxy,
		Singleton:    bean.Singleton,
		Interface:    bean.Interface,
		Annotations:  beandef.NewAnnotationMetadata(bean.Annotations),
	})
	if err != nil {
		return nil, err
	}

	if st := bean.SuperType; st != nil {
		if st.Factory != "" {
			err = b.SetSuperTypeFactory(st.Factory)
		} else {
			err = b.SetSuperType(st.Definition)
		}
		if err != nil {
			return nil, err
		}
	}

	for i, m := range bean.Markers {
		t, err := r.ref(fmt.Sprintf("markers[%d]", i), m)
		if err != nil {
			return nil, err
		}
		if err := b.AddMarkerInterface(t); err != nil {
			return nil, err
		}
	}

	for i, decl := range bean.Declarations {
		if err := r.declaration(b, fmt.Sprintf("declarations[%d]", i), decl); err != nil {
			return nil, err
		}
	}

	if err := b.SetValidated(bean.Validated); err != nil {
		return nil, err
	}
	if err := b.SetRequiresMethodProcessing(bean.RequiresMethodProcessing); err != nil {
		return nil, err
	}
	return b, nil
}

type replayer struct {
	bean Bean
}

func (r replayer) invalid(where, reason string) error {
	return errors.NewInvalidFacts(where, reason).WithBean(r.bean.Type)
}

func (r replayer) ref(where, s string) (typeref.Ref, error) {
	t, err := typeref.Parse(s)
	if err != nil {
		return typeref.Ref{}, r.invalid(where, err.Error())
	}
	return t, nil
}

// optionalRef maps an empty string to the zero Ref
func (r replayer) optionalRef(where, s string) (typeref.Ref, error) {
	if s == "" {
		return typeref.Ref{}, nil
	}
	return r.ref(where, s)
}

func (r replayer) generics(where string, in map[string]string) (typeref.Generics, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(typeref.Generics, len(in))
	for k, v := range in {
		t, err := r.ref(where+"."+k, v)
		if err != nil {
			return nil, err
		}
		out[k] = t
	}
	return out, nil
}

// signature converts a parameter list into the builder's parallel keyed
// lists. Qualifier and generic lists are only populated when some parameter
// carries one.
func (r replayer) signature(where string, params []Param) (beandef.Signature, error) {
	var sig beandef.Signature
	qualified, generic := false, false
	for _, p := range params {
		qualified = qualified || p.Qualifier != ""
		generic = generic || len(p.Generics) > 0
	}

	for i, p := range params {
		at := fmt.Sprintf("%s.params[%d]", where, i)
		t, err := r.optionalRef(at+".type", p.Type)
		if err != nil {
			return beandef.Signature{}, err
		}
		sig.ArgumentTypes = append(sig.ArgumentTypes, typeref.Pair(p.Name, t))

		if qualified {
			q, err := r.optionalRef(at+".qualifier", p.Qualifier)
			if err != nil {
				return beandef.Signature{}, err
			}
			sig.QualifierTypes = append(sig.QualifierTypes, typeref.Pair(p.Name, q))
		}
		if generic {
			g, err := r.generics(at+".generics", p.Generics)
			if err != nil {
				return beandef.Signature{}, err
			}
			sig.GenericTypes = append(sig.GenericTypes, typeref.Pair(p.Name, g))
		}
	}
	return sig, nil
}

func (r replayer) declaration(b *beandef.Builder, where string, d Declaration) error {
	switch {
	case d.Constructor != nil:
		sig, err := r.signature(where+".constructor", d.Constructor.Params)
		if err != nil {
			return err
		}
		return b.VisitConstructor(sig)

	case d.ProxiedConstructor != nil:
		pc := d.ProxiedConstructor
		declaring, err := r.optionalRef(where+".proxied_constructor.declaring_type", pc.DeclaringType)
		if err != nil {
			return err
		}
		sig, err := r.signature(where+".proxied_constructor", pc.Params)
		if err != nil {
			return err
		}
		return b.VisitProxiedConstructor(declaring, sig)

	case d.Injection != nil:
		return r.injection(b, where+".injection", d.Injection)

	case d.Executable != nil:
		return r.executable(b, where+".executable", d.Executable)

	case d.ConfigBuilder != nil:
		return r.configBuilder(b, where+".config_builder", d.ConfigBuilder)
	}
	return r.invalid(where, "empty declaration")
}

func (r replayer) injection(b *beandef.Builder, where string, in *Injection) error {
	kind, ok := beandef.ParseInjectionKind(in.Kind)
	if !ok {
		return r.invalid(where+".kind", fmt.Sprintf("unknown injection kind %q", in.Kind))
	}

	declaring, err := r.optionalRef(where+".declaring_type", in.DeclaringType)
	if err != nil {
		return err
	}

	var spec beandef.InjectionSpec
	switch kind {
	case beandef.KindField, beandef.KindFieldValue:
		t, q, g, err := r.typed(where, in)
		if err != nil {
			return err
		}
		spec = beandef.FieldSpec{
			DeclaringType:      declaring,
			Qualifier:          q,
			RequiresReflection: in.RequiresReflection,
			FieldType:          t,
			FieldName:          in.Name,
			Generics:           g,
			Optional:           in.Optional,
		}

	case beandef.KindSetter, beandef.KindSetterValue, beandef.KindValueSetter:
		t, q, g, err := r.typed(where, in)
		if err != nil {
			return err
		}
		spec = beandef.SetterSpec{
			DeclaringType:      declaring,
			Qualifier:          q,
			RequiresReflection: in.RequiresReflection,
			ValueType:          t,
			FieldName:          in.Name,
			SetterName:         in.Setter,
			Generics:           g,
			Optional:           in.Optional,
		}

	default:
		if in.Optional {
			return r.invalid(where+".optional", kind.String()+" injection points cannot be optional")
		}
		ret, err := r.optionalRef(where+".return_type", in.ReturnType)
		if err != nil {
			return err
		}
		sig, err := r.signature(where, in.Params)
		if err != nil {
			return err
		}
		spec = beandef.MethodSpec{
			DeclaringType:      declaring,
			RequiresReflection: in.RequiresReflection,
			ReturnType:         ret,
			MethodName:         in.Name,
			Signature:          sig,
		}
	}

	return b.AddInjectionPoint(kind, spec)
}

func (r replayer) typed(where string, in *Injection) (typeref.Ref, typeref.Ref, typeref.Generics, error) {
	t, err := r.optionalRef(where+".type", in.Type)
	if err != nil {
		return typeref.Ref{}, typeref.Ref{}, nil, err
	}
	q, err := r.optionalRef(where+".qualifier", in.Qualifier)
	if err != nil {
		return typeref.Ref{}, typeref.Ref{}, nil, err
	}
	g, err := r.generics(where+".generics", in.Generics)
	if err != nil {
		return typeref.Ref{}, typeref.Ref{}, nil, err
	}
	return t, q, g, nil
}

func (r replayer) executable(b *beandef.Builder, where string, ex *Executable) error {
	declaring, err := r.optionalRef(where+".declaring_type", ex.DeclaringType)
	if err != nil {
		return err
	}
	ret, err := r.optionalRef(where+".return_type", ex.ReturnType)
	if err != nil {
		return err
	}
	genericRet, err := r.optionalRef(where+".generic_return_type", ex.GenericReturnType)
	if err != nil {
		return err
	}
	retGenerics, err := r.generics(where+".return_generics", ex.ReturnGenerics)
	if err != nil {
		return err
	}
	sig, err := r.signature(where, ex.Params)
	if err != nil {
		return err
	}

	_, err = b.AddExecutableMethod(beandef.ExecutableMethodSpec{
		DeclaringType:     declaring,
		ReturnType:        ret,
		GenericReturnType: genericRet,
		ReturnGenerics:    retGenerics,
		MethodName:        ex.Name,
		Signature:         sig,
		Annotations:       beandef.NewAnnotationMetadata(ex.Annotations),
	})
	return err
}

func (r replayer) configBuilder(b *beandef.Builder, where string, cb *ConfigBuilder) error {
	var target beandef.BuilderTarget
	switch {
	case cb.Field != "" && cb.Method != "":
		return r.invalid(where, "only one of field or method may be set")
	case cb.Method != "":
		target = beandef.MethodTarget(cb.Method)
	default:
		target = beandef.FieldTarget(cb.Field)
	}

	builderType, err := r.optionalRef(where+".type", cb.Type)
	if err != nil {
		return err
	}
	if err := b.BeginConfigBuilder(builderType, target, beandef.NewAnnotationMetadata(cb.Annotations)); err != nil {
		return err
	}

	for i, m := range cb.Methods {
		at := fmt.Sprintf("%s.methods[%d]", where, i)
		ret, err := r.optionalRef(at+".return_type", m.ReturnType)
		if err != nil {
			return err
		}
		if m.Duration {
			err = b.AddConfigBuilderDurationMethod(m.Prefix, m.ConfigPrefix, ret, m.Name)
		} else {
			param, perr := r.optionalRef(at+".param_type", m.ParamType)
			if perr != nil {
				return perr
			}
			g, gerr := r.generics(at+".generics", m.Generics)
			if gerr != nil {
				return gerr
			}
			err = b.AddConfigBuilderMethod(m.Prefix, m.ConfigPrefix, ret, m.Name, param, g)
		}
		if err != nil {
			return err
		}
	}

	if cb.Open {
		return nil
	}
	return b.EndConfigBuilder()
}

// Compile replays and seals one bean
func Compile(bean Bean) (*beandef.Descriptor, error) {
	b, err := Replay(bean)
	if err != nil {
		return nil, err
	}
	return b.Seal()
}
