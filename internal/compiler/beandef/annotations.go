package beandef

import "sort"

// AnnotationMetadata holds annotation facts resolved by the analyzer:
// annotation name -> member name -> value. Values are scalars or slices of
// scalars. An AnnotationMetadata is never mutated after construction.
type AnnotationMetadata struct {
	annotations map[string]map[string]any
}

// NewAnnotationMetadata copies the given annotations into an immutable value
func NewAnnotationMetadata(annotations map[string]map[string]any) AnnotationMetadata {
	return AnnotationMetadata{annotations: copyAnnotations(annotations)}
}

// With returns a copy that additionally carries the named annotation
func (m AnnotationMetadata) With(name string, members map[string]any) AnnotationMetadata {
	out := copyAnnotations(m.annotations)
	if out == nil {
		out = make(map[string]map[string]any, 1)
	}
	out[name] = copyMembers(members)
	return AnnotationMetadata{annotations: out}
}

// IsEmpty reports whether no annotations are present
func (m AnnotationMetadata) IsEmpty() bool {
	return len(m.annotations) == 0
}

// Has reports whether the named annotation is present
func (m AnnotationMetadata) Has(name string) bool {
	_, ok := m.annotations[name]
	return ok
}

// Value returns a member value of the named annotation
func (m AnnotationMetadata) Value(name, member string) (any, bool) {
	members, ok := m.annotations[name]
	if !ok {
		return nil, false
	}
	v, ok := members[member]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// StringValue returns a member value when it is a string
func (m AnnotationMetadata) StringValue(name, member string) (string, bool) {
	v, ok := m.Value(name, member)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Names returns the annotation names in sorted order
func (m AnnotationMetadata) Names() []string {
	names := make([]string, 0, len(m.annotations))
	for name := range m.annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns a copy of the members of the named annotation
func (m AnnotationMetadata) Members(name string) map[string]any {
	members, ok := m.annotations[name]
	if !ok {
		return nil
	}
	return copyMembers(members)
}

// ToMap returns a deep copy of all annotations
func (m AnnotationMetadata) ToMap() map[string]map[string]any {
	return copyAnnotations(m.annotations)
}

func copyAnnotations(in map[string]map[string]any) map[string]map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(in))
	for name, members := range in {
		out[name] = copyMembers(members)
	}
	return out
}

func copyMembers(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		return copyMembers(t)
	default:
		return v
	}
}
