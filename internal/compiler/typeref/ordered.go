package typeref

// Entry is one key/value pair of an Ordered list
type Entry[V any] struct {
	Key   string `json:"key" yaml:"key"`
	Value V      `json:"value" yaml:"value"`
}

// Ordered is an insertion-ordered keyed list. The analyzer hands parameter
// lists over as parallel ordered maps; Ordered keeps that shape explicit.
type Ordered[V any] []Entry[V]

// Pair builds a single entry
func Pair[V any](key string, value V) Entry[V] {
	return Entry[V]{Key: key, Value: value}
}

// Of builds an Ordered list from entries
func Of[V any](entries ...Entry[V]) Ordered[V] {
	return Ordered[V](entries)
}

// Keys returns the keys in order
func (o Ordered[V]) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value stored under key
func (o Ordered[V]) Get(key string) (V, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// SameKeys reports whether both lists hold the same keys in the same order
func SameKeys[A, B any](a Ordered[A], b Ordered[B]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			return false
		}
	}
	return true
}

// DuplicateKey returns the first key that appears more than once
func (o Ordered[V]) DuplicateKey() (string, bool) {
	seen := make(map[string]struct{}, len(o))
	for _, e := range o {
		if _, ok := seen[e.Key]; ok {
			return e.Key, true
		}
		seen[e.Key] = struct{}{}
	}
	return "", false
}
