package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Key addresses one level of a state tree: either a field name or an
// integer index.
//
// Keys follow property-key semantics: a field key whose text is a decimal
// integer also indexes arrays, and an index key addresses objects by its
// decimal string form. F("0") and I(0) therefore select the same child.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// F creates a field key.
func F(name string) Key {
	return Key{name: name}
}

// I creates an index key.
func I(index int) Key {
	return Key{index: index, isIndex: true}
}

// IsIndex reports whether the key was built with I.
func (k Key) IsIndex() bool {
	return k.isIndex
}

// String returns the key's property name.
func (k Key) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// arrayIndex returns the array position addressed by the key. Field keys
// only qualify when they are the canonical decimal form of an integer, so
// "01" and "+1" do not index arrays.
func (k Key) arrayIndex() (int, bool) {
	if k.isIndex {
		return k.index, k.index >= 0
	}
	n, err := strconv.Atoi(k.name)
	if err != nil || n < 0 || strconv.Itoa(n) != k.name {
		return 0, false
	}
	return n, true
}

// Path is an ordered sequence of keys identifying a location in a state tree.
type Path []Key

// Keys builds a path from field names.
func Keys(names ...string) Path {
	p := make(Path, len(names))
	for i, n := range names {
		p[i] = F(n)
	}
	return p
}

// String renders the path as dot-separated property names.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, k := range p {
		parts[i] = k.String()
	}
	return strings.Join(parts, ".")
}

// Append returns a new path with keys added; p is never modified.
func (p Path) Append(keys ...Key) Path {
	out := make(Path, 0, len(p)+len(keys))
	out = append(out, p...)
	return append(out, keys...)
}

// ParsePath parses a dot-separated path such as "widgets.3.title".
// Segments made of decimal digits become index keys.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	segments := strings.Split(s, ".")
	p := make(Path, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("path %q: empty segment at position %d", s, i)
		}
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 && strconv.Itoa(n) == seg {
			p[i] = I(n)
			continue
		}
		p[i] = F(seg)
	}
	return p, nil
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the child of v addressed by key.
// Scalars have no children; lookups on them report false.
func Lookup(v IRValue, key Key) (IRValue, bool) {
	switch val := v.(type) {
	case IRObject:
		child, ok := val[key.String()]
		return child, ok
	case IRArray:
		idx, ok := key.arrayIndex()
		if !ok || idx >= len(val) {
			return nil, false
		}
		return val[idx], true
	default:
		return nil, false
	}
}

// LookupPath descends through v along path.
// It reports false as soon as a key is not present.
func LookupPath(v IRValue, path Path) (IRValue, bool) {
	cur := v
	for _, key := range path {
		next, ok := Lookup(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// IsAbsent reports whether v is nil or IRNull.
func IsAbsent(v IRValue) bool {
	switch v.(type) {
	case nil, IRNull:
		return true
	}
	return false
}

// IsZero reports whether v is absent or the empty value of its kind:
// false, 0, "", an empty array or an empty object.
func IsZero(v IRValue) bool {
	switch val := v.(type) {
	case nil, IRNull:
		return true
	case IRString:
		return val == ""
	case IRInt:
		return val == 0
	case IRBool:
		return !bool(val)
	case IRArray:
		return len(val) == 0
	case IRObject:
		return len(val) == 0
	}
	return false
}

// SetIn returns a copy of root with value stored at path. Objects along
// the path are copied, never mutated; missing intermediate levels are
// created as objects. An array index may address an existing element or
// the position just past the end (append).
func SetIn(root IRValue, path Path, value IRValue) (IRValue, error) {
	if len(path) == 0 {
		return value, nil
	}
	key, rest := path[0], path[1:]

	switch cur := root.(type) {
	case nil, IRNull:
		child, err := SetIn(nil, rest, value)
		if err != nil {
			return nil, err
		}
		return IRObject{key.String(): child}, nil

	case IRObject:
		child, err := SetIn(cur[key.String()], rest, value)
		if err != nil {
			return nil, err
		}
		out := make(IRObject, len(cur)+1)
		for k, v := range cur {
			out[k] = v
		}
		out[key.String()] = child
		return out, nil

	case IRArray:
		idx, ok := key.arrayIndex()
		if !ok || idx > len(cur) {
			return nil, fmt.Errorf("index %q out of range for array of length %d", key.String(), len(cur))
		}
		var existing IRValue
		if idx < len(cur) {
			existing = cur[idx]
		}
		child, err := SetIn(existing, rest, value)
		if err != nil {
			return nil, err
		}
		out := make(IRArray, len(cur), len(cur)+1)
		copy(out, cur)
		if idx == len(cur) {
			return append(out, child), nil
		}
		out[idx] = child
		return out, nil

	default:
		return nil, fmt.Errorf("cannot set %q inside scalar %T", key.String(), root)
	}
}

// DeleteIn returns a copy of root without the value at path.
// Deleting a path that does not exist returns root unchanged.
func DeleteIn(root IRValue, path Path) (IRValue, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	key, rest := path[0], path[1:]

	switch cur := root.(type) {
	case IRObject:
		child, ok := cur[key.String()]
		if !ok {
			return root, nil
		}
		out := make(IRObject, len(cur))
		for k, v := range cur {
			out[k] = v
		}
		if len(rest) == 0 {
			delete(out, key.String())
			return out, nil
		}
		updated, err := DeleteIn(child, rest)
		if err != nil {
			return nil, err
		}
		out[key.String()] = updated
		return out, nil

	case IRArray:
		idx, ok := key.arrayIndex()
		if !ok || idx >= len(cur) {
			return root, nil
		}
		if len(rest) == 0 {
			out := make(IRArray, 0, len(cur)-1)
			out = append(out, cur[:idx]...)
			return append(out, cur[idx+1:]...), nil
		}
		updated, err := DeleteIn(cur[idx], rest)
		if err != nil {
			return nil, err
		}
		out := make(IRArray, len(cur))
		copy(out, cur)
		out[idx] = updated
		return out, nil

	default:
		return root, nil
	}
}
