package extjson

import (
	"encoding/json"
	"fmt"
)

// decoder resolves tagged objects in a generic tree.
type decoder struct {
	o         *options
	fallbacks int
}

// DecoderHook returns the composed object hook: the caller's WithObjectHook
// first, then the built-in hook on its result. It handles one object; nested
// objects must already be resolved. It never fails: objects it cannot
// reconstruct come back unchanged.
func DecoderHook(opts ...Option) ObjectHook {
	d := &decoder{o: buildOptions(opts)}
	return func(m map[string]any) any {
		return d.hook(m)
	}
}

// FromTree resolves every tagged object in tree, innermost first. The input
// is not modified. Maps with non-string keys are converted to map[string]any.
func FromTree(tree any, opts ...Option) any {
	d := &decoder{o: buildOptions(opts)}
	return d.resolve(tree)
}

func (d *decoder) resolve(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, c := range t {
			m[k] = d.resolve(c)
		}
		return d.hook(m)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, c := range t {
			m[fmt.Sprint(k)] = d.resolve(c)
		}
		return d.hook(m)
	case []any:
		l := make([]any, len(t))
		for i, c := range t {
			l[i] = d.resolve(c)
		}
		return l
	case json.Number:
		if d.o.useNumber {
			return t
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	}
	return v
}

// hook runs the caller's hook, then the built-in one on its result.
func (d *decoder) hook(m map[string]any) any {
	var v any = m
	if d.o.hook != nil {
		v = d.o.hook(m)
	}
	if mm, ok := v.(map[string]any); ok {
		return d.objectHook(mm)
	}
	return v
}

// objectHook reconstructs a tagged object, or returns m unchanged when it
// carries no tag or cannot be reconstructed.
func (d *decoder) objectHook(m map[string]any) any {
	raw, ok := m[TypeKey]
	if !ok {
		return m
	}
	name, ok := raw.(string)
	if !ok {
		d.fallback(Tag(fmt.Sprint(raw)), newFieldError(ErrFieldType, "", TypeKey, nil))
		return m
	}
	tag := Tag(name)
	dec, ok := decoders[tag]
	if !ok {
		d.fallback(tag, newFieldError(ErrUnknownTag, tag, "", nil))
		return m
	}

	fields := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != TypeKey {
			fields[k] = v
		}
	}

	v, err := d.construct(dec, newFieldReader(tag, fields))
	if err != nil {
		d.fallback(tag, err)
		return m
	}
	return v
}

// construct runs a decoder, turning a panic into an error.
func (d *decoder) construct(dec decodeFunc, r *fieldReader) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, newFieldError(ErrFieldType, r.tag, "", fmt.Errorf("panic: %v", p))
		}
	}()
	return dec(r, d.o)
}

func (d *decoder) fallback(tag Tag, err error) {
	d.fallbacks++
	emitDecodeFallback(d.o.ctx, string(tag), err)
}
