package extjson

// Codec provides content-type aware marshaling of trees with extra values.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v, which must be *any.
	Unmarshal(data []byte, v any) error
}

// jsonCodec implements Codec for JSON.
type jsonCodec struct {
	opts []Option
}

// JSON returns a JSON codec. The options apply to every call.
func JSON(opts ...Option) Codec {
	return &jsonCodec{opts: opts}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return Marshal(v, c.opts...)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	out, err := Unmarshal(data, c.opts...)
	if err != nil {
		return err
	}
	return Assign(v, out)
}

// Assign stores a decoded tree in target, which must be a non-nil *any.
func Assign(target any, tree any) error {
	p, ok := target.(*any)
	if !ok || p == nil {
		return ErrTarget
	}
	*p = tree
	return nil
}
