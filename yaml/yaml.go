// Package yaml provides a YAML codec that carries extjson extra values.
package yaml

import (
	"github.com/zoobzio/extjson"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements extjson.Codec for YAML.
type yamlCodec struct {
	opts []extjson.Option
}

// New returns a YAML codec. Struct fields are named by their json tags.
func New(opts ...extjson.Option) extjson.Codec {
	return &yamlCodec{opts: opts}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	tree, err := extjson.ToTree(v, c.opts...)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, extjson.NewCodecError(extjson.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes YAML data into v, which must be *any.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return extjson.NewCodecError(extjson.ErrUnmarshal, err)
	}
	return extjson.Assign(v, extjson.FromTree(raw, c.opts...))
}
