// Package msgpack provides a MessagePack codec that carries extjson extra values.
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/extjson"
)

// msgpackCodec implements extjson.Codec for MessagePack.
type msgpackCodec struct {
	opts []extjson.Option
}

// New returns a MessagePack codec. Struct fields are named by their json tags.
func New(opts ...extjson.Option) extjson.Codec {
	return &msgpackCodec{opts: opts}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	tree, err := extjson.ToTree(v, c.opts...)
	if err != nil {
		return nil, err
	}
	data, err := msgpack.Marshal(tree)
	if err != nil {
		return nil, extjson.NewCodecError(extjson.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes MessagePack data into v, which must be *any.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	var raw any
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return extjson.NewCodecError(extjson.ErrUnmarshal, err)
	}
	return extjson.Assign(v, extjson.FromTree(raw, c.opts...))
}
