// Package cbor provides a CBOR codec that carries extjson extra values.
package cbor

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zoobzio/extjson"
)

// cborCodec implements extjson.Codec for CBOR.
type cborCodec struct {
	enc  cbor.EncMode
	dec  cbor.DecMode
	opts []extjson.Option
}

// New returns a CBOR codec using PreferredUnsortedEncOptions.
func New(opts ...extjson.Option) (extjson.Codec, error) {
	return newCodec(cbor.PreferredUnsortedEncOptions(), opts)
}

// NewDeterministic returns a CBOR codec using CoreDetEncOptions (RFC 8949),
// for byte-for-byte stable output.
func NewDeterministic(opts ...extjson.Option) (extjson.Codec, error) {
	return newCodec(cbor.CoreDetEncOptions(), opts)
}

// Must is like New but panics on error.
// Handy for package-level variables in tests and examples.
func Must(opts ...extjson.Option) extjson.Codec {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func newCodec(eo cbor.EncOptions, opts []extjson.Option) (extjson.Codec, error) {
	em, err := eo.EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborCodec{enc: em, dec: dm, opts: opts}, nil
}

// ContentType returns the MIME type for CBOR.
func (c *cborCodec) ContentType() string {
	return "application/cbor"
}

// Marshal encodes v as CBOR.
func (c *cborCodec) Marshal(v any) ([]byte, error) {
	tree, err := extjson.ToTree(v, c.opts...)
	if err != nil {
		return nil, err
	}
	data, err := c.enc.Marshal(tree)
	if err != nil {
		return nil, extjson.NewCodecError(extjson.ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes CBOR data into v, which must be *any.
func (c *cborCodec) Unmarshal(data []byte, v any) error {
	var raw any
	if err := c.dec.Unmarshal(data, &raw); err != nil {
		return extjson.NewCodecError(extjson.ErrUnmarshal, err)
	}
	return extjson.Assign(v, extjson.FromTree(raw, c.opts...))
}
