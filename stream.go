package extjson

import (
	"io"
	"time"

	gojson "github.com/goccy/go-json"
)

// Encoder writes a stream of JSON values, one per line.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes v followed by a newline. Configuration is read per call.
func (e *Encoder) Encode(v any) error {
	return Encode(e.w, v, e.opts...)
}

// Decoder reads a stream of JSON values. The size limit, if any, applies to
// the whole stream.
type Decoder struct {
	dec  *gojson.Decoder
	cr   *countingReader
	opts []Option
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	o := buildOptions(opts)
	cr := &countingReader{r: r, max: o.maxBytes}
	dec := gojson.NewDecoder(cr)
	dec.UseNumber()
	return &Decoder{dec: dec, cr: cr, opts: opts}
}

// More reports whether another value is available.
func (d *Decoder) More() bool {
	return d.dec.More()
}

// Decode reads the next value and resolves its tagged objects.
// It returns io.EOF at the end of the stream.
func (d *Decoder) Decode() (any, error) {
	o := buildOptions(d.opts)
	start := time.Now()
	before := d.cr.n

	var raw any
	err := d.dec.Decode(&raw)
	if d.cr.err != nil {
		err = d.cr.err
	}
	dd := &decoder{o: o}
	var out any
	if err == nil {
		out = dd.resolve(raw)
	}
	if err != io.EOF {
		emitDecodeComplete(o.ctx, d.cr.n-before, time.Since(start), dd.fallbacks, err)
	}
	return out, err
}
