// Package extjson extends JSON encoding so that dates, times of day, datetimes,
// durations, timezones, sets, frozen sets and complex numbers survive a round
// trip through JSON text.
//
// # Wire Format
//
// Each extra value travels as a tagged object: a JSON object holding the
// reserved key "__type__" and the canonical fields of its type.
//
//	{"__type__": "datetime.date", "year": 2013, "month": 10, "day": 18}
//
// Tags and their Go types:
//
//	datetime.date       Date
//	datetime.time       TimeOfDay
//	datetime.datetime   time.Time
//	datetime.timedelta  time.Duration
//	datetime.timezone   *time.Location (and any Zoner)
//	set                 Set
//	frozenset           FrozenSet
//	complex             complex128, complex64
//
// Times and durations carry microsecond precision on the wire.
//
// # Basic Usage
//
//	data, _ := extjson.Marshal(map[string]any{
//	    "due":   extjson.Date{Year: 2024, Month: time.March, Day: 1},
//	    "every": 36 * time.Hour,
//	    "tags":  extjson.NewSet("a", "b"),
//	})
//
//	v, _ := extjson.Unmarshal(data)
//	m := v.(map[string]any)
//	due := m["due"].(extjson.Date)
//
// # Custom Types
//
// Callers add their own types with the same two hooks the built-in types use.
// WithDefault runs before the built-in encoders and returns an error wrapping
// ErrUnsupportedType for values it does not handle. WithObjectHook runs before
// the built-in hook on every decoded object and returns objects it does not
// handle unchanged. Both compose with the built-in types rather than replacing them.
//
// # Decode Fallback
//
// Decoding never fails because of a tagged object. An unknown tag, an
// unexpected or missing field, or an out-of-range value leaves the object as
// a plain map[string]any, tag key included. Check with IsTagged when it matters.
// Only malformed JSON fails a decode.
//
// # Escape Hatch
//
// With Config.AllowPickle (or SetAllowPickle) encoded timezones carry a
// "__pickle__" blob that restores the original named zone on decode. It is
// off by default and unsafe against untrusted input unless Config.PickleKey is set.
package extjson

import (
	"bytes"
	"errors"
	"io"
	"time"

	gojson "github.com/goccy/go-json"
)

var errTrailingData = errors.New("json: invalid character after top-level value")

// Encode writes the JSON encoding of v to w, followed by a newline.
func Encode(w io.Writer, v any, opts ...Option) error {
	o := buildOptions(opts)
	start := time.Now()

	cw := &countingWriter{w: w}
	err := encodeTo(cw, v, o)
	emitEncodeComplete(o.ctx, typeOf(v), cw.n, time.Since(start), err)
	return err
}

// Marshal returns the JSON encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	start := time.Now()

	var buf bytes.Buffer
	err := encodeTo(&buf, v, o)
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	emitEncodeComplete(o.ctx, typeOf(v), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Decode reads one JSON value from r and returns it with every tagged object resolved.
func Decode(r io.Reader, opts ...Option) (any, error) {
	o := buildOptions(opts)
	start := time.Now()

	cr := &countingReader{r: r, max: o.maxBytes}
	dec := gojson.NewDecoder(cr)
	dec.UseNumber()

	d := &decoder{o: o}
	var raw any
	err := dec.Decode(&raw)
	if cr.err != nil {
		err = cr.err
	}
	var out any
	if err == nil {
		out = d.resolve(raw)
	}
	emitDecodeComplete(o.ctx, cr.n, time.Since(start), d.fallbacks, err)
	return out, err
}

// Unmarshal parses data and returns it with every tagged object resolved.
func Unmarshal(data []byte, opts ...Option) (any, error) {
	o := buildOptions(opts)
	start := time.Now()

	d := &decoder{o: o}
	raw, err := unmarshalRaw(data, o)
	var out any
	if err == nil {
		out = d.resolve(raw)
	}
	emitDecodeComplete(o.ctx, len(data), time.Since(start), d.fallbacks, err)
	return out, err
}

func encodeTo(w io.Writer, v any, o *options) error {
	e := &encoder{o: o}
	tree, err := e.walk(v, 0)
	if err != nil {
		return err
	}
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(o.escapeHTML)
	if o.prefix != "" || o.indent != "" {
		enc.SetIndent(o.prefix, o.indent)
	}
	return enc.Encode(tree)
}

func unmarshalRaw(data []byte, o *options) (any, error) {
	if o.maxBytes > 0 && int64(len(data)) > o.maxBytes {
		return nil, ErrPayloadTooLarge
	}
	var raw any
	if len(bytes.TrimSpace(data)) == 0 {
		// The stream decoder reports io.EOF here; Unmarshal names the real error.
		if err := gojson.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var extra any
	switch err := dec.Decode(&extra); {
	case err == io.EOF:
		return raw, nil
	case err != nil:
		return nil, err
	default:
		return nil, errTrailingData
	}
}

// countingWriter tracks bytes written for signals.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// countingReader tracks bytes read and enforces an optional limit.
type countingReader struct {
	r   io.Reader
	n   int
	max int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.max > 0 {
		left := c.max - int64(c.n)
		if left <= 0 {
			// one probe byte distinguishes "exactly max" from "over max"
			var probe [1]byte
			if k, _ := c.r.Read(probe[:]); k > 0 {
				c.err = ErrPayloadTooLarge
				return 0, c.err
			}
			return 0, io.EOF
		}
		if int64(len(p)) > left {
			p = p[:left]
		}
	}
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
