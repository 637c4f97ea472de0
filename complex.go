package extjson

func encodeComplex(v any, _ *options) (map[string]any, error) {
	var c complex128
	switch n := v.(type) {
	case complex128:
		c = n
	case complex64:
		c = complex128(n)
	}
	return map[string]any{
		TypeKey: string(TagComplex),
		"real":  real(c),
		"imag":  imag(c),
	}, nil
}

func decodeComplex(r *fieldReader, _ *options) (any, error) {
	re := r.Float("real", true)
	im := r.Float("imag", true)
	if err := r.done(); err != nil {
		return nil, err
	}
	return complex(re, im), nil
}
