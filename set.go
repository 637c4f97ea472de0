package extjson

func encodeSet(v any, _ *options) (map[string]any, error) {
	return map[string]any{
		TypeKey:   string(TagSet),
		"members": v.(Set).Members(),
	}, nil
}

func encodeFrozenSet(v any, _ *options) (map[string]any, error) {
	return map[string]any{
		TypeKey:   string(TagFrozenSet),
		"members": v.(FrozenSet).Members(),
	}, nil
}

func decodeSet(r *fieldReader, _ *options) (any, error) {
	m, err := readMembers(r)
	if err != nil {
		return nil, err
	}
	return Set(m), nil
}

func decodeFrozenSet(r *fieldReader, _ *options) (any, error) {
	m, err := readMembers(r)
	if err != nil {
		return nil, err
	}
	return freeze(m), nil
}

func readMembers(r *fieldReader) (map[any]struct{}, error) {
	members := r.List("members", true)
	if err := r.done(); err != nil {
		return nil, err
	}
	m := make(map[any]struct{}, len(members))
	for _, v := range members {
		if err := addMember(m, v); err != nil {
			return nil, newFieldError(ErrFieldType, r.tag, "members", err)
		}
	}
	return m, nil
}
