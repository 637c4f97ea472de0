package extjson

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the json tag so scanned metadata carries field names.
	sentinel.Tag("json")
}

// structPlan lists how to emit the exported fields of one struct type.
type structPlan struct {
	typeName string
	fields   []fieldPlan
	embedded []fieldPlan
	scanned  bool // built from sentinel metadata
}

// fieldPlan describes a single struct field.
type fieldPlan struct {
	index     []int  // reflect.Value.FieldByIndex access path
	name      string // object key
	omitEmpty bool   // skip zero-length and zero values
	isPtr     bool   // embedded through a pointer
}

var (
	plans   = make(map[reflect.Type]*structPlan)
	plansMu sync.RWMutex
)

// planFor returns a cached plan or builds a new one.
func planFor(rt reflect.Type) *structPlan {
	// Fast path: read-lock cache check
	plansMu.RLock()
	if cached, ok := plans[rt]; ok {
		plansMu.RUnlock()
		return cached
	}
	plansMu.RUnlock()

	// Slow path: build and cache with write-lock
	plansMu.Lock()
	defer plansMu.Unlock()

	// Double-check pattern
	if cached, ok := plans[rt]; ok {
		return cached
	}

	meta, scanned := metadataFor(rt)
	plan := buildPlan(rt, meta)
	plan.scanned = scanned
	plans[rt] = plan
	return plan
}

// Register scans T with sentinel and caches its plan ahead of first use.
// Sentinel also scans the struct types T refers to within the module, so
// their plans are built from the same metadata. Unregistered structs are
// planned by a local reflection scan.
func Register[T any]() error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return sentinel.ErrNotStruct
	}
	meta, err := sentinel.TryScan[T]()
	if err != nil {
		return err
	}
	if !describes(meta, rt) {
		return fmt.Errorf("%w: %s is cached for %s.%s", ErrTypeConflict, rt, meta.PackageName, meta.TypeName)
	}

	plan := buildPlan(rt, meta)
	plan.scanned = true

	plansMu.Lock()
	defer plansMu.Unlock()
	plans[rt] = plan
	return nil
}

// ResetPlans clears the struct plan cache.
// This is primarily useful for test isolation.
func ResetPlans() {
	plansMu.Lock()
	defer plansMu.Unlock()
	plans = make(map[reflect.Type]*structPlan)
}

func buildPlan(rt reflect.Type, meta sentinel.Metadata) *structPlan {
	plan := &structPlan{typeName: meta.TypeName}

	for _, field := range meta.Fields {
		sf := rt.FieldByIndex(field.Index)
		tag := field.Tags["json"]
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		fp := fieldPlan{
			index:     field.Index,
			name:      name,
			omitEmpty: hasOption(opts, "omitempty"),
		}

		// Untagged embedded structs are flattened into the parent.
		if sf.Anonymous && name == "" {
			switch {
			case field.Kind == sentinel.KindStruct:
				plan.embedded = append(plan.embedded, fp)
				continue
			case field.Kind == sentinel.KindPointer && sf.Type.Elem().Kind() == reflect.Struct:
				fp.isPtr = true
				plan.embedded = append(plan.embedded, fp)
				continue
			}
		}

		if fp.name == "" {
			fp.name = field.Name
		}
		plan.fields = append(plan.fields, fp)
	}

	return plan
}

// metadataFor returns the metadata sentinel holds for rt, or a local scan
// when it holds none. Sentinel keys its cache by bare type name, so a hit
// counts only when it describes rt itself.
func metadataFor(rt reflect.Type) (sentinel.Metadata, bool) {
	if rt.Name() != "" {
		if meta, ok := sentinel.Lookup(rt.Name()); ok && describes(meta, rt) {
			return meta, true
		}
	}
	return scanStruct(rt), false
}

// describes reports whether meta was extracted from rt rather than from a
// same-named type in another package.
func describes(meta sentinel.Metadata, rt reflect.Type) bool {
	if meta.TypeName != rt.Name() || meta.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if exported != len(meta.Fields) {
		return false
	}
	for _, f := range meta.Fields {
		if len(f.Index) != 1 || f.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(f.Index[0])
		if sf.Name != f.Name || sf.Type != f.ReflectType {
			return false
		}
	}
	return true
}

// scanStruct builds sentinel-shaped metadata for rt by reflection.
func scanStruct(rt reflect.Type) sentinel.Metadata {
	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup("json"); ok {
			fm.Tags["json"] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

// isEmptyValue mirrors the omitempty rules of encoding/json.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
