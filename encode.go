package dson

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Encoder walks an arbitrary Go value graph and drives a Writer with
// the corresponding structural and value events, depth first.
//
// Structs emit their exported fields in declaration order; the
// `dson:"name"` tag renames a field, `dson:"-"` skips it and the
// `omitempty` option drops zero values. Map keys must be strings and
// are emitted in sorted order so output is deterministic. Circular
// references are detected and reported as errors.
type Encoder struct {
	w    *Writer
	seen map[uintptr]struct{}
}

// NewEncoder creates an Encoder over w.
func NewEncoder(w *Writer) *Encoder {
	return &Encoder{w: w, seen: make(map[uintptr]struct{})}
}

// Encode serializes v through the underlying Writer. It does not flush;
// callers finish with the Writer's Close or Flush.
func (e *Encoder) Encode(v any) error {
	return e.encode(reflect.ValueOf(v))
}

// Marshal serializes v to compact notation with default options.
func Marshal(v any) (string, error) {
	return MarshalWithOptions(v, DefaultWriterOptions())
}

// MarshalIndent serializes v to indented notation with default options.
func MarshalIndent(v any) (string, error) {
	return MarshalWithOptions(v, IndentedWriterOptions())
}

// MarshalWithOptions serializes v with custom writer options.
func MarshalWithOptions(v any, opts WriterOptions) (string, error) {
	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		return "", err
	}
	if err := NewEncoder(w).Encode(v); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	urlType      = reflect.TypeOf(url.URL{})
)

func (e *Encoder) encode(rv reflect.Value) error {
	if !rv.IsValid() {
		return e.w.WriteNull()
	}

	// Domain types before kind-based dispatch: Duration is an int64
	// and uuid.UUID a [16]byte underneath.
	switch rv.Type() {
	case timeType:
		return e.w.WriteTime(rv.Interface().(time.Time))
	case durationType:
		return e.w.WriteDuration(rv.Interface().(time.Duration))
	case uuidType:
		return e.w.WriteGUID(rv.Interface().(uuid.UUID))
	case urlType:
		u := rv.Interface().(url.URL)
		return e.w.WriteURL(&u)
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return e.w.WriteNull()
		}
		return e.encode(rv.Elem())

	case reflect.Pointer:
		if rv.IsNil() {
			return e.w.WriteNull()
		}
		ptr := rv.Pointer()
		if _, ok := e.seen[ptr]; ok {
			return fmt.Errorf("dson: circular reference through %s", rv.Type())
		}
		e.seen[ptr] = struct{}{}
		err := e.encode(rv.Elem())
		delete(e.seen, ptr)
		return err

	case reflect.Bool:
		return e.w.WriteBool(rv.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.w.WriteInt(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.w.WriteUint(rv.Uint())

	case reflect.Float32:
		return e.w.WriteFloat32(float32(rv.Float()))

	case reflect.Float64:
		return e.w.WriteFloat(rv.Float())

	case reflect.String:
		return e.w.WriteString(rv.String())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.w.WriteBytes(rv.Bytes())
		}
		if rv.IsNil() {
			return e.w.WriteNull()
		}
		ptr := rv.Pointer()
		if _, ok := e.seen[ptr]; ok {
			return fmt.Errorf("dson: circular reference through %s", rv.Type())
		}
		e.seen[ptr] = struct{}{}
		err := e.encodeArray(rv)
		delete(e.seen, ptr)
		return err

	case reflect.Array:
		return e.encodeArray(rv)

	case reflect.Map:
		if rv.IsNil() {
			return e.w.WriteNull()
		}
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("dson: unsupported map key type %s", rv.Type().Key())
		}
		ptr := rv.Pointer()
		if _, ok := e.seen[ptr]; ok {
			return fmt.Errorf("dson: circular reference through %s", rv.Type())
		}
		e.seen[ptr] = struct{}{}
		err := e.encodeMap(rv)
		delete(e.seen, ptr)
		return err

	case reflect.Struct:
		return e.encodeStruct(rv)

	default:
		return fmt.Errorf("dson: unsupported type %s", rv.Type())
	}
}

func (e *Encoder) encodeArray(rv reflect.Value) error {
	if err := e.w.BeginArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := e.encode(rv.Index(i)); err != nil {
			return err
		}
	}
	return e.w.EndArray()
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)

	if err := e.w.BeginObject(); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.w.Name(k); err != nil {
			return err
		}
		if err := e.encode(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))); err != nil {
			return err
		}
	}
	return e.w.EndObject()
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	if err := e.w.BeginObject(); err != nil {
		return err
	}
	if err := e.encodeStructFields(rv); err != nil {
		return err
	}
	return e.w.EndObject()
}

func (e *Encoder) encodeStructFields(rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)

		// Untagged embedded structs flatten into the parent object,
		// mirroring encoding/json. This runs before the exported
		// check: an embedded field of unexported struct type still
		// promotes its exported fields.
		if sf.Anonymous && sf.Tag.Get("dson") == "" {
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct && ev.Type() != timeType && ev.Type() != uuidType && ev.Type() != urlType {
				if err := e.encodeStructFields(ev); err != nil {
					return err
				}
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		name := sf.Name
		omitEmpty := false
		if tag, ok := sf.Tag.Lookup("dson"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}

		if omitEmpty && fv.IsZero() {
			continue
		}

		if err := e.w.Name(name); err != nil {
			return err
		}
		if err := e.encode(fv); err != nil {
			return err
		}
	}
	return nil
}
