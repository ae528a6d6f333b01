package dson

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Kind represents DSON primitive value kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindGUID
	KindDuration
	KindURL
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindGUID:
		return "guid"
	case KindDuration:
		return "duration"
	case KindURL:
		return "url"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is a closed tagged union over the primitive value kinds the
// writer can emit. Exactly one field is valid based on kind.
type Value struct {
	kind Kind

	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	strVal   string
	bytesVal []byte
	guidVal  uuid.UUID
	durVal   time.Duration
	urlVal   *url.URL
	timeVal  time.Time
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, boolVal: v}
}

// Int creates a signed integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, intVal: v}
}

// Uint creates an unsigned integer value.
func Uint(v uint64) Value {
	return Value{kind: KindUint, uintVal: v}
}

// Float creates a float value.
func Float(v float64) Value {
	return Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) Value {
	return Value{kind: KindString, strVal: v}
}

// OptionalStr creates a string value, or a null value when v is nil.
func OptionalStr(v *string) Value {
	if v == nil {
		return Null()
	}
	return Str(*v)
}

// Bytes creates a bytes value.
func Bytes(v []byte) Value {
	return Value{kind: KindBytes, bytesVal: v}
}

// GUID creates a GUID value.
func GUID(v uuid.UUID) Value {
	return Value{kind: KindGUID, guidVal: v}
}

// Duration creates a duration value.
func Duration(v time.Duration) Value {
	return Value{kind: KindDuration, durVal: v}
}

// URL creates a URL value. A nil URL is a null value.
func URL(v *url.URL) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindURL, urlVal: v}
}

// Time creates a timestamp value.
func Time(v time.Time) Value {
	return Value{kind: KindTime, timeVal: v}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns true if this is a null value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean value.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("dson: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the signed integer value.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("dson: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsUint returns the unsigned integer value.
func (v Value) AsUint() (uint64, error) {
	if v.kind != KindUint {
		return 0, fmt.Errorf("dson: expected uint, got %s", v.kind)
	}
	return v.uintVal, nil
}

// AsFloat returns the float value.
func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("dson: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v Value) AsStr() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("dson: expected string, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsBytes returns the bytes value.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, fmt.Errorf("dson: expected bytes, got %s", v.kind)
	}
	return v.bytesVal, nil
}

// AsGUID returns the GUID value.
func (v Value) AsGUID() (uuid.UUID, error) {
	if v.kind != KindGUID {
		return uuid.UUID{}, fmt.Errorf("dson: expected guid, got %s", v.kind)
	}
	return v.guidVal, nil
}

// AsDuration returns the duration value.
func (v Value) AsDuration() (time.Duration, error) {
	if v.kind != KindDuration {
		return 0, fmt.Errorf("dson: expected duration, got %s", v.kind)
	}
	return v.durVal, nil
}

// AsURL returns the URL value.
func (v Value) AsURL() (*url.URL, error) {
	if v.kind != KindURL {
		return nil, fmt.Errorf("dson: expected url, got %s", v.kind)
	}
	return v.urlVal, nil
}

// AsTime returns the timestamp value.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, fmt.Errorf("dson: expected time, got %s", v.kind)
	}
	return v.timeVal, nil
}

// ============================================================
// Dispatch
// ============================================================

// WriteValue emits one primitive value through the matching writer
// event. This is the single dispatch point from the value union onto
// the event interface.
func (w *Writer) WriteValue(v Value) error {
	switch v.kind {
	case KindNull:
		return w.WriteNull()
	case KindBool:
		return w.WriteBool(v.boolVal)
	case KindInt:
		return w.WriteInt(v.intVal)
	case KindUint:
		return w.WriteUint(v.uintVal)
	case KindFloat:
		return w.WriteFloat(v.floatVal)
	case KindString:
		return w.WriteString(v.strVal)
	case KindBytes:
		return w.WriteBytes(v.bytesVal)
	case KindGUID:
		return w.WriteGUID(v.guidVal)
	case KindDuration:
		return w.WriteDuration(v.durVal)
	case KindURL:
		return w.WriteURL(v.urlVal)
	case KindTime:
		return w.WriteTime(v.timeVal)
	default:
		return w.fail(fmt.Errorf("dson: unknown value kind %d", v.kind))
	}
}
