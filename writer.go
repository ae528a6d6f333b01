package dson

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type frameKind uint8

const (
	frameObject frameKind = iota + 1
	frameArray
)

func (k frameKind) String() string {
	switch k {
	case frameObject:
		return "object"
	case frameArray:
		return "array"
	default:
		return "unknown"
	}
}

// frame tracks one open container on the writer's stack.
type frame struct {
	kind     frameKind
	hasChild bool
}

// Writer is a forward-only token emitter. It receives structural and
// value events in traversal order and writes the notation's token
// stream to the destination sink.
//
// A Writer is single-use and single-threaded: after any error the
// instance is unusable and every further call returns the same error.
// Concurrent serializations need one Writer each.
type Writer struct {
	out  *bufio.Writer
	sink io.Writer
	opts WriterOptions
	unit string // one indentation level

	stack     []frame
	started   bool // at least one token written
	afterName bool // next token completes a "name is value" line
	closed    bool
	err       error
}

// NewWriter creates a Writer over the destination sink. It fails with
// an INVALID_CONFIGURATION error for invalid options.
func NewWriter(sink io.Writer, opts WriterOptions) (*Writer, error) {
	if sink == nil {
		return nil, errConfiguration("destination sink cannot be nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Writer{
		out:  bufio.NewWriter(sink),
		sink: sink,
		opts: opts,
		unit: strings.Repeat(string(opts.IndentChar), opts.IndentSize),
	}, nil
}

// Depth returns the number of currently open container frames.
func (w *Writer) Depth() int {
	return len(w.stack)
}

// ============================================================
// Structural events
// ============================================================

// BeginObject opens an object frame and emits the object-open token.
func (w *Writer) BeginObject() error {
	if w.err != nil {
		return w.err
	}
	w.beginValue()
	w.emit(w.opts.Vocabulary.ObjectOpen)
	w.stack = append(w.stack, frame{kind: frameObject})
	return w.err
}

// EndObject closes the innermost frame, which must be an object.
func (w *Writer) EndObject() error {
	return w.endFrame("EndObject", frameObject, w.opts.Vocabulary.ObjectClose)
}

// BeginArray opens an array frame and emits the array-open token.
func (w *Writer) BeginArray() error {
	if w.err != nil {
		return w.err
	}
	w.beginValue()
	w.emit(w.opts.Vocabulary.ArrayOpen)
	w.stack = append(w.stack, frame{kind: frameArray})
	return w.err
}

// EndArray closes the innermost frame, which must be an array.
func (w *Writer) EndArray() error {
	return w.endFrame("EndArray", frameArray, w.opts.Vocabulary.ArrayClose)
}

func (w *Writer) endFrame(op string, kind frameKind, token string) error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	if top == nil {
		return w.fail(errInvalidState(op, "no open frame"))
	}
	if top.kind != kind {
		return w.fail(errInvalidState(op, "innermost open frame is an "+top.kind.String()))
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.separator()
	w.emit(token)
	return w.err
}

// Name emits a property name and the assignment word. The innermost
// open frame must be an object; the caller is responsible for following
// every Name with exactly one value event.
func (w *Writer) Name(name string) error {
	if w.err != nil {
		return w.err
	}
	top := w.top()
	if top == nil || top.kind != frameObject {
		return w.fail(errInvalidState("Name", "no open object frame"))
	}
	if top.hasChild {
		w.delimiter(w.opts.Vocabulary.ObjectDelim)
	}
	top.hasChild = true
	w.separator()
	w.emit(quoteString(name))
	w.emit(" " + w.opts.Vocabulary.Assign)
	w.afterName = true
	return w.err
}

// ============================================================
// Value events
// ============================================================

// WriteNull emits the null marker.
func (w *Writer) WriteNull() error {
	return w.writeToken(w.opts.Vocabulary.Null)
}

// WriteBool emits the boolean marker for b.
func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.writeToken(w.opts.Vocabulary.True)
	}
	return w.writeToken(w.opts.Vocabulary.False)
}

// WriteString emits a quoted, escaped string value.
func (w *Writer) WriteString(s string) error {
	return w.writeToken(quoteString(s))
}

// WriteOptionalString emits the string s points to, or the null marker
// when s is nil.
func (w *Writer) WriteOptionalString(s *string) error {
	if s == nil {
		return w.WriteNull()
	}
	return w.WriteString(*s)
}

// WriteInt emits a signed integer in canonical base-10 form.
func (w *Writer) WriteInt(i int64) error {
	return w.writeToken(strconv.FormatInt(i, 10))
}

// WriteUint emits an unsigned integer in canonical base-10 form.
func (w *Writer) WriteUint(u uint64) error {
	return w.writeToken(strconv.FormatUint(u, 10))
}

// WriteFloat emits a 64-bit float in shortest round-trip form, with the
// exponent marker replaced by the vocabulary's exponent word.
func (w *Writer) WriteFloat(f float64) error {
	return w.writeToken(w.formatFloat(f, 64))
}

// WriteFloat32 emits a 32-bit float.
func (w *Writer) WriteFloat32(f float32) error {
	return w.writeToken(w.formatFloat(float64(f), 32))
}

// WriteBytes emits buf as a quoted base64 string.
func (w *Writer) WriteBytes(buf []byte) error {
	return w.writeToken(`"` + base64.StdEncoding.EncodeToString(buf) + `"`)
}

// WriteGUID emits a GUID in canonical hyphenated form, quoted.
func (w *Writer) WriteGUID(id uuid.UUID) error {
	return w.writeToken(`"` + id.String() + `"`)
}

// WriteDuration emits a duration in Go's canonical form, quoted.
func (w *Writer) WriteDuration(d time.Duration) error {
	return w.writeToken(`"` + d.String() + `"`)
}

// WriteURL emits a URL in canonical string form, quoted. A nil URL
// emits the null marker.
func (w *Writer) WriteURL(u *url.URL) error {
	if u == nil {
		return w.WriteNull()
	}
	return w.writeToken(quoteString(u.String()))
}

// WriteTime emits a timestamp in RFC 3339 form, quoted.
func (w *Writer) WriteTime(t time.Time) error {
	return w.writeToken(`"` + t.Format(time.RFC3339) + `"`)
}

// ============================================================
// Unsupported events
// ============================================================
//
// The notation has no syntax for these JSON-writer events. They fail
// unconditionally and leave the Writer unusable.

// WriteComment always fails: the notation has no comment syntax.
func (w *Writer) WriteComment(text string) error {
	return w.fail(errUnsupported("WriteComment", "comment syntax"))
}

// BeginConstructor always fails: the notation has no constructor syntax.
func (w *Writer) BeginConstructor(name string) error {
	return w.fail(errUnsupported("BeginConstructor", "constructor syntax"))
}

// WriteRaw always fails: raw passthrough would bypass the token stream.
func (w *Writer) WriteRaw(text string) error {
	return w.fail(errUnsupported("WriteRaw", "raw passthrough"))
}

// WriteRawValue always fails: raw passthrough would bypass the token stream.
func (w *Writer) WriteRawValue(text string) error {
	return w.fail(errUnsupported("WriteRawValue", "raw passthrough"))
}

// WriteUndefined always fails: the notation has no undefined marker.
func (w *Writer) WriteUndefined() error {
	return w.fail(errUnsupported("WriteUndefined", "undefined marker"))
}

// ============================================================
// Lifecycle
// ============================================================

// Flush forces buffered output through to the destination sink.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil {
		return w.fail(fmt.Errorf("dson: flushing output: %w", err))
	}
	return nil
}

// Close flushes buffered output and, when the CloseOutput option is
// set, closes the destination sink. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.out.Flush()
	if w.opts.CloseOutput {
		if c, ok := w.sink.(io.Closer); ok {
			if err := c.Close(); err != nil && flushErr == nil {
				flushErr = err
			}
		}
	}
	if flushErr != nil {
		return w.fail(fmt.Errorf("dson: closing output: %w", flushErr))
	}
	return w.err
}

// ============================================================
// Separator algorithm
// ============================================================

// writeToken emits one primitive value token with its separator and,
// when it follows a sibling in the same container, the sibling
// delimiter.
func (w *Writer) writeToken(token string) error {
	if w.err != nil {
		return w.err
	}
	w.beginValue()
	w.emit(token)
	return w.err
}

// beginValue runs the per-value part of the separator algorithm: the
// sibling delimiter when the enclosing container already has a child,
// then the ordinary separator. A value that completes a "name is"
// line skips both and stays on that line.
func (w *Writer) beginValue() {
	if top := w.top(); top != nil && !w.afterName {
		if top.hasChild {
			if top.kind == frameArray {
				w.delimiter(w.opts.Vocabulary.ArrayDelim)
			} else {
				w.delimiter(w.opts.Vocabulary.ObjectDelim)
			}
		}
		top.hasChild = true
	}
	w.separator()
}

// delimiter emits the sibling-delimiter token. It attaches to the
// previous token: word tokens get one leading space, punctuation
// tokens none. In indented mode this is what keeps the comma (or
// "and") on the previous line.
func (w *Writer) delimiter(token string) {
	if isWordToken(token) {
		w.emit(" " + token)
	} else {
		w.emit(token)
	}
}

// separator writes what precedes a token: nothing before the first
// token of the stream, a single space after a property name, a single
// space in compact mode, or a newline plus depth indentation in
// indented mode.
func (w *Writer) separator() {
	if !w.started {
		w.started = true
		return
	}
	if w.afterName {
		w.afterName = false
		w.emit(" ")
		return
	}
	if w.opts.Formatting == Indented {
		w.emit("\n")
		for i := 0; i < len(w.stack); i++ {
			w.emit(w.unit)
		}
		return
	}
	w.emit(" ")
}

func (w *Writer) top() *frame {
	if len(w.stack) == 0 {
		return nil
	}
	return &w.stack[len(w.stack)-1]
}

func (w *Writer) emit(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.out.WriteString(s); err != nil {
		w.err = fmt.Errorf("dson: writing output: %w", err)
	}
}

// fail records a fatal error. Every later call returns it.
func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return err
}

// formatFloat renders a float in shortest round-trip 'g' form and
// substitutes the vocabulary's exponent markers for "e+"/"e-".
func (w *Writer) formatFloat(f float64, bits int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	v := w.opts.Vocabulary
	if v.ExponentPos != "e+" || v.ExponentNeg != "e-" {
		if strings.Contains(s, "e+") {
			s = strings.Replace(s, "e+", v.ExponentPos, 1)
		} else if strings.Contains(s, "e-") {
			s = strings.Replace(s, "e-", v.ExponentNeg, 1)
		}
	}
	return s
}

// ============================================================
// String escaping
// ============================================================

// quoteString escapes a string following JSON string rules: quote,
// backslash and control characters. The notation only replaces
// structural punctuation, string literal syntax is unchanged.
func quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
