package dson

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Compact mode
// ============================================================

func TestWriter_CompactScenarios(t *testing.T) {
	tests := []struct {
		name     string
		drive    func(w *Writer) error
		expected string
	}{
		{
			name: "single member object",
			drive: func(w *Writer) error {
				w.BeginObject()
				w.Name("hello")
				w.WriteString("world")
				return w.EndObject()
			},
			expected: `such "hello" is "world" wow`,
		},
		{
			name: "two member object",
			drive: func(w *Writer) error {
				w.BeginObject()
				w.Name("a")
				w.WriteInt(1)
				w.Name("b")
				w.WriteInt(2)
				return w.EndObject()
			},
			expected: `such "a" is 1 next "b" is 2 wow`,
		},
		{
			name: "array with delimiters",
			drive: func(w *Writer) error {
				w.BeginArray()
				w.WriteInt(1)
				w.WriteInt(2)
				w.WriteInt(3)
				return w.EndArray()
			},
			expected: `many 1 next 2 next 3 many`,
		},
		{
			name: "empty object",
			drive: func(w *Writer) error {
				w.BeginObject()
				return w.EndObject()
			},
			expected: `such wow`,
		},
		{
			name: "empty array",
			drive: func(w *Writer) error {
				w.BeginArray()
				return w.EndArray()
			},
			expected: `many many`,
		},
		{
			name: "nested containers",
			drive: func(w *Writer) error {
				w.BeginObject()
				w.Name("rows")
				w.BeginArray()
				w.BeginObject()
				w.Name("ok")
				w.WriteBool(true)
				w.EndObject()
				w.BeginObject()
				w.Name("ok")
				w.WriteBool(false)
				w.EndObject()
				w.EndArray()
				return w.EndObject()
			},
			expected: `such "rows" is many such "ok" is notfalse wow next such "ok" is nottrue wow many wow`,
		},
		{
			name: "top level null",
			drive: func(w *Writer) error {
				return w.WriteNull()
			},
			expected: `nullish`,
		},
		{
			name: "optional string nil defers to null",
			drive: func(w *Writer) error {
				return w.WriteOptionalString(nil)
			},
			expected: `nullish`,
		},
		{
			name: "bytes as quoted base64",
			drive: func(w *Writer) error {
				return w.WriteBytes([]byte("abc"))
			},
			expected: `"YWJj"`,
		},
		{
			name: "negative integer",
			drive: func(w *Writer) error {
				return w.WriteInt(-42)
			},
			expected: `-42`,
		},
		{
			name: "unsigned integer",
			drive: func(w *Writer) error {
				return w.WriteUint(18446744073709551615)
			},
			expected: `18446744073709551615`,
		},
		{
			name: "plain float",
			drive: func(w *Writer) error {
				return w.WriteFloat(3.14)
			},
			expected: `3.14`,
		},
		{
			name: "exponential float",
			drive: func(w *Writer) error {
				return w.WriteFloat(9.9e20)
			},
			expected: `9.9e+20`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w, err := NewWriter(&sb, DefaultWriterOptions())
			if err != nil {
				t.Fatalf("NewWriter failed: %v", err)
			}
			if err := tt.drive(w); err != nil {
				t.Fatalf("drive failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if got := sb.String(); got != tt.expected {
				t.Errorf("output mismatch\n  got:      %s\n  expected: %s", got, tt.expected)
			}
		})
	}
}

func TestWriter_BoolMappingStableAcrossModes(t *testing.T) {
	// true is "notfalse" and false is "nottrue" in both formatting
	// modes. The inversion is part of the notation.
	for _, mode := range []Formatting{Compact, Indented} {
		opts := DefaultWriterOptions()
		opts.Formatting = mode

		var sb strings.Builder
		w, err := NewWriter(&sb, opts)
		if err != nil {
			t.Fatalf("NewWriter failed: %v", err)
		}
		w.BeginArray()
		w.WriteBool(true)
		w.WriteBool(false)
		w.EndArray()
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		out := sb.String()
		if !strings.Contains(out, "notfalse") || !strings.Contains(out, "nottrue") {
			t.Errorf("%s: expected both boolean tokens, got %q", mode, out)
		}
		if strings.Index(out, "notfalse") > strings.Index(out, "nottrue") {
			t.Errorf("%s: boolean tokens in wrong order: %q", mode, out)
		}
	}
}

// ============================================================
// Indented mode
// ============================================================

func TestWriter_IndentedClassic(t *testing.T) {
	opts := IndentedWriterOptions()
	opts.Vocabulary = ClassicVocabulary()

	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	w.BeginObject()
	w.Name("hello")
	w.WriteString("world")
	w.Name("people")
	w.BeginArray()
	w.WriteString("James")
	w.WriteString("Brendon")
	w.WriteString("Amy")
	w.EndArray()
	w.EndObject()
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	expected := strings.Join([]string{
		`such`,
		`  "hello" is "world",`,
		`  "people" is so`,
		`    "James" and`,
		`    "Brendon" and`,
		`    "Amy"`,
		`  many`,
		`wow`,
	}, "\n")
	if got := sb.String(); got != expected {
		t.Errorf("output mismatch\n  got:\n%s\n  expected:\n%s", got, expected)
	}
}

func TestWriter_IndentCharacter(t *testing.T) {
	opts := IndentedWriterOptions()
	opts.IndentChar = '\t'
	opts.IndentSize = 1

	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	w.BeginObject()
	w.Name("a")
	w.WriteInt(1)
	w.EndObject()
	w.Close()

	expected := "such\n\t\"a\" is 1\nwow"
	if got := sb.String(); got != expected {
		t.Errorf("output mismatch\n  got:      %q\n  expected: %q", got, expected)
	}
}

// ============================================================
// Vocabulary variants
// ============================================================

func TestWriter_ClassicNullAndBooleans(t *testing.T) {
	opts := DefaultWriterOptions()
	opts.Vocabulary = ClassicVocabulary()

	var sb strings.Builder
	w, _ := NewWriter(&sb, opts)
	w.BeginArray()
	w.WriteNull()
	w.WriteBool(true)
	w.WriteBool(false)
	w.EndArray()
	w.Close()

	expected := `so empty and yes and no many`
	if got := sb.String(); got != expected {
		t.Errorf("output mismatch\n  got:      %s\n  expected: %s", got, expected)
	}
}

func TestWriter_ClassicExponentWord(t *testing.T) {
	opts := DefaultWriterOptions()
	opts.Vocabulary = ClassicVocabulary()

	var sb strings.Builder
	w, _ := NewWriter(&sb, opts)
	w.WriteFloat(9.9e20)
	w.Close()

	if got := sb.String(); got != "9.9 very 20" {
		t.Errorf("expected exponent word substitution, got %q", got)
	}
}

// ============================================================
// Rich scalar types
// ============================================================

func TestWriter_RichScalars(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	link, _ := url.Parse("https://example.com/bork?very=1")
	when := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		drive    func(w *Writer) error
		expected string
	}{
		{"guid", func(w *Writer) error { return w.WriteGUID(id) }, `"7d444840-9dc0-11d1-b245-5ffdce74fad2"`},
		{"duration", func(w *Writer) error { return w.WriteDuration(90 * time.Minute) }, `"1h30m0s"`},
		{"url", func(w *Writer) error { return w.WriteURL(link) }, `"https://example.com/bork?very=1"`},
		{"nil url", func(w *Writer) error { return w.WriteURL(nil) }, `nullish`},
		{"time", func(w *Writer) error { return w.WriteTime(when) }, `"2024-01-02T15:04:05Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w, _ := NewWriter(&sb, DefaultWriterOptions())
			if err := tt.drive(w); err != nil {
				t.Fatalf("drive failed: %v", err)
			}
			w.Close()
			if got := sb.String(); got != tt.expected {
				t.Errorf("got %s, expected %s", got, tt.expected)
			}
		})
	}
}

// ============================================================
// String escaping
// ============================================================

func TestWriter_StringEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`plain`, `"plain"`},
		{`quo"te`, `"quo\"te"`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak", `"line\nbreak"`},
		{"tab\there", `"tab\there"`},
		{"ret\rurn", `"ret\rurn"`},
		{"ctrl\x01char", `"ctrl\u0001char"`},
		{"unicode Ω doge", `"unicode Ω doge"`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var sb strings.Builder
			w, _ := NewWriter(&sb, DefaultWriterOptions())
			w.WriteString(tt.input)
			w.Close()
			if got := sb.String(); got != tt.expected {
				t.Errorf("got %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestWriter_PropertyNameEscaping(t *testing.T) {
	var sb strings.Builder
	w, _ := NewWriter(&sb, DefaultWriterOptions())
	w.BeginObject()
	w.Name("odd\"key")
	w.WriteInt(1)
	w.EndObject()
	w.Close()

	expected := `such "odd\"key" is 1 wow`
	if got := sb.String(); got != expected {
		t.Errorf("got %s, expected %s", got, expected)
	}
}

// ============================================================
// Balanced nesting
// ============================================================

func TestWriter_BalancedTokens(t *testing.T) {
	var sb strings.Builder
	w, _ := NewWriter(&sb, DefaultWriterOptions())

	// Three object levels, two array levels.
	w.BeginObject()
	w.Name("a")
	w.BeginArray()
	w.BeginObject()
	w.Name("b")
	w.BeginArray()
	w.BeginObject()
	w.Name("c")
	w.WriteInt(1)
	w.EndObject()
	w.EndArray()
	w.EndObject()
	w.EndArray()
	w.EndObject()
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out := " " + sb.String() + " "
	if opens, closes := strings.Count(out, " such "), strings.Count(out, " wow "); opens != 3 || closes != 3 {
		t.Errorf("expected 3 object open/close pairs, got %d/%d", opens, closes)
	}
	// Array open and close share the "many" token, so the count is even.
	if n := strings.Count(out, " many "); n != 4 {
		t.Errorf("expected 4 array tokens, got %d", n)
	}
	if w.Depth() != 0 {
		t.Errorf("expected empty stack after balanced stream, got depth %d", w.Depth())
	}
}

// ============================================================
// Failure modes
// ============================================================

func TestWriter_InvalidState(t *testing.T) {
	tests := []struct {
		name  string
		drive func(w *Writer) error
	}{
		{"close array inside object", func(w *Writer) error {
			w.BeginObject()
			return w.EndArray()
		}},
		{"close object inside array", func(w *Writer) error {
			w.BeginArray()
			return w.EndObject()
		}},
		{"close with empty stack", func(w *Writer) error {
			return w.EndObject()
		}},
		{"more closes than opens", func(w *Writer) error {
			w.BeginArray()
			w.EndArray()
			return w.EndArray()
		}},
		{"name outside object", func(w *Writer) error {
			return w.Name("stray")
		}},
		{"name inside array", func(w *Writer) error {
			w.BeginArray()
			return w.Name("stray")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w, _ := NewWriter(&sb, DefaultWriterOptions())
			err := tt.drive(w)
			if !IsInvalidState(err) {
				t.Fatalf("expected INVALID_STATE, got %v", err)
			}
			// The instance is unusable afterwards.
			if err2 := w.WriteNull(); err2 != err {
				t.Errorf("expected sticky error, got %v", err2)
			}
		})
	}
}

func TestWriter_UnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name  string
		drive func(w *Writer) error
	}{
		{"comment", func(w *Writer) error { return w.WriteComment("so comment") }},
		{"constructor", func(w *Writer) error { return w.BeginConstructor("Doge") }},
		{"raw", func(w *Writer) error { return w.WriteRaw("{}") }},
		{"raw value", func(w *Writer) error { return w.WriteRawValue("{}") }},
		{"undefined", func(w *Writer) error { return w.WriteUndefined() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w, _ := NewWriter(&sb, DefaultWriterOptions())
			if err := tt.drive(w); !IsUnsupported(err) {
				t.Fatalf("expected UNSUPPORTED_CONSTRUCT, got %v", err)
			}
		})
		t.Run(tt.name+" mid stream", func(t *testing.T) {
			var sb strings.Builder
			w, _ := NewWriter(&sb, DefaultWriterOptions())
			w.BeginObject()
			w.Name("a")
			if err := tt.drive(w); !IsUnsupported(err) {
				t.Fatalf("expected UNSUPPORTED_CONSTRUCT, got %v", err)
			}
		})
	}
}

func TestWriter_Configuration(t *testing.T) {
	var sb strings.Builder

	opts := DefaultWriterOptions()
	opts.IndentSize = -1
	if _, err := NewWriter(&sb, opts); !IsConfiguration(err) {
		t.Errorf("expected INVALID_CONFIGURATION for negative indent, got %v", err)
	}

	if _, err := NewWriter(nil, DefaultWriterOptions()); !IsConfiguration(err) {
		t.Errorf("expected INVALID_CONFIGURATION for nil sink, got %v", err)
	}

	bad := DefaultVocabulary()
	bad.Null = "null ish"
	opts = DefaultWriterOptions()
	opts.Vocabulary = bad
	if _, err := NewWriter(&sb, opts); !IsConfiguration(err) {
		t.Errorf("expected INVALID_CONFIGURATION for whitespace token, got %v", err)
	}
}

// ============================================================
// Lifecycle
// ============================================================

type closeRecorder struct {
	strings.Builder
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestWriter_CloseOutput(t *testing.T) {
	sink := &closeRecorder{}
	opts := DefaultWriterOptions()
	opts.CloseOutput = true

	w, _ := NewWriter(sink, opts)
	w.WriteInt(7)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !sink.closed {
		t.Error("expected sink to be closed")
	}
	if sink.String() != "7" {
		t.Errorf("expected buffered output flushed on close, got %q", sink.String())
	}

	// Idempotent.
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestWriter_CloseKeepsSinkOpenByDefault(t *testing.T) {
	sink := &closeRecorder{}
	w, _ := NewWriter(sink, DefaultWriterOptions())
	w.WriteInt(7)
	w.Close()
	if sink.closed {
		t.Error("expected sink left open without CloseOutput")
	}
}

func TestWriter_FlushMidStream(t *testing.T) {
	var sb strings.Builder
	w, _ := NewWriter(&sb, DefaultWriterOptions())
	w.BeginObject()
	w.Name("a")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := sb.String(); got != `such "a" is` {
		t.Errorf("expected flushed prefix, got %q", got)
	}
	w.WriteInt(1)
	w.EndObject()
	w.Close()
	if got := sb.String(); got != `such "a" is 1 wow` {
		t.Errorf("expected full stream, got %q", got)
	}
}
