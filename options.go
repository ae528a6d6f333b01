package dson

// Formatting selects the writer's separator algorithm.
type Formatting int

const (
	// Compact separates tokens with single spaces.
	Compact Formatting = iota

	// Indented puts each token on its own line, indented by nesting depth.
	Indented
)

// String returns the formatting mode name.
func (f Formatting) String() string {
	switch f {
	case Compact:
		return "compact"
	case Indented:
		return "indented"
	default:
		return "unknown"
	}
}

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Formatting mode (default: Compact)
	Formatting Formatting

	// IndentChar is the character repeated per depth level in
	// Indented mode (default: space)
	IndentChar rune

	// IndentSize is the number of IndentChar repeats per depth level
	// (default: 2). Negative values are rejected.
	IndentSize int

	// CloseOutput closes the destination sink on Close when it
	// implements io.Closer
	CloseOutput bool

	// Vocabulary supplies the structural tokens. The zero value means
	// DefaultVocabulary.
	Vocabulary Vocabulary
}

// DefaultWriterOptions returns sensible defaults.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Formatting: Compact,
		IndentChar: ' ',
		IndentSize: 2,
		Vocabulary: DefaultVocabulary(),
	}
}

// IndentedWriterOptions returns defaults with Indented formatting.
func IndentedWriterOptions() WriterOptions {
	opts := DefaultWriterOptions()
	opts.Formatting = Indented
	return opts
}

func (o *WriterOptions) validate() error {
	if o.IndentSize < 0 {
		return errConfiguration("indent size cannot be negative")
	}
	if o.IndentChar == 0 {
		o.IndentChar = ' '
	}
	if o.Vocabulary.isZero() {
		o.Vocabulary = DefaultVocabulary()
	}
	return o.Vocabulary.validate()
}
