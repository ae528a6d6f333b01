package dson

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
)

// Vocabulary supplies the structural tokens of the notation. Every
// field is a literal token; word tokens are written with a separating
// space, punctuation tokens attach directly to the previous token.
//
// Unset fields fall back to the DefaultVocabulary token, so a YAML
// vocabulary file only needs to name the tokens it overrides.
type Vocabulary struct {
	ObjectOpen  string `yaml:"object_open"`  // opens an object
	ObjectClose string `yaml:"object_close"` // closes an object
	ArrayOpen   string `yaml:"array_open"`   // opens an array
	ArrayClose  string `yaml:"array_close"`  // closes an array
	Assign      string `yaml:"assign"`       // joins a property name to its value
	ObjectDelim string `yaml:"object_delim"` // between object members
	ArrayDelim  string `yaml:"array_delim"`  // between array elements
	Null        string `yaml:"null_word"`    // the null marker
	True        string `yaml:"true_word"`    // the boolean true marker
	False       string `yaml:"false_word"`   // the boolean false marker
	ExponentPos string `yaml:"exponent_pos"` // replaces "e+" in float exponents
	ExponentNeg string `yaml:"exponent_neg"` // replaces "e-" in float exponents
}

// DefaultVocabulary returns the standard token set.
//
// The boolean mapping is deliberate: true reads as "notfalse" and false
// as "nottrue". It is part of the notation, not a mistake.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ObjectOpen:  "such",
		ObjectClose: "wow",
		ArrayOpen:   "many",
		ArrayClose:  "many",
		Assign:      "is",
		ObjectDelim: "next",
		ArrayDelim:  "next",
		Null:        "nullish",
		True:        "notfalse",
		False:       "nottrue",
		ExponentPos: "e+",
		ExponentNeg: "e-",
	}
}

// ClassicVocabulary returns the older token set: arrays read
// "so ... many" with "and" between elements, object members are
// separated by commas, null is "empty" and booleans are "yes"/"no".
func ClassicVocabulary() Vocabulary {
	return Vocabulary{
		ObjectOpen:  "such",
		ObjectClose: "wow",
		ArrayOpen:   "so",
		ArrayClose:  "many",
		Assign:      "is",
		ObjectDelim: ",",
		ArrayDelim:  "and",
		Null:        "empty",
		True:        "yes",
		False:       "no",
		ExponentPos: " very ",
		ExponentNeg: " very -",
	}
}

// ParseVocabulary parses a YAML vocabulary document. Omitted tokens
// fall back to the default vocabulary.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("dson: parsing vocabulary: %w", err)
	}
	v.fillDefaults()
	if err := v.validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

// LoadVocabulary reads a YAML vocabulary file from disk.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("dson: reading vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

func (v *Vocabulary) fillDefaults() {
	def := DefaultVocabulary()
	if v.ObjectOpen == "" {
		v.ObjectOpen = def.ObjectOpen
	}
	if v.ObjectClose == "" {
		v.ObjectClose = def.ObjectClose
	}
	if v.ArrayOpen == "" {
		v.ArrayOpen = def.ArrayOpen
	}
	if v.ArrayClose == "" {
		v.ArrayClose = def.ArrayClose
	}
	if v.Assign == "" {
		v.Assign = def.Assign
	}
	if v.ObjectDelim == "" {
		v.ObjectDelim = def.ObjectDelim
	}
	if v.ArrayDelim == "" {
		v.ArrayDelim = def.ArrayDelim
	}
	if v.Null == "" {
		v.Null = def.Null
	}
	if v.True == "" {
		v.True = def.True
	}
	if v.False == "" {
		v.False = def.False
	}
	if v.ExponentPos == "" {
		v.ExponentPos = def.ExponentPos
	}
	if v.ExponentNeg == "" {
		v.ExponentNeg = def.ExponentNeg
	}
}

func (v Vocabulary) isZero() bool {
	return v == Vocabulary{}
}

func (v Vocabulary) validate() error {
	structural := map[string]string{
		"object_open":  v.ObjectOpen,
		"object_close": v.ObjectClose,
		"array_open":   v.ArrayOpen,
		"array_close":  v.ArrayClose,
		"assign":       v.Assign,
		"object_delim": v.ObjectDelim,
		"array_delim":  v.ArrayDelim,
		"null_word":    v.Null,
		"true_word":    v.True,
		"false_word":   v.False,
	}
	for name, tok := range structural {
		if tok == "" {
			return errConfiguration("vocabulary token " + name + " cannot be empty")
		}
		if strings.ContainsFunc(tok, unicode.IsSpace) {
			return errConfiguration("vocabulary token " + name + " cannot contain whitespace")
		}
	}
	if v.ExponentPos == "" || v.ExponentNeg == "" {
		return errConfiguration("vocabulary exponent markers cannot be empty")
	}
	if v.True == v.False {
		return errConfiguration("vocabulary true and false tokens must differ")
	}
	return nil
}

// isWordToken reports whether a token starts with a letter, in which
// case the writer separates it from the previous token with a space.
// Punctuation tokens such as "," attach directly.
func isWordToken(tok string) bool {
	for _, r := range tok {
		return unicode.IsLetter(r)
	}
	return false
}
