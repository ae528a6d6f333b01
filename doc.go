// Package dson implements DSON, a whimsical English-word serialization
// notation structurally equivalent to JSON.
//
// DSON replaces JSON's punctuation with words while keeping string
// literals, numbers and nesting exactly as JSON has them:
//
//	Object:     such ... wow
//	Array:      many ... many   (or so ... many in the classic vocabulary)
//	Assignment: "key" is value
//	Sibling:    next            (or , / and in the classic vocabulary)
//	Null:       nullish
//	Bool:       notfalse / nottrue
//	String:     "quoted string" (standard JSON escaping)
//	Bytes:      quoted base64
//
// # Example
//
//	such "hello" is "world" next "people" is many "James" next "Amy" many wow
//
// The same document indented, under the classic vocabulary:
//
//	such
//	  "hello" is "world",
//	  "people" is so
//	    "James" and
//	    "Amy"
//	  many
//	wow
//
// # Architecture
//
// The core is Writer, a forward-only token emitter driven by structural
// and value events (BeginObject, Name, WriteString, ...). It keeps an
// explicit stack of open container frames to decide which open, close
// and sibling-delimiter tokens to emit and how deep to indent. Encoder
// and Marshal sit on top of Writer and walk arbitrary Go value graphs
// with reflection.
//
// The structural words themselves are configuration: see Vocabulary,
// DefaultVocabulary, ClassicVocabulary and LoadVocabulary.
//
// There is no parser. DSON is a write-only novelty notation.
package dson
