// Package idgen produces short unique identifiers for temp files and
// downloaded artifacts. IDs are time-prefixed so that leftover files in a
// shared temp directory sort chronologically.
package idgen

import (
	"crypto/rand"
	"time"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator that produces base-36 IDs of the given length.
func NanoID(length int) Generator {
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		b := make([]byte, length)
		for i := range b {
			b[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(b)
	}
}

// Timestamped wraps a Generator and prepends a UTC timestamp, producing
// IDs in the format "20060102T150405Z_<suffix>".
func Timestamped(gen Generator) Generator {
	return func() string {
		return time.Now().UTC().Format("20060102T150405Z") + "_" + gen()
	}
}

// Default is the library default: a 10-char base-36 ID with time prefix.
var Default Generator = Timestamped(NanoID(10))

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
