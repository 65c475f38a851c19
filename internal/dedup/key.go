package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Key identifies a (source, type, value) triple. It is a digest so that the
// history never holds plain sensitive values.
type Key [sha256.Size]byte

// NewKey derives the key for a finding reported from source. The detection
// method does not participate.
func NewKey(source, findingType, value string) Key {
	h := sha256.New()
	writeField(h, source)
	writeField(h, findingType)
	writeField(h, value)

	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// String returns the hex form of the key
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// writeField length-prefixes each field so that ("a:b", "c") and
// ("a", "b:c") never collide.
func writeField(w io.Writer, field string) {
	n := len(field)
	_, _ = w.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	_, _ = w.Write([]byte(field))
}
