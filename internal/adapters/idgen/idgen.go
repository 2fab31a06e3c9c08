package idgen

import (
	"crypto/rand"
	"fmt"
)

// Generator creates UUIDv4 identifiers for control messages.
type Generator struct{}

// NewID returns a UUIDv4 string.
func (Generator) NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
