// Package matchid names engine sessions and snapshot files with sortable,
// 26-character Crockford base32 identifiers built from UUIDv7.
package matchid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded id.
const Length = 26

// New returns a fresh time-ordered id.
func New() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// NewFromReader is like New but draws its random bits from r. Tests pass a
// seeded reader to get reproducible ids.
func NewFromReader(r io.Reader) (string, error) {
	id, err := uuid.NewV7FromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to generate match id: %w", err)
	}
	return Encode(id), nil
}

// Encode renders the 128 bits of id as 26 base32 characters, most
// significant bits first, after two leading zero padding bits.
func Encode(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		bit := i * 5
		var v uint16
		for k := 0; k < 5; k++ {
			v <<= 1
			pos := bit + k - 2
			if pos >= 0 && pos < 128 && id[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1
			}
		}
		b.WriteByte(alphabet[v])
	}
	return b.String()
}

// Validate checks that s could have been produced by Encode.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("match id must be exactly %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("match id first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}
