package ids

import (
	"strings"

	"github.com/google/uuid"
)

const (
	ShareCodeLength   = 6
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a random identifier for players, queue entries and game sessions.
func New() string {
	return uuid.NewString()
}

// ShareCode returns a short public code. Collisions are not checked.
func ShareCode() string {
	raw := uuid.New()
	var b strings.Builder
	b.Grow(ShareCodeLength)
	for i := 0; i < ShareCodeLength; i++ {
		b.WriteByte(shareCodeAlphabet[int(raw[i])%len(shareCodeAlphabet)])
	}
	return b.String()
}

func ValidShareCode(code string) bool {
	if len(code) != ShareCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(shareCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
