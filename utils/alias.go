package utils

import (
	"crypto/rand"
	"strings"
)

// AliasLength is the fixed length of a family alias code.
const AliasLength = 6

// Ambiguous characters (0/O, 1/I/L) are left out so codes survive being
// read aloud or typed from a screenshot.
const aliasAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateAlias returns a random fixed-length family alias code.
func GenerateAlias() (string, error) {
	bytes := make([]byte, AliasLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	code := make([]byte, AliasLength)
	for i, b := range bytes {
		code[i] = aliasAlphabet[int(b)%len(aliasAlphabet)]
	}
	return string(code), nil
}

// ValidAlias reports whether a string is a well-formed family alias code.
func ValidAlias(alias string) bool {
	if len(alias) != AliasLength {
		return false
	}
	for i := 0; i < len(alias); i++ {
		if strings.IndexByte(aliasAlphabet, alias[i]) < 0 {
			return false
		}
	}
	return true
}
