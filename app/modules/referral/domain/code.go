package referraldomain

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	codeAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codePrefixLength = 4
	codeSuffixLength = 6
	defaultPrefix    = "REF"
)

// GenerateCode builds a code from up to four letters or digits of username
// followed by six random characters that cannot be confused with each other.
func GenerateCode(username string) (string, error) {
	return generateCode(username, rand.Reader)
}

func generateCode(username string, random io.Reader) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(username) {
		if b.Len() == codePrefixLength {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString(defaultPrefix)
	}

	buf := make([]byte, codeSuffixLength)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for _, v := range buf {
		b.WriteByte(codeAlphabet[int(v)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// NormalizeCode uppercases and validates a code taken from user input.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if n := len(code); n < codeSuffixLength+1 || n > codePrefixLength+codeSuffixLength {
		return "", ErrInvalidCode
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}
