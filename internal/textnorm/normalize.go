// Package textnorm turns free text into the token stream the feature model is fitted on.
package textnorm

import "strings"

// MinTokenLen is the shortest token kept after normalization.
const MinTokenLen = 3

// stopwords is a small Indonesian stopword list. Tokens in it never reach the vectorizer.
var stopwords = map[string]struct{}{
	"dan": {}, "yang": {}, "di": {}, "ke": {}, "dari": {}, "ini": {}, "itu": {},
	"untuk": {}, "pada": {}, "adalah": {}, "sebagai": {}, "dengan": {}, "juga": {},
	"karena": {}, "sehingga": {}, "namun": {}, "tetapi": {}, "atau": {}, "oleh": {},
	"sudah": {}, "akan": {}, "bisa": {}, "dapat": {}, "kami": {}, "kita": {},
	"saya": {}, "anda": {}, "mereka": {}, "ada": {}, "dalam": {}, "luar": {},
	"atas": {}, "bawah": {},
}

// IsStopword reports whether tok is dropped by Normalize.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// Normalize lowercases s, replaces everything outside a-z and whitespace with a space,
// drops stopwords and tokens shorter than MinTokenLen, and joins the rest with single spaces.
// Digits are destroyed, not separated. Normalize is idempotent.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// NormalizePtr is Normalize for optional values; nil yields "".
func NormalizePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Normalize(*s)
}

// Tokens returns the normalized tokens of s in order.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return ' '
	}, strings.ToLower(s))

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < MinTokenLen || IsStopword(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
