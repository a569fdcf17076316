package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Calculator computes content checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the exact content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of SQL text with comments,
	// case and whitespace differences removed.
	CalculateNormalized(content []byte) string
}

// SHA256 implements Calculator with SHA-256.
// It is a zero-size type and safe for concurrent use.
type SHA256 struct{}

// New creates a SHA-256 calculator.
func New() SHA256 {
	return SHA256{}
}

// FingerprintLength is the number of hex characters Fingerprint keeps.
const FingerprintLength = 12

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized SQL.
func (c SHA256) CalculateNormalized(content []byte) string {
	hash := sha256.Sum256([]byte(NormalizeSQL(string(content))))
	return hex.EncodeToString(hash[:])
}

// Fingerprint is the short form of the normalized checksum, used to spot the
// same custom SQL pasted into several datasources.
func (c SHA256) Fingerprint(sql string) string {
	return c.CalculateNormalized([]byte(sql))[:FingerprintLength]
}

// NormalizeSQL lowercases sql, drops -- and /* */ comments, collapses
// whitespace and strips a trailing semicolon. Quoted text ('...', "..." and
// `...`) is copied verbatim, so literals keep their case and spacing.
func NormalizeSQL(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	pendingSpace := false
	flushSpace := func() {
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
	}

	i := 0
	for i < len(sql) {
		ch := sql[i]
		var next byte
		if i+1 < len(sql) {
			next = sql[i+1]
		}

		switch {
		case ch == '-' && next == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				i = len(sql)
			} else {
				i += end
			}
			pendingSpace = true

		case ch == '/' && next == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
			} else {
				i += end + 4
			}
			pendingSpace = true

		case ch == '\'' || ch == '"' || ch == '`':
			flushSpace()
			end := closingQuote(sql, i)
			b.WriteString(sql[i:end])
			i = end

		default:
			r, size := utf8.DecodeRuneInString(sql[i:])
			i += size
			if unicode.IsSpace(r) {
				pendingSpace = true
				continue
			}
			flushSpace()
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return strings.TrimSuffix(strings.TrimSpace(b.String()), ";")
}

// closingQuote returns the index just past the quote that closes the literal
// opened at start. A doubled quote character is an escape.
func closingQuote(s string, start int) int {
	q := s[start]
	i := start + 1
	for i < len(s) {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}
