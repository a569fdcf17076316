// Package logging provides concrete implementations of the twbmig.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: plain-text lines on stderr with [VERBOSE] and [ERROR] prefixes
//   - ZapLogger: structured JSON lines through go.uber.org/zap
//   - NullLogger: discards all messages (the default for library callers)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
