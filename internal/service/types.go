// Package service defines the backend-agnostic types and gateway for post operations.
package service

// Item represents a single post as shown to the user.
type Item struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"` // client-side only, never sent upstream
}

// ErrorKind classifies a failed Result. Informational only.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindRemote     ErrorKind = "remote"
	KindDecode     ErrorKind = "decode"
	KindBusy       ErrorKind = "busy"
)

// Result is the tagged outcome of a gateway or controller operation.
// Exactly one variant is populated: OK with Value, or a failure with Message.
type Result[T any] struct {
	OK      bool
	Value   T
	Message string
	Kind    ErrorKind
}

// Ok returns a success Result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail returns a failure Result. An empty message is replaced so the
// failure variant always carries text.
func Fail[T any](kind ErrorKind, message string) Result[T] {
	if message == "" {
		message = "unknown error"
	}
	return Result[T]{Kind: kind, Message: message}
}
