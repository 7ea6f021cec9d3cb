package qa

import "fmt"

// ErrorKind classifies pipeline failures for the response mapping.
type ErrorKind string

const (
	// KindClientInput marks malformed or unrecognized caller input. Never retried.
	KindClientInput ErrorKind = "client_input"
	// KindNoContext marks a legitimate empty outcome: retrieval or filtering
	// yielded nothing usable.
	KindNoContext ErrorKind = "no_context"
	// KindUpstream marks a search or completion backend failure after allowed
	// retries.
	KindUpstream ErrorKind = "upstream"
	// KindInternal marks faults not anticipated by the other kinds.
	KindInternal ErrorKind = "internal"
)

// Caller-facing messages. Upstream causes are logged but never exposed.
const (
	MsgModelRequired         = "model es obligatorio"
	MsgQuestionRequired      = "question es obligatorio"
	MsgUnknownModel          = "Modelo no reconocido"
	MsgSearchUnavailable     = "No se pudo recuperar información para la consulta."
	MsgNoPassages            = "No se encontraron fragmentos relacionados con la consulta."
	MsgNoRelevantPassages    = "Ningún fragmento supera el filtro de relevancia para la consulta."
	MsgCompletionUnavailable = "No se pudo generar una respuesta con el modelo de lenguaje."
	MsgInternal              = "Error inesperado en el servidor"
)

// Error is a classified pipeline failure. Message is safe to surface to the
// caller; Err carries the underlying cause for logging only.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string][]string // per-field validation errors, client input only
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClientInputError builds a client-error with a single message.
func ClientInputError(message string) *Error {
	return &Error{Kind: KindClientInput, Message: message}
}

// FieldErrors builds a client-error carrying per-field validation messages.
func FieldErrors(fields map[string][]string) *Error {
	return &Error{Kind: KindClientInput, Message: "datos de entrada inválidos", Fields: fields}
}

// NoContextError marks an empty retrieval or filtering outcome.
func NoContextError(message string) *Error {
	return &Error{Kind: KindNoContext, Message: message}
}

// UpstreamError wraps a backend failure behind a generic caller message.
func UpstreamError(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// InternalError wraps an unanticipated fault.
func InternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}
