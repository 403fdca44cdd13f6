package validation

// Error is a typed validation failure carrying a human-readable reason.
// Validators never partially apply a mutation; on failure the input is
// rejected as a whole.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func newError(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}
