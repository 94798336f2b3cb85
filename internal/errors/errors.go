package errors

// ErrorWithStatusCode is returned for HTTP responses with a non-success
// status. The default treatment at call sites is a transport failure.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// SemanticError is a structurally successful response whose payload still
// indicates failure (e.g. {"success": false}). It carries the server-provided
// message so callers can show it verbatim, distinct from transport errors.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string {
	if e.Message == "" {
		return "request rejected by server"
	}
	return e.Message
}
