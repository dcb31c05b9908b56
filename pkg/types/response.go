package types

// SuccessEnvelope wraps every successful shipping API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Retryable mirrors the error code
// metadata; RequestID echoes the X-Request-Id response header.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func NewSuccess(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

func NewError(code, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message}}
}

// WithDetails attaches client-facing details such as the offending field.
func (e ErrorEnvelope) WithDetails(details any) ErrorEnvelope {
	e.Error.Details = details
	return e
}

func (e ErrorEnvelope) WithRetryable(retryable bool) ErrorEnvelope {
	e.Error.Retryable = retryable
	return e
}

func (e ErrorEnvelope) WithRequestID(id string) ErrorEnvelope {
	e.Error.RequestID = id
	return e
}
