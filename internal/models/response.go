package models

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Status  string     `json:"status"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request. Code repeats the HTTP status.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse builds a success envelope. Nil data and an empty message are omitted.
func SuccessResponse(data any, message string) Response {
	return Response{Status: StatusSuccess, Data: data, Message: message}
}

// ErrorResponse builds an error envelope.
func ErrorResponse(code int, message, details string) Response {
	return Response{
		Status: StatusError,
		Error:  &ErrorBody{Code: code, Message: message, Details: details},
	}
}
