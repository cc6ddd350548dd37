package ghttp

import (
	"encoding/json"
)

// Error is returned for failed requests. StatusCode is -1 when no
// response was received.
type Error struct {
	StatusCode   int
	ResponseBody []byte
	cause        error
}

func NewError(statusCode int, body []byte, cause error) *Error {
	return &Error{
		StatusCode:   statusCode,
		ResponseBody: body,
		cause:        cause,
	}
}

func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns the msg field of a JSON error body, if there is one.
func (e *Error) Message() string {
	tmp := struct {
		Msg string `json:"msg"`
	}{}
	if err := json.Unmarshal(e.ResponseBody, &tmp); err != nil {
		return ""
	}
	return tmp.Msg
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return e.cause.Error() + ": " + msg
	}
	if e.ResponseBody != nil {
		return e.cause.Error() + ": " + string(e.ResponseBody)
	}
	return e.cause.Error()
}
