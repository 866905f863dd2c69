package gateway

import (
	"context"
	"errors"
	"net/http"
)

// Code is one of the closed set of error codes callers can switch on.
type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeBadRequest     Code = "BAD_REQUEST"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeMissingKeyword Code = "MISSING_KEYWORD"
	CodeUpstream       Code = "API_ERROR"
	CodeTimeout        Code = "TIMEOUT"
)

var statusByCode = map[Code]int{
	CodeNotFound:       http.StatusNotFound,
	CodeBadRequest:     http.StatusBadRequest,
	CodeInternal:       http.StatusInternalServerError,
	CodeMissingKeyword: http.StatusBadRequest,
	CodeUpstream:       http.StatusBadGateway,
	CodeTimeout:        http.StatusGatewayTimeout,
}

var messageByCode = map[Code]string{
	CodeNotFound:       "resource not found",
	CodeBadRequest:     "invalid request parameters",
	CodeInternal:       "internal server error",
	CodeMissingKeyword: "search keyword is required",
	CodeUpstream:       "upstream API error",
	CodeTimeout:        "request timed out",
}

// APIError is the only error shape that crosses the route boundary.
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// HTTPStatus returns the status the route layer sets for this error.
func (e *APIError) HTTPStatus() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewAPIError builds an APIError; an empty message picks the code's default.
func NewAPIError(code Code, message string) *APIError {
	if message == "" {
		message = messageByCode[code]
	}
	return &APIError{Code: code, Message: message}
}

// errBlocked marks a redirect into an upstream anti-automation challenge.
// Retrying the same source will not help, so the message says which wall
// was hit instead of a generic transport error.
var errBlocked = errors.New("request intercepted by upstream WAF")

// Classify funnels any dispatch or normalization failure into the closed
// taxonomy. APIErrors pass through; deadline errors become TIMEOUT;
// everything else that reached the network becomes API_ERROR with the
// transport message attached.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewAPIError(CodeTimeout, "")
	}
	if errors.Is(err, errBlocked) {
		return NewAPIError(CodeUpstream, errBlocked.Error())
	}
	return NewAPIError(CodeUpstream, err.Error())
}
