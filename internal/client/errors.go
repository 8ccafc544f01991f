package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
)

// ErrUnauthorized is wrapped by every error caused by an HTTP 401 from the API.
var ErrUnauthorized = errors.New("unauthorized")

// RequestError is a network or parse failure talking to the API.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BusinessError is a well-formed API response with success=false.
type BusinessError struct {
	Op         string
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// newBusinessError joins field errors into the message, the way the checkout
// and register forms display them.
func newBusinessError(op string, status int, message string, fields map[string]string) *BusinessError {
	msg := message
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fields[k])
		}
		msg = strings.Join(parts, ", ")
	}
	if msg == "" {
		msg = "request failed"
	}
	return &BusinessError{Op: op, StatusCode: status, Message: msg, Fields: fields}
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsBusiness(err error) bool {
	var bizErr *BusinessError
	return errors.As(err, &bizErr)
}

// IsTransient reports whether err is a network failure or 5xx worth retrying later.
func IsTransient(err error) bool {
	if err == nil || IsUnauthorized(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode >= 500 {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Message is the text shown to the user for err.
func Message(err error) string {
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		return bizErr.Message
	}
	if IsUnauthorized(err) {
		return "Sessão expirada"
	}
	return "Não foi possível falar com o servidor. Tente novamente."
}
