// Package net provides utilities for working with request contexts and the
// common response envelope
package net

import (
	"context"
	"net/http"

	perr "verigate/internal/platform/errors"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequestID annotates ctx with a request id so chimw.GetReqID can retrieve it
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// Wire is the common envelope used by the listener transport
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// OK builds a 200 envelope
func OK(data any, reqID string) (int, Wire) {
	return http.StatusOK, Wire{
		StatusCode: http.StatusOK,
		Status:     http.StatusText(http.StatusOK),
		RequestID:  reqID,
		Data:       data,
	}
}

// Error builds an error envelope
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		RequestID:  reqID,
	}
}
