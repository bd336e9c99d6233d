package handler

import "time"

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Status      int               `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}
