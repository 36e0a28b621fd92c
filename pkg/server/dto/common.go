package dto

import "errors"

// Validation errors
var (
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEmptyBatch     = errors.New("batch cannot be empty")
	ErrBatchTooLarge  = errors.New("batch exceeds maximum size (1000)")
	ErrNameTooLong    = errors.New("name exceeds maximum length (1024)")
	ErrContentTooLong = errors.New("content exceeds maximum length (1MB)")
	ErrInvalidRange   = errors.New("threshold must be between 0 and 1")
)

// MaxFieldLengths defines maximum lengths for fields to prevent abuse
const (
	MaxNameLength    = 1024
	MaxContentLength = 1024 * 1024 // 1MB
	MaxBatchSize     = 1000
)

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
