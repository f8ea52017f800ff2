package errors

import (
	"fmt"
	"net/http"
)

// FetchError represents a download that did not return file content
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

// Permanent reports whether retrying the request cannot help. Client errors
// are permanent except for 408 and 429.
func (e *FetchError) Permanent() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return false
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return true
	default:
		return false
	}
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, message string) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Message:    message,
	}
}

// RecordError represents a malformed line in a JSON-lines file
type RecordError struct {
	File    string
	Line    int
	Message string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// NewRecordError creates a new RecordError
func NewRecordError(file string, line int, message string) *RecordError {
	return &RecordError{
		File:    file,
		Line:    line,
		Message: message,
	}
}

// ConnectionError represents a failure to reach an external service
// (PostgreSQL, the object archive, the dataset API)
type ConnectionError struct {
	Service    string
	Message    string
	Suggestion string
}

func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("%s connection failed: %s", e.Service, e.Message)
	if e.Suggestion != "" {
		msg += "\nSuggestion: " + e.Suggestion
	}
	return msg
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(service, message, suggestion string) *ConnectionError {
	return &ConnectionError{
		Service:    service,
		Message:    message,
		Suggestion: suggestion,
	}
}
