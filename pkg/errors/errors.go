package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch/network errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents markup parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting by the listing site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents listing store errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeNotification represents notifier errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// WatcherError represents a pipeline-specific error
type WatcherError struct {
	Type    ErrorType
	Source  string // criterion name or component the error belongs to
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *WatcherError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *WatcherError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *WatcherError) IsRetryable() bool {
	return e.Type == ErrorTypeNetwork
}

// New creates a new WatcherError
func New(errType ErrorType, source, message string, err error) *WatcherError {
	return &WatcherError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *WatcherError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *WatcherError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source, retryAfter string) *WatcherError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(source, message string, err error) *WatcherError {
	return New(ErrorTypePersistence, source, message, err)
}

// NewNotification creates a new notification error
func NewNotification(source, message string, err error) *WatcherError {
	return New(ErrorTypeNotification, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *WatcherError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsRateLimit reports whether err is a rate limit error from the listing site
func IsRateLimit(err error) bool {
	var we *WatcherError
	return stderrors.As(err, &we) && we.Type == ErrorTypeRateLimit
}
