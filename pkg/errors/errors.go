package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures and timeouts
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStatus represents a non-success HTTP status
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeExport represents output file errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// ScrapeError is the error carried out of every failing scrape step.
// Target is the URL, file path or component the error is about.
type ScrapeError struct {
	Type    ErrorType
	Target  string
	Status  int
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, msg)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, target, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// IsType reports whether any error in err's chain is a ScrapeError of the given type.
func IsType(err error, errType ErrorType) bool {
	var se *ScrapeError
	if !stderrors.As(err, &se) {
		return false
	}
	return se.Type == errType
}

// NewNetwork creates a new network error
func NewNetwork(url, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, url, message, err)
}

// NewStatus creates an error for a non-success HTTP response
func NewStatus(url string, status int) *ScrapeError {
	e := New(ErrorTypeStatus, url, "unexpected status code", nil)
	e.Status = status
	return e
}

// NewRateLimit creates an error for a 429 response. duration is the
// cooldown it started, zero when none.
func NewRateLimit(url string, duration time.Duration) *ScrapeError {
	message := "rate limited"
	if duration > 0 {
		message = fmt.Sprintf("rate limited, cooling down for %v", duration)
	}
	e := New(ErrorTypeRateLimit, url, message, nil)
	e.Status = 429
	return e
}

// NewCooldown creates a rate limit error for a request that was not sent
// because a cooldown from an earlier 429 is still active
func NewCooldown(url string) *ScrapeError {
	return New(ErrorTypeRateLimit, url, "cooldown active, request not sent", nil)
}

// NewParsing creates a new parsing error
func NewParsing(url, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, url, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// NewExport creates a new export error
func NewExport(path, message string, err error) *ScrapeError {
	return New(ErrorTypeExport, path, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(stream, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, stream, message, err)
}

// NewCache creates a new cache error
func NewCache(key, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, key, message, err)
}
