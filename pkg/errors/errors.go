package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures and unexpected status codes
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeExtraction represents a missing marker or an invalid bracket span
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeParsing represents embedded data that is not valid JSON
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeTitleShape represents a page title without the expected delimiters
	ErrorTypeTitleShape ErrorType = "title_shape"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeUnknown is reported by TypeOf for errors not created by this package
	ErrorTypeUnknown ErrorType = "unknown"
)

// ScrapeError represents a failure while collecting itinerary data
type ScrapeError struct {
	Type      ErrorType
	Itinerary string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Itinerary, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Itinerary, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// TypeOf returns the ErrorType of the first ScrapeError in err's chain.
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries a ScrapeError of the given type.
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// New creates a new ScrapeError
func New(errType ErrorType, itinerary, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:      errType,
		Itinerary: itinerary,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(itinerary, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, itinerary, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(itinerary, message string) *ScrapeError {
	return New(ErrorTypeExtraction, itinerary, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(itinerary, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, itinerary, message, err)
}

// NewTitleShape creates a new title shape error
func NewTitleShape(itinerary, message string) *ScrapeError {
	return New(ErrorTypeTitleShape, itinerary, message, nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(itinerary string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, itinerary, message, nil)
}

// NewCache creates a new cache error
func NewCache(itinerary, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, itinerary, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(itinerary, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, itinerary, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
