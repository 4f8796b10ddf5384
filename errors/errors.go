package errors

import (
	"errors"
	"sort"
	"strings"
)

const (
	BookingNotFound     = "Booking not found"
	PackageNotFound     = "Package not found"
	UserNotFound        = "User not found"
	InvalidStatus       = "Invalid status"
	InvalidID           = "Invalid id"
	InvalidRequest      = "Invalid request format"
	InvalidCredentials  = "Invalid email or password"
	EmailAlreadyExist   = "User already exists"
	NotBookingOwner     = "Booking does not belong to the current user"
	Unauthorized        = "Unauthorized"
	Forbidden           = "Forbidden"
	WeatherUnavailable  = "Weather service is unavailable"
	WeatherParseFailure = "Failed to parse weather data"
	InternalServerError = "Internal server error"
	BookingDeleted      = "Booking deleted successfully"
	PackageDeleted      = "Package deleted successfully"
	ImageNotFound       = "Image not found"
	StorageUnavailable  = "Image storage is unavailable"
	RequestTooLarge     = "Request body too large"
)

var (
	ErrBookingNotFound    = errors.New(BookingNotFound)
	ErrPackageNotFound    = errors.New(PackageNotFound)
	ErrUserNotFound       = errors.New(UserNotFound)
	ErrInvalidID          = errors.New(InvalidID)
	ErrInvalidCredentials = errors.New(InvalidCredentials)
	ErrEmailAlreadyExist  = errors.New(EmailAlreadyExist)
	ErrNotBookingOwner    = errors.New(NotBookingOwner)
	ErrUnauthorized       = errors.New(Unauthorized)
	ErrWeatherUnavailable = errors.New(WeatherUnavailable)
	ErrWeatherParse       = errors.New(WeatherParseFailure)
	ErrImageNotFound      = errors.New(ImageNotFound)
	ErrStorageUnavailable = errors.New(StorageUnavailable)
)

// ValidationError is returned for input that fails field validation. It is
// safe to show to the caller.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (v *ValidationError) AddField(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	v.Fields[field] = msg
}

func (v *ValidationError) HasFields() bool {
	return len(v.Fields) > 0
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return v.Message
	}

	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+v.Fields[name])
	}
	return v.Message + " (" + strings.Join(parts, "; ") + ")"
}

func IsValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return nil
}
