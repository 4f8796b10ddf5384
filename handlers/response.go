package handlers

import (
	"booking_service/errors"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type errorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func jsonResponse(object interface{}, w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(object); err != nil {
		logrus.Errorf("jsonResponse : %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	jsonResponse(errorResponse{Error: true, Message: message}, w, status)
}

// handleError maps a service error onto the response envelope. Errors
// without a known mapping are logged and reported as a plain 500.
func handleError(w http.ResponseWriter, span trace.Span, logger *logrus.Logger, err error) {
	span.SetStatus(codes.Error, err.Error())

	if validationErr := errors.IsValidationError(err); validationErr != nil {
		jsonResponse(errorResponse{Error: true, Message: validationErr.Message, Fields: validationErr.Fields}, w, http.StatusBadRequest)
		return
	}

	switch {
	case stderrors.Is(err, errors.ErrBookingNotFound),
		stderrors.Is(err, errors.ErrPackageNotFound),
		stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrImageNotFound):
		writeError(w, http.StatusNotFound, rootMessage(err))
	case stderrors.Is(err, errors.ErrInvalidID):
		writeError(w, http.StatusBadRequest, errors.InvalidID)
	case stderrors.Is(err, errors.ErrUnauthorized),
		stderrors.Is(err, errors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, rootMessage(err))
	case stderrors.Is(err, errors.ErrNotBookingOwner):
		writeError(w, http.StatusForbidden, errors.NotBookingOwner)
	case stderrors.Is(err, errors.ErrEmailAlreadyExist):
		writeError(w, http.StatusConflict, errors.EmailAlreadyExist)
	case stderrors.Is(err, errors.ErrWeatherUnavailable):
		logger.Errorf("upstream failure: %v", err)
		writeError(w, http.StatusServiceUnavailable, errors.WeatherUnavailable)
	case stderrors.Is(err, errors.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, errors.StorageUnavailable)
	case stderrors.Is(err, errors.ErrWeatherParse):
		writeError(w, http.StatusInternalServerError, errors.WeatherParseFailure)
	default:
		logger.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, errors.InternalServerError)
	}
}

var publicErrors = []error{
	errors.ErrBookingNotFound,
	errors.ErrPackageNotFound,
	errors.ErrUserNotFound,
	errors.ErrImageNotFound,
	errors.ErrUnauthorized,
	errors.ErrInvalidCredentials,
}

// rootMessage returns the message of the sentinel wrapped in err, never the
// wrapping context.
func rootMessage(err error) string {
	for _, target := range publicErrors {
		if stderrors.Is(err, target) {
			return target.Error()
		}
	}
	return errors.InternalServerError
}
