package handlers

import (
	"booking_service/domain"
	"booking_service/errors"
	"booking_service/service"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type WeatherHandler struct {
	service *application.WeatherService
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewWeatherHandler(service *application.WeatherService, tracer trace.Tracer, logger *logrus.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *WeatherHandler) Init(router *mux.Router) {
	router.HandleFunc("/predict", handler.Predict).Methods(http.MethodPost)
	router.HandleFunc("/health", Health).Methods(http.MethodGet)
}

func (handler *WeatherHandler) Predict(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "WeatherHandler.Predict")
	defer span.End()

	var request domain.WeatherRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
		return
	}

	result, err := handler.service.Predict(ctx, &request)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(result, writer, http.StatusOK)
}

func Health(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusNoContent)
}
