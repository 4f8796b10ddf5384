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

type AuthHandler struct {
	service *application.AuthService
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewAuthHandler(service *application.AuthService, tracer trace.Tracer, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *AuthHandler) Init(router *mux.Router) {
	router.HandleFunc("/register", handler.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", handler.Login).Methods(http.MethodPost)
}

func (handler *AuthHandler) Register(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Register")
	defer span.End()

	var user domain.User
	if err := user.FromJSON(req.Body); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
		return
	}

	response, err := handler.service.Register(ctx, &user)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(response, writer, http.StatusCreated)
}

func (handler *AuthHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Login")
	defer span.End()

	var credentials domain.Credentials
	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
		return
	}

	response, err := handler.service.Login(ctx, &credentials)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(response, writer, http.StatusOK)
}
