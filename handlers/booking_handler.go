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

type IdentityResolver interface {
	Identity(r *http.Request) (domain.Identity, error)
}

type BookingHandler struct {
	service  *application.BookingService
	identity IdentityResolver
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewBookingHandler(service *application.BookingService, identity IdentityResolver, tracer trace.Tracer, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		identity: identity,
		tracer:   tracer,
		logger:   logger,
	}
}

func (handler *BookingHandler) Init(router *mux.Router) {
	router.HandleFunc("/bookings", handler.Create).Methods(http.MethodPost)
	router.HandleFunc("/bookings", handler.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/bookings/me", handler.GetMine).Methods(http.MethodGet)
	router.HandleFunc("/bookings/user/{userId}", handler.GetByUser).Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id}/status", handler.UpdateStatus).Methods(http.MethodPatch)
	router.HandleFunc("/bookings/{id}/cancel", handler.Cancel).Methods(http.MethodPost)
	router.HandleFunc("/bookings/{id}", handler.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/dashboard", handler.Dashboard).Methods(http.MethodGet)
}

func (handler *BookingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Create")
	defer span.End()

	identity, err := handler.identity.Identity(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusUnauthorized, errors.Unauthorized)
		return
	}

	var request domain.CreateBookingRequest
	if err := request.FromJSON(req.Body); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
		return
	}

	booking, err := handler.service.Create(ctx, identity, &request)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(booking, writer, http.StatusCreated)
}

func (handler *BookingHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetAll")
	defer span.End()

	bookings, err := handler.service.GetAll(ctx)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(bookings, writer, http.StatusOK)
}

func (handler *BookingHandler) GetMine(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetMine")
	defer span.End()

	identity, err := handler.identity.Identity(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusUnauthorized, errors.Unauthorized)
		return
	}

	bookings, err := handler.service.GetMine(ctx, identity)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(bookings, writer, http.StatusOK)
}

func (handler *BookingHandler) GetByUser(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetByUser")
	defer span.End()

	userID := mux.Vars(req)["userId"]
	bookings, err := handler.service.GetByUser(ctx, userID)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(bookings, writer, http.StatusOK)
}

func (handler *BookingHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Get")
	defer span.End()

	booking, err := handler.service.Get(ctx, mux.Vars(req)["id"])
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(booking, writer, http.StatusOK)
}

func (handler *BookingHandler) UpdateStatus(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.UpdateStatus")
	defer span.End()

	var request domain.StatusUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
		return
	}

	booking, err := handler.service.UpdateStatus(ctx, mux.Vars(req)["id"], request.Status)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(booking, writer, http.StatusOK)
}

func (handler *BookingHandler) Cancel(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Cancel")
	defer span.End()

	identity, err := handler.identity.Identity(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, http.StatusUnauthorized, errors.Unauthorized)
		return
	}

	booking, err := handler.service.Cancel(ctx, identity, mux.Vars(req)["id"])
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(booking, writer, http.StatusOK)
}

func (handler *BookingHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, mux.Vars(req)["id"]); err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(messageResponse{Message: errors.BookingDeleted}, writer, http.StatusOK)
}

func (handler *BookingHandler) Dashboard(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.Dashboard")
	defer span.End()

	dashboard, err := handler.service.Dashboard(ctx)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(dashboard, writer, http.StatusOK)
}
