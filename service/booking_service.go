package application

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

type BookingService struct {
	store    domain.BookingStore
	packages domain.PackageStore
	notifier StatusNotifier
	tracer   trace.Tracer
	logger   *logrus.Logger
	now      func() time.Time
}

func NewBookingService(store domain.BookingStore, packages domain.PackageStore, notifier StatusNotifier, tracer trace.Tracer, logger *logrus.Logger) *BookingService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BookingService{
		store:    store,
		packages: packages,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
}

func (service *BookingService) Create(ctx context.Context, identity domain.Identity, request *domain.CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	service.logger.Infoln("BookingService.Create : Create service reached")

	booking, err := service.bookingFromRequest(identity, request)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p, err := service.packages.Get(ctx, booking.PackageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if stderrors.Is(err, errors.ErrPackageNotFound) {
			service.logger.Warnf("BookingService.Create : package %s not found", booking.PackageID.Hex())
			return nil, err
		}
		return nil, fmt.Errorf("lookup package: %w", err)
	}
	booking.PackageName = p.PackageName

	created, err := service.store.Insert(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		service.logger.Errorf("BookingService.Create : %v", err)
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	service.logger.Infof("BookingService.Create : booking %s created for package %s", created.ID.Hex(), created.PackageName)
	return created, nil
}

func (service *BookingService) bookingFromRequest(identity domain.Identity, request *domain.CreateBookingRequest) (*domain.Booking, error) {
	if request == nil {
		return nil, errors.NewValidationError(errors.InvalidRequest)
	}

	if request.UserID == "" && identity.IsAuthenticated() {
		request.UserID = identity.UserID
	}

	validationErr := errors.NewValidationError("Booking validation failed")
	if err := request.Validate(); err != nil {
		var fieldErrors validator.ValidationErrors
		if !stderrors.As(err, &fieldErrors) {
			return nil, fmt.Errorf("validate booking: %w", err)
		}
		for _, fieldErr := range fieldErrors {
			validationErr.AddField(fieldErr.Field(), fieldMessage(fieldErr))
		}
	}

	startDate, startErr := parseDate(request.StartDate)
	if startErr != nil && request.StartDate != "" {
		validationErr.AddField("startDate", "must be a date")
	}
	endDate, endErr := parseDate(request.EndDate)
	if endErr != nil && request.EndDate != "" {
		validationErr.AddField("endDate", "must be a date")
	}

	if validationErr.HasFields() {
		return nil, validationErr
	}

	packageID, _ := primitive.ObjectIDFromHex(request.PackageID)
	booking := &domain.Booking{
		UserName:       strings.TrimSpace(request.UserName),
		UserEmail:      strings.TrimSpace(request.UserEmail),
		UserPhone:      strings.TrimSpace(request.UserPhone),
		PackageID:      packageID,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalBudget:    *request.TotalBudget,
		NumberOfPeople: *request.NumberOfPeople,
		Status:         domain.Pending,
		BookingDate:    service.now().UTC(),
	}
	if request.UserID != "" {
		userID, _ := primitive.ObjectIDFromHex(request.UserID)
		booking.UserID = &userID
	}
	return booking, nil
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "mongodb":
		return "must be a valid id"
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed on %s", fieldErr.Tag())
	}
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func (service *BookingService) GetAll(ctx context.Context) ([]*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetAll")
	defer span.End()

	service.logger.Infoln("BookingService.GetAll : GetAll service reached")

	bookings, err := service.store.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return bookings, nil
}

func (service *BookingService) GetByUser(ctx context.Context, userID string) ([]*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetByUser")
	defer span.End()

	service.logger.Infoln("BookingService.GetByUser : GetByUser service reached")

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.ErrInvalidID
	}

	bookings, err := service.store.GetByUser(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return bookings, nil
}

// GetMine lists the bookings of the calling user.
func (service *BookingService) GetMine(ctx context.Context, identity domain.Identity) ([]*domain.BookingDetails, error) {
	if !identity.IsAuthenticated() {
		return nil, errors.ErrUnauthorized
	}
	return service.GetByUser(ctx, identity.UserID)
}

func (service *BookingService) Get(ctx context.Context, id string) (*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Get")
	defer span.End()

	service.logger.Infoln("BookingService.Get : Get service reached")

	bookingID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.ErrBookingNotFound
	}

	booking, err := service.store.Get(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}

func (service *BookingService) UpdateStatus(ctx context.Context, id string, status string) (*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.UpdateStatus")
	defer span.End()

	service.logger.Infoln("BookingService.UpdateStatus : UpdateStatus service reached")

	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.NewValidationError(errors.InvalidStatus)
	}

	current, err := service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return service.transition(ctx, current, next)
}

// Cancel cancels a booking on behalf of the user who made it.
func (service *BookingService) Cancel(ctx context.Context, identity domain.Identity, id string) (*domain.BookingDetails, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Cancel")
	defer span.End()

	service.logger.Infoln("BookingService.Cancel : Cancel service reached")

	if !identity.IsAuthenticated() {
		return nil, errors.ErrUnauthorized
	}

	current, err := service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if current.UserID == nil || current.UserID.Hex() != identity.UserID {
		span.SetStatus(codes.Error, errors.NotBookingOwner)
		service.logger.Warnf("BookingService.Cancel : user %s tried to cancel booking %s", identity.UserID, id)
		return nil, errors.ErrNotBookingOwner
	}

	return service.transition(ctx, current, domain.Cancelled)
}

func (service *BookingService) transition(ctx context.Context, current *domain.BookingDetails, next domain.BookingStatus) (*domain.BookingDetails, error) {
	if !current.Status.CanTransitionTo(next) {
		return nil, errors.NewValidationError(fmt.Sprintf("Cannot change status from %s to %s", current.Status, next))
	}

	updated, err := service.store.UpdateStatus(ctx, current.ID, next)
	if err != nil {
		service.logger.Errorf("BookingService.transition : %v", err)
		return nil, err
	}

	if current.Status != next {
		if err := service.notifier.NotifyStatusChange(ctx, updated); err != nil {
			service.logger.Warnf("BookingService.transition : status mail for %s not sent: %v", updated.ID.Hex(), err)
		}
	}
	return updated, nil
}

func (service *BookingService) Delete(ctx context.Context, id string) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.Delete")
	defer span.End()

	service.logger.Infoln("BookingService.Delete : Delete service reached")

	bookingID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.ErrBookingNotFound
	}

	if err := service.store.Delete(ctx, bookingID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (service *BookingService) Dashboard(ctx context.Context) (Dashboard, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.Dashboard")
	defer span.End()

	service.logger.Infoln("BookingService.Dashboard : Dashboard service reached")

	details, err := service.store.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Dashboard{}, err
	}

	bookings := make([]*domain.Booking, 0, len(details))
	for _, d := range details {
		bookings = append(bookings, &d.Booking)
	}
	return BuildDashboard(bookings, service.now()), nil
}
