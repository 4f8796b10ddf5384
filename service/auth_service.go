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
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

type TokenGenerator interface {
	GenerateJWT(user *domain.User) (string, error)
}

type AuthService struct {
	store  domain.UserStore
	tokens TokenGenerator
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewAuthService(store domain.UserStore, tokens TokenGenerator, tracer trace.Tracer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		tracer: tracer,
		logger: logger,
	}
}

// Register creates a regular user account and logs it in.
func (service *AuthService) Register(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	service.logger.Infoln("AuthService.Register : Register service reached")

	user.FullName = strings.TrimSpace(user.FullName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := user.ValidateUser(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, toValidationError("User validation failed", err)
	}

	existing, err := service.store.GetByEmail(ctx, user.Email)
	if err != nil && !stderrors.Is(err, errors.ErrUserNotFound) {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, errors.EmailAlreadyExist)
		return nil, errors.ErrEmailAlreadyExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	user.UserType = domain.RegularUser
	user.CreatedOn = time.Now().UTC()

	created, err := service.store.Insert(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return service.authResponse(created)
}

func (service *AuthService) Login(ctx context.Context, credentials *domain.Credentials) (*domain.AuthResponse, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	service.logger.Infoln("AuthService.Login : Login service reached")

	if err := credentials.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, toValidationError(errors.InvalidRequest, err)
	}

	user, err := service.store.GetByEmail(ctx, strings.TrimSpace(credentials.Email))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		span.SetStatus(codes.Error, errors.InvalidCredentials)
		service.logger.Warnf("AuthService.Login : failed login for %s", user.Email)
		return nil, errors.ErrInvalidCredentials
	}

	return service.authResponse(user)
}

func (service *AuthService) authResponse(user *domain.User) (*domain.AuthResponse, error) {
	token, err := service.tokens.GenerateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	public := *user
	public.Password = ""
	return &domain.AuthResponse{Token: token, User: &public}, nil
}

func toValidationError(message string, err error) error {
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return err
	}
	validationErr := errors.NewValidationError(message)
	for _, fieldErr := range fieldErrors {
		validationErr.AddField(fieldErr.Field(), fieldMessage(fieldErr))
	}
	return validationErr
}
