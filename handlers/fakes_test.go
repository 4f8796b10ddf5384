package handlers

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("")
}

// headerIdentity reads the caller from X-User-Id and X-User-Type so tests can
// act as any user without signing tokens.
type headerIdentity struct{}

func (headerIdentity) Identity(r *http.Request) (domain.Identity, error) {
	userType := r.Header.Get("X-User-Type")
	if userType == "" {
		return domain.AnonymousIdentity(), nil
	}
	return domain.Identity{UserID: r.Header.Get("X-User-Id"), UserType: domain.UserType(userType)}, nil
}

type memPackageStore struct {
	mu       sync.Mutex
	packages map[primitive.ObjectID]*domain.Package
}

func newMemPackageStore(packages ...*domain.Package) *memPackageStore {
	store := &memPackageStore{packages: make(map[primitive.ObjectID]*domain.Package)}
	for _, p := range packages {
		store.packages[p.ID] = p
	}
	return store
}

func (store *memPackageStore) Insert(_ context.Context, p *domain.Package) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *p
	store.packages[p.ID] = &copied
	return p, nil
}

func (store *memPackageStore) GetAll(context.Context) ([]*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	packages := make([]*domain.Package, 0, len(store.packages))
	for _, p := range store.packages {
		copied := *p
		packages = append(packages, &copied)
	}
	return packages, nil
}

func (store *memPackageStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	p, ok := store.packages[id]
	if !ok {
		return nil, errors.ErrPackageNotFound
	}
	copied := *p
	return &copied, nil
}

func (store *memPackageStore) Update(_ context.Context, p *domain.Package) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.packages[p.ID]; !ok {
		return nil, errors.ErrPackageNotFound
	}
	copied := *p
	store.packages[p.ID] = &copied
	return p, nil
}

func (store *memPackageStore) Delete(_ context.Context, id primitive.ObjectID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.packages[id]; !ok {
		return errors.ErrPackageNotFound
	}
	delete(store.packages, id)
	return nil
}

func (store *memPackageStore) Count(context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return int64(len(store.packages)), nil
}

type memBookingStore struct {
	mu       sync.Mutex
	bookings []*domain.Booking
}

func (store *memBookingStore) Insert(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	store.bookings = append(store.bookings, &copied)
	return booking, nil
}

func (store *memBookingStore) GetAll(context.Context) ([]*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]*domain.BookingDetails, 0, len(store.bookings))
	for _, booking := range store.bookings {
		result = append(result, &domain.BookingDetails{Booking: *booking})
	}
	return result, nil
}

func (store *memBookingStore) GetByUser(_ context.Context, userID primitive.ObjectID) ([]*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]*domain.BookingDetails, 0)
	for _, booking := range store.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			result = append(result, &domain.BookingDetails{Booking: *booking})
		}
	}
	return result, nil
}

func (store *memBookingStore) find(id primitive.ObjectID) *domain.Booking {
	for _, booking := range store.bookings {
		if booking.ID == id {
			return booking
		}
	}
	return nil
}

func (store *memBookingStore) Get(_ context.Context, id primitive.ObjectID) (*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	booking := store.find(id)
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	return &domain.BookingDetails{Booking: *booking}, nil
}

func (store *memBookingStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.BookingStatus) (*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	booking := store.find(id)
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return &domain.BookingDetails{Booking: *booking}, nil
}

func (store *memBookingStore) Delete(_ context.Context, id primitive.ObjectID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for i, booking := range store.bookings {
		if booking.ID == id {
			store.bookings = append(store.bookings[:i], store.bookings[i+1:]...)
			return nil
		}
	}
	return errors.ErrBookingNotFound
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (store *memUserStore) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.users[user.Email]; ok {
		return nil, errors.ErrEmailAlreadyExist
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	store.users[user.Email] = &copied
	return user, nil
}

func (store *memUserStore) Get(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (store *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

type staticTokens struct{}

func (staticTokens) GenerateJWT(user *domain.User) (string, error) {
	return "token-" + user.ID.Hex(), nil
}

type memImageStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemImageStorage() *memImageStorage {
	return &memImageStorage{files: make(map[string][]byte)}
}

func (storage *memImageStorage) SaveImage(_ context.Context, folderName, imageName string, imageContent []byte) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	storage.files[path.Join(folderName, imageName)] = imageContent
	return nil
}

func (storage *memImageStorage) GetImageContent(_ context.Context, imagePath string) ([]byte, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	content, ok := storage.files[imagePath]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func (storage *memImageStorage) DeleteImage(_ context.Context, imagePath string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	delete(storage.files, imagePath)
	return nil
}

func (storage *memImageStorage) DeleteFolder(_ context.Context, folderName string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	for name := range storage.files {
		if path.Dir(name) == folderName {
			delete(storage.files, name)
		}
	}
	return nil
}

type scriptedRunner struct {
	out []byte
	err error
}

func (runner scriptedRunner) Run(context.Context, ...string) ([]byte, error) {
	return runner.out, runner.err
}
