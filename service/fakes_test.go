package application

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/go-redis/redis"
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

type fakePackageStore struct {
	mu        sync.Mutex
	packages  map[primitive.ObjectID]*domain.Package
	err       error
	updateErr error
}

func newFakePackageStore(packages ...*domain.Package) *fakePackageStore {
	store := &fakePackageStore{packages: make(map[primitive.ObjectID]*domain.Package)}
	for _, p := range packages {
		store.packages[p.ID] = p
	}
	return store
}

func (store *fakePackageStore) Insert(_ context.Context, p *domain.Package) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	copied := *p
	store.packages[p.ID] = &copied
	return p, nil
}

func (store *fakePackageStore) GetAll(context.Context) ([]*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	packages := make([]*domain.Package, 0, len(store.packages))
	for _, p := range store.packages {
		copied := *p
		packages = append(packages, &copied)
	}
	return packages, nil
}

func (store *fakePackageStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	p, ok := store.packages[id]
	if !ok {
		return nil, errors.ErrPackageNotFound
	}
	copied := *p
	return &copied, nil
}

func (store *fakePackageStore) Update(_ context.Context, p *domain.Package) (*domain.Package, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.updateErr != nil {
		return nil, store.updateErr
	}
	if _, ok := store.packages[p.ID]; !ok {
		return nil, errors.ErrPackageNotFound
	}
	copied := *p
	store.packages[p.ID] = &copied
	return p, nil
}

func (store *fakePackageStore) Delete(_ context.Context, id primitive.ObjectID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.packages[id]; !ok {
		return errors.ErrPackageNotFound
	}
	delete(store.packages, id)
	return nil
}

func (store *fakePackageStore) Count(context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return int64(len(store.packages)), nil
}

func (store *fakePackageStore) rename(id primitive.ObjectID, name string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.packages[id].PackageName = name
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	packages *fakePackageStore
	err      error
}

func newFakeBookingStore(packages *fakePackageStore) *fakeBookingStore {
	return &fakeBookingStore{packages: packages}
}

func (store *fakeBookingStore) Insert(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	if !booking.Status.IsValid() {
		return nil, stderrors.New("invalid status")
	}
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	store.bookings = append(store.bookings, &copied)
	return booking, nil
}

func (store *fakeBookingStore) details(booking *domain.Booking) *domain.BookingDetails {
	d := &domain.BookingDetails{Booking: *booking}
	if store.packages != nil {
		if p, ok := store.packages.packages[booking.PackageID]; ok {
			d.Package = &domain.PackageSummary{ID: p.ID, PackageName: p.PackageName, PricePerPerson: p.PricePerPerson, Images: p.Images}
		}
	}
	return d
}

func (store *fakeBookingStore) GetAll(context.Context) ([]*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	result := make([]*domain.BookingDetails, 0, len(store.bookings))
	for _, booking := range store.bookings {
		result = append(result, store.details(booking))
	}
	return result, nil
}

func (store *fakeBookingStore) GetByUser(_ context.Context, userID primitive.ObjectID) ([]*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	result := make([]*domain.BookingDetails, 0)
	for _, booking := range store.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			result = append(result, store.details(booking))
		}
	}
	return result, nil
}

func (store *fakeBookingStore) find(id primitive.ObjectID) *domain.Booking {
	for _, booking := range store.bookings {
		if booking.ID == id {
			return booking
		}
	}
	return nil
}

func (store *fakeBookingStore) Get(_ context.Context, id primitive.ObjectID) (*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	booking := store.find(id)
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	return store.details(booking), nil
}

func (store *fakeBookingStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.BookingStatus) (*domain.BookingDetails, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !status.IsValid() {
		return nil, stderrors.New("invalid status")
	}
	booking := store.find(id)
	if booking == nil {
		return nil, errors.ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return store.details(booking), nil
}

func (store *fakeBookingStore) Delete(_ context.Context, id primitive.ObjectID) error {
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

func (store *fakeBookingStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.bookings)
}

func (store *fakeBookingStore) status(id primitive.ObjectID) domain.BookingStatus {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.find(id).Status
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (store *fakeUserStore) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
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

func (store *fakeUserStore) Get(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
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

func (store *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.BookingStatus
	err  error
}

func (notifier *fakeNotifier) NotifyStatusChange(_ context.Context, booking *domain.BookingDetails) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.sent = append(notifier.sent, booking.Status)
	return notifier.err
}

type fakeImageStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newFakeImageStorage() *fakeImageStorage {
	return &fakeImageStorage{files: make(map[string][]byte)}
}

func (storage *fakeImageStorage) SaveImage(_ context.Context, folderName, imageName string, imageContent []byte) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	if storage.saveErr != nil {
		return storage.saveErr
	}
	storage.files[path.Join(folderName, imageName)] = imageContent
	return nil
}

func (storage *fakeImageStorage) DeleteImage(_ context.Context, imagePath string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	delete(storage.files, imagePath)
	return nil
}

func (storage *fakeImageStorage) GetImageContent(_ context.Context, imagePath string) ([]byte, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	content, ok := storage.files[imagePath]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func (storage *fakeImageStorage) DeleteFolder(_ context.Context, folderName string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	for name := range storage.files {
		if path.Dir(name) == folderName {
			delete(storage.files, name)
		}
	}
	return nil
}

type fakeRunner struct {
	mu    sync.Mutex
	out   []byte
	err   error
	calls [][]string
}

func (runner *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	runner.calls = append(runner.calls, args)
	return runner.out, runner.err
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (cache *fakeCache) PostCacheData(_ context.Context, key string, value []byte) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.values[key] = value
	return nil
}

func (cache *fakeCache) GetCachedValue(_ context.Context, key string) ([]byte, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, ok := cache.values[key]
	if !ok {
		return nil, redis.Nil
	}
	return value, nil
}
