package store

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

// mongoTestStores connects to the MongoDB named by TEST_DB_HOST and
// TEST_DB_PORT and skips the test when they are unset.
func mongoTestStores(t *testing.T) (domain.BookingStore, domain.PackageStore) {
	t.Helper()
	host, port := os.Getenv("TEST_DB_HOST"), os.Getenv("TEST_DB_PORT")
	if host == "" || port == "" {
		t.Skip("TEST_DB_HOST and TEST_DB_PORT not set")
	}

	client, err := GetClientWithHTTPConfig(host, port, http.DefaultClient)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	database := "wanderlust_test_" + primitive.NewObjectID().Hex()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(database).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tracer := trace.NewNoopTracerProvider().Tracer("")
	return NewBookingMongoDBStore(client, database, tracer, logger), NewPackageMongoDBStore(client, database, tracer, logger)
}

func TestBookingStoreMissingDocument(t *testing.T) {
	bookings, _ := mongoTestStores(t)
	ctx := context.Background()
	missing := primitive.NewObjectID()

	if _, err := bookings.UpdateStatus(ctx, missing, domain.Confirmed); !stderrors.Is(err, errors.ErrBookingNotFound) {
		t.Fatalf("update status: expected ErrBookingNotFound, got %v", err)
	}
	if err := bookings.Delete(ctx, missing); !stderrors.Is(err, errors.ErrBookingNotFound) {
		t.Fatalf("delete: expected ErrBookingNotFound, got %v", err)
	}
}

func TestBookingStoreUpdateThenDelete(t *testing.T) {
	bookings, _ := mongoTestStores(t)
	ctx := context.Background()

	booking, err := bookings.Insert(ctx, &domain.Booking{
		UserName:       "Dilini Silva",
		UserEmail:      "dilini@example.com",
		PackageID:      primitive.NewObjectID(),
		PackageName:    "Yala Safari",
		StartDate:      time.Now().Add(48 * time.Hour).UTC(),
		EndDate:        time.Now().Add(96 * time.Hour).UTC(),
		NumberOfPeople: 2,
		Status:         domain.Pending,
		BookingDate:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := bookings.UpdateStatus(ctx, booking.ID, domain.Confirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.Confirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	if updated.Package != nil {
		t.Fatalf("dangling package reference must resolve to nil")
	}

	if err := bookings.Delete(ctx, booking.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := bookings.Delete(ctx, booking.ID); !stderrors.Is(err, errors.ErrBookingNotFound) {
		t.Fatalf("second delete: expected ErrBookingNotFound, got %v", err)
	}
}

func TestPackageStoreMissingDocument(t *testing.T) {
	_, packages := mongoTestStores(t)
	ctx := context.Background()
	missing := primitive.NewObjectID()

	if _, err := packages.Update(ctx, &domain.Package{ID: missing, PackageName: "Kandy"}); !stderrors.Is(err, errors.ErrPackageNotFound) {
		t.Fatalf("update: expected ErrPackageNotFound, got %v", err)
	}
	if err := packages.Delete(ctx, missing); !stderrors.Is(err, errors.ErrPackageNotFound) {
		t.Fatalf("delete: expected ErrPackageNotFound, got %v", err)
	}
}
