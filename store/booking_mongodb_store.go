package store

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DATABASE            = "wanderlust"
	BOOKINGS_COLLECTION = "bookings"
	PACKAGES_COLLECTION = "packages"
	USERS_COLLECTION    = "users"
)

type BookingMongoDBStore struct {
	bookings *mongo.Collection
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewBookingMongoDBStore(client *mongo.Client, database string, tracer trace.Tracer, logger *logrus.Logger) domain.BookingStore {
	if database == "" {
		database = DATABASE
	}
	bookings := client.Database(database).Collection(BOOKINGS_COLLECTION)
	return &BookingMongoDBStore{
		bookings: bookings,
		tracer:   tracer,
		logger:   logger,
	}
}

func (store *BookingMongoDBStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.Insert")
	defer span.End()

	if !booking.Status.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, fmt.Errorf("insert booking: invalid status %q", booking.Status)
	}

	now := time.Now().UTC()
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := store.bookings.InsertOne(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("BookingMongoDBStore.Insert : %v", err)
		return nil, err
	}
	return booking, nil
}

func (store *BookingMongoDBStore) GetAll(ctx context.Context) ([]*domain.BookingDetails, error) {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.GetAll")
	defer span.End()

	bookings, err := store.filter(ctx, bson.M{})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return bookings, nil
}

func (store *BookingMongoDBStore) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.BookingDetails, error) {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.GetByUser")
	defer span.End()

	bookings, err := store.filter(ctx, bson.M{"userId": userID})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return bookings, nil
}

func (store *BookingMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.BookingDetails, error) {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.Get")
	defer span.End()

	booking, err := store.filterOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}

func (store *BookingMongoDBStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) (*domain.BookingDetails, error) {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.UpdateStatus")
	defer span.End()

	if !status.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, fmt.Errorf("update booking: invalid status %q", status)
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := store.bookings.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("BookingMongoDBStore.UpdateStatus : %v", err)
		return nil, err
	}
	if result.MatchedCount == 0 {
		span.SetStatus(codes.Error, errors.BookingNotFound)
		return nil, errors.ErrBookingNotFound
	}

	return store.filterOne(ctx, bson.M{"_id": id})
}

func (store *BookingMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "BookingMongoDBStore.Delete")
	defer span.End()

	result, err := store.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("BookingMongoDBStore.Delete : %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		span.SetStatus(codes.Error, errors.BookingNotFound)
		return errors.ErrBookingNotFound
	}
	return nil
}

// populate resolves userId and packageId into embedded summaries. Bookings
// whose references dangle keep a nil user or package.
func populate(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: USERS_COLLECTION},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: PACKAGES_COLLECTION},
			{Key: "localField", Value: "packageId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "package"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$package"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "user.password", Value: 0},
			{Key: "user.userType", Value: 0},
			{Key: "user.createdOn", Value: 0},
			{Key: "package.hotel", Value: 0},
			{Key: "package.guide", Value: 0},
			{Key: "package.description", Value: 0},
			{Key: "package.climate", Value: 0},
			{Key: "package.createdAt", Value: 0},
			{Key: "package.updatedAt", Value: 0},
		}}},
	}
}

func (store *BookingMongoDBStore) filter(ctx context.Context, filter bson.M) ([]*domain.BookingDetails, error) {
	cursor, err := store.bookings.Aggregate(ctx, populate(filter))
	if err != nil {
		store.logger.Errorf("BookingMongoDBStore.filter : %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *BookingMongoDBStore) filterOne(ctx context.Context, filter bson.M) (*domain.BookingDetails, error) {
	bookings, err := store.filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, errors.ErrBookingNotFound
	}
	return bookings[0], nil
}

func decode(ctx context.Context, cursor *mongo.Cursor) ([]*domain.BookingDetails, error) {
	bookings := make([]*domain.BookingDetails, 0)
	for cursor.Next(ctx) {
		var booking domain.BookingDetails
		if err := cursor.Decode(&booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}
	return bookings, cursor.Err()
}
