package store

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UserMongoDBStore struct {
	users  *mongo.Collection
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewUserMongoDBStore(client *mongo.Client, database string, tracer trace.Tracer, logger *logrus.Logger) domain.UserStore {
	if database == "" {
		database = DATABASE
	}
	users := client.Database(database).Collection(USERS_COLLECTION)

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := users.Indexes().CreateOne(context.Background(), index); err != nil {
		logger.Warnf("UserMongoDBStore : could not create email index: %v", err)
	}

	return &UserMongoDBStore{
		users:  users,
		tracer: tracer,
		logger: logger,
	}
}

func (store *UserMongoDBStore) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserMongoDBStore.Insert")
	defer span.End()

	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)

	if _, err := store.users.InsertOne(ctx, user); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.ErrEmailAlreadyExist
		}
		store.logger.Errorf("UserMongoDBStore.Insert : %v", err)
		return nil, err
	}
	return user, nil
}

func (store *UserMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserMongoDBStore.Get")
	defer span.End()

	user, err := store.filterOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return user, nil
}

func (store *UserMongoDBStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := store.tracer.Start(ctx, "UserMongoDBStore.GetByEmail")
	defer span.End()

	user, err := store.filterOne(ctx, bson.M{"email": strings.ToLower(email)})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return user, nil
}

func (store *UserMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.User, error) {
	var user domain.User
	err := store.users.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		store.logger.Errorf("UserMongoDBStore.filterOne : %v", err)
		return nil, err
	}
	return &user, nil
}
