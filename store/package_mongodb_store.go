package store

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type PackageMongoDBStore struct {
	packages *mongo.Collection
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewPackageMongoDBStore(client *mongo.Client, database string, tracer trace.Tracer, logger *logrus.Logger) domain.PackageStore {
	if database == "" {
		database = DATABASE
	}
	packages := client.Database(database).Collection(PACKAGES_COLLECTION)
	return &PackageMongoDBStore{
		packages: packages,
		tracer:   tracer,
		logger:   logger,
	}
}

func (store *PackageMongoDBStore) Insert(ctx context.Context, p *domain.Package) (*domain.Package, error) {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.Insert")
	defer span.End()

	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := store.packages.InsertOne(ctx, p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.Insert : %v", err)
		return nil, err
	}
	return p, nil
}

func (store *PackageMongoDBStore) GetAll(ctx context.Context) ([]*domain.Package, error) {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.GetAll")
	defer span.End()

	cursor, err := store.packages.Find(ctx, bson.M{})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.GetAll : %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	packages := make([]*domain.Package, 0)
	if err := cursor.All(ctx, &packages); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return packages, nil
}

func (store *PackageMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.Get")
	defer span.End()

	var p domain.Package
	err := store.packages.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		span.SetStatus(codes.Error, errors.PackageNotFound)
		return nil, errors.ErrPackageNotFound
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.Get : %v", err)
		return nil, err
	}
	return &p, nil
}

func (store *PackageMongoDBStore) Update(ctx context.Context, p *domain.Package) (*domain.Package, error) {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.Update")
	defer span.End()

	p.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"packageName":    p.PackageName,
		"pricePerPerson": p.PricePerPerson,
		"hotel":          p.Hotel,
		"guide":          p.Guide,
		"description":    p.Description,
		"climate":        p.Climate,
		"images":         p.Images,
		"updatedAt":      p.UpdatedAt,
	}}

	result, err := store.packages.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.Update : %v", err)
		return nil, err
	}
	if result.MatchedCount == 0 {
		span.SetStatus(codes.Error, errors.PackageNotFound)
		return nil, errors.ErrPackageNotFound
	}
	return p, nil
}

func (store *PackageMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.Delete")
	defer span.End()

	result, err := store.packages.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.Delete : %v", err)
		return err
	}
	if result.DeletedCount == 0 {
		span.SetStatus(codes.Error, errors.PackageNotFound)
		return errors.ErrPackageNotFound
	}
	return nil
}

func (store *PackageMongoDBStore) Count(ctx context.Context) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "PackageMongoDBStore.Count")
	defer span.End()

	count, err := store.packages.CountDocuments(ctx, bson.M{})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("PackageMongoDBStore.Count : %v", err)
		return 0, err
	}
	return count, nil
}
