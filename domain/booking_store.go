package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStore interface {
	Insert(ctx context.Context, booking *Booking) (*Booking, error)
	GetAll(ctx context.Context) ([]*BookingDetails, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*BookingDetails, error)
	Get(ctx context.Context, id primitive.ObjectID) (*BookingDetails, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) (*BookingDetails, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PackageStore interface {
	Insert(ctx context.Context, p *Package) (*Package, error)
	GetAll(ctx context.Context) ([]*Package, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Package, error)
	Update(ctx context.Context, p *Package) (*Package, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type UserStore interface {
	Insert(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
