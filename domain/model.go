package domain

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID             primitive.ObjectID  `bson:"_id" json:"_id"`
	UserID         *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	UserName       string              `bson:"userName" json:"userName"`
	UserEmail      string              `bson:"userEmail" json:"userEmail"`
	UserPhone      string              `bson:"userPhone" json:"userPhone"`
	PackageID      primitive.ObjectID  `bson:"packageId" json:"packageId"`
	PackageName    string              `bson:"packageName" json:"packageName"`
	StartDate      time.Time           `bson:"startDate" json:"startDate"`
	EndDate        time.Time           `bson:"endDate" json:"endDate"`
	TotalBudget    float64             `bson:"totalBudget" json:"totalBudget"`
	NumberOfPeople int                 `bson:"numberOfPeople" json:"numberOfPeople"`
	Status         BookingStatus       `bson:"status" json:"status"`
	BookingDate    time.Time           `bson:"bookingDate" json:"bookingDate"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// BookingDetails is a booking with its user and package references resolved.
// Either reference is nil when the referenced document no longer exists.
type BookingDetails struct {
	Booking `bson:",inline"`
	User    *UserSummary    `bson:"user,omitempty" json:"user,omitempty"`
	Package *PackageSummary `bson:"package,omitempty" json:"package,omitempty"`
}

type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
}

type PackageSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	PackageName    string             `bson:"packageName" json:"packageName"`
	PricePerPerson float64            `bson:"pricePerPerson" json:"pricePerPerson"`
	Images         []string           `bson:"images" json:"images"`
}

// CreateBookingRequest is the client supplied part of a booking. Dates are
// accepted as RFC 3339 timestamps or plain yyyy-mm-dd dates.
type CreateBookingRequest struct {
	UserID         string   `json:"userId" validate:"omitempty,mongodb"`
	UserName       string   `json:"userName" validate:"required"`
	UserEmail      string   `json:"userEmail" validate:"required"`
	UserPhone      string   `json:"userPhone"`
	PackageID      string   `json:"packageId" validate:"required,mongodb"`
	StartDate      string   `json:"startDate" validate:"required"`
	EndDate        string   `json:"endDate" validate:"required"`
	TotalBudget    *float64 `json:"totalBudget" validate:"required"`
	NumberOfPeople *int     `json:"numberOfPeople" validate:"required"`
}

func (request *CreateBookingRequest) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(request)
}

func (request *CreateBookingRequest) Validate() error {
	return newValidator().Struct(request)
}

// newValidator reports failing fields by their json names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type Package struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	PackageName    string             `bson:"packageName" json:"packageName" validate:"required"`
	PricePerPerson float64            `bson:"pricePerPerson" json:"pricePerPerson" validate:"required"`
	Hotel          string             `bson:"hotel" json:"hotel" validate:"required"`
	Guide          string             `bson:"guide" json:"guide" validate:"required"`
	Description    string             `bson:"description" json:"description" validate:"required"`
	Climate        string             `bson:"climate" json:"climate" validate:"required"`
	Images         []string           `bson:"images" json:"images"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Package) Validate() error {
	return newValidator().Struct(p)
}

// PackageUpdate carries the fields of a partial package update. Nil fields
// are left untouched.
type PackageUpdate struct {
	PackageName    *string  `mapstructure:"packageName"`
	PricePerPerson *float64 `mapstructure:"pricePerPerson"`
	Hotel          *string  `mapstructure:"hotel"`
	Guide          *string  `mapstructure:"guide"`
	Description    *string  `mapstructure:"description"`
	Climate        *string  `mapstructure:"climate"`
}

func (update *PackageUpdate) ApplyTo(p *Package) {
	if update.PackageName != nil {
		p.PackageName = *update.PackageName
	}
	if update.PricePerPerson != nil {
		p.PricePerPerson = *update.PricePerPerson
	}
	if update.Hotel != nil {
		p.Hotel = *update.Hotel
	}
	if update.Guide != nil {
		p.Guide = *update.Guide
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Climate != nil {
		p.Climate = *update.Climate
	}
}

type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FullName  string             `bson:"fullName" json:"fullName" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password" json:"password,omitempty" validate:"required,min=6"`
	UserType  UserType           `bson:"userType" json:"userType"`
	CreatedOn time.Time          `bson:"createdOn" json:"createdOn"`
}

func (user *User) FromJSON(reader io.Reader) error {
	d := json.NewDecoder(reader)
	return d.Decode(user)
}

func (user *User) ValidateUser() error {
	return newValidator().Struct(user)
}

type UserType string

const (
	Unauthenticated UserType = "Unauthenticated"
	RegularUser     UserType = "User"
	Admin           UserType = "Admin"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (credentials *Credentials) Validate() error {
	return newValidator().Struct(credentials)
}

type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      UserType  `json:"userType"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Identity is the caller of an operation, anonymous when UserID is empty.
type Identity struct {
	UserID   string
	Email    string
	UserType UserType
}

func AnonymousIdentity() Identity {
	return Identity{UserType: Unauthenticated}
}

func (identity Identity) IsAuthenticated() bool {
	return identity.UserID != "" && identity.UserType != Unauthenticated
}

func (identity Identity) IsAdmin() bool {
	return identity.UserType == Admin
}

type Upload struct {
	Name        string
	ContentType string
	Content     []byte
}

type WeatherRequest struct {
	City string `json:"city" validate:"required"`
	Date string `json:"date" validate:"required"`
}

func (request *WeatherRequest) Validate() error {
	return newValidator().Struct(request)
}
