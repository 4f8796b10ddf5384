package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func validRequest() *CreateBookingRequest {
	budget := 1500.0
	people := 2
	return &CreateBookingRequest{
		UserName:       "Nimal Perera",
		UserEmail:      "nimal@example.com",
		PackageID:      "65a1f0c2e4b0a1b2c3d4e5f6",
		StartDate:      "2025-01-10",
		EndDate:        "2025-01-15",
		TotalBudget:    &budget,
		NumberOfPeople: &people,
	}
}

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("expected validator.ValidationErrors, got %v", err)
	}
	var fields []string
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
	}
	return fields
}

func TestCreateBookingRequestValid(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCreateBookingRequestAcceptsZeroAndNegativeNumbers(t *testing.T) {
	request := validRequest()
	budget := -10.0
	people := 0
	request.TotalBudget = &budget
	request.NumberOfPeople = &people

	if err := request.Validate(); err != nil {
		t.Fatalf("expected permissive numeric validation, got %v", err)
	}
}

func TestCreateBookingRequestMissingFields(t *testing.T) {
	request := validRequest()
	request.UserEmail = ""
	request.TotalBudget = nil
	request.NumberOfPeople = nil

	fields := failedFields(t, request.Validate())
	joined := strings.Join(fields, ",")
	for _, expected := range []string{"userEmail", "totalBudget", "numberOfPeople"} {
		if !strings.Contains(joined, expected) {
			t.Fatalf("expected %s among failed fields, got %v", expected, fields)
		}
	}
}

func TestCreateBookingRequestRejectsMalformedPackageID(t *testing.T) {
	request := validRequest()
	request.PackageID = "not-an-id"

	fields := failedFields(t, request.Validate())
	if len(fields) != 1 || fields[0] != "packageId" {
		t.Fatalf("expected packageId failure, got %v", fields)
	}
}

func TestCreateBookingRequestFromJSON(t *testing.T) {
	body := `{"userName":"A","userEmail":"a@b.c","packageId":"65a1f0c2e4b0a1b2c3d4e5f6",
		"startDate":"2025-01-10","endDate":"2025-01-12","totalBudget":0,"numberOfPeople":1}`

	var request CreateBookingRequest
	if err := request.FromJSON(strings.NewReader(body)); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if request.TotalBudget == nil || *request.TotalBudget != 0 {
		t.Fatalf("expected explicit zero budget to be kept")
	}
	if err := request.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestPackageUpdateApplyTo(t *testing.T) {
	name := "Ella Escape"
	price := 120.0
	update := PackageUpdate{PackageName: &name, PricePerPerson: &price}

	p := Package{PackageName: "Old", PricePerPerson: 10, Hotel: "Hotel", Climate: "Warm"}
	update.ApplyTo(&p)

	if p.PackageName != name || p.PricePerPerson != price {
		t.Fatalf("update not applied: %+v", p)
	}
	if p.Hotel != "Hotel" || p.Climate != "Warm" {
		t.Fatalf("untouched fields changed: %+v", p)
	}
}

func TestIdentity(t *testing.T) {
	if AnonymousIdentity().IsAuthenticated() {
		t.Fatalf("anonymous identity must not be authenticated")
	}
	admin := Identity{UserID: "65a1f0c2e4b0a1b2c3d4e5f6", UserType: Admin}
	if !admin.IsAuthenticated() || !admin.IsAdmin() {
		t.Fatalf("expected authenticated admin")
	}
}
