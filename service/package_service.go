package application

import (
	"booking_service/domain"
	"booking_service/errors"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxPackageImages = 5
	MaxImageSize     = 5 << 20
)

type PackageService struct {
	store   domain.PackageStore
	storage domain.ImageStorage
	tracer  trace.Tracer
	logger  *logrus.Logger
}

// NewPackageService accepts a nil storage; image uploads then fail with
// ErrStorageUnavailable.
func NewPackageService(store domain.PackageStore, storage domain.ImageStorage, tracer trace.Tracer, logger *logrus.Logger) *PackageService {
	return &PackageService{
		store:   store,
		storage: storage,
		tracer:  tracer,
		logger:  logger,
	}
}

func (service *PackageService) GetAll(ctx context.Context) ([]*domain.Package, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.GetAll")
	defer span.End()

	service.logger.Infoln("PackageService.GetAll : GetAll service reached")

	packages, err := service.store.GetAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return packages, nil
}

func (service *PackageService) Get(ctx context.Context, id string) (*domain.Package, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.Get")
	defer span.End()

	packageID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.ErrPackageNotFound
	}

	p, err := service.store.Get(ctx, packageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return p, nil
}

func (service *PackageService) Count(ctx context.Context) (int64, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.Count")
	defer span.End()

	count, err := service.store.Count(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}

// Create stores a package from form values and its uploaded images.
func (service *PackageService) Create(ctx context.Context, form map[string]interface{}, uploads []domain.Upload) (*domain.Package, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.Create")
	defer span.End()

	service.logger.Infoln("PackageService.Create : Create service reached")

	var update domain.PackageUpdate
	if err := decodeForm(form, &update); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p := &domain.Package{ID: primitive.NewObjectID(), Images: []string{}}
	update.ApplyTo(p)
	if err := validatePackage(p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	images, err := service.saveImages(ctx, p.ID.Hex(), uploads)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	p.Images = images

	created, err := service.store.Insert(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		service.logger.Errorf("PackageService.Create : %v", err)
		return nil, fmt.Errorf("insert package: %w", err)
	}
	return created, nil
}

// Update applies the present form values. New uploads replace the package's
// existing images.
func (service *PackageService) Update(ctx context.Context, id string, form map[string]interface{}, uploads []domain.Upload) (*domain.Package, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.Update")
	defer span.End()

	service.logger.Infoln("PackageService.Update : Update service reached")

	p, err := service.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var update domain.PackageUpdate
	if err := decodeForm(form, &update); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	update.ApplyTo(p)
	if err := validatePackage(p); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	oldImages := p.Images
	if len(uploads) > 0 {
		images, err := service.saveImages(ctx, p.ID.Hex(), uploads)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		p.Images = images
	}

	updated, err := service.store.Update(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if len(uploads) > 0 {
			service.removeImages(ctx, p.Images)
		}
		return nil, err
	}

	// Old images go only once the package points at the new ones.
	if len(uploads) > 0 {
		service.removeImages(ctx, oldImages)
	}
	return updated, nil
}

func (service *PackageService) removeImages(ctx context.Context, images []string) {
	for _, image := range images {
		if err := service.storage.DeleteImage(ctx, image); err != nil {
			service.logger.Warnf("PackageService.removeImages : %s not removed: %v", image, err)
		}
	}
}

// Delete removes a package and its images. Bookings referencing the package
// are kept and still show their packageName snapshot.
func (service *PackageService) Delete(ctx context.Context, id string) error {
	ctx, span := service.tracer.Start(ctx, "PackageService.Delete")
	defer span.End()

	service.logger.Infoln("PackageService.Delete : Delete service reached")

	packageID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.ErrPackageNotFound
	}

	if err := service.store.Delete(ctx, packageID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if service.storage != nil {
		if err := service.storage.DeleteFolder(ctx, packageID.Hex()); err != nil {
			service.logger.Warnf("PackageService.Delete : images of %s not removed: %v", packageID.Hex(), err)
		}
	}
	return nil
}

func (service *PackageService) GetImage(ctx context.Context, id, name string) ([]byte, error) {
	ctx, span := service.tracer.Start(ctx, "PackageService.GetImage")
	defer span.End()

	if service.storage == nil {
		return nil, errors.ErrStorageUnavailable
	}

	content, err := service.storage.GetImageContent(ctx, path.Join(id, name))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.ErrImageNotFound
		}
		return nil, err
	}
	return content, nil
}

func (service *PackageService) saveImages(ctx context.Context, folder string, uploads []domain.Upload) ([]string, error) {
	images := []string{}
	if len(uploads) == 0 {
		return images, nil
	}
	if err := validateUploads(uploads); err != nil {
		return nil, err
	}
	if service.storage == nil {
		return nil, errors.ErrStorageUnavailable
	}

	for _, upload := range uploads {
		name := uuid.NewString() + path.Ext(upload.Name)
		if err := service.storage.SaveImage(ctx, folder, name, upload.Content); err != nil {
			service.logger.Errorf("PackageService.saveImages : %v", err)
			service.removeImages(ctx, images)
			return nil, fmt.Errorf("save image: %w", err)
		}
		images = append(images, path.Join(folder, name))
	}
	return images, nil
}

func validateUploads(uploads []domain.Upload) error {
	validationErr := errors.NewValidationError("Image upload rejected")
	if len(uploads) > MaxPackageImages {
		validationErr.AddField("images", fmt.Sprintf("at most %d images are allowed", MaxPackageImages))
	}
	for _, upload := range uploads {
		if !strings.HasPrefix(upload.ContentType, "image/") {
			validationErr.AddField(upload.Name, "only image files are allowed")
			continue
		}
		if len(upload.Content) > MaxImageSize {
			validationErr.AddField(upload.Name, "image exceeds 5MB")
		}
	}
	if validationErr.HasFields() {
		return validationErr
	}
	return nil
}

func decodeForm(form map[string]interface{}, update *domain.PackageUpdate) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           update,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(form); err != nil {
		validationErr := errors.NewValidationError(errors.InvalidRequest)
		validationErr.AddField("form", err.Error())
		return validationErr
	}
	return nil
}

func validatePackage(p *domain.Package) error {
	if err := p.Validate(); err != nil {
		return toValidationError("Package validation failed", err)
	}
	return nil
}
