package handlers

import (
	"booking_service/domain"
	"booking_service/errors"
	"booking_service/service"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxMultipartMemory = 32 << 20
	maxPackageBody     = application.MaxPackageImages*application.MaxImageSize + 1<<20
	imagesField        = "images"
)

type PackageHandler struct {
	service *application.PackageService
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewPackageHandler(service *application.PackageService, tracer trace.Tracer, logger *logrus.Logger) *PackageHandler {
	return &PackageHandler{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *PackageHandler) Init(router *mux.Router) {
	router.HandleFunc("/packages", handler.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/packages", handler.Create).Methods(http.MethodPost)
	router.HandleFunc("/packages/count", handler.Count).Methods(http.MethodGet)
	router.HandleFunc("/packages/{id}", handler.Get).Methods(http.MethodGet)
	router.HandleFunc("/packages/{id}", handler.Update).Methods(http.MethodPut)
	router.HandleFunc("/packages/{id}", handler.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/packages/{id}/images/{name}", handler.GetImage).Methods(http.MethodGet)
}

func (handler *PackageHandler) GetAll(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.GetAll")
	defer span.End()

	packages, err := handler.service.GetAll(ctx)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(packages, writer, http.StatusOK)
}

func (handler *PackageHandler) Count(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.Count")
	defer span.End()

	count, err := handler.service.Count(ctx)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(map[string]int64{"count": count}, writer, http.StatusOK)
}

func (handler *PackageHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.Get")
	defer span.End()

	p, err := handler.service.Get(ctx, mux.Vars(req)["id"])
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(p, writer, http.StatusOK)
}

func (handler *PackageHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.Create")
	defer span.End()

	form, uploads, err := readPackageForm(writer, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeFormError(writer, err)
		return
	}

	p, err := handler.service.Create(ctx, form, uploads)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(p, writer, http.StatusCreated)
}

func (handler *PackageHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.Update")
	defer span.End()

	form, uploads, err := readPackageForm(writer, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeFormError(writer, err)
		return
	}

	p, err := handler.service.Update(ctx, mux.Vars(req)["id"], form, uploads)
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(p, writer, http.StatusOK)
}

func (handler *PackageHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.Delete")
	defer span.End()

	if err := handler.service.Delete(ctx, mux.Vars(req)["id"]); err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}
	jsonResponse(messageResponse{Message: errors.PackageDeleted}, writer, http.StatusOK)
}

func (handler *PackageHandler) GetImage(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "PackageHandler.GetImage")
	defer span.End()

	vars := mux.Vars(req)
	content, err := handler.service.GetImage(ctx, vars["id"], vars["name"])
	if err != nil {
		handleError(writer, span, handler.logger, err)
		return
	}

	writer.Header().Set("Content-Type", http.DetectContentType(content))
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(content); err != nil {
		handler.logger.Errorf("PackageHandler.GetImage : %v", err)
	}
}

func writeFormError(writer http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeError(writer, http.StatusRequestEntityTooLarge, errors.RequestTooLarge)
		return
	}
	writeError(writer, http.StatusBadRequest, errors.InvalidRequest)
}

// readPackageForm accepts either a multipart form with files under "images"
// or a plain JSON object without images. The body is capped at maxPackageBody.
func readPackageForm(writer http.ResponseWriter, req *http.Request) (map[string]interface{}, []domain.Upload, error) {
	req.Body = http.MaxBytesReader(writer, req.Body, maxPackageBody)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		form := make(map[string]interface{})
		if err := json.NewDecoder(req.Body).Decode(&form); err != nil {
			return nil, nil, err
		}
		return form, nil, nil
	}

	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, err
	}

	form := make(map[string]interface{})
	for key, values := range req.MultipartForm.Value {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}

	var uploads []domain.Upload
	for _, header := range req.MultipartForm.File[imagesField] {
		file, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, nil, err
		}
		uploads = append(uploads, domain.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return form, uploads, nil
}
