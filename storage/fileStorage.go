package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/colinmarc/hdfs/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const hdfsRoot = "/package-images"

type FileStorage struct {
	client *hdfs.Client
	logger *logrus.Logger
	tracer trace.Tracer
}

func New(hdfsUri string, logger *logrus.Logger, tracer trace.Tracer) (*FileStorage, error) {
	client, err := hdfs.New(hdfsUri)
	if err != nil {
		logger.Errorf("FileStorage.New : %v", err)
		return nil, err
	}

	fs := &FileStorage{
		client: client,
		logger: logger,
		tracer: tracer,
	}
	if err := fs.CreateDirectoriesStart(); err != nil {
		client.Close()
		return nil, err
	}
	return fs, nil
}

func (fs *FileStorage) Close() {
	fs.client.Close()
}

func (fs *FileStorage) CreateDirectoriesStart() error {
	if err := fs.client.MkdirAll(hdfsRoot, 0755); err != nil {
		fs.logger.Println(err)
		return err
	}
	return nil
}

func (fs *FileStorage) SaveImage(ctx context.Context, folderName, imageName string, imageContent []byte) error {
	_, span := fs.tracer.Start(ctx, "FileStorage.SaveImage")
	defer span.End()

	folderPath := ImagePath(folderName, "")
	if err := fs.client.MkdirAll(folderPath, 0755); err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("Error creating directory %s: %v", folderPath, err)
		return err
	}

	imagePath := ImagePath(folderName, imageName)
	file, err := fs.client.Create(imagePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("Error creating file %s: %v", imagePath, err)
		return err
	}

	if _, err := file.Write(imageContent); err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("Error writing image content: %v", err)
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("Error closing file: %v", err)
		return err
	}
	return nil
}

func (fs *FileStorage) GetImageContent(ctx context.Context, imagePath string) ([]byte, error) {
	_, span := fs.tracer.Start(ctx, "FileStorage.GetImageContent")
	defer span.End()

	fullPath := path.Join(hdfsRoot, path.Clean("/"+imagePath))

	file, err := fs.client.Open(fullPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		fs.logger.Errorf("FileStorage.GetImageContent : %v", err)
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("FileStorage.GetImageContent : %v", err)
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return imageData, nil
}

func (fs *FileStorage) DeleteImage(ctx context.Context, imagePath string) error {
	_, span := fs.tracer.Start(ctx, "FileStorage.DeleteImage")
	defer span.End()

	fullPath := path.Join(hdfsRoot, path.Clean("/"+imagePath))
	if err := fs.client.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("FileStorage.DeleteImage : %v", err)
		return err
	}
	return nil
}

func (fs *FileStorage) DeleteFolder(ctx context.Context, folderName string) error {
	_, span := fs.tracer.Start(ctx, "FileStorage.DeleteFolder")
	defer span.End()

	folderPath := ImagePath(folderName, "")
	if err := fs.client.RemoveAll(folderPath); err != nil && !os.IsNotExist(err) {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.Errorf("FileStorage.DeleteFolder : %v", err)
		return err
	}
	return nil
}

// ImagePath joins a folder and image name under the storage root, dropping
// any attempt to climb out of it.
func ImagePath(folderName, imageName string) string {
	return path.Join(hdfsRoot, path.Clean("/"+folderName), path.Clean("/"+imageName))
}
