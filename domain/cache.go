package domain

import "context"

type WeatherCache interface {
	PostCacheData(ctx context.Context, key string, value []byte) error
	GetCachedValue(ctx context.Context, key string) ([]byte, error)
}

type ImageStorage interface {
	SaveImage(ctx context.Context, folderName, imageName string, imageContent []byte) error
	GetImageContent(ctx context.Context, imagePath string) ([]byte, error)
	DeleteImage(ctx context.Context, imagePath string) error
	DeleteFolder(ctx context.Context, folderName string) error
}
