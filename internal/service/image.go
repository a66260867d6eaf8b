package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/nutriscan/backend/config"
)

// objectPutter is the subset of the S3 client used for uploads
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores meal photos in S3
type ImageService struct {
	client objectPutter
	bucket string
	urlFor func(key string) string
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{
		client: s3Config.Client,
		bucket: s3Config.BucketName,
		urlFor: s3Config.ObjectURL,
	}
}

// UploadDataURI decodes the inline image, uploads it and returns the public URL
func (s *ImageService) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	uri, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("diary-images/%s%s", uuid.New().String(), uri.Extension())
	return s.UploadImageToS3(ctx, uri.Data, key, uri.ContentType)
}

// UploadImageToS3 uploads image data to S3 and returns the public URL
func (s *ImageService) UploadImageToS3(ctx context.Context, imageData []byte, key, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := s.urlFor(key)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)
	return publicURL, nil
}
