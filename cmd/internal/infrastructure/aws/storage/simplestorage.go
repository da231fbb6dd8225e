package storage

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const basePath = "history/"

type S3Client interface {
	UploadFile(ctx context.Context, data []byte, filename string) (string, error)
}

type storageClient struct {
	bucket string
	client *s3.Client
}

func NewStorageClient(ctx context.Context, region, bucket string) (S3Client, error) {
	if bucket == "" {
		return nil, errors.New("bucket name is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &storageClient{
		bucket: bucket,
		client: s3.NewFromConfig(cfg),
	}, nil
}

// UploadFile stores data under the history prefix and returns the object key.
func (s *storageClient) UploadFile(ctx context.Context, data []byte, filename string) (string, error) {
	if filename == "" {
		return "", errors.New("filename is empty")
	}

	key := basePath + filename
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return key, nil
}
