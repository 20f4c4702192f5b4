package aws

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore uploads public assets (company logos, menu item images).
type ObjectStore struct {
	uploader  *manager.Uploader
	bucket    string
	endpoint  string
	cdnDomain string
}

// NewObjectStore creates an S3-backed object store. A non-empty endpoint
// switches to path-style addressing for LocalStack.
func NewObjectStore(cfg sdkaws.Config, bucket, endpoint, cdnDomain string) *ObjectStore {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
	return &ObjectStore{uploader: manager.NewUploader(client), bucket: bucket, endpoint: endpoint, cdnDomain: cdnDomain}
}

// Put stores body under key and returns the object's public URL. Large
// bodies are sent as a multipart upload.
func (o *ObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if o.bucket == "" {
		return "", fmt.Errorf("s3 put %s: bucket not configured", key)
	}
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(o.bucket),
		Key:    sdkaws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}
	if _, err := o.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return o.PublicURL(key), nil
}

// PublicURL prefers the CDN domain, then the custom endpoint, then the
// virtual-hosted S3 URL.
func (o *ObjectStore) PublicURL(key string) string {
	switch {
	case o.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(o.cdnDomain, "/"), key)
	case o.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(o.endpoint, "/"), o.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", o.bucket, key)
	}
}
