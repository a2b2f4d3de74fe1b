package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	appconfig "myootd/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

type AWSServiceProvider interface {
	InitPresignClient(ctx context.Context) error
	PresignLink(ctx context.Context, bucketName string, fileName string) (string, error)
	UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error)
	GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error)
}

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// AWSService talks to Cloudflare R2 through the S3 API.
type AWSService struct {
	Config          appconfig.R2Config
	S3PresignClient *s3.PresignClient
}

func (awsService *AWSService) InitPresignClient(ctx context.Context) error {
	accountID := awsService.Config.AccountID
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsService.Config.AccessKeyID, awsService.Config.AccessKeySecret, "",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	awsService.S3PresignClient = s3.NewPresignClient(s3.NewFromConfig(cfg))
	return nil
}

func (awsService *AWSService) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: &bucketName, Key: &fileName})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload of %s: %w", fileName, err)
	}
	return request.URL, nil
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return presignedGetRequest.URL, nil
}

// UploadToPresignedURL PUTs an image to a presigned url and returns the
// response status code.
func (awsService *AWSService) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	mimeType := http.DetectContentType(fileContent)
	if !allowedImageTypes[mimeType] {
		return 0, fmt.Errorf("unsupported file type: %s", mimeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(fileContent))
	if err != nil {
		return 0, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := newHTTPClient(0).Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("mime", mimeType).Msg("uploaded file to presigned url")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
