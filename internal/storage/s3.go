package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/s3loader/service/internal/credentials"
)

// S3Backend implements Backend with the AWS SDK. It also works against
// S3-compatible endpoints when Settings.Endpoint is set.
type S3Backend struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// NewS3Backend builds an S3 client bound to creds.
func NewS3Backend(ctx context.Context, creds credentials.Credentials, settings Settings) (*S3Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(creds.Region),
		awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Client.Put owns retries; one SDK attempt per backend call.
		o.Retryer = aws.NopRetryer{}
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.endpointURL())
		}
		o.UsePathStyle = settings.PathStyle
	})

	return &S3Backend{
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

func (b *S3Backend) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return translateS3("put object", err)
	}
	return nil
}

func (b *S3Backend) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateS3("get object", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	return data, nil
}

func (b *S3Backend) HeadObject(ctx context.Context, bucket, key string) (Metadata, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Metadata{}, translateS3("head object", err)
	}
	return Metadata{
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		LastModified:  aws.ToTime(out.LastModified),
		ETag:          aws.ToString(out.ETag),
	}, nil
}

func (b *S3Backend) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return translateS3("delete object", err)
	}
	return nil
}

func (b *S3Backend) ListObjects(ctx context.Context, bucket, prefix, delimiter string) (RawListing, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var raw RawListing
	pages := s3.NewListObjectsV2Paginator(b.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return RawListing{}, translateS3("list objects", err)
		}
		for _, cp := range page.CommonPrefixes {
			raw.CommonPrefixes = append(raw.CommonPrefixes, aws.ToString(cp.Prefix))
		}
		for _, obj := range page.Contents {
			raw.Objects = append(raw.Objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return raw, nil
}

func (b *S3Backend) ListBuckets(ctx context.Context) ([]Bucket, error) {
	out, err := b.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, translateS3("list buckets", err)
	}
	buckets := make([]Bucket, 0, len(out.Buckets))
	for _, bk := range out.Buckets {
		buckets = append(buckets, Bucket{
			Name:         aws.ToString(bk.Name),
			CreationDate: aws.ToTime(bk.CreationDate),
		})
	}
	return buckets, nil
}

func (b *S3Backend) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", translateS3("presign get object", err)
	}
	return req.URL, nil
}

// translateS3 extracts the service error code, if any, from an SDK error.
func translateS3(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return NewError(op, apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return NewError(op, "", err.Error(), err)
}
