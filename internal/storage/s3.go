package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"rescache/internal/cache"
	"rescache/internal/config"
	"rescache/internal/model"
)

// S3Storage exposes an S3 bucket prefix as a folder-semantics backend.
// Objects live under <prefix>/<resourceType>/; the object ETag serves as
// the content checksum and LastModified as the resource timestamp, so the
// synchronization engine merges S3 storages resource by resource like a
// local folder.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage creates an S3 backend from its storage config section.
// Credentials come from the config when set, otherwise from the default
// AWS credential chain.
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(cfg.S3Prefix, "/"),
	}, nil
}

func (s *S3Storage) Location() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

func (s *S3Storage) Type() model.OriginType {
	return model.OriginFolder
}

// Timestamp returns the newest LastModified of any object under the
// prefix. It only seeds the storage row; S3 storages are merged
// incrementally like folders.
func (s *S3Storage) Timestamp() time.Time {
	var newest time.Time
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix("")),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return newest
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.After(newest) {
				newest = *obj.LastModified
			}
		}
	}
	return newest
}

// keyPrefix builds the object key prefix for a resource type.
func (s *S3Storage) keyPrefix(resourceType string) string {
	parts := make([]string, 0, 2)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if resourceType != "" {
		parts = append(parts, resourceType)
	}
	p := strings.Join(parts, "/")
	if p != "" {
		p += "/"
	}
	return p
}

// Resources lists the objects under <prefix>/<resourceType>/.
func (s *S3Storage) Resources(resourceType string) ([]cache.Resource, error) {
	var resources []cache.Resource

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix(resourceType)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("listing s3 objects for %s: %w", resourceType, err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue // directory marker
			}
			base := path.Base(*obj.Key)
			if base == tagsManifestName {
				continue
			}

			var modified time.Time
			if obj.LastModified != nil {
				modified = *obj.LastModified
			}

			// The ETag is the content checksum for single-part uploads;
			// for the small assets a resource storage holds that is what we get.
			var checksum string
			if obj.ETag != nil {
				checksum = strings.Trim(*obj.ETag, `"`)
			}

			resources = append(resources, &StaticResource{
				ResourceName: strings.TrimSuffix(base, path.Ext(base)),
				Path:         s.Location() + "/" + resourceType + "/" + base,
				MD5:          checksum,
				Modified:     modified,
			})
		}
	}

	return resources, nil
}

// Tags fetches and parses <prefix>/<resourceType>/tags.toml, if present.
func (s *S3Storage) Tags(resourceType string) ([]cache.StorageTag, error) {
	key := s.keyPrefix(resourceType) + tagsManifestName
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching tags manifest %s: %w", key, err)
	}
	defer out.Body.Close()

	tags, err := parseTagsManifest(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return tags, nil
}

// Compile-time check that S3Storage implements cache.Storage
var _ cache.Storage = (*S3Storage)(nil)
