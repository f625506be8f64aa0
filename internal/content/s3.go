package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	wdsconfig "wds-go/internal/config"
	"wds-go/internal/wds"
)

// S3Store is an S3-backed implementation of wds.ContentStore for remote
// deployments. It mirrors the filesystem layout as object keys under an
// optional prefix. S3 PUT/DELETE are idempotent, which matches the
// content-addressed write semantics for free.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	enc      wds.Encryptor
}

// NewS3Store builds an S3Store from configuration. Credentials fall back
// to the default AWS chain when no static keys are configured; a custom
// endpoint (MinIO and friends) switches the client to path-style
// addressing.
func NewS3Store(ctx context.Context, cfg wdsconfig.ContentConfig, enc wds.Encryptor) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 content store requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		enc:      enc,
	}, nil
}

func (s *S3Store) recordKey(owner wds.DID, id wds.RecordID) string {
	return path.Join(s.prefix, owner.DirPrefix(), "records", wds.Shard(string(id)), string(id)+".snapshot")
}

func (s *S3Store) blobKey(id wds.BlobID) string {
	return path.Join(s.prefix, "blobs", wds.Shard(string(id)), string(id))
}

func (s *S3Store) WriteRecord(owner wds.DID, id wds.RecordID, data []byte) error {
	return s.put(s.recordKey(owner, id), data)
}

func (s *S3Store) ReadRecord(owner wds.DID, id wds.RecordID) ([]byte, error) {
	return s.get(s.recordKey(owner, id))
}

func (s *S3Store) DeleteRecord(owner wds.DID, id wds.RecordID) error {
	return s.delete(s.recordKey(owner, id))
}

func (s *S3Store) WriteBlob(id wds.BlobID, data []byte) error {
	key := s.blobKey(id)

	// Content-addressed: an existing object already holds these bytes.
	exists, err := s.exists(key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.put(key, data)
}

func (s *S3Store) ReadBlob(id wds.BlobID) ([]byte, error) {
	return s.get(s.blobKey(id))
}

func (s *S3Store) DeleteBlob(id wds.BlobID) error {
	return s.delete(s.blobKey(id))
}

func (s *S3Store) put(key string, data []byte) error {
	stored, err := s.enc.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypting content: %w", err)
	}

	_, err = s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(stored),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) get(key string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	defer out.Body.Close()

	stored, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	data, err := s.enc.Decrypt(stored)
	if err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}
	return data, nil
}

func (s *S3Store) delete(key string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) exists(key string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

// Compile-time check that S3Store implements wds.ContentStore
var _ wds.ContentStore = (*S3Store)(nil)
