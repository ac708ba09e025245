package store

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint  string
	bucket    string
	accessKey string
	secretKey string
	useSSL    bool
}

func newMinioConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		useSSL: false,
	}

	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

type minioStore struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioStore(opts ...MinioOpts) (*minioStore, error) {
	cfg := newMinioConfig(opts...)

	// Initialize minio client object.
	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &minioStore{cfg: cfg, client: minioClient}, nil
}

func (s *minioStore) Bucket() string {
	return s.cfg.bucket
}

func (s *minioStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.cfg.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyError(err)
	}
	defer object.Close()

	body, err := io.ReadAll(object)
	if err != nil {
		return nil, classifyError(err)
	}
	return body, nil
}

func (s *minioStore) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, s.cfg.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	return classifyError(err)
}

func (s *minioStore) ListObjects(ctx context.Context, prefix string, max int) ([]string, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(listCtx, s.cfg.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return keys, classifyError(obj.Err)
		}
		keys = append(keys, obj.Key)
		if max > 0 && len(keys) >= max {
			break
		}
	}
	return keys, nil
}

func (s *minioStore) StatObject(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.cfg.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, classifyError(err)
	}

	return ObjectInfo{
		Key:      info.Key,
		Size:     info.Size,
		Metadata: normalizeMetadata(info),
	}, nil
}

// normalizeMetadata flattens user metadata to lowercase keys. Depending on
// the call path minio exposes it either stripped in UserMetadata or under
// X-Amz-Meta- headers.
func normalizeMetadata(info minio.ObjectInfo) map[string]string {
	out := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		out[strings.ToLower(k)] = v
	}
	for k, v := range info.Metadata {
		lower := strings.ToLower(k)
		if name, ok := strings.CutPrefix(lower, "x-amz-meta-"); ok && len(v) > 0 {
			out[name] = v[0]
		}
	}
	return out
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
