// Package media загружает изображения и видео в S3-совместимое хранилище.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	// ErrNotConfigured хранилище не настроено (нет бакета или региона).
	ErrNotConfigured = errors.New("media storage is not configured")
	// ErrUnsupportedType файл не подходит под тип загрузки.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Kind каталог внутри папки сервиса.
type Kind string

const (
	KindImage Kind = "images"
	KindVideo Kind = "videos"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// Config параметры S3-совместимого хранилища.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // пусто для AWS; иначе MinIO/R2 и т.п.
	AccessKey string
	SecretKey string
	PublicURL string // базовый URL, по которому объекты доступны клиентам
	Folder    string
}

// PutObjectAPI часть s3.Client, нужная загрузчику.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result загруженный объект.
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func newS3Client(ctx context.Context, cfg Config) (PutObjectAPI, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Uploader создает S3 клиент при первой загрузке, так что сервис стартует
// и без настроенного хранилища.
type Uploader struct {
	cfg       Config
	logger    *slog.Logger
	newClient func(ctx context.Context, cfg Config) (PutObjectAPI, error)

	mu     sync.Mutex
	client PutObjectAPI
}

// Option настраивает Uploader.
type Option func(*Uploader)

// WithClient использует готовый клиент вместо создания S3 клиента.
func WithClient(c PutObjectAPI) Option {
	return func(u *Uploader) {
		u.newClient = func(context.Context, Config) (PutObjectAPI, error) { return c, nil }
	}
}

// NewUploader создает загрузчик.
func NewUploader(cfg Config, logger *slog.Logger, opts ...Option) *Uploader {
	u := &Uploader{cfg: cfg, logger: logger, newClient: newS3Client}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Uploader) getClient(ctx context.Context) (PutObjectAPI, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.client != nil {
		return u.client, nil
	}
	if u.cfg.Bucket == "" || u.cfg.Region == "" {
		return nil, ErrNotConfigured
	}
	client, err := u.newClient(ctx, u.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	u.client = client
	return client, nil
}

// Validate проверяет, что файл подходит под kind.
func Validate(kind Kind, filename, contentType string) error {
	switch kind {
	case KindImage:
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]; !ok {
			return fmt.Errorf("%w: only jpg, jpeg, png, gif and webp images are allowed", ErrUnsupportedType)
		}
	case KindVideo:
		if !strings.HasPrefix(strings.ToLower(contentType), "video/") {
			return fmt.Errorf("%w: only video files are allowed", ErrUnsupportedType)
		}
	default:
		return fmt.Errorf("%w: unknown upload kind %q", ErrUnsupportedType, kind)
	}
	return nil
}

// ObjectKey строит ключ вида <folder>/<kind>/<uuid><ext>.
func (u *Uploader) ObjectKey(kind Kind, filename string) string {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	return path.Join(u.cfg.Folder, string(kind), name)
}

// PublicURL адрес объекта для клиентов.
func (u *Uploader) PublicURL(key string) string {
	switch {
	case u.cfg.PublicURL != "":
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + key
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	}
}

// Upload проверяет файл и кладет его в бакет.
func (u *Uploader) Upload(ctx context.Context, kind Kind, filename, contentType string, body io.Reader, size int64) (*Result, error) {
	if err := Validate(kind, filename, contentType); err != nil {
		return nil, err
	}
	client, err := u.getClient(ctx)
	if err != nil {
		u.logger.ErrorContext(ctx, "Media storage client unavailable", slog.String("error", err.Error()))
		return nil, err
	}

	key := u.ObjectKey(kind, filename)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := client.PutObject(ctx, input); err != nil {
		u.logger.ErrorContext(ctx, "Failed to upload object", slog.String("key", key), slog.String("error", err.Error()))
		return nil, fmt.Errorf("put object: %w", err)
	}

	u.logger.InfoContext(ctx, "Object uploaded", slog.String("key", key), slog.Int64("size", size))
	return &Result{URL: u.PublicURL(key), Filename: key}, nil
}
