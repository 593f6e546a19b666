package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	DefaultS3Prefix = "market-data"

	// pointCountMeta guarda la cantidad de puntos para que ClearAll no tenga que leer cada objeto
	pointCountMeta = "point-count"
	// DeleteObjects acepta hasta 1000 claves por pedido
	maxDeleteBatch = 1000
)

// s3API es el subconjunto de *s3.Client que usa el store
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store guarda cada serie como el objeto {prefix}/history/{SYM}.json
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

var _ interfaces.SnapshotStore = (*S3Store)(nil)

// NewS3Store crea el cliente S3. Sin access/secret key los pedidos salen
// anónimos; con endpoint propio (MinIO y similares) se usa path-style.
func NewS3Store(cfg config.S3Config) *S3Store {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.AnonymousCredentials{},
	}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return NewS3StoreWithClient(s3.New(opts), cfg.Bucket, cfg.Prefix)
}

// NewS3StoreWithClient creates a store with an existing client
func NewS3StoreWithClient(client s3API, bucket, prefix string) *S3Store {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultS3Prefix
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) historyPrefix() string {
	return s.prefix + "/history/"
}

func (s *S3Store) objectKey(symbol string) string {
	return s.historyPrefix() + symbol + ".json"
}

// ReplaceHistory sobrescribe el objeto del símbolo
func (s *S3Store) ReplaceHistory(ctx context.Context, symbol string, points []entities.HistoryPoint) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}

	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", symbol, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(symbol)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{pointCountMeta: strconv.Itoa(len(points))},
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", symbol, err)
	}
	return nil
}

// LoadHistory retorna entities.ErrNotFound si el objeto no existe
func (s *S3Store) LoadHistory(ctx context.Context, symbol string) ([]entities.HistoryPoint, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(symbol)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, entities.Wrap(entities.ErrNotFound, "no snapshot for "+symbol)
		}
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", symbol, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for %s: %w", symbol, err)
	}

	var points []entities.HistoryPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", symbol, err)
	}
	return points, nil
}

// ClearAll lista todos los objetos bajo el prefijo y los borra en lotes
func (s *S3Store) ClearAll(ctx context.Context) (int64, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.historyPrefix()),
	})

	var deleted int64
	batch := make([]types.ObjectIdentifier, 0, maxDeleteBatch)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("failed to list snapshots: %w", err)
		}

		for _, obj := range page.Contents {
			deleted += s.pointCount(ctx, aws.ToString(obj.Key))
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})

			if len(batch) == maxDeleteBatch {
				if err := s.deleteBatch(ctx, batch); err != nil {
					return deleted, err
				}
				batch = batch[:0]
			}
		}
	}

	if err := s.deleteBatch(ctx, batch); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (s *S3Store) deleteBatch(ctx context.Context, batch []types.ObjectIdentifier) error {
	if len(batch) == 0 {
		return nil
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: append([]types.ObjectIdentifier(nil), batch...),
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("failed to delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
	}
	return nil
}

// pointCount lee la metadata del objeto; 0 si no se puede
func (s *S3Store) pointCount(ctx context.Context, key string) int64 {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(head.Metadata[pointCountMeta], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Ping verifica que el bucket exista y sea accesible
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	return err
}

func (s *S3Store) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "StatusCode: 404")
}
