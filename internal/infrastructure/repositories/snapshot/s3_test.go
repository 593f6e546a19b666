package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/infrastructure/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 es un bucket en memoria con paginación
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	meta     map[string]map[string]string
	pageSize int

	putErr    error
	bucketErr error
	listCalls int
	deletes   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  make(map[string][]byte),
		meta:     make(map[string]map[string]string),
		pageSize: 1000,
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.meta[aws.ToString(in.Key)] = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.meta[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: meta}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.bucketErr != nil {
		return nil, f.bucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for _, obj := range in.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
		delete(f.meta, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestNewS3StoreWithClient_Prefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "market-data/history/AAPL.json"},
		{prefix: "snapshots", want: "snapshots/history/AAPL.json"},
		{prefix: "/snapshots/", want: "snapshots/history/AAPL.json"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			store := NewS3StoreWithClient(newFakeS3(), "bucket", tt.prefix)
			assert.Equal(t, tt.want, store.objectKey("AAPL"))
		})
	}
}

func TestNewS3Store_BuildsClient(t *testing.T) {
	store := NewS3Store(config.S3Config{
		Bucket:    "md",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NotNil(t, store)
	assert.Equal(t, "md", store.bucket)
	assert.Equal(t, DefaultS3Prefix, store.prefix)
	assert.NoError(t, store.Close())
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewS3StoreWithClient(fake, "bucket", "")

	points := samplePoints("AAPL")
	require.NoError(t, store.ReplaceHistory(ctx, "AAPL", points))
	assert.Equal(t, "2", fake.meta["market-data/history/AAPL.json"][pointCountMeta])

	got, err := store.LoadHistory(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.True(t, points[1].Date.Equal(got[1].Date))

	// reemplazar sobrescribe la serie completa
	require.NoError(t, store.ReplaceHistory(ctx, "AAPL", points[:1]))
	got, err = store.LoadHistory(ctx, "AAPL")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestS3Store_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing object is not found", func(t *testing.T) {
		store := NewS3StoreWithClient(newFakeS3(), "bucket", "")
		_, err := store.LoadHistory(ctx, "NOPE")
		require.Error(t, err)
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("put failure is wrapped", func(t *testing.T) {
		fake := newFakeS3()
		fake.putErr = errors.New("AccessDenied")
		store := NewS3StoreWithClient(fake, "bucket", "")

		err := store.ReplaceHistory(ctx, "AAPL", samplePoints("AAPL"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fake.putErr)
	})

	t.Run("empty symbol", func(t *testing.T) {
		store := NewS3StoreWithClient(newFakeS3(), "bucket", "")
		assert.ErrorIs(t, store.ReplaceHistory(ctx, "", nil), ErrInvalidSymbol)
	})

	t.Run("ping reports bucket errors", func(t *testing.T) {
		fake := newFakeS3()
		store := NewS3StoreWithClient(fake, "bucket", "")
		assert.NoError(t, store.Ping(ctx))

		fake.bucketErr = errors.New("NoSuchBucket")
		assert.Error(t, store.Ping(ctx))
	})
}

func TestS3Store_ClearAllPaginates(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fake.pageSize = 2
	store := NewS3StoreWithClient(fake, "bucket", "")

	for _, sym := range []string{"AAPL", "MSFT", "TSLA", "GOOG", "AMZN"} {
		require.NoError(t, store.ReplaceHistory(ctx, sym, samplePoints(sym)))
	}
	// objetos fuera del prefijo no se tocan
	fake.objects["other/readme.txt"] = []byte("keep")

	deleted, err := store.ClearAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(10), deleted)
	assert.Equal(t, 3, fake.listCalls)
	assert.Len(t, fake.objects, 1)

	_, err = store.LoadHistory(ctx, "AAPL")
	assert.True(t, entities.IsNotFound(err))
}

func TestS3Store_ClearAllEmptyBucket(t *testing.T) {
	fake := newFakeS3()
	store := NewS3StoreWithClient(fake, "bucket", "")

	deleted, err := store.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Zero(t, fake.deletes)
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NoSuchKey{}))
	assert.True(t, isS3NotFound(&types.NotFound{}))
	assert.True(t, isS3NotFound(errors.New("operation error S3: GetObject, https response error StatusCode: 404")))
	assert.False(t, isS3NotFound(errors.New("AccessDenied")))
}
