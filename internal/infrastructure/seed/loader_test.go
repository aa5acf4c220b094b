package seed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoader_HTTPSource(t *testing.T) {
	t.Run("loads dataset", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleDataset))
		}))
		defer server.Close()

		loader := NewLoader(NewHTTPSource(server.URL, 5*time.Second), zap.NewNop())
		txs, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, txs, 3)
	})

	t.Run("non-2xx is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewLoader(NewHTTPSource(server.URL, time.Second), nil).Load(context.Background())
		assert.ErrorIs(t, err, transaction.ErrSeedUnavailable)
	})

	t.Run("connection refused is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewLoader(NewHTTPSource(url, time.Second), nil).Load(context.Background())
		assert.ErrorIs(t, err, transaction.ErrSeedUnavailable)
	})

	t.Run("malformed payload is a format error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}))
		defer server.Close()

		_, err := NewLoader(NewHTTPSource(server.URL, time.Second), nil).Load(context.Background())
		assert.ErrorIs(t, err, transaction.ErrSeedFormat)
	})

	t.Run("oversized payload is a format error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleDataset))
		}))
		defer server.Close()

		loader := NewLoader(NewHTTPSource(server.URL, time.Second), nil)
		loader.maxBytes = 64
		_, err := loader.Load(context.Background())
		assert.ErrorIs(t, err, transaction.ErrSeedFormat)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader(NewHTTPSource(server.URL, time.Second), nil).Load(ctx)
		assert.ErrorIs(t, err, transaction.ErrSeedUnavailable)
	})
}

type fakeObjectGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *params.Bucket
	f.key = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(f.body))}, nil
}

func TestLoader_S3Source(t *testing.T) {
	t.Run("reads object", func(t *testing.T) {
		getter := &fakeObjectGetter{body: sampleDataset}
		src := NewS3SourceWithClient(getter, "datasets", "product_transaction.json")
		assert.Equal(t, "s3://datasets/product_transaction.json", src.Describe())

		txs, err := NewLoader(src, nil).Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, txs, 3)
		assert.Equal(t, "datasets", getter.bucket)
		assert.Equal(t, "product_transaction.json", getter.key)
	})

	t.Run("get failure is unavailable", func(t *testing.T) {
		getter := &fakeObjectGetter{err: errors.New("NoSuchKey")}
		_, err := NewLoader(NewS3SourceWithClient(getter, "b", "k"), nil).Load(context.Background())
		assert.ErrorIs(t, err, transaction.ErrSeedUnavailable)
		assert.True(t, strings.Contains(err.Error(), "NoSuchKey"))
	})
}

func TestNewLoaderFromConfig(t *testing.T) {
	t.Run("http", func(t *testing.T) {
		loader, err := NewLoaderFromConfig(context.Background(), config.SeedConfig{
			Source:  config.SeedSourceHTTP,
			URL:     "https://example.com/data.json",
			Timeout: time.Second,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/data.json", loader.source.Describe())
	})

	t.Run("s3", func(t *testing.T) {
		loader, err := NewLoaderFromConfig(context.Background(), config.SeedConfig{
			Source: config.SeedSourceS3,
			S3: config.S3SeedConfig{
				Bucket:          "datasets",
				Key:             "tx.json",
				Region:          "us-east-1",
				Endpoint:        "localhost:9000",
				AccessKeyID:     "minio",
				SecretAccessKey: "minio123",
				UsePathStyle:    true,
			},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "s3://datasets/tx.json", loader.source.Describe())
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := NewLoaderFromConfig(context.Background(), config.SeedConfig{Source: config.SeedSourceS3}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewLoaderFromConfig(context.Background(), config.SeedConfig{Source: "ftp"}, nil)
		assert.Error(t, err)
	})
}
