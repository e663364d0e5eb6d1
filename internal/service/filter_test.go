package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/InQaaaaGit/smart_filter.git/internal/classifier"
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/fetcher"
	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"github.com/InQaaaaGit/smart_filter.git/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockFetcher реализует интерфейс Fetcher для тестов
type mockFetcher struct {
	fetchFunc func(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error)
	calls     []string
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error) {
	m.calls = append(m.calls, rawURL)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, rawURL, opts)
	}
	return nil, errors.New("not implemented")
}

// mockClassifier реализует интерфейс classifier.Classifier для тестов
type mockClassifier struct {
	result classifier.Result
	called bool
}

func (m *mockClassifier) Classify(ctx context.Context, data []byte) classifier.Result {
	m.called = true
	return m.result
}

// mockTransformer реализует интерфейс transform.Transformer для тестов
type mockTransformer struct {
	blurFunc func(ctx context.Context, data []byte) ([]byte, error)
}

func (m *mockTransformer) Blur(ctx context.Context, data []byte) ([]byte, error) {
	if m.blurFunc != nil {
		return m.blurFunc(ctx, data)
	}
	return []byte("blurred"), nil
}

// failingStorage всегда возвращает ошибку сохранения
type failingStorage struct {
	*storage.MemoryStorage
}

func (failingStorage) Save(context.Context, models.Decision) error {
	return errors.New("disk full")
}

var imageBytes = []byte("original-bytes")

func pngFetcher() *mockFetcher {
	return &mockFetcher{
		fetchFunc: func(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error) {
			return &fetcher.Image{Data: imageBytes, ContentType: "image/png"}, nil
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		FetchTimeout:     15 * time.Second,
		ProxyTimeout:     10 * time.Second,
		ClassifyTimeout:  20 * time.Second,
		TransformTimeout: 10 * time.Second,
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name            string
		verdict         classifier.Result
		wantStatus      string
		wantCategory    string
		wantContentType string
		wantData        []byte
	}{
		{
			name:            "safe category returns original",
			verdict:         classifier.Result{Category: "male_only", Safe: true},
			wantStatus:      models.StatusSafe,
			wantCategory:    "male_only",
			wantContentType: "image/png",
			wantData:        imageBytes,
		},
		{
			name:            "unsafe category is blurred",
			verdict:         classifier.Result{Category: "female_nude"},
			wantStatus:      models.StatusBlurred,
			wantCategory:    "female_nude",
			wantContentType: "image/png",
			wantData:        []byte("blurred"),
		},
		{
			name:            "classifier outage is blurred",
			verdict:         classifier.Result{Category: classifier.CategoryAPIError, Err: context.DeadlineExceeded},
			wantStatus:      models.StatusBlurred,
			wantCategory:    "api_error",
			wantContentType: "image/png",
			wantData:        []byte("blurred"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := pngFetcher()
			store := storage.NewMemoryStorage(0)
			svc := NewFilterService(testConfig(), f, &mockClassifier{result: tt.verdict}, &mockTransformer{}, store, zap.NewNop())

			result, err := svc.Filter(context.Background(), "https%3A%2F%2Fexample.com%2Fa.png", "req-1")
			require.NoError(t, err)

			assert.Equal(t, []string{"https://example.com/a.png"}, f.calls)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantCategory, result.Category)
			assert.Equal(t, tt.wantContentType, result.ContentType)
			assert.Equal(t, tt.wantData, result.Data)
			assert.Equal(t, "https://example.com/a.png", result.SourceURL)

			recent, err := store.Recent(context.Background(), 10)
			require.NoError(t, err)
			require.Len(t, recent, 1)
			assert.Equal(t, tt.wantStatus, recent[0].Status)
			assert.Equal(t, tt.wantCategory, recent[0].Category)
			assert.Equal(t, "req-1", recent[0].RequestID)
			assert.NotEmpty(t, recent[0].ID)
		})
	}
}

func TestFilterFetchFailure(t *testing.T) {
	fetchErr := &fetcher.FetchError{URL: "https://example.com/a.png", StatusCode: 404, Err: fetcher.ErrStatusNotOK}
	f := &mockFetcher{
		fetchFunc: func(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error) {
			assert.Equal(t, 15*time.Second, opts.Timeout)
			assert.Equal(t, fetcher.AcceptImage, opts.Accept)
			return nil, fetchErr
		},
	}
	c := &mockClassifier{}
	store := storage.NewMemoryStorage(0)
	svc := NewFilterService(testConfig(), f, c, &mockTransformer{}, store, zap.NewNop())

	result, err := svc.Filter(context.Background(), "https://example.com/a.png", "")
	assert.Nil(t, result)

	var target *fetcher.FetchError
	require.True(t, errors.As(err, &target))
	assert.False(t, c.called)

	recent, _ := store.Recent(context.Background(), 10)
	require.Len(t, recent, 1)
	assert.Equal(t, models.StatusFetchFailed, recent[0].Status)
}

func TestFilterUnsupportedContentType(t *testing.T) {
	f := &mockFetcher{
		fetchFunc: func(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error) {
			return &fetcher.Image{Data: []byte("<html></html>"), ContentType: "text/html; charset=utf-8"}, nil
		},
	}
	c := &mockClassifier{result: classifier.Result{Category: "male_only", Safe: true}}
	svc := NewFilterService(testConfig(), f, c, &mockTransformer{}, storage.NewMemoryStorage(0), zap.NewNop())

	result, err := svc.Filter(context.Background(), "https://example.com/", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
	assert.False(t, c.called)
}

func TestFilterTransformFailure(t *testing.T) {
	tr := &mockTransformer{
		blurFunc: func(ctx context.Context, data []byte) ([]byte, error) {
			return nil, errors.New("decode failed")
		},
	}
	c := &mockClassifier{result: classifier.Result{Category: "porn"}}
	svc := NewFilterService(testConfig(), pngFetcher(), c, tr, storage.NewMemoryStorage(0), zap.NewNop())

	result, err := svc.Filter(context.Background(), "https://example.com/a.png", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestFilterIgnoresAuditErrors(t *testing.T) {
	c := &mockClassifier{result: classifier.Result{Category: "male_only", Safe: true}}
	store := failingStorage{storage.NewMemoryStorage(0)}
	svc := NewFilterService(testConfig(), pngFetcher(), c, &mockTransformer{}, store, zap.NewNop())

	result, err := svc.Filter(context.Background(), "https://example.com/a.png", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSafe, result.Status)
}

func TestProxy(t *testing.T) {
	f := &mockFetcher{
		fetchFunc: func(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Image, error) {
			assert.Equal(t, 10*time.Second, opts.Timeout)
			assert.Empty(t, opts.Accept)
			return &fetcher.Image{Data: imageBytes, ContentType: "image/gif"}, nil
		},
	}
	c := &mockClassifier{}
	svc := NewFilterService(testConfig(), f, c, &mockTransformer{}, storage.NewMemoryStorage(0), zap.NewNop())

	img, err := svc.Proxy(context.Background(), "https%253A%252F%252Fexample.com%252Fa.gif")
	require.NoError(t, err)
	assert.Equal(t, imageBytes, img.Data)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.Equal(t, []string{"https://example.com/a.gif"}, f.calls)
	assert.False(t, c.called)
}

func TestIsSupportedContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"image/webp", true},
		{"IMAGE/JPEG; charset=binary", true},
		{"application/octet-stream", true},
		{"text/html; charset=utf-8", false},
		{"application/json", false},
		{"", false},
		{"image/png;;broken", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupportedContentType(tt.contentType))
		})
	}
}

func TestCheckConnection(t *testing.T) {
	svc := NewFilterService(testConfig(), pngFetcher(), &mockClassifier{}, &mockTransformer{}, storage.NewMemoryStorage(0), zap.NewNop())
	assert.NoError(t, svc.CheckConnection(context.Background()))
}
