// Package fetcher загружает изображения с удалённых хостов.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Заголовки запроса, снижающие вероятность отказа хоста из-за хотлинкинга
const (
	UserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	Referer            = "https://www.aliexpress.com/"
	AcceptImage        = "image/webp,image/apng,image/*,*/*"
	DefaultContentType = "image/jpeg"
)

var (
	// ErrStatusNotOK возвращается, когда удалённый хост ответил не 2xx
	ErrStatusNotOK = errors.New("unexpected response status")
	// ErrTooLarge возвращается, когда тело ответа превышает лимит
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrUnsupportedScheme возвращается для URL со схемой, отличной от http и https
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// FetchError описывает неудачную загрузку изображения
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v (status %d)", e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Image содержит загруженные байты и заявленный тип содержимого
type Image struct {
	Data        []byte
	ContentType string
}

// Options задаёт параметры одной загрузки
type Options struct {
	Timeout time.Duration
	// Accept отправляется, только если задан
	Accept string
}

// DefaultMaxBytes используется, если лимит размера не задан
const DefaultMaxBytes = 20 << 20

// Fetcher выполняет загрузку изображений по HTTP
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// New создаёт Fetcher. Если client равен nil, используется отдельный http.Client.
func New(client *http.Client, maxBytes int64, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:   client,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch загружает rawURL с таймаутом opts.Timeout.
// Любая ошибка возвращается как *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*Image, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, &FetchError{URL: rawURL, Err: ErrUnsupportedScheme}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Referer", Referer)
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Debug("Error closing response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrStatusNotOK}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrTooLarge}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Image{Data: data, ContentType: contentType}, nil
}
