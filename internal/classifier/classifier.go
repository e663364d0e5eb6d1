// Package classifier отправляет изображения во внешний сервис классификации
// и сводит его ответ к решению "безопасно" или "размыть".
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// PredictPath путь эндпоинта классификации одного изображения
	PredictPath = "/predict/single"
	// SafeCategory единственная категория, при которой изображение отдаётся без изменений
	SafeCategory = "male_only"
	// CategoryUnknown используется, когда сервис не вернул категорию
	CategoryUnknown = "unknown"
	// CategoryAPIError фиксирует недоступность классификатора
	CategoryAPIError = "api_error"

	categoryField = "ensemble_category"
	fileField     = "file"
	fileName      = "check.jpg"
	fileType      = "image/jpeg"
	maxReplyBytes = 1 << 20
)

var (
	// ErrStatusNotOK возвращается, когда классификатор ответил не 2xx
	ErrStatusNotOK = errors.New("classifier returned non-success status")
	// ErrMalformedResponse возвращается, когда тело ответа не является JSON
	ErrMalformedResponse = errors.New("classifier returned malformed response")
)

// Result итог классификации
type Result struct {
	Category string
	Safe     bool
	// Err причина перехода в безопасный режим, nil при успешном ответе
	Err error
}

// Classifier определяет интерфейс классификации изображений
type Classifier interface {
	Classify(ctx context.Context, data []byte) Result
}

// Client клиент HTTP сервиса классификации
type Client struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

var _ Classifier = (*Client)(nil)

// NewClient создаёт клиента для сервиса с базовым адресом baseURL.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + PredictPath,
		client:   httpClient,
		timeout:  timeout,
		logger:   logger,
	}
}

// IsSafe сообщает, разрешает ли категория отдать оригинал.
func IsSafe(category string) bool {
	return category == SafeCategory
}

// Classify никогда не возвращает ошибку: при любом сбое изображение
// считается небезопасным с категорией CategoryAPIError.
func (c *Client) Classify(ctx context.Context, data []byte) Result {
	category, err := c.predict(ctx, data)
	if err != nil {
		c.logger.Warn("Classifier failed, defaulting to blur",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return Result{Category: CategoryAPIError, Safe: false, Err: err}
	}

	result := Result{Category: category, Safe: IsSafe(category)}
	c.logger.Info("Classification result",
		zap.String("category", result.Category),
		zap.Bool("safe", result.Safe))
	return result
}

func (c *Client) predict(ctx context.Context, data []byte) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := buildForm(data)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("error creating classifier request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request error: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("Error closing classifier response body", zap.Error(err))
		}
	}()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("error reading classifier response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d", ErrStatusNotOK, resp.StatusCode)
	}

	c.logger.Debug("Classifier response", zap.ByteString("body", reply))
	return ParseCategory(reply)
}

// ParseCategory извлекает категорию из ответа классификатора.
// Отсутствующая, пустая или null категория даёт CategoryUnknown.
func ParseCategory(reply []byte) (string, error) {
	if !gjson.ValidBytes(reply) {
		return "", ErrMalformedResponse
	}

	value := gjson.GetBytes(reply, categoryField)
	switch value.Type {
	case gjson.String:
		if value.Str == "" {
			return CategoryUnknown, nil
		}
		return value.Str, nil
	case gjson.Number:
		return value.Raw, nil
	default:
		return CategoryUnknown, nil
	}
}

func buildForm(data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName))
	header.Set("Content-Type", fileType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("error creating form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("error writing form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
