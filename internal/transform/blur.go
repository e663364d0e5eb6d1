// Package transform размывает изображения и перекодирует их в PNG.
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	// Регистрация декодера WebP для image.Decode
	_ "golang.org/x/image/webp"
)

const (
	// BlurSigma сила размытия по Гауссу
	BlurSigma = 20.0
	// OutputContentType тип содержимого результата
	OutputContentType = "image/png"
	// MaxPixels наибольшая площадь изображения, которое можно размыть
	MaxPixels = 40_000_000
)

var (
	// ErrDecode возвращается, когда байты не удалось распознать как изображение
	ErrDecode = errors.New("image decode failed")
	// ErrEncode возвращается при ошибке кодирования результата
	ErrEncode = errors.New("image encode failed")
	// ErrTooManyPixels возвращается, когда площадь изображения превышает лимит
	ErrTooManyPixels = errors.New("image dimensions exceed limit")
)

// Transformer определяет интерфейс размытия изображения
type Transformer interface {
	Blur(ctx context.Context, data []byte) ([]byte, error)
}

// Blurrer размывает изображение с фиксированной силой и кодирует в PNG
type Blurrer struct {
	timeout   time.Duration
	maxPixels int
}

var _ Transformer = (*Blurrer)(nil)

// NewBlurrer создаёт Blurrer с ограничением времени timeout. Ноль отключает ограничение.
func NewBlurrer(timeout time.Duration) *Blurrer {
	return &Blurrer{timeout: timeout, maxPixels: MaxPixels}
}

type blurResult struct {
	data []byte
	err  error
}

// Blur декодирует data, размывает и возвращает PNG.
// По истечении таймаута возвращает ошибку контекста, не дожидаясь окончания работы.
func (b *Blurrer) Blur(ctx context.Context, data []byte) ([]byte, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("blur cancelled: %w", err)
	}

	done := make(chan blurResult, 1)
	go func() {
		out, err := blurPNG(data, b.maxPixels)
		done <- blurResult{data: out, err: err}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("blur cancelled: %w", ctx.Err())
	}
}

// blurPNG проверяет размеры по заголовку до декодирования пикселей.
func blurPNG(data []byte, maxPixels int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrDecode, ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	blurred := imaging.Blur(img, BlurSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, blurred, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
