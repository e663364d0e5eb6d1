package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/fetcher"
	"github.com/InQaaaaGit/smart_filter.git/internal/handler"
	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	"github.com/InQaaaaGit/smart_filter.git/internal/service"
	"go.uber.org/zap"
)

// staticService всегда признаёт изображение безопасным
type staticService struct{}

func (staticService) Filter(ctx context.Context, rawURL, requestID string) (*service.FilterResult, error) {
	return &service.FilterResult{
		Data:        []byte("image"),
		ContentType: "image/png",
		Status:      models.StatusSafe,
		Category:    "male_only",
		SourceURL:   rawURL,
	}, nil
}

func (staticService) Proxy(ctx context.Context, rawURL string) (*fetcher.Image, error) {
	return &fetcher.Image{Data: []byte("image"), ContentType: "image/png"}, nil
}

func (staticService) GetDecision(ctx context.Context, id string) (models.Decision, error) {
	return models.Decision{}, nil
}

func (staticService) RecentDecisions(ctx context.Context, limit int) ([]models.Decision, error) {
	return nil, nil
}

func (staticService) CheckConnection(ctx context.Context) error {
	return nil
}

func ExampleHandler_HandleFilter() {
	h := handler.NewHandler(staticService{}, &config.Config{}, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/filter?url=https%3A%2F%2Fexample.com%2Fa.png", nil)
	rr := httptest.NewRecorder()
	h.HandleFilter(rr, req)

	fmt.Println(rr.Code)
	fmt.Println(rr.Header().Get(handler.HeaderNSFWStatus))
	fmt.Println(rr.Header().Get(handler.HeaderNSFWCategory))

	// Output:
	// 200
	// safe
	// male_only
}
