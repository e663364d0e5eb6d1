package handler

import (
	"net/http"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
)

// testImageURL закодированный адрес изображения для примеров в /test
const testImageURL = "https%3A%2F%2Fae01.alicdn.com%2Fkf%2FS48cec483fac04ff9b5d824a4760f021ff%2F48x48.png"

// HandleHealth возвращает статус сервиса
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Service:   serviceName,
		Timestamp: h.now().UTC().Format(healthTimeLayout),
		Version:   h.build.Version,
	})
}

// HandleTest возвращает описание использования с готовыми ссылками
func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.UsageResponse{
		Message: "Smart Filter Server is running!",
		Usage: models.Usage{
			Main:     "GET /filter?url=ENCODED_IMAGE_URL",
			Example:  h.cfg.BaseURL + "/filter?url=" + testImageURL,
			Fallback: "GET /proxy?url=ENCODED_IMAGE_URL",
		},
		TestLinks: models.TestLinks{
			Filtered: "/filter?url=" + testImageURL,
			Direct:   "/proxy?url=" + testImageURL,
		},
	})
}
