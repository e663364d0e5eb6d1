package models

// HealthResponse ответ эндпоинта /health
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// UsageResponse ответ эндпоинта /test с описанием использования
type UsageResponse struct {
	Message   string    `json:"message"`
	Usage     Usage     `json:"usage"`
	TestLinks TestLinks `json:"test_links"`
}

// Usage описывает основные маршруты сервиса
type Usage struct {
	Main     string `json:"main"`
	Example  string `json:"example"`
	Fallback string `json:"fallback"`
}

// TestLinks содержит готовые ссылки для ручной проверки
type TestLinks struct {
	Filtered string `json:"filtered"`
	Direct   string `json:"direct"`
}
