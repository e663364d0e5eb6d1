// Package models содержит структуры данных, которыми обмениваются слои сервиса.
package models

import "time"

// Заголовки ответа /filter
const (
	// HeaderNSFWStatus заголовок с итогом фильтрации: safe или blurred
	HeaderNSFWStatus = "X-NSFW-Status"
	// HeaderNSFWCategory заголовок с категорией классификатора
	HeaderNSFWCategory = "X-NSFW-Category"
)

// Статусы фильтрации, попадающие в заголовок X-NSFW-Status и журнал решений
const (
	StatusSafe        = "safe"
	StatusBlurred     = "blurred"
	StatusFetchFailed = "fetch_failed"
	StatusUnsupported = "unsupported"
	StatusFailed      = "failed"
)

// Decision представляет запись журнала решений фильтра
type Decision struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	SourceURL   string    `json:"source_url"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse представляет JSON тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
