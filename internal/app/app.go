// Package app содержит основную структуру приложения и логику инициализации.
// Собирает загрузчик, классификатор, размытие и журнал решений в один HTTP роутер.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/InQaaaaGit/smart_filter.git/internal/buildinfo"
	"github.com/InQaaaaGit/smart_filter.git/internal/classifier"
	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/InQaaaaGit/smart_filter.git/internal/fetcher"
	"github.com/InQaaaaGit/smart_filter.git/internal/handler"
	"github.com/InQaaaaGit/smart_filter.git/internal/middleware"
	"github.com/InQaaaaGit/smart_filter.git/internal/service"
	"github.com/InQaaaaGit/smart_filter.git/internal/storage"
	"github.com/InQaaaaGit/smart_filter.git/internal/transform"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

// App представляет приложение фильтрации изображений.
// Инкапсулирует конфигурацию, HTTP роутер, логгер, обработчики и журнал решений.
type App struct {
	config  *config.Config          // Конфигурация приложения
	router  *chi.Mux                // HTTP роутер для обработки запросов
	logger  *zap.Logger             // Логгер для записи событий приложения
	handler *handler.Handler        // Обработчики HTTP запросов
	storage storage.DecisionStorage // Журнал решений фильтра
}

// NewApp создает приложение и регистрирует маршруты.
//
// Параметры:
//   - cfg: конфигурация приложения
//   - build: сведения о сборке для /health, может быть nil
//   - logger: логгер приложения
//
// Возвращает указатель на App или ошибку при неудачной инициализации хранилища.
func NewApp(cfg *config.Config, build *buildinfo.Info, logger *zap.Logger) (*App, error) {
	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}

	// Один клиент на все исходящие запросы, таймауты задаются контекстом
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	client := &http.Client{Transport: transport}

	svc := service.NewFilterService(
		cfg,
		fetcher.New(client, cfg.MaxImageBytes, logger),
		classifier.NewClient(cfg.ClassifierURL, client, cfg.ClassifyTimeout, logger),
		transform.NewBlurrer(cfg.TransformTimeout),
		store,
		logger,
	)

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(svc, cfg, build, logger),
		storage: store,
	}
	a.setupRoutes()

	return a, nil
}

// setupRoutes настраивает HTTP маршруты и middleware приложения.
func (a *App) setupRoutes() {
	// Middleware
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.RequestIDMiddleware)
	a.router.Use(middleware.LoggerMiddleware(a.logger))
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins: a.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{handler.HeaderNSFWStatus, handler.HeaderNSFWCategory, middleware.RequestIDHeader},
	}).Handler)

	// Изображения
	a.router.Group(func(r chi.Router) {
		if a.config.IsRateLimitEnabled() {
			limiter := middleware.NewRateLimiter(a.config.RateLimitRPS, a.config.RateLimitBurst)
			r.Use(limiter.Middleware)
		}
		r.Get("/filter", a.handler.HandleFilter)
		r.Get("/proxy", a.handler.HandleProxy)
	})

	// JSON маршруты
	a.router.Group(func(r chi.Router) {
		r.Use(middleware.GzipMiddleware)
		r.Get("/health", a.handler.HandleHealth)
		r.Get("/test", a.handler.HandleTest)
		r.Get("/ping", a.handler.HandlePing)
		r.Get("/api/decisions", a.handler.HandleRecentDecisions)
		r.Get("/api/decisions/{id}", a.handler.HandleGetDecision)
	})
}

// Router возвращает настроенный роутер приложения.
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер.
// WriteTimeout покрывает загрузку, классификацию и размытие одного изображения.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:         a.config.ServerAddress,
		Handler:      a.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Close освобождает ресурсы журнала решений.
func (a *App) Close() error {
	return a.storage.Close()
}
