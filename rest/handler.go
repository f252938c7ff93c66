package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"history-server/domain"
	"history-server/usecase"
)

const dateParamLayout = "2006-01-02"

// Handler contains all HTTP handlers for history-server.
type Handler struct {
	search  *usecase.SearchHistoryUsecase
	insert  *usecase.InsertHistoryUsecase
	refresh *usecase.RefreshCacheUsecase
	rules   *usecase.ManageRulesUsecase
	logger  *slog.Logger
}

func NewHandler(
	search *usecase.SearchHistoryUsecase,
	insert *usecase.InsertHistoryUsecase,
	refresh *usecase.RefreshCacheUsecase,
	rules *usecase.ManageRulesUsecase,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		search:  search,
		insert:  insert,
		refresh: refresh,
		rules:   rules,
		logger:  logger,
	}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", h.Health)
	api.GET("/history", h.SearchHistory)
	api.POST("/history", h.InsertHistory)
	api.POST("/refresh-cache", h.RefreshCache)

	registerRuleRoutes(api, h)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SearchHistory handles GET /api/history.
func (h *Handler) SearchHistory(c echo.Context) error {
	query, err := parseSearchQuery(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.search.Execute(c.Request().Context(), *query)
	if err != nil {
		return h.mapSearchError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

type insertHistoryRequest struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
}

// InsertHistory handles POST /api/history. The write path does not touch
// the search cache; the TTL bounds the staleness window.
func (h *Handler) InsertHistory(c echo.Context) error {
	var req insertHistoryRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	record := domain.HistoryRecord{
		URL:       req.URL,
		Timestamp: req.Timestamp,
		Domain:    req.Domain,
		Title:     req.Title,
	}

	if err := h.insert.Execute(c.Request().Context(), record); err != nil {
		return h.mapSearchError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// RefreshCache handles POST /api/refresh-cache: reload normalization
// rules and drop every cached search result.
func (h *Handler) RefreshCache(c echo.Context) error {
	cleared, err := h.refresh.Execute(c.Request().Context())
	if err != nil {
		h.logger.Error("cache refresh failed", "err", err)
		return errorResponse(c, http.StatusInternalServerError, "failed to refresh cache")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"cleared": cleared,
	})
}

func parseSearchQuery(c echo.Context) (*domain.SearchQuery, error) {
	page := domain.DefaultPage
	if v := c.QueryParam("page"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return nil, errors.New("page must be a positive integer")
		}
		page = n
	}

	pageSize := domain.DefaultPageSize
	if v := c.QueryParam("pageSize"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return nil, errors.New("pageSize must be a positive integer")
		}
		pageSize = n
	}

	startDate, err := parseDateParam(c.QueryParam("startDate"))
	if err != nil {
		return nil, errors.New("startDate must be formatted as YYYY-MM-DD")
	}
	endDate, err := parseDateParam(c.QueryParam("endDate"))
	if err != nil {
		return nil, errors.New("endDate must be formatted as YYYY-MM-DD")
	}

	query := domain.NewSearchQuery(
		c.QueryParam("keyword"),
		c.QueryParam("domain"),
		startDate,
		endDate,
		page,
		pageSize,
	)
	return &query, nil
}

func (h *Handler) mapSearchError(c echo.Context, err error) error {
	var invalid *domain.InvalidQueryError
	if errors.As(err, &invalid) {
		return errorResponse(c, http.StatusBadRequest, invalid.Error())
	}

	h.logger.Error("request failed", "path", c.Path(), "err", err)
	return errorResponse(c, http.StatusInternalServerError, "search backend unavailable")
}

func errorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
