package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"history-server/domain"
	"history-server/port"
)

func registerRuleRoutes(api *echo.Group, h *Handler) {
	api.GET("/normalization-rules", h.ListRules)
	api.POST("/normalization-rules", h.CreateRule)
	api.PUT("/normalization-rules/:id", h.UpdateRule)
	api.DELETE("/normalization-rules/:id", h.DeleteRule)
	api.POST("/normalization-rules/test", h.TestRule)
}

type createRuleRequest struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Enabled     *bool  `json:"enabled"`
	OrderIndex  *int32 `json:"order_index"`
}

type updateRuleRequest struct {
	Pattern     *string `json:"pattern"`
	Replacement *string `json:"replacement"`
	Enabled     *bool   `json:"enabled"`
	OrderIndex  *int32  `json:"order_index"`
}

type testRuleRequest struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	TestURL     string `json:"test_url"`
}

// ListRules handles GET /api/normalization-rules.
func (h *Handler) ListRules(c echo.Context) error {
	rules, err := h.rules.List(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list normalization rules", "err", err)
		return errorResponse(c, http.StatusInternalServerError, "failed to retrieve rules")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   rules,
		"total":  len(rules),
	})
}

// CreateRule handles POST /api/normalization-rules.
func (h *Handler) CreateRule(c echo.Context) error {
	var req createRuleRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	rule, err := h.rules.Create(c.Request().Context(), port.CreateRuleInput{
		Pattern:     req.Pattern,
		Replacement: req.Replacement,
		Enabled:     req.Enabled,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		return h.mapRuleError(c, err, "failed to create rule")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   rule,
	})
}

// UpdateRule handles PUT /api/normalization-rules/:id.
func (h *Handler) UpdateRule(c echo.Context) error {
	id, err := parseRuleID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid rule id")
	}

	var req updateRuleRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	rule, err := h.rules.Update(c.Request().Context(), id, port.UpdateRuleInput{
		Pattern:     req.Pattern,
		Replacement: req.Replacement,
		Enabled:     req.Enabled,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		return h.mapRuleError(c, err, "failed to update rule")
	}
	if rule == nil {
		return errorResponse(c, http.StatusNotFound, "rule not found")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   rule,
	})
}

// DeleteRule handles DELETE /api/normalization-rules/:id.
func (h *Handler) DeleteRule(c echo.Context) error {
	id, err := parseRuleID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid rule id")
	}

	deleted, err := h.rules.Delete(c.Request().Context(), id)
	if err != nil {
		return h.mapRuleError(c, err, "failed to delete rule")
	}
	if !deleted {
		return errorResponse(c, http.StatusNotFound, "rule not found")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// TestRule handles POST /api/normalization-rules/test. Nothing persists;
// it reports what the candidate rule would do to one URL.
func (h *Handler) TestRule(c echo.Context) error {
	var req testRuleRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Pattern == "" || req.TestURL == "" {
		return errorResponse(c, http.StatusBadRequest, "pattern and test_url are required")
	}

	result, err := h.rules.TestRule(req.Pattern, req.Replacement, req.TestURL)
	if err != nil {
		return h.mapRuleError(c, err, "failed to test rule")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *Handler) mapRuleError(c echo.Context, err error, fallback string) error {
	var invalid *domain.InvalidQueryError
	if errors.As(err, &invalid) {
		return errorResponse(c, http.StatusBadRequest, invalid.Error())
	}

	h.logger.Error(fallback, "err", err)
	return errorResponse(c, http.StatusInternalServerError, fallback)
}

func parseRuleID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}
