package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// ConfigHandler lets staff read and edit the persisted settings table.
// Edits take effect on the next restart; the running pipeline keeps
// the tunables it booted with so mid-day changes cannot destabilize
// live smoothing windows.
type ConfigHandler struct {
    Configs *repository.ConfigRepo
}

func NewConfigHandler(r *repository.ConfigRepo) *ConfigHandler {
    return &ConfigHandler{Configs: r}
}

type configPutReq struct {
    Key   string `json:"key"`
    Value string `json:"value"`
}

// GetAll returns every stored key/value pair.
func (h *ConfigHandler) GetAll(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    all, err := h.Configs.All(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"config": all})
}

// Put upserts one key.
func (h *ConfigHandler) Put(c echo.Context) error {
    var req configPutReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Key) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "key required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Configs.Put(ctx, strings.TrimSpace(req.Key), req.Value); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"key": strings.TrimSpace(req.Key), "value": req.Value})
}
