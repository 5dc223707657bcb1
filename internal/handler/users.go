package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

// UserHandler exposes patron management to staff.
type UserHandler struct {
    Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
    return &UserHandler{Users: u}
}

type patronReq struct {
    StudentID string `json:"student_id"`
    Name      string `json:"name"`
    Email     string `json:"email"`
    Barcode   string `json:"barcode"`
}

type patronResp struct {
    ID        uint64 `json:"id"`
    StudentID string `json:"student_id"`
    Name      string `json:"name"`
    Email     string `json:"email,omitempty"`
    Barcode   string `json:"barcode"`
    IsActive  bool   `json:"is_active"`
}

// RegisterPatron enrolls a patron with a scanned barcode.
func (h *UserHandler) RegisterPatron(c echo.Context) error {
    var req patronReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.Barcode) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "student_id/barcode required"})
    }
    if strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u := model.User{
        StudentID: req.StudentID,
        Name:      req.Name,
        Email:     req.Email,
        Barcode:   req.Barcode,
    }
    if err := h.Users.CreatePatron(ctx, &u); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "barcode or student id already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create patron failed"})
    }

    return c.JSON(http.StatusCreated, patronResp{
        ID: u.ID, StudentID: u.StudentID, Name: u.Name,
        Email: u.Email, Barcode: u.Barcode, IsActive: true,
    })
}

// GetUser returns one user by id.
func (h *UserHandler) GetUser(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, patronResp{
        ID: u.ID, StudentID: u.StudentID, Name: u.Name,
        Email: u.Email, Barcode: u.Barcode, IsActive: u.IsActive,
    })
}
