package handler

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/repository"
)

type categoryReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
}

// ListCategories returns every category for the back office.
func (h *AdminHandler) ListCategories(c echo.Context) error {
    items, err := h.Categories.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateCategory adds a category.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
    var req categoryReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    id, err := h.Categories.Create(c.Request().Context(), req.Name, req.Description)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    return c.JSON(http.StatusCreated, model.Category{ID: id, Name: req.Name, Description: req.Description})
}

// UpdateCategory rewrites a category.
func (h *AdminHandler) UpdateCategory(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req categoryReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    cat := &model.Category{ID: id, Name: req.Name, Description: req.Description}
    ok, err := h.Categories.Update(c.Request().Context(), cat)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
    }
    return c.JSON(http.StatusOK, cat)
}

// DeleteCategory removes a category that has no products left.
func (h *AdminHandler) DeleteCategory(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ok, err := h.Categories.Delete(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "category still has products"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

// GetCategory returns one category together with its product count,
// so the back office can warn before a delete that would conflict.
func (h *AdminHandler) GetCategory(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx := c.Request().Context()
    cat, err := h.Categories.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    count, err := h.Products.CountByCategory(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":            cat.ID,
        "name":          cat.Name,
        "description":   cat.Description,
        "product_count": count,
    })
}
