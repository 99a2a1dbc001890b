package handler

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/repository"
)

type productReq struct {
    Name        string  `json:"name"`
    PriceCents  int64   `json:"price_cents"`
    Description *string `json:"description"`
    ImageURL    *string `json:"image_url"`
    Color       *string `json:"color"`
    Size        *string `json:"size"`
    Stock       int64   `json:"stock"`
    CategoryID  uint64  `json:"category_id"`
    IsActive    *bool   `json:"is_active"`
}

func (r *productReq) validate() string {
    r.Name = strings.TrimSpace(r.Name)
    switch {
    case r.Name == "":
        return "name required"
    case r.PriceCents < 0:
        return "price_cents must be >= 0"
    case r.Stock < 0:
        return "stock must be >= 0"
    case r.CategoryID == 0:
        return "category_id required"
    }
    return ""
}

// ListProducts returns every product, inactive ones included, with
// real stock numbers for inventory management.
func (h *AdminHandler) ListProducts(c echo.Context) error {
    items, err := h.Products.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetProduct returns one product, inactive ones included.
func (h *AdminHandler) GetProduct(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    p, err := h.Products.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, p)
}

// CreateProduct adds a product to the catalog.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
    var req productReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    active := true
    if req.IsActive != nil {
        active = *req.IsActive
    }
    p := &model.Product{
        Name:        req.Name,
        PriceCents:  req.PriceCents,
        Description: req.Description,
        ImageURL:    req.ImageURL,
        Color:       req.Color,
        Size:        req.Size,
        Stock:       req.Stock,
        CategoryID:  req.CategoryID,
        IsActive:    active,
    }
    id, err := h.Products.Create(c.Request().Context(), p)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    p.ID = id
    return c.JSON(http.StatusCreated, p)
}

// UpdateProduct rewrites a product.  Stock set here is an inventory
// correction; customer purchases only ever move stock through the
// guarded decrement at order placement.
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req productReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    active := true
    if req.IsActive != nil {
        active = *req.IsActive
    }
    p := &model.Product{
        ID:          id,
        Name:        req.Name,
        PriceCents:  req.PriceCents,
        Description: req.Description,
        ImageURL:    req.ImageURL,
        Color:       req.Color,
        Size:        req.Size,
        Stock:       req.Stock,
        CategoryID:  req.CategoryID,
        IsActive:    active,
    }
    ok, err := h.Products.Update(c.Request().Context(), p)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
    }
    return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product.  Products already referenced by
// order lines cannot be deleted and should be deactivated instead.
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ok, err := h.Products.Delete(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "product has orders, deactivate it instead"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
