// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public storefront API. These routes let
// unauthenticated visitors browse categories and products; stock management
// fields stay internal and only display data is returned.

package handler

import (
    "database/sql"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/repository"
)

// CatalogHandler aggregates repositories needed for unauthenticated browsing.
type CatalogHandler struct {
    Products   *repository.ProductRepo
    Categories *repository.CategoryRepo
}

func NewCatalogHandler(p *repository.ProductRepo, c *repository.CategoryRepo) *CatalogHandler {
    return &CatalogHandler{Products: p, Categories: c}
}

// PublicProduct is a product as exposed on the storefront. Stock is
// reduced to an in/out flag so competitors cannot scrape inventory.
type PublicProduct struct {
    ID           uint64  `json:"id"`
    Name         string  `json:"name"`
    PriceCents   int64   `json:"price_cents"`
    Description  *string `json:"description,omitempty"`
    ImageURL     *string `json:"image_url,omitempty"`
    Color        *string `json:"color,omitempty"`
    Size         *string `json:"size,omitempty"`
    InStock      bool    `json:"in_stock"`
    CategoryID   uint64  `json:"category_id"`
    CategoryName string  `json:"category_name,omitempty"`
}

func toPublicProduct(p *model.Product) PublicProduct {
    return PublicProduct{
        ID:           p.ID,
        Name:         p.Name,
        PriceCents:   p.PriceCents,
        Description:  p.Description,
        ImageURL:     p.ImageURL,
        Color:        p.Color,
        Size:         p.Size,
        InStock:      p.Stock > 0,
        CategoryID:   p.CategoryID,
        CategoryName: p.CategoryName,
    }
}

// ListCategories returns all categories for the storefront menu.
// Served from the in-process category cache.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
    list, err := h.Categories.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// ListProducts returns active products, optionally filtered by
// category (?category=ID) or a free-text search (?q=term).
func (h *CatalogHandler) ListProducts(c echo.Context) error {
    ctx := c.Request().Context()

    var (
        items []model.Product
        err   error
    )
    if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
        items, err = h.Products.Search(ctx, q)
    } else if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
        catID, perr := strconv.ParseUint(cat, 10, 64)
        if perr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
        }
        items, err = h.Products.ListByCategory(ctx, catID)
    } else {
        items, err = h.Products.ListActive(ctx)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    out := make([]PublicProduct, 0, len(items))
    for i := range items {
        out = append(out, toPublicProduct(&items[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetProduct returns one product by id. Inactive products are hidden
// from the storefront as if they did not exist.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
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
    if !p.IsActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
    }
    return c.JSON(http.StatusOK, toPublicProduct(p))
}
