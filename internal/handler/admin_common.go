package handler

import (
    "github.com/iliyamo/online-shop/internal/config"
    "github.com/iliyamo/online-shop/internal/repository"
)

// AdminHandler bundles repositories for the back office.  Routes using
// it sit behind RequireRole(ADMIN) or RequireRole(ADMIN, EMPLOYEE).
type AdminHandler struct {
    Cfg        config.Config
    Products   *repository.ProductRepo
    Categories *repository.CategoryRepo
    Orders     *repository.OrderRepo
    Users      *repository.UserRepo
    Tokens     *repository.TokenRepo
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(cfg config.Config, p *repository.ProductRepo, c *repository.CategoryRepo, o *repository.OrderRepo, u *repository.UserRepo, t *repository.TokenRepo) *AdminHandler {
    if p == nil || c == nil || o == nil || u == nil || t == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Cfg: cfg, Products: p, Categories: c, Orders: o, Users: u, Tokens: t}
}
