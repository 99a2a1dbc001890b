package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/repository"
)

type employeeReq struct {
    Username string  `json:"username"`
    Email    string  `json:"email"`
    Password string  `json:"password"`
    FullName string  `json:"full_name"`
    Phone    *string `json:"phone"`
    Role     string  `json:"role"` // ADMIN | EMPLOYEE
}

// ListEmployees returns staff accounts (admin only).
func (h *AdminHandler) ListEmployees(c echo.Context) error {
    items, err := h.Users.ListByRoles(c.Request().Context(), model.RoleAdmin, model.RoleEmployee)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": sanitizeUsers(items)})
}

// ListCustomers returns customer accounts.
func (h *AdminHandler) ListCustomers(c echo.Context) error {
    items, err := h.Users.ListByRoles(c.Request().Context(), model.RoleCustomer)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": sanitizeUsers(items)})
}

func sanitizeUsers(items []model.User) []userPart {
    out := make([]userPart, 0, len(items))
    for i := range items {
        out = append(out, toUserPart(&items[i]))
    }
    return out
}

// CreateEmployee adds a staff account (admin only).
func (h *AdminHandler) CreateEmployee(c echo.Context) error {
    var req employeeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != model.RoleAdmin {
        role = model.RoleEmployee
    }

    u := &model.User{
        Username: req.Username,
        Email:    req.Email,
        FullName: strings.TrimSpace(req.FullName),
        Phone:    req.Phone,
        Role:     role,
    }
    uid, err := h.Users.Create(c.Request().Context(), u, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    u.ID = uid
    return c.JSON(http.StatusCreated, toUserPart(u))
}

// UpdateEmployee rewrites a staff account's profile and role (admin only).
func (h *AdminHandler) UpdateEmployee(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req employeeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    role := strings.ToUpper(strings.TrimSpace(req.Role))
    if role != model.RoleAdmin {
        role = model.RoleEmployee
    }
    u := &model.User{
        ID:       id,
        Email:    req.Email,
        FullName: strings.TrimSpace(req.FullName),
        Phone:    req.Phone,
        Role:     role,
    }
    ok, err := h.Users.UpdateEmployee(c.Request().Context(), u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "employee updated"})
}

// SetUserActive enables or disables an account (admin only).
// Disabling also revokes every refresh token the user holds.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req struct {
        Active bool `json:"active"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if uid, err := getUserID(c); err == nil && uid == id && !req.Active {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate your own account"})
    }

    ctx := c.Request().Context()
    ok, err := h.Users.SetActive(ctx, id, req.Active)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if !req.Active {
        _ = h.Tokens.RevokeAllForUser(ctx, id)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "account updated"})
}
