package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // SQL database interactions
    "log"          // reporting of best-effort failures
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/golang-jwt/jwt/v5" // JSON Web Token library for parsing access tokens
    "github.com/labstack/echo/v4"  // Echo framework for HTTP routing

    "github.com/iliyamo/online-shop/internal/config"     // app configuration
    "github.com/iliyamo/online-shop/internal/model"      // domain models
    "github.com/iliyamo/online-shop/internal/repository" // DB repositories
    "github.com/iliyamo/online-shop/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth and account endpoints.
type AuthHandler struct {
    Cfg         config.Config
    Users       *repository.UserRepo
    Tokens      *repository.TokenRepo
    ResetTokens *repository.ResetTokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, rt *repository.ResetTokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, ResetTokens: rt}
}

// ----- DTOs -----

type registerReq struct {
    Username string  `json:"username"`
    Email    string  `json:"email"`
    Password string  `json:"password"`
    FullName string  `json:"full_name"`
    Phone    *string `json:"phone"`
}
type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
    Email string `json:"email"`
}
type resetReq struct {
    Token    string `json:"token"`
    Password string `json:"password"`
}
type changePasswordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
}
type profileReq struct {
    FullName string  `json:"full_name"`
    Email    string  `json:"email"`
    Phone    *string `json:"phone"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID       uint64  `json:"id"`
    Username string  `json:"username"`
    Email    string  `json:"email"`
    FullName string  `json:"full_name"`
    Phone    *string `json:"phone,omitempty"`
    Role     string  `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
    return userPart{
        ID:       u.ID,
        Username: u.Username,
        Email:    u.Email,
        FullName: u.FullName,
        Phone:    u.Phone,
        Role:     u.Role,
    }
}

// Register: create a customer account and return tokens immediately.
// Staff accounts are never self-service; they come from the back office.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u := &model.User{
        Username: req.Username,
        Email:    req.Email,
        FullName: strings.TrimSpace(req.FullName),
        Phone:    req.Phone,
        Role:     model.RoleCustomer,
    }
    uid, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        switch err {
        case repository.ErrEmailExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        case repository.ErrUsernameExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    u.ID = uid

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        User:    toUserPart(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// Login: verify username/password and return a new token pair.  The
// repository transparently upgrades legacy password hashes on success.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Username) == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, _, err := h.Users.CheckLogin(ctx, req.Username, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if u == nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    toUserPart(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    raw := strings.TrimSpace(req.RefreshToken)
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    _ = h.Tokens.RevokeByHash(ctx, hash)

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    toUserPart(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
    })
}

// Logout revokes refresh tokens.  With a refresh_token in the body only
// that token is revoked; with a valid Bearer token and no body token,
// every session of the user is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if raw != "" {
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
        }
        return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
    }

    // No body token: fall back to the Bearer token so logout works
    // without the JWT middleware.
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token or bearer token required"})
    }
    tok, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(h.Cfg.JWTSecret), nil
    })
    if err != nil || !tok.Valid {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
    }
    sub, ok := claims["sub"].(float64)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uint64(sub)); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}

// Me returns the authenticated user's account (protected).
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateProfile rewrites the user-editable profile fields (protected).
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req profileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.FullName = strings.TrimSpace(req.FullName)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.FullName == "" || req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name/email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ok, err := h.Users.UpdateProfile(ctx, uid, req.FullName, req.Email, req.Phone)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// ChangePassword verifies the current password before setting a new
// one (protected).  All other sessions are revoked on success.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req changePasswordReq
    if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password/new_password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ok, err := h.Users.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        log.Printf("user %d: revoke sessions after password change failed: %v", uid, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// ForgotPassword issues a reset token for the account behind the
// email.  The response is identical whether or not the account exists,
// so the endpoint cannot be used to probe for registered emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    const reply = "if the account exists, a reset link has been sent"

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if err != sql.ErrNoRows {
            log.Printf("forgot-password: lookup failed: %v", err)
        }
        return c.JSON(http.StatusOK, echo.Map{"message": reply})
    }
    token, err := h.ResetTokens.Create(ctx, u.ID, time.Duration(h.Cfg.ResetTTLMin)*time.Minute)
    if err != nil {
        log.Printf("forgot-password: token create failed: %v", err)
        return c.JSON(http.StatusOK, echo.Map{"message": reply})
    }
    // No mail transport is wired up; the delivery hook logs the token
    // so operators can relay it manually in dev environments.
    log.Printf("forgot-password: reset token issued for user %d: %s", u.ID, token)
    return c.JSON(http.StatusOK, echo.Map{"message": reply})
}

// ResetPassword redeems a reset token.  A token works exactly once;
// expired, unknown and replayed tokens all get the same rejection.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
    var req resetReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, ok, err := h.ResetTokens.Consume(ctx, strings.TrimSpace(req.Token), req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
    }
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        log.Printf("user %d: revoke sessions after reset failed: %v", uid, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "password reset"})
}
