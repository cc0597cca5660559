package handler

import (
	"errors"
	"net/http"
	"strings"

	"ecommerce_api/internal/middleware"
	"ecommerce_api/internal/model"
	"ecommerce_api/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	resp    *Responder
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, resp *Responder) *AuthHandler {
	return &AuthHandler{service: s, resp: resp}
}

// Helper to get authenticated user ID from context
func getAuthUserID(c *gin.Context) (string, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user ID type in context")
	}
	return userID, nil
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.bindError(c, err)
		return
	}

	result, err := h.service.Signup(c.Request.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     optional(req.Phone),
	})
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, result, "User registered successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.bindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, result, "Login successful")
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.bindError(c, err)
		return
	}

	accessToken, err := h.service.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, gin.H{"accessToken": accessToken}, "Token refreshed successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.bindError(c, err)
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "Logout successful")
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		h.resp.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, profile, "")
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		h.resp.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.bindError(c, err)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, model.UserUpdate{
		FirstName: optional(req.FirstName),
		LastName:  optional(req.LastName),
		Phone:     optional(req.Phone),
	})
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, profile, "Profile updated successfully")
}

// optional trims s and returns nil when nothing is left.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", middleware.RequireBody(), h.Signup)
		authGroup.POST("/login", middleware.RequireBody(), h.Login)
		authGroup.POST("/refresh-token", middleware.RequireBody(), h.RefreshToken)
		authGroup.POST("/logout", middleware.RequireBody(), h.Logout)

		authGroup.GET("/profile", authMW, h.GetProfile)
		authGroup.PUT("/profile", authMW, middleware.RequireBody(), h.UpdateProfile)
	}
}
