package handlers

import (
	"net/http"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService     services.UserService
	registerService services.RegisterService
	authService     services.AuthService
}

func NewUserHandler(userService services.UserService, registerService services.RegisterService, authService services.AuthService) *UserHandler {
	return &UserHandler{userService: userService, registerService: registerService, authService: authService}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), middleware.ActorFrom(c), queryEnum[models.Role](c, "role"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	summaries := make([]*models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.registerService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.Summary(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     result.Token,
		"tokenType": "Bearer",
		"expiresAt": result.ExpiresAt,
		"user":      result.User.Summary(),
	})
}
