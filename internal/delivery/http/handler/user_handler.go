package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-marketplace/internal/usecase/user"
	"property-marketplace/pkg/utils"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.Register)
	router.POST("/token", h.Login)
}

func (h *UserHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	router.GET("/users/me", h.GetProfile)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	req.FirstName = utils.SanitizeString(req.FirstName)
	req.LastName = utils.SanitizeString(req.LastName)
	req.Email = utils.SanitizeEmail(req.Email)
	req.Phone = utils.SanitizePhone(req.Phone)

	registered, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", registered)
}

// Login accepts a JSON body or an OAuth2 password form (username, password).
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest

	if err := c.ShouldBind(&req); err != nil {
		invalidBody(c, err)
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", token)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user.ToUserResponse(actor))
}
