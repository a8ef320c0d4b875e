package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"property-marketplace/internal/middleware"
	"property-marketplace/internal/usecase/property"
	"property-marketplace/pkg/utils"
)

type PropertyHandler struct {
	service *property.Service
}

func NewPropertyHandler(service *property.Service) *PropertyHandler {
	return &PropertyHandler{service: service}
}

func (h *PropertyHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	properties := router.Group("/properties")
	{
		properties.GET("", h.List)
		properties.GET("/:id", h.Get)
	}
}

// RegisterProtectedRoutes expects router to already run AuthMiddleware.
func (h *PropertyHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	properties := router.Group("/properties")
	{
		properties.POST("", middleware.SellerOnly(), h.Create)
		properties.PUT("/:id", h.Update)
		properties.DELETE("/:id", h.Delete)
		properties.POST("/:id/interested", h.ExpressInterest)
	}
}

func (h *PropertyHandler) List(c *gin.Context) {
	var req property.ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Properties retrieved successfully", page)
}

func (h *PropertyHandler) Get(c *gin.Context) {
	propertyID, ok := propertyIDParam(c)
	if !ok {
		return
	}

	listing, err := h.service.Get(c.Request.Context(), propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Property retrieved successfully", listing)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req property.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	req.Title = utils.SanitizeString(req.Title)
	req.Description = utils.SanitizeText(req.Description)
	req.Place = utils.SanitizeString(req.Place)
	req.Area = utils.SanitizeString(req.Area)

	listing, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Property created successfully", listing)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	propertyID, ok := propertyIDParam(c)
	if !ok {
		return
	}

	var req property.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	sanitizeOptional(&req.Title, utils.SanitizeString)
	sanitizeOptional(&req.Description, utils.SanitizeText)
	sanitizeOptional(&req.Place, utils.SanitizeString)
	sanitizeOptional(&req.Area, utils.SanitizeString)

	listing, err := h.service.Update(c.Request.Context(), actor, propertyID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Property updated successfully", listing)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	propertyID, ok := propertyIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, propertyID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Property deleted successfully", nil)
}

func (h *PropertyHandler) ExpressInterest(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	propertyID, ok := propertyIDParam(c)
	if !ok {
		return
	}

	interest, err := h.service.ExpressInterest(c.Request.Context(), actor, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Seller has been notified of your interest", interest)
}

func propertyIDParam(c *gin.Context) (int64, bool) {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || propertyID <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid property ID")
		return 0, false
	}
	return propertyID, true
}

func sanitizeOptional(value **string, sanitize func(string) string) {
	if *value == nil {
		return
	}
	sanitized := sanitize(**value)
	*value = &sanitized
}
