package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/audittrack/audittrack-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary List Users
// @Description Returns all user accounts (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserResponse
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

type CreateUserRequest struct {
	CompanyName string `json:"CompanyName"`
	PlantName   string `json:"PlantName"`
	Username    string `json:"Username"`
	GenID       string `json:"GenId"`
	Password    string `json:"Password"`
	Email       string `json:"Email"`
	Department  string `json:"Department"`
	Role        string `json:"Role"`
}

// @Summary Create User
// @Description Creates a user account (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if req.CompanyName == "" || req.Username == "" || req.Password == "" ||
		req.Email == "" || req.Department == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	_, err := h.userService.Create(c.Request.Context(), services.CreateUserInput{
		CompanyName: req.CompanyName,
		PlantName:   req.PlantName,
		Username:    req.Username,
		GenID:       req.GenID,
		Password:    req.Password,
		Email:       req.Email,
		Department:  req.Department,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

type UpdateUserRequest struct {
	CompanyName *string `json:"CompanyName"`
	PlantName   *string `json:"PlantName"`
	Username    *string `json:"Username"`
	GenID       *string `json:"GenId"`
	Password    *string `json:"Password"`
	Email       *string `json:"Email"`
	Department  *string `json:"Department"`
	Role        *string `json:"Role"`
}

// @Summary Update User
// @Description Partially updates a user account (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.userService.Update(c.Request.Context(), uint(id), services.UpdateUserInput{
		CompanyName: req.CompanyName,
		PlantName:   req.PlantName,
		Username:    req.Username,
		GenID:       req.GenID,
		Email:       req.Email,
		Department:  req.Department,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFields), errors.Is(err, services.ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Delete User
// @Description Removes a user account (admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
