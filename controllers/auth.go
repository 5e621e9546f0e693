package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"detailpro-backend/config"
	"detailpro-backend/models"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email        string       `json:"email" binding:"required,email"`
	Phone        string       `json:"phone" binding:"required"`
	Name         string       `json:"name" binding:"required"`
	Password     string       `json:"password" binding:"required,min=8"`
	ShopName     string       `json:"shopName" binding:"required"`
	ShopAddress  string       `json:"shopAddress"`
	Region       string       `json:"region"`
	WorkingHours models.JSONB `json:"workingHours"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

// controllers/auth.go
func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if email or phone already exists
	var existingUser models.User
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existingUser)

	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	region := strings.ToUpper(strings.TrimSpace(input.Region))
	if region == "" {
		region = utils.HomeRegion()
	}

	shop := models.Shop{
		ID:           uuid.New(),
		Name:         input.ShopName,
		Address:      input.ShopAddress,
		Region:       region,
		WorkingHours: input.WorkingHours,
	}
	if shop.WorkingHours == nil {
		shop.WorkingHours = models.JSONB{
			"monday":    map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"tuesday":   map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"wednesday": map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"thursday":  map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"friday":    map[string]interface{}{"open": "08:00", "close": "18:00", "closed": false},
			"saturday":  map[string]interface{}{"open": "09:00", "close": "16:00", "closed": false},
			"sunday":    map[string]interface{}{"open": "10:00", "close": "14:00", "closed": true},
		}
	}

	if err := config.DB.Create(&shop).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create shop")
		return
	}

	newUser := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // Will be hashed in BeforeCreate hook
		Role:     "owner",
		ShopID:   shop.ID,
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if err := createDefaultReminderTemplates(shop.ID); err != nil {
		// Not fatal for registration; templates can be added later.
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create reminder templates")
		return
	}

	token, err := utils.GenerateToken(newUser.ID.String(), shop.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	expiryHours := 24
	maxAge := expiryHours * 3600

	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":       newUser.ID,
			"email":    newUser.Email,
			"phone":    newUser.Phone,
			"shopName": shop.Name,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	identifier := strings.TrimSpace(input.Identifier)

	var user models.User
	result := config.DB.Preload("Shop").
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.ShopID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// Update last login
	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	expiryHours := 24
	maxAge := expiryHours * 3600

	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"phone":    user.Phone,
			"shopName": user.Shop.Name,
		},
	})
}

func createDefaultReminderTemplates(shopID uuid.UUID) error {
	defaultTemplates := []models.ReminderTemplate{
		{
			ShopID:  shopID,
			Type:    "service_due",
			Message: "Hi [CustomerName], it's been a while since your last detail! Book this month and get 10% off.",
		},
	}

	for _, template := range defaultTemplates {
		template.ID = uuid.New()
		if err := config.DB.Create(&template).Error; err != nil {
			return err
		}
	}
	return nil
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User ID not found in context"})
		return
	}

	var user models.User
	if err := config.DB.Preload("Shop").First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"shopName": user.Shop.Name,
		},
	})
}
