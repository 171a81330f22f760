package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	Preferences *struct {
		EmailEnabled          *bool `json:"email_enabled"`
		SMSEnabled            *bool `json:"sms_enabled"`
		PushEnabled           *bool `json:"push_enabled"`
		DelayThresholdMinutes *int  `json:"delay_threshold_minutes"`
	} `json:"preferences"`

	// Routes the rider wants alerts for from day one.
	RouteIDs []uint `json:"route_ids"`
}

// SignupUser registers a rider account with its notification
// preferences and initial route subscriptions in one transaction.
func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Role = role

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	user, err := createUserRecord(tx, input, hashedPassword)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	if err := createInitialSubscriptions(tx, &user, input.RouteIDs); err != nil {
		tx.Rollback()
		if strings.Contains(err.Error(), "does not exist") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create subscriptions: " + err.Error()})
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	config.DB.Preload("Subscriptions").First(&user, user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": prepareUserResponse(user)})
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = "rider"
	}
	switch role {
	case "rider", "admin":
		return role, nil
	default:
		return "", errors.New("invalid role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUserRecord(tx *gorm.DB, input signupInput, hashedPassword string) (models.User, error) {
	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Phone:    input.Phone,
		Role:     input.Role,
		Status:   models.UserStatusActive,

		// Sign-up form defaults: email and push on, SMS opt-in.
		EmailEnabled:          true,
		PushEnabled:           true,
		DelayThresholdMinutes: 5,
	}
	if p := input.Preferences; p != nil {
		if p.EmailEnabled != nil {
			user.EmailEnabled = *p.EmailEnabled
		}
		if p.SMSEnabled != nil {
			user.SMSEnabled = *p.SMSEnabled
		}
		if p.PushEnabled != nil {
			user.PushEnabled = *p.PushEnabled
		}
		if p.DelayThresholdMinutes != nil {
			user.DelayThresholdMinutes = *p.DelayThresholdMinutes
		}
	}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// createInitialSubscriptions subscribes the new user to each requested
// route, covering all stops and alert types.
func createInitialSubscriptions(tx *gorm.DB, user *models.User, routeIDs []uint) error {
	seen := map[uint]bool{}
	for _, rid := range routeIDs {
		if seen[rid] {
			continue
		}
		seen[rid] = true

		var route models.Route
		if result := tx.First(&route, rid); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return errors.New("route with the provided id does not exist")
			}
			return result.Error
		}

		sub := models.Subscription{UserID: user.ID, RouteID: rid, Active: true}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
	}
	return nil
}

func prepareUserResponse(user models.User) gin.H {
	return gin.H{
		"ID":        user.ID,
		"CreatedAt": user.CreatedAt,
		"UpdatedAt": user.UpdatedAt,
		"name":      user.Name,
		"email":     user.Email,
		"phone":     user.Phone,
		"role":      user.Role,
		"status":    user.Status,
		"preferences": gin.H{
			"email_enabled":           user.EmailEnabled,
			"sms_enabled":             user.SMSEnabled,
			"push_enabled":            user.PushEnabled,
			"delay_threshold_minutes": user.DelayThresholdMinutes,
		},
		"subscriptions": user.Subscriptions,
	}
}
