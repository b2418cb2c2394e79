// controllers/auth.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"freelancebill-backend/config"
	"freelancebill-backend/models"
	"freelancebill-backend/services"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	Token string `json:"token" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type RecoverPasswordInput struct {
	Email string `json:"email" binding:"required"`
}

func frontendURL() string {
	if u := os.Getenv("FRONTEND_URL"); u != "" {
		return u
	}
	return "http://localhost:3000"
}

// Register creates an unverified account and mails a verification link.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.User
	result := config.DB.Where("username = ?", input.Username).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	token := utils.GenerateVerificationToken()
	newUser := models.User{
		Username:          input.Username,
		Password:          &hashed,
		IsVerified:        false,
		VerificationToken: &token,
		Email:             input.Username,
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Mail delivery must never fail the registration write.
	go func(to, token string) {
		if err := mailer.SendVerification(to, token); err != nil {
			log.Printf("Failed to send verification email to %s: %v", to, err)
		}
	}(newUser.Username, token)

	c.JSON(http.StatusCreated, gin.H{"message": "User registered. Please check your email to verify."})
}

// VerifyEmail marks the account verified and clears the one-time token.
func VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := config.DB.First(&user, "verification_token = ?", token).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid verification token.")
		return
	}

	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"is_verified":        true,
		"verification_token": nil,
	}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to verify user")
		return
	}

	c.Redirect(http.StatusFound, frontendURL()+"/verify-success")
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "username = ?", input.Username).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.Password == nil || !utils.CheckPasswordHash(input.Password, *user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsVerified {
		utils.RespondWithError(c, http.StatusForbidden, "Email not verified. Please check your inbox.")
		return
	}

	token, err := utils.GenerateToken(user.Username)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GoogleLogin exchanges an external ID token for a local JWT. The token
// verifier is an external collaborator; accounts created through it have no
// local password and are verified from the start.
func GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "No token provided")
		return
	}

	email, err := tokenVerifier.Verify(input.Token)
	if err != nil {
		if errors.Is(err, services.ErrExternalLoginDisabled) {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "External login is not configured")
			return
		}
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired ID token")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "username = ?", email).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		user = models.User{Username: email, Password: nil, IsVerified: true, Email: email}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
			return
		}
	}

	token, err := utils.GenerateToken(user.Username)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": gin.H{"email": email}})
}

func ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	if user.Password == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Password login is not enabled for this account")
		return
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, *user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if err := config.DB.Model(user).Update("password", hashed).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RecoverPassword sets a one-time token and mails a reset link.
func RecoverPassword(c *gin.Context) {
	var input RecoverPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Email is required")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "username = ?", input.Email).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	token := utils.GenerateVerificationToken()
	if err := config.DB.Model(&user).Update("verification_token", token).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store recovery token")
		return
	}

	go func(to, token string) {
		if err := mailer.SendPasswordReset(to, token); err != nil {
			log.Printf("Failed to send recovery email to %s: %v", to, err)
		}
	}(user.Username, token)

	c.JSON(http.StatusOK, gin.H{"message": "Password recovery email sent"})
}

func Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"name":          user.Name,
			"business_name": user.BusinessName,
			"is_verified":   user.IsVerified,
		},
	})
}
