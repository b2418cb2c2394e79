// controllers/profile.go
package controllers

import (
	"net/http"

	"freelancebill-backend/config"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	Name         *string `json:"name"`
	BusinessName *string `json:"business_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	TaxNumber    *string `json:"tax_number"`
}

// GetProfile returns the caller's business profile
func GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the caller's business profile fields
func UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.BusinessName != nil {
		user.BusinessName = *input.BusinessName
	}
	if input.Email != nil {
		if *input.Email != "" && !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "email: must be a valid email address")
			return
		}
		user.Email = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "phone: must be a valid phone number")
			return
		}
		user.Phone = *input.Phone
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.TaxNumber != nil {
		user.TaxNumber = *input.TaxNumber
	}

	if err := config.DB.Save(user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}
