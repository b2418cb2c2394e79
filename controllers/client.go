// controllers/client.go
package controllers

import (
	"errors"
	"net/http"

	"freelancebill-backend/config"
	"freelancebill-backend/models"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateClientInput struct {
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	TaxNumber    string `json:"tax_number"`
}

type UpdateClientInput struct {
	Name         *string `json:"name"`
	BusinessName *string `json:"business_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	TaxNumber    *string `json:"tax_number"`
}

func validateClientContact(email, phone string) (string, bool) {
	if email != "" && !utils.ValidateEmail(email) {
		return "email: must be a valid email address", false
	}
	if phone != "" && !utils.ValidatePhone(phone) {
		return "phone: must be a valid phone number", false
	}
	return "", true
}

// CreateClient creates a new client owned by the caller
func CreateClient(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if msg, ok := validateClientContact(input.Email, input.Phone); !ok {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}

	client := models.Client{
		UserID:       user.ID,
		Name:         input.Name,
		BusinessName: input.BusinessName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		TaxNumber:    input.TaxNumber,
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients retrieves all clients owned by the caller
func GetClients(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var clients []models.Client
	if err := config.DB.Where("user_id = ?", user.ID).Order("created_at").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func findClient(c *gin.Context, userID uuid.UUID) (*models.Client, bool) {
	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return nil, false
	}

	var client models.Client
	if err := config.DB.Where("user_id = ? AND id = ?", userID, clientUUID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &client, true
}

// GetClient retrieves a specific client by ID
func GetClient(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	client, ok := findClient(c, user.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient updates an existing client
func UpdateClient(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	client, ok := findClient(c, user.ID)
	if !ok {
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		if *input.Name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "name: must not be empty")
			return
		}
		client.Name = *input.Name
	}
	if input.BusinessName != nil {
		client.BusinessName = *input.BusinessName
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.TaxNumber != nil {
		client.TaxNumber = *input.TaxNumber
	}

	if msg, ok := validateClientContact(client.Email, client.Phone); !ok {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}

	if err := config.DB.Save(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client that has no invoices
func DeleteClient(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	client, ok := findClient(c, user.ID)
	if !ok {
		return
	}

	var invoiceCount int64
	if err := config.DB.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&invoiceCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if invoiceCount > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Client has invoices and cannot be deleted")
		return
	}

	if err := config.DB.Delete(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
