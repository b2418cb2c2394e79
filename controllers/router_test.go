package controllers_test

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"freelancebill-backend/config"
	"freelancebill-backend/models"
	"freelancebill-backend/routes"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
		&models.NotificationLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	config.DB = db
	return routes.SetupRouter()
}

func createVerifiedUser(t *testing.T, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{Username: username, Password: &hash, IsVerified: true, Email: username}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return user
}

func createClient(t *testing.T, user models.User) models.Client {
	t.Helper()
	client := models.Client{UserID: user.ID, Name: "ClientCo", Email: "billing@clientco.test"}
	if err := config.DB.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.Username)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func invoicePayload(clientID string, overrides map[string]string) string {
	fields := map[string]string{
		"client_id":       fmt.Sprintf("%q", clientID),
		"issue_date":      `"2025-01-10"`,
		"due_date":        `"2025-01-24"`,
		"currency":        `"USD"`,
		"tax_rate":        `8`,
		"payment_method":  `"Bank Transfer"`,
		"payment_details": `"IBAN DE89 3704 0044 0532 0130 00"`,
		"items":           `[{"type":"Service","description":"Consulting","quantity":"10","unit":"Hour","rate":"50","discount":10}]`,
	}
	for k, v := range overrides {
		fields[k] = v
	}
	var parts []string
	for k, v := range fields {
		if v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%q:%s", k, v))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
