package main

import (
	"fmt"
	"log"
	"os"

	"freelancebill-backend/config"
	"freelancebill-backend/controllers"
	"freelancebill-backend/models"
	"freelancebill-backend/routes"
	"freelancebill-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
		&models.NotificationLog{},
	)
}

func main() {
	mailer, err := services.NewMailerFromEnv()
	if err != nil {
		log.Fatalf("mailer setup: %v", err)
	}
	if !mailer.IsEnabled() {
		log.Println("SMTP_URL not set, outgoing mail disabled")
	}
	controllers.SetMailer(mailer)

	reminders := services.NewReminderService(config.DB, mailer)
	reminders.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
