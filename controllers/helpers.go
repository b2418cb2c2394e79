// controllers/helpers.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"freelancebill-backend/config"
	"freelancebill-backend/models"
	"freelancebill-backend/services"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
)

// Collaborators wired from main. The mailer is always fire-and-forget;
// the verifier backs the external login endpoint.
var (
	mailer        services.Mailer        = mustDisabledMailer()
	tokenVerifier services.TokenVerifier = services.NewDisabledVerifier()
)

func mustDisabledMailer() services.Mailer {
	m, _ := services.NewMailerFromEnv()
	return m
}

func SetMailer(m services.Mailer) {
	if m != nil {
		mailer = m
	}
}

func SetTokenVerifier(v services.TokenVerifier) {
	if v != nil {
		tokenVerifier = v
	}
}

// currentUser resolves the authenticated username placed in the context by
// the auth middleware into a User row. Writes the error response itself.
func currentUser(c *gin.Context) (*models.User, bool) {
	username, exists := c.Get("username")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Username not found in context")
		return nil, false
	}

	var user models.User
	if err := config.DB.First(&user, "username = ?", username).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	return &user, true
}

// Number accepts JSON numbers as well as numeric strings, which is what
// the frontend form fields send.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return fmt.Errorf("empty number")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = Number(f)
	return nil
}
