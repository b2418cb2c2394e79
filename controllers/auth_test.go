package controllers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"freelancebill-backend/config"
	"freelancebill-backend/controllers"
	"freelancebill-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLoginFlow(t *testing.T) {
	r := setupServer(t)

	w := doJSON(r, http.MethodPost, "/auth/register", "",
		`{"username":"new@test","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, config.DB.First(&user, "username = ?", "new@test").Error)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.VerificationToken)
	require.NotNil(t, user.Password)
	assert.NotEqual(t, "password123", *user.Password)

	// Login before verification is refused.
	w = doJSON(r, http.MethodPost, "/auth/login", "",
		`{"username":"new@test","password":"password123"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Following the emailed link verifies the account and clears the token.
	w = doJSON(r, http.MethodGet, "/verify/"+*user.VerificationToken, "", "")
	assert.Equal(t, http.StatusFound, w.Code)

	require.NoError(t, config.DB.First(&user, "username = ?", "new@test").Error)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)

	w = doJSON(r, http.MethodPost, "/auth/login", "",
		`{"username":"new@test","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = doJSON(r, http.MethodGet, "/auth/me", resp.Token, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := setupServer(t)
	createVerifiedUser(t, "taken@test")

	w := doJSON(r, http.MethodPost, "/auth/register", "",
		`{"username":"taken@test","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	r := setupServer(t)
	w := doJSON(r, http.MethodPost, "/auth/register", "",
		`{"username":"short@test","password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r := setupServer(t)
	createVerifiedUser(t, "login@test")

	w := doJSON(r, http.MethodPost, "/auth/login", "",
		`{"username":"login@test","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", "",
		`{"username":"nobody@test","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyUnknownToken(t *testing.T) {
	r := setupServer(t)
	w := doJSON(r, http.MethodGet, "/verify/not-a-real-token", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeVerifier struct {
	email string
	err   error
}

func (f fakeVerifier) Verify(string) (string, error) { return f.email, f.err }

func TestGoogleLoginCreatesVerifiedUser(t *testing.T) {
	r := setupServer(t)
	controllers.SetTokenVerifier(fakeVerifier{email: "oauth@test"})

	w := doJSON(r, http.MethodPost, "/auth/login/google", "", `{"token":"external-id-token"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, config.DB.First(&user, "username = ?", "oauth@test").Error)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.Password)

	// The same identity logs into the same account.
	w = doJSON(r, http.MethodPost, "/auth/login/google", "", `{"token":"external-id-token"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, config.DB.Model(&models.User{}).Where("username = ?", "oauth@test").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGoogleLoginRejectsBadToken(t *testing.T) {
	r := setupServer(t)
	controllers.SetTokenVerifier(fakeVerifier{err: errors.New("token expired")})

	w := doJSON(r, http.MethodPost, "/auth/login/google", "", `{"token":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	r := setupServer(t)
	user := createVerifiedUser(t, "pw@test")
	token := tokenFor(t, user)

	w := doJSON(r, http.MethodPost, "/auth/change-password", token,
		`{"current_password":"wrong","new_password":"newpassword1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/change-password", token,
		`{"current_password":"password123","new_password":"newpassword1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/auth/login", "",
		`{"username":"pw@test","password":"newpassword1"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRecoverPassword(t *testing.T) {
	r := setupServer(t)
	createVerifiedUser(t, "forgot@test")

	w := doJSON(r, http.MethodPost, "/auth/recover-password", "", `{"email":"forgot@test"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, config.DB.First(&user, "username = ?", "forgot@test").Error)
	assert.NotNil(t, user.VerificationToken)

	w = doJSON(r, http.MethodPost, "/auth/recover-password", "", `{"email":"unknown@test"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
