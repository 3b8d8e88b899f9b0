package tests

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "New Learner",
		"email":    "new@example.com",
		"password": "password123",
	})

	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, result["token"])

	user := result["user"].(map[string]interface{})
	assert.Equal(t, "New Learner", user["name"])
	assert.Equal(t, float64(0), user["xp"])
	assert.Equal(t, float64(1), user["level"])
	assert.Equal(t, float64(0), user["streak"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	registerUser(t, "First", "dupe@example.com")

	status, _ := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "Second",
		"email":    "dupe@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRegisterMissingFields(t *testing.T) {
	status, _ := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "incomplete@example.com",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLogin(t *testing.T) {
	registerUser(t, "Login User", "login@example.com")

	status, result := doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	status, _ = doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestMe(t *testing.T) {
	token := registerUser(t, "Me User", "me@example.com")

	status, result := doJSON(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Me User", result["name"])
	assert.Equal(t, "me@example.com", result["email"])

	status, _ = doJSON(t, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
