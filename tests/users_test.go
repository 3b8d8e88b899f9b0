package tests

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	token := registerUser(t, "Original Name", "profile@example.com")

	status, result := doJSON(t, "PUT", "/api/users/profile", token, map[string]interface{}{
		"name": "Renamed",
		"bio":  "learning in public",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Renamed", result["name"])
	assert.Equal(t, "learning in public", result["bio"])

	// Empty string clears a field; omitted fields stay put.
	status, result = doJSON(t, "PUT", "/api/users/profile", token, map[string]interface{}{
		"bio": "",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Renamed", result["name"])
	assert.Equal(t, "", result["bio"])
}

func TestAddXP(t *testing.T) {
	token := registerUser(t, "Grinder", "grinder@example.com")

	status, result := doJSON(t, "PATCH", "/api/users/add-xp", token, map[string]interface{}{
		"amount":    120,
		"type":      "quiz",
		"timeSpent": 25,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(120), result["xp"])
	assert.Equal(t, float64(2), result["level"])
	assert.Equal(t, float64(1), result["streak"])

	stats := result["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["quizzes_passed"])
	assert.Equal(t, float64(25), stats["total_minutes"])

	status, _ = doJSON(t, "PATCH", "/api/users/add-xp", token, map[string]interface{}{
		"amount": -5,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLeaderboard(t *testing.T) {
	leader := registerUser(t, "Leader", "leader@example.com")
	chaser := registerUser(t, "Chaser", "chaser@example.com")

	status, _ := doJSON(t, "PATCH", "/api/users/add-xp", leader, map[string]interface{}{"amount": 500})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, "PATCH", "/api/users/add-xp", chaser, map[string]interface{}{"amount": 200})
	require.Equal(t, fiber.StatusOK, status)

	status, result := doJSON(t, "GET", "/api/users/leaderboard?limit=50", leader, nil)
	require.Equal(t, fiber.StatusOK, status)

	entries := result["leaderboard"].([]interface{})
	require.GreaterOrEqual(t, len(entries), 2)

	// Ranks strictly ascend and XP never increases down the board.
	prevXP := -1
	for i, raw := range entries {
		entry := raw.(map[string]interface{})
		assert.Equal(t, float64(i+1), entry["rank"])
		if prevXP >= 0 {
			assert.LessOrEqual(t, int(entry["xp"].(float64)), prevXP)
		}
		prevXP = int(entry["xp"].(float64))
	}
}

func TestProfileActivityLog(t *testing.T) {
	token := registerUser(t, "Active", "active@example.com")

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, "PATCH", "/api/users/add-xp", token, map[string]interface{}{"amount": 10})
		require.Equal(t, fiber.StatusOK, status)
	}

	status, profile := doJSON(t, "GET", "/api/users/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	// One sparse entry for today, counting all three activities.
	activity := profile["activity_log"].(map[string]interface{})
	require.Len(t, activity, 1)
	for _, count := range activity {
		assert.Equal(t, float64(3), count)
	}

	// Three same-day activities only ever make a one-day streak.
	assert.Equal(t, float64(1), profile["streak"])
}
