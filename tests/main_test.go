package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"learntube/backend/config"
	"learntube/backend/routes"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app        *fiber.App
	db         *gorm.DB
	cfg        *config.Config
	geminiStub *httptest.Server
)

type stubRenderer struct{}

func (stubRenderer) Render(userName, courseTitle string, issuedAt time.Time) (string, error) {
	return "data:image/png;base64,VGVzdA==", nil
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file:learntube_http_tests?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	if err := utils.MigrateDB(db); err != nil {
		panic(err)
	}

	// Canned Gemini endpoint: answers with a quiz or a flashcard set
	// depending on which prompt arrives.
	geminiStub = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		reply := `[{"question":"What does a binary search need?","options":["Sorted input","A hash table","Random access files","A linked list"],"correctAnswer":"Sorted input"}]`
		if strings.Contains(string(body), "flashcards") {
			reply = `[{"front":"Front 1","back":"Back 1"},{"front":"Front 2","back":"Back 2"}]`
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, reply)
	}))

	appLogger := utils.InitLogger()
	leaderboard := services.NewLeaderboardService(db, nil)
	progress := services.NewProgressService(db, stubRenderer{}, leaderboard, appLogger)

	ai := services.NewAIService("test-key")
	ai.BaseURL = geminiStub.URL

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg, routes.Services{
		Progress:    progress,
		Leaderboard: leaderboard,
		AI:          ai,
		YouTube:     services.NewYouTubeService("test-key"),
	})
}

func teardown() {
	geminiStub.Close()
}

// doJSON performs a request against the test app and decodes the response
// body into a generic map.
func doJSON(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &result))
	} else if len(raw) > 0 {
		result = map[string]interface{}{"_array": mustUnmarshalArray(t, raw)}
	}

	return resp.StatusCode, result
}

func mustUnmarshalArray(t *testing.T, raw []byte) []interface{} {
	t.Helper()

	var arr []interface{}
	require.NoError(t, json.Unmarshal(raw, &arr))
	return arr
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, name, email string) string {
	t.Helper()

	status, result := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, status)
	token, ok := result["token"].(string)
	require.True(t, ok, "register response had no token")
	return token
}
