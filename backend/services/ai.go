package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"learntube/backend/utils"
)

// AIService generates quizzes and flashcards for a lesson topic through
// the Gemini REST API.
type AIService struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		APIKey:  apiKey,
		Model:   "gemini-2.5-flash-lite",
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type GeneratedFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

const quizPromptTemplate = `You are a Senior Technical Interviewer.
Video: %q (%s).

Task: Create 3 HARD multiple choice questions.
Output: PURE JSON Array only. No markdown.

Requirements:
1. 'options' must be an array of 4 distinct strings.
2. 'correctAnswer' must be an EXACT copy of one of the strings from 'options'.
3. Do NOT prefix options with "A)", "1.", etc. just the text.

Example Format:
[
  {
    "question": "What is the complexity of binary search?",
    "options": ["O(n)", "O(log n)", "O(1)", "O(n^2)"],
    "correctAnswer": "O(log n)"
  }
]`

const flashcardPromptTemplate = `You are an Expert Mentor.
Topic: %q.
Task: Create 5 ADVANCED flashcards.
Output: PURE JSON Array only.
Format: [{ "front": "Question", "back": "Answer" }]`

// GenerateQuiz builds a short gating quiz for a lesson. Every question
// carries four options with the correct answer as an exact copy of one.
func (as *AIService) GenerateQuiz(title, description string) ([]GeneratedQuestion, error) {
	if len(description) > 1000 {
		description = description[:1000]
	}

	text, err := as.generate(fmt.Sprintf(quizPromptTemplate, title, description))
	if err != nil {
		return nil, err
	}

	var questions []GeneratedQuestion
	if err := unmarshalJSONArray(text, &questions); err != nil {
		return nil, err
	}

	for _, q := range questions {
		if len(q.Options) != 4 || !containsString(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("generated quiz has malformed question %q: %w", q.Question, utils.ErrCollaborator)
		}
	}

	return questions, nil
}

func (as *AIService) GenerateFlashcards(title string) ([]GeneratedFlashcard, error) {
	text, err := as.generate(fmt.Sprintf(flashcardPromptTemplate, title))
	if err != nil {
		return nil, err
	}

	var cards []GeneratedFlashcard
	if err := unmarshalJSONArray(text, &cards); err != nil {
		return nil, err
	}

	return cards, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (as *AIService) generate(prompt string) (string, error) {
	if as.APIKey == "" {
		return "", fmt.Errorf("gemini api key is not configured: %w", utils.ErrCollaborator)
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %v: %w", err, utils.ErrCollaborator)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", as.BaseURL, as.Model, as.APIKey)
	resp, err := as.Client.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini request: %v: %w", err, utils.ErrCollaborator)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini responded with %d: %w", resp.StatusCode, utils.ErrCollaborator)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode gemini response: %v: %w", err, utils.ErrCollaborator)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates: %w", utils.ErrCollaborator)
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// unmarshalJSONArray tolerates the model wrapping its answer in markdown
// fences or prose: it strips fences and parses the outermost JSON array.
func unmarshalJSONArray(text string, out interface{}) error {
	clean := strings.TrimSpace(text)
	clean = strings.ReplaceAll(clean, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")

	first := strings.Index(clean, "[")
	last := strings.LastIndex(clean, "]")
	if first == -1 || last == -1 || last < first {
		return fmt.Errorf("ai response contained no JSON array: %w", utils.ErrCollaborator)
	}

	if err := json.Unmarshal([]byte(clean[first:last+1]), out); err != nil {
		return fmt.Errorf("ai response was not valid JSON: %v: %w", err, utils.ErrCollaborator)
	}

	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
