package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prepzone/internal/config"
	"prepzone/internal/model"
)

// ErrAINotConfigured is returned when a generation call is made before an
// API key has been installed.
var ErrAINotConfigured = errors.New("gemini API key not configured")

// ContentService handles all AI content generation via the Gemini API.
// Every generated payload is validated before it leaves this service; a
// malformed response is an error, never a silently-degraded question.
type ContentService struct {
	config *config.AIConfig
	client *http.Client
}

// NewContentService creates a new content service.
func NewContentService(cfg *config.AIConfig) *ContentService {
	return &ContentService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// IsEnabled reports whether a valid API key is installed.
func (s *ContentService) IsEnabled() bool {
	return s.config.IsEnabled()
}

// questionSchema constrains question generation to the exact payload shape
// the session engine accepts.
var questionSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"question":           map[string]interface{}{"type": "STRING"},
		"choices":            map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
		"correctChoiceIndex": map[string]interface{}{"type": "INTEGER"},
		"feedback":           map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
	},
	"required": []string{"question", "choices", "correctChoiceIndex", "feedback"},
}

var recommendationsSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"contextualAlert":              map[string]interface{}{"type": "STRING"},
		"trainingRecommendationKey":    map[string]interface{}{"type": "STRING"},
		"trainingRecommendationReason": map[string]interface{}{"type": "STRING"},
		"preparednessTip":              map[string]interface{}{"type": "STRING"},
	},
	"required": []string{"contextualAlert", "trainingRecommendationKey", "trainingRecommendationReason", "preparednessTip"},
}

// FetchInitialQuestion generates the opening question of a scenario.
func (s *ContentService) FetchInitialQuestion(ctx context.Context, categoryTitle, language, location string) (*model.Question, error) {
	prompt := s.buildQuestionPrompt(categoryTitle, location, "")
	return s.fetchQuestion(ctx, prompt, language)
}

// FetchNextQuestion generates a follow-up question that continues from the
// previous decision point.
func (s *ContentService) FetchNextQuestion(ctx context.Context, categoryTitle, language, location, previousContext string) (*model.Question, error) {
	prompt := s.buildQuestionPrompt(categoryTitle, location, previousContext)
	return s.fetchQuestion(ctx, prompt, language)
}

func (s *ContentService) fetchQuestion(ctx context.Context, prompt, language string) (*model.Question, error) {
	text, _, err := s.callGemini(ctx, generateRequest{
		model:             s.config.Models.Question,
		prompt:            prompt,
		systemInstruction: systemInstruction(language),
		responseSchema:    questionSchema,
	})
	if err != nil {
		return nil, err
	}

	var question model.Question
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &question); err != nil {
		return nil, fmt.Errorf("decode question payload: %w", err)
	}
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question payload: %w", err)
	}
	return &question, nil
}

// FetchSessionSummary generates the end-of-session performance analysis from
// the answer transcript.
func (s *ContentService) FetchSessionSummary(ctx context.Context, categoryTitle, language string, transcript []model.AnsweredQuestion) (string, error) {
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`The user just completed the "%s" disaster-preparedness training scenario. Below is a JSON transcript of every question, the choice they made, the correct choice, and whether they were right.

%s

Write a short, encouraging performance analysis (3-4 sentences) that highlights what they did well and gives one specific, practical piece of advice for improvement. Plain text only, no markdown.`,
		categoryTitle, transcriptJSON)

	text, _, err := s.callGemini(ctx, generateRequest{
		model:             s.config.Models.Summary,
		prompt:            prompt,
		systemInstruction: systemInstruction(language),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// FetchBroadcast generates a simulated emergency broadcast grounded in
// current events via Google Search. Search grounding and response schemas
// are mutually exclusive on the API, so the JSON contract is enforced by
// prompt and validated here.
func (s *ContentService) FetchBroadcast(ctx context.Context, language, location string) (*model.Broadcast, error) {
	if location == "" {
		location = "Nigeria"
	}
	prompt := fmt.Sprintf(`Using Google Search, find one current or recent real-world hazard, weather event, or safety concern relevant to %s. Write a short simulated emergency broadcast about it for a disaster-preparedness training app.

Return ONLY valid JSON with exactly these fields:
{"title": "short headline", "message": "2-3 sentence announcement with practical guidance", "severity": "Alert" or "Warning" or "Info"}`,
		location)

	text, sources, err := s.callGemini(ctx, generateRequest{
		model:             s.config.Models.Broadcast,
		prompt:            prompt,
		systemInstruction: systemInstruction(language),
		useSearch:         true,
	})
	if err != nil {
		return nil, err
	}

	var broadcast model.Broadcast
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &broadcast); err != nil {
		return nil, fmt.Errorf("decode broadcast payload: %w", err)
	}
	if broadcast.Title == "" || broadcast.Message == "" {
		return nil, errors.New("broadcast payload missing title or message")
	}
	if !model.ValidSeverity(broadcast.Severity) {
		return nil, fmt.Errorf("unknown broadcast severity %q", broadcast.Severity)
	}
	broadcast.Sources = sources
	broadcast.Timestamp = time.Now()
	return &broadcast, nil
}

// FetchChatReply generates an in-character reply from a simulated contact.
func (s *ContentService) FetchChatReply(ctx context.Context, contact *model.ChatContact, language string, history []model.ChatMessage) (string, error) {
	var sb strings.Builder
	for _, msg := range history {
		if msg.Sender == model.SenderUser {
			sb.WriteString("Me: ")
		} else {
			sb.WriteString(contact.Name + ": ")
		}
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`You are role-playing as "%s" in a simulated emergency-communications exercise. There is an ongoing emergency nearby. Stay in character, stay calm, and keep replies to one or two short sentences.

Conversation so far:
%s
Write the next reply from "%s". Plain text only.`,
		contact.Name, sb.String(), contact.Name)

	text, _, err := s.callGemini(ctx, generateRequest{
		model:             s.config.Models.Chat,
		prompt:            prompt,
		systemInstruction: systemInstruction(language),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// FetchRecommendations generates the personalized dashboard payload from the
// player's progression state.
func (s *ContentService) FetchRecommendations(ctx context.Context, language, location string, level int, stats map[string]model.CategoryStats) (*model.Recommendations, error) {
	if location == "" {
		location = "Nigeria"
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		keys[i] = c.Key
	}

	prompt := fmt.Sprintf(`A user of a disaster-preparedness training app lives in %s, is at level %d, and has this per-scenario training history (total runs and perfect runs): %s

Produce:
- contextualAlert: one sentence on a seasonal or regional hazard plausibly relevant to their location right now.
- trainingRecommendationKey: the scenario they should train next. Must be exactly one of: %s.
- trainingRecommendationReason: one sentence on why, referencing their history.
- preparednessTip: one practical tip they can act on today.`,
		location, level, statsJSON, strings.Join(keys, ", "))

	text, _, err := s.callGemini(ctx, generateRequest{
		model:             s.config.Models.Recommendations,
		prompt:            prompt,
		systemInstruction: systemInstruction(language),
		responseSchema:    recommendationsSchema,
	})
	if err != nil {
		return nil, err
	}

	var recs model.Recommendations
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &recs); err != nil {
		return nil, fmt.Errorf("decode recommendations payload: %w", err)
	}
	if model.CategoryByKey(recs.TrainingRecommendationKey) == nil {
		return nil, fmt.Errorf("unknown recommended category %q", recs.TrainingRecommendationKey)
	}
	return &recs, nil
}

func (s *ContentService) buildQuestionPrompt(categoryTitle, location, previousContext string) string {
	locationLine := ""
	if location != "" {
		locationLine = fmt.Sprintf(" The user is located in %s; adapt scenario details to that setting where it helps realism.", location)
	}

	if previousContext == "" {
		return fmt.Sprintf(`Generate the opening question of an interactive "%s" training scenario.%s

The question must describe an urgent, realistic decision point in second person ("You see...", "You hear..."). Provide 2 or 3 choices with exactly one correct answer, and a one-sentence feedback string for every choice explaining why it is right or wrong.`,
			categoryTitle, locationLine)
	}

	return fmt.Sprintf(`Continue an interactive "%s" training scenario.%s

%s

Generate the next question, escalating or evolving the situation naturally from what just happened. Describe an urgent decision point in second person. Provide 2 or 3 choices with exactly one correct answer, and a one-sentence feedback string for every choice.`,
		categoryTitle, locationLine, previousContext)
}

// systemInstruction is shared by every generation call so tone and language
// stay consistent across features.
func systemInstruction(language string) string {
	return fmt.Sprintf("You are an expert disaster-preparedness instructor for an interactive safety-training simulation aimed at users in Nigeria. Be realistic, practical, and encouraging. Respond entirely in %s.", language)
}

// generateRequest describes one Gemini call. useSearch and responseSchema
// are mutually exclusive.
type generateRequest struct {
	model             string
	prompt            string
	systemInstruction string
	responseSchema    map[string]interface{}
	useSearch         bool
}

// callGemini makes a request to the Gemini API and returns the text of the
// first candidate plus any search-grounding sources.
func (s *ContentService) callGemini(ctx context.Context, gr generateRequest) (string, []model.BroadcastSource, error) {
	if !s.config.IsEnabled() {
		return "", nil, ErrAINotConfigured
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": gr.prompt},
				},
			},
		},
	}
	if gr.systemInstruction != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{
				{"text": gr.systemInstruction},
			},
		}
	}
	if gr.useSearch {
		reqBody["tools"] = []map[string]interface{}{
			{"google_search": map[string]interface{}{}},
		}
	} else if gr.responseSchema != nil {
		reqBody["generationConfig"] = map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   gr.responseSchema,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(gr.model), s.config.APIKey())
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			GroundingMetadata struct {
				GroundingChunks []struct {
					Web struct {
						URI   string `json:"uri"`
						Title string `json:"title"`
					} `json:"web"`
				} `json:"groundingChunks"`
			} `json:"groundingMetadata"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", nil, err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("empty response from Gemini")
	}

	candidate := geminiResp.Candidates[0]
	var sources []model.BroadcastSource
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, model.BroadcastSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}

	return candidate.Content.Parts[0].Text, sources, nil
}

// stripCodeFence removes a markdown ```json fence the model sometimes wraps
// around payloads despite instructions.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
