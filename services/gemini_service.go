package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

const visionPrompt = `Look at this meal photo and respond ONLY with a valid JSON object with exactly these fields: ` +
	`"identifiedFoods" (array of short food name strings, empty if nothing is recognizable), ` +
	`"portionNotes" (one short string describing portion sizes, or "unknown portions"), ` +
	`"clarity" (integer 0-100: your confidence in what you can see in the photo, not in any nutrition numbers). ` +
	`No markdown, no extra text.`

const macroPrompt = `Estimate the nutrition of this meal: %q. Respond ONLY with a valid JSON object with exactly these fields: ` +
	`"mealName" (short string), "calories" (number, kcal), "protein_g" (number), "carbs_g" (number), "fat_g" (number), ` +
	`"identifiedFoods" (array of strings), "suggestedSwaps" (array of at most 3 short healthier-swap strings), ` +
	`"explanation" (one sentence). No markdown, no extra text.`

// GeminiService satisfies both capability contracts against the Gemini
// generateContent REST API. Vision and reasoning are independent stateless
// calls sharing one bounded-timeout client.
type GeminiService struct {
	apiKey      string
	model       string
	visionModel string
	client      *http.Client
}

func NewGeminiService(apiKey, model, visionModel string, timeout time.Duration) *GeminiService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if visionModel == "" {
		visionModel = model
	}
	return &GeminiService{
		apiKey:      apiKey,
		model:       model,
		visionModel: visionModel,
		client:      &http.Client{Timeout: timeout},
	}
}

// DescribeMeal implements the vision capability: image bytes in, itemized
// description plus self-reported clarity out.
func (s *GeminiService) DescribeMeal(ctx context.Context, imageJPEG []byte) (models.VisionResult, error) {
	parts := []map[string]any{
		{"text": visionPrompt},
		{"inline_data": map[string]any{
			"mime_type": "image/jpeg",
			"data":      base64.StdEncoding.EncodeToString(imageJPEG),
		}},
	}
	text, err := s.generate(ctx, s.visionModel, parts)
	if err != nil {
		return models.VisionResult{}, err
	}
	var payload map[string]any
	if err := utils.DecodeLooseJSON(text, &payload); err != nil {
		return models.VisionResult{}, newVisionParseError(err)
	}
	return utils.NormalizeVision(payload), nil
}

// EstimateMacros implements the reasoning capability for a free-text or
// vision-derived description.
func (s *GeminiService) EstimateMacros(ctx context.Context, description string) (models.MacroResult, error) {
	parts := []map[string]any{{"text": fmt.Sprintf(macroPrompt, description)}}
	text, err := s.generate(ctx, s.model, parts)
	if err != nil {
		return models.MacroResult{}, err
	}
	var payload map[string]any
	if err := utils.DecodeLooseJSON(text, &payload); err != nil {
		return models.MacroResult{}, newMacroParseError(err)
	}
	return utils.NormalizeMacros(payload), nil
}

// generate performs one generateContent call and returns the first
// candidate's text. Transport and status failures map to
// ErrUpstreamUnavailable; response bodies are logged, never forwarded.
func (s *GeminiService) generate(ctx context.Context, model string, parts []map[string]any) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"temperature": 0.1,
			"topP":        0.8,
			"topK":        40,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(geminiEndpoint, model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		utils.Log.WithField("status", resp.StatusCode).
			WithField("model", model).
			Warnf("gemini call failed: %s", truncate(string(raw), 300))
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini envelope: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
