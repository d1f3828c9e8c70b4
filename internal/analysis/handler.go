package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/studyforge/backend/internal/config"
	"github.com/studyforge/backend/internal/generator"
	"github.com/studyforge/backend/internal/models"
)

// mockReport is the fallback payload. Code analysis is a non-critical
// feature: the endpoint degrades to this instead of surfacing a 500.
var mockReport = models.AnalysisReport{
	Approach:     "This is a mock analysis. The API call failed or is not configured properly.",
	Logic:        "Please check your Gemini API key configuration and server logs.",
	AIDetection:  "This is not a real AI analysis - this is fallback mock data.",
	Suggestions:  "Set up your Gemini API key properly to get real analysis.",
	OverallScore: 5,
	IsMockData:   true,
}

type Handler struct {
	apiKey       string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		apiKey:       cfg.GeminiAPIKey,
		baseURL:      cfg.GeminiBaseURL,
		defaultModel: cfg.GeminiModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// AnalyzeCode handles POST /analyze-code. It always answers 200 with a
// well-formed report; failures come back as mock data with IsMockData set.
func (h *Handler) AnalyzeCode(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Code == "" || req.Language == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing required parameters"})
		return
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.apiKey
	}
	if apiKey == "" {
		report := mockReport
		report.Error = "Gemini API key not configured"
		writeJSON(w, http.StatusOK, report)
		return
	}

	prompt := generator.BuildAnalysisPrompt(req)

	responseText, err := h.tryModelEndpoints(r, apiKey, prompt)
	if err != nil {
		log.Printf("All analysis model endpoints failed: %v", err)
		report := mockReport
		report.Error = "All model endpoints failed: " + err.Error()
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, ok := parseReport(responseText)
	if !ok {
		// The model answered but not in the requested shape; return a
		// best-effort structure rather than failing the caller.
		writeJSON(w, http.StatusOK, models.AnalysisReport{
			Approach:    "Failed to parse structured response. Raw analysis: " + truncate(responseText, 500),
			Logic:       "Error parsing model response.",
			AIDetection: "Unable to determine.",
			Suggestions: "Please try again with a different code sample.",
			IsMockData:  false,
			RawResponse: truncate(responseText, 1000),
		})
		return
	}

	report.IsMockData = false
	writeJSON(w, http.StatusOK, report)
}

// tryModelEndpoints calls the candidate models in order; first success wins.
func (h *Handler) tryModelEndpoints(r *http.Request, apiKey, prompt string) (string, error) {
	candidates := []string{
		"models/gemini-1.5-flash",
		"models/gemini-flash",
		"models/gemini-pro",
	}
	if h.defaultModel != "" {
		candidates = append(candidates, h.defaultModel)
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"topK":            40,
			"topP":            0.95,
			"maxOutputTokens": 8192,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal analysis request: %w", err)
	}

	var lastErr error
	for _, model := range candidates {
		url := fmt.Sprintf("%s/%s:generateContent", h.baseURL, model)

		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", apiKey)

		resp, err := h.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("Analysis endpoint %s failed: %v", url, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
			log.Printf("Analysis endpoint %s returned %d", url, resp.StatusCode)
			continue
		}

		var parsed struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			lastErr = err
			continue
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("no text content in response from %s", model)
			continue
		}

		return parsed.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", lastErr
}

func parseReport(responseText string) (models.AnalysisReport, bool) {
	jsonText, err := generator.ExtractJSONObject(responseText)
	if err != nil {
		return models.AnalysisReport{}, false
	}

	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(jsonText), &report); err != nil {
		return models.AnalysisReport{}, false
	}

	return report, true
}

// GetKey handles GET /get-gemini-key.
func (h *Handler) GetKey(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "API key not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"apiKey": h.apiKey})
}

// ListModels handles GET /list-gemini-models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Gemini API key not configured"})
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.baseURL+"/models", nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Server error: " + err.Error()})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Server error: " + err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Server error: " + err.Error()})
		return
	}

	if resp.StatusCode != http.StatusOK {
		writeJSON(w, resp.StatusCode, models.ErrorResponse{Error: "Failed to list models: " + truncate(string(body), 500)})
		return
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to decode models response: " + err.Error()})
		return
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}

	writeJSON(w, http.StatusOK, map[string][]string{"models": names})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
