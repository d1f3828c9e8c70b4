package execute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/studyforge/backend/internal/config"
	"github.com/studyforge/backend/internal/models"
)

// Handler forwards code to the remote execution service. No sandboxing or
// quota runs locally; all safety lives in the remote service.
type Handler struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		clientID:     cfg.ExecClientID,
		clientSecret: cfg.ExecClientSecret,
		baseURL:      cfg.ExecBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type executeUpstreamRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
}

type executeUpstreamResponse struct {
	Output     string `json:"output"`
	Memory     any    `json:"memory"`
	CPUTime    any    `json:"cpuTime"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

// Execute handles POST /execute.
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if h.clientID == "" || h.clientSecret == "" {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Execution service credentials are not configured"})
		return
	}

	langConfig, ok := LookupLanguage(req.Language)
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Language '%s' is not supported", req.Language)})
		return
	}

	payload, err := json.Marshal(executeUpstreamRequest{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		Script:       req.Code,
		Language:     langConfig.Language,
		VersionIndex: langConfig.VersionIndex,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to execute code: " + err.Error()})
		return
	}

	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.baseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to execute code: " + err.Error()})
		return
	}
	upstreamReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(upstreamReq)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to execute code: " + err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to read execution response: " + err.Error()})
		return
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Execution API error (%d): %s", resp.StatusCode, string(body))
		writeJSON(w, resp.StatusCode, models.ErrorResponse{Error: "Execution failed: " + string(body)})
		return
	}

	var result executeUpstreamResponse
	if err := json.Unmarshal(body, &result); err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to decode execution response: " + err.Error()})
		return
	}

	if result.Error != "" {
		writeJSON(w, http.StatusOK, models.ErrorResponse{Error: result.Error})
		return
	}

	memory := statString(result.Memory)
	cpuTime := statString(result.CPUTime)

	// Append execution stats as a human-readable suffix when present.
	output := result.Output
	if memory != "" || cpuTime != "" {
		output += "\n\n--- Execution Stats ---"
		if memory != "" {
			output += fmt.Sprintf("\nMemory: %s KB", memory)
		}
		if cpuTime != "" {
			output += fmt.Sprintf("\nCPU Time: %s seconds", cpuTime)
		}
	}

	writeJSON(w, http.StatusOK, models.ExecuteResponse{
		Output: output,
		Stats: models.ExecuteStats{
			Memory:     memory,
			CPUTime:    cpuTime,
			StatusCode: result.StatusCode,
		},
	})
}

// ListLanguages handles GET /languages for the editor's language picker.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]LanguageConfig, len(languageConfigs))
	for name, cfg := range languageConfigs {
		out[name] = cfg
	}
	writeJSON(w, http.StatusOK, out)
}

// statString renders a stat the upstream may send as a number or a string.
func statString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
