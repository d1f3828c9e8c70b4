package models

// ErrorResponse is the JSON envelope for handler-level failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type ExecuteStats struct {
	Memory     string `json:"memory"`
	CPUTime    string `json:"cpuTime"`
	StatusCode int    `json:"statusCode"`
}

type ExecuteResponse struct {
	Output string       `json:"output"`
	Stats  ExecuteStats `json:"stats"`
}

type AnalyzeRequest struct {
	Code                  string   `json:"code"`
	Language              string   `json:"language"`
	APIKey                string   `json:"apiKey,omitempty"`
	CodeSnapshots         []string `json:"codeSnapshots,omitempty"`
	TypingPatterns        int      `json:"typingPatterns,omitempty"`
	AverageTypingInterval float64  `json:"averageTypingInterval,omitempty"`
	SessionDuration       int      `json:"sessionDuration,omitempty"`
}

// AnalysisReport is the fixed shape returned by the analyze-code endpoint.
// IsMockData marks a degraded response; the endpoint never hard-fails.
type AnalysisReport struct {
	Approach     string  `json:"approach"`
	Logic        string  `json:"logic"`
	AIDetection  string  `json:"aiDetection"`
	Suggestions  string  `json:"suggestions"`
	OverallScore float64 `json:"overallScore"`
	IsMockData   bool    `json:"isMockData"`
	Error        string  `json:"error,omitempty"`
	RawResponse  string  `json:"rawResponse,omitempty"`
}

type DocxExportRequest struct {
	Report *AnalysisReport `json:"report"`
}
