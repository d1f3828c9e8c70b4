package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/studyforge/backend/internal/config"
	"github.com/studyforge/backend/internal/models"
)

// Format tells the model what shape of response is expected.
type Format string

const (
	FormatJSON Format = "application/json"
	FormatText Format = "text/plain"
)

// LLMClient is the interface all generation backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, format Format) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Client wraps an LLMClient and adds study-material-specific methods.
// Prompt construction is stateless: every call builds its full prompt
// from the input, no persistent chat history.
type Client struct {
	llm   LLMClient
	model string
}

func NewClient(cfg *config.Config) *Client {
	var llm LLMClient
	model := cfg.LLMProvider

	switch cfg.LLMProvider {
	case "anthropic":
		model = cfg.AnthropicModel
		llm = NewAnthropicClient(model)
		log.Println("Generator using Anthropic API:", model)
	case "mock":
		llm = NewMockClient()
		log.Println("Generator using mock data")
	default:
		model = cfg.GeminiModel
		llm = NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, model)
		log.Println("Generator using Gemini API:", model)
	}

	return &Client{llm: llm, model: model}
}

// NewClientWith wires an explicit backend; used by tests and the job runner.
func NewClientWith(llm LLMClient, model string) *Client {
	return &Client{llm: llm, model: model}
}

func (c *Client) ModelName() string {
	return c.model
}

// GenerateOutline produces the course layout for a topic. The response is
// required to parse into the strict outline shape; anything else is an error.
func (c *Client) GenerateOutline(ctx context.Context, topic, courseType, difficulty string) (*models.CourseLayout, error) {
	prompt := BuildOutlinePrompt(topic, courseType, difficulty)

	resp, err := c.llm.Generate(ctx, prompt, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}

	layout, err := ParseOutline(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse outline response: %w", err)
	}

	return layout, nil
}

// GenerateChapterNotes produces HTML notes for one chapter.
func (c *Client) GenerateChapterNotes(ctx context.Context, chapter models.Chapter) (string, error) {
	prompt, err := BuildChapterNotesPrompt(chapter)
	if err != nil {
		return "", fmt.Errorf("build notes prompt: %w", err)
	}

	resp, err := c.llm.Generate(ctx, prompt, FormatText)
	if err != nil {
		return "", fmt.Errorf("generate chapter notes: %w", err)
	}

	return StripCodeFences(resp.Content), nil
}

// GenerateStudyContent runs a prebuilt flashcard/quiz/Q&A prompt and returns
// the parsed JSON payload. Beyond parse success there is no schema check;
// content shape is owned by the consumer for each type.
func (c *Client) GenerateStudyContent(ctx context.Context, prompt string) (json.RawMessage, error) {
	resp, err := c.llm.Generate(ctx, prompt, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("generate study content: %w", err)
	}

	content, err := ParseStudyContent(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse study content: %w", err)
	}

	return content, nil
}

// ── GeminiClient — generative-language REST API ────────────

type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, format Format) (*LLMResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:      1,
			TopP:             0.95,
			TopK:             40,
			MaxOutputTokens:  8192,
			ResponseMimeType: string(format),
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)

	respBody, err := c.callWithRetry(ctx, url, payload)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no text content in gemini response")
	}

	return &LLMResponse{
		Content:      parsed.Candidates[0].Content.Parts[0].Text,
		PromptTokens: parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}, nil
}

func (c *GeminiClient) callWithRetry(ctx context.Context, url string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Gemini API call in %v (attempt %d)", sleepDuration, attempt+1)
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build gemini request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("Gemini API attempt %d failed: %v", attempt+1, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("gemini API status %d: %s", resp.StatusCode, string(body))
			log.Printf("Gemini API attempt %d failed: %v", attempt+1, lastErr)
			continue
		}

		return body, nil
	}
	return nil, fmt.Errorf("gemini API failed after retries: %w", lastErr)
}

// ── AnthropicClient — Anthropic SDK ────────────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string, format Format) (*LLMResponse, error) {
	systemPrompt := "You are a study-material generation assistant."
	if format == FormatJSON {
		systemPrompt += " Respond with a single JSON document and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(1.0),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}
