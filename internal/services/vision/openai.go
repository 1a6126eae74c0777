package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/plateful/plateful/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default vision model to use.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls.
	DefaultTimeout = 60 * time.Second
)

const analysisPrompt = `Analyze this food image. Identify what the food is, estimate its calories, ` +
	`and identify its main ingredients along with their approximate calories and percentage of the total. ` +
	`Format your response as JSON only, with no explanation. The JSON should have the format: ` +
	`{"name": "Food Name", "calories": 123, "ingredients": [{"name": "Ingredient 1", "calories": 100, "percentage": 45}, ` +
	`{"name": "Ingredient 2", "calories": 23, "percentage": 55}]}`

// ErrNoChoicesInResponse is returned when the API response has no choices.
var ErrNoChoicesInResponse = errors.New("no choices in response")

// OpenAIProvider implements Provider using OpenAI's chat completion API.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI vision provider.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil)
}

// NewOpenAIProviderWithLogger creates a new OpenAI vision provider with
// logger support.
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, log *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client: client,
		model:  model,
		logger: log,
	}
}

// AnalyzeFood sends the photo to the vision model and parses the returned
// dish estimate.
func (p *OpenAIProvider) AnalyzeFood(ctx context.Context, imageBase64 string) (*models.FoodAnalysis, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(analysisPrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: toDataURL(imageBase64),
		}),
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, req)
	if err != nil {
		p.logger.Error("vision request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoicesInResponse
	}

	analysis, err := parseAnalysisResponse(resp.Choices[0].Message.Content)
	if err != nil {
		p.logger.Error("failed to parse vision response", zap.Error(err))
		return nil, err
	}

	return analysis, nil
}

// toDataURL normalizes raw base64 input into a data URL. Input that
// already carries a data URL prefix is passed through.
func toDataURL(imageBase64 string) string {
	if strings.HasPrefix(imageBase64, "data:image/") {
		return imageBase64
	}
	return "data:image/jpeg;base64," + imageBase64
}

// parseAnalysisResponse extracts the JSON analysis from the model output.
// Models occasionally wrap the JSON in prose, so the outermost braces are
// used as a fallback.
func parseAnalysisResponse(content string) (*models.FoodAnalysis, error) {
	raw := content
	var analysis models.FoodAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		start := bytes.Index([]byte(raw), []byte("{"))
		end := bytes.LastIndex([]byte(raw), []byte("}"))
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse analysis response: %w", err)
		}
		raw = raw[start : end+1]
		if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
			return nil, fmt.Errorf("failed to parse analysis response: %w", err)
		}
	}

	if analysis.Name == "" {
		return nil, errors.New("analysis response missing food name")
	}
	if analysis.Ingredients == nil {
		analysis.Ingredients = []models.FoodIngredient{}
	}

	return &analysis, nil
}
