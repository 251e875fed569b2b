package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farmstand/backend/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash"

// generateFunc matches genai's Models.GenerateContent
type generateFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error)

// Generator implements domain.RecipeGenerator on the Gemini API.
// A request takes two model calls: keyword extraction, then the recipe.
type Generator struct {
	generate generateFunc
	model    string
	logger   *zap.Logger
}

// NewGenerator creates a Gemini-backed recipe generator
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGenerator(client.Models.GenerateContent, model, logger), nil
}

func newGenerator(generate generateFunc, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		generate: generate,
		model:    model,
		logger:   logger.Named("gemini"),
	}
}

// GenerateRecipe returns the raw model response for a meal query. The
// response is expected, not guaranteed, to follow the CSV:/Recipe: layout.
func (g *Generator) GenerateRecipe(ctx context.Context, query string) (string, error) {
	reply, err := g.complete(ctx, extractionPrompt(query))
	if err != nil {
		return "", fmt.Errorf("%w: keyword extraction: %w", domain.ErrRecipeGenerationFailure, err)
	}

	keywords := cleanKeywords(reply)
	if keywords == "" {
		keywords = strings.ToLower(strings.TrimSpace(query))
	}
	g.logger.Debug("extracted keywords",
		zap.String("query", query),
		zap.String("keywords", keywords))

	recipe, err := g.complete(ctx, recipePrompt(keywords))
	if err != nil {
		return "", fmt.Errorf("%w: recipe: %w", domain.ErrRecipeGenerationFailure, err)
	}
	if strings.TrimSpace(recipe) == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrRecipeGenerationFailure)
	}

	return recipe, nil
}

// complete sends a single-turn text prompt and returns the reply text
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.generate(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("no response")
	}
	return resp.Text(), nil
}
