package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farmstand/backend/internal/domain"
	"go.uber.org/zap"
)

// RecipeService turns a free-text meal query into a parsed ingredient list
// and recipe
type RecipeService struct {
	generator domain.RecipeGenerator
	parser    *RecipeParser
	recorder  MetricsRecorder
	logger    *zap.Logger
}

// NewRecipeService creates a new recipe service with dependencies
func NewRecipeService(generator domain.RecipeGenerator, parser *RecipeParser, logger *zap.Logger) *RecipeService {
	if parser == nil {
		parser = NewRecipeParser(ParserConfig{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RecipeService{
		generator: generator,
		parser:    parser,
		recorder:  nopRecorder{},
		logger:    logger,
	}
}

// SetRecorder attaches a metrics recorder
func (s *RecipeService) SetRecorder(r MetricsRecorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Generate asks the recipe generator for a response and parses it
func (s *RecipeService) Generate(ctx context.Context, query string) (*domain.ParsedRecipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.recorder.ObserveRecipeGeneration(OutcomeInvalid)
		return nil, domain.ErrInvalidRequest
	}
	if s.generator == nil {
		return nil, domain.ErrServiceUnavailable
	}

	raw, err := s.generator.GenerateRecipe(ctx, query)
	if err != nil {
		s.recorder.ObserveRecipeGeneration(OutcomeError)
		if errors.Is(err, domain.ErrRecipeGenerationFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRecipeGenerationFailure, err)
	}

	parsed := s.parser.Parse(raw)
	if len(parsed.Ingredients) == 0 {
		s.logger.Warn("recipe response had no ingredient lines",
			zap.String("query", query),
			zap.Int("response_length", len(raw)))
	}

	s.recorder.ObserveRecipeGeneration(OutcomeSuccess)
	return &parsed, nil
}

// Parse parses a response the caller already holds
func (s *RecipeService) Parse(raw string) *domain.ParsedRecipe {
	parsed := s.parser.Parse(raw)
	return &parsed
}
