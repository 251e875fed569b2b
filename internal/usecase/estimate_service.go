package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farmstand/backend/internal/domain"
	"go.uber.org/zap"
)

// EstimateServiceConfig holds configuration for the estimate service
type EstimateServiceConfig struct {
	CacheTTL       time.Duration
	ListingLimit   int
	MaxConcurrency int
	Timeout        time.Duration
}

// EstimateService finds local sellers for a recipe's ingredients and
// estimates the basket price envelope, caching seller lookups per
// ingredient and zip
type EstimateService struct {
	cache         domain.CacheRepository
	produceClient domain.ProduceQueryClient
	aggregator    *PriceAggregator
	tracker       *SearchTracker
	recorder      MetricsRecorder
	logger        *zap.Logger
	cacheTTL      time.Duration
	listingLimit  int
	timeout       time.Duration
}

// NewEstimateService creates a new estimate service with dependencies.
// cache may be nil to disable caching.
func NewEstimateService(
	cache domain.CacheRepository,
	produceClient domain.ProduceQueryClient,
	config EstimateServiceConfig,
	logger *zap.Logger,
) *EstimateService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	limit := config.ListingLimit
	if limit <= 0 {
		limit = 20
	}

	return &EstimateService{
		cache:         cache,
		produceClient: produceClient,
		aggregator:    NewPriceAggregator(AggregatorConfig{MaxConcurrency: config.MaxConcurrency}, logger),
		tracker:       NewSearchTracker(),
		recorder:      nopRecorder{},
		logger:        logger,
		cacheTTL:      cacheTTL,
		listingLimit:  limit,
		timeout:       config.Timeout,
	}
}

// SetRecorder attaches a metrics recorder
func (s *EstimateService) SetRecorder(r MetricsRecorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Estimate looks up sellers for every ingredient near the request's zip and
// returns the sellers-by-ingredient index with the price envelope.
// Flow: begin tracked search -> per ingredient (cache -> produce service) ->
// aggregate -> publish only if still the session's newest search.
func (s *EstimateService) Estimate(
	ctx context.Context,
	request *domain.EstimateRequest,
) (*domain.EstimateResult, error) {
	if request == nil {
		s.recorder.ObserveEstimate(OutcomeInvalid)
		return nil, domain.ErrInvalidRequest
	}

	zip := strings.TrimSpace(request.Zip)
	if zip == "" {
		// A blank zip is a no-op and must not cancel a search in flight
		return &domain.EstimateResult{}, nil
	}

	searchCtx, handle := s.tracker.Begin(ctx, request.SessionID)
	defer handle.Finish()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(searchCtx, s.timeout)
		defer cancel()
	}

	aggregate, err := s.aggregator.Aggregate(searchCtx, request.Ingredients, zip, s.fetchSellers)
	if !handle.Current() {
		s.logger.Info("discarding superseded search",
			zap.String("search_id", handle.ID),
			zap.String("session_id", request.SessionID))
		s.recorder.ObserveEstimate(OutcomeSuperseded)
		return nil, domain.ErrSearchSuperseded
	}
	if err != nil {
		s.recorder.ObserveEstimate(OutcomeError)
		return nil, err
	}

	s.recorder.ObserveEstimate(OutcomeSuccess)
	return &domain.EstimateResult{
		SearchID:            handle.ID,
		Zip:                 zip,
		SellersByIngredient: aggregate.SellersByIngredient,
		Range:               aggregate.Range,
	}, nil
}

// fetchSellers is the SellerFetcher backed by the cache and the produce service
func (s *EstimateService) fetchSellers(ctx context.Context, ingredient, zip string) ([]domain.SellerListing, error) {
	// A blank name would match every listing upstream
	if strings.TrimSpace(ingredient) == "" {
		return nil, nil
	}

	cacheKey := generateSellersCacheKey(ingredient, zip)
	if sellers, ok := s.getFromCache(ctx, cacheKey); ok {
		return sellers, nil
	}

	resp, err := s.produceClient.QueryProduce(ctx, domain.ProduceQuery{
		Produce: ingredient,
		Zip:     zip,
		Limit:   s.listingLimit,
	})
	if err != nil {
		return nil, wrapProduceError(err)
	}

	var sellers []domain.SellerListing
	if resp != nil {
		sellers = resp.MatchingListings
	}

	if err := s.setInCache(ctx, cacheKey, sellers); err != nil {
		s.logger.Warn("failed to cache sellers", zap.String("key", cacheKey), zap.Error(err))
	}

	return sellers, nil
}

// generateSellersCacheKey creates a normalized cache key.
// Format: "sellers:{normalized_ingredient}:{zip}"
func generateSellersCacheKey(ingredient, zip string) string {
	return fmt.Sprintf("sellers:%s:%s", normalizeForCacheKey(ingredient), strings.TrimSpace(zip))
}

// normalizeForCacheKey lowercases and collapses whitespace. The produce
// service matches names case-insensitively, so case never changes a result.
func normalizeForCacheKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// getFromCache retrieves seller listings from cache
func (s *EstimateService) getFromCache(ctx context.Context, key string) ([]domain.SellerListing, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		s.recorder.ObserveCacheLookup(false)
		return nil, false
	}

	sellers, ok := value.([]domain.SellerListing)
	s.recorder.ObserveCacheLookup(ok)
	return sellers, ok
}

// setInCache stores seller listings in cache
func (s *EstimateService) setInCache(ctx context.Context, key string, sellers []domain.SellerListing) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, sellers, s.cacheTTL)
}

// wrapProduceError tags upstream failures with ErrProduceAPIFailure unless
// they already carry a more specific meaning
func wrapProduceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrProduceAPIFailure),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrProduceAPIFailure, err)
	}
}
