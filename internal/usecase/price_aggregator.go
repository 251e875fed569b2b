package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/farmstand/backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// priceNoiseRegex strips everything but digits and the decimal point
var priceNoiseRegex = regexp.MustCompile(`[^0-9.]`)

// defaultMaxConcurrency bounds in-flight seller lookups per aggregation
const defaultMaxConcurrency = 4

// SellerFetcher returns candidate seller listings for one ingredient near a zip code
type SellerFetcher func(ctx context.Context, ingredient, zip string) ([]domain.SellerListing, error)

// AggregatorConfig holds configuration for the price aggregator
type AggregatorConfig struct {
	// MaxConcurrency is the number of seller lookups run at once.
	// 1 looks ingredients up strictly one after another.
	MaxConcurrency int
}

// PriceAggregator builds the sellers-by-ingredient index and the basket
// price envelope for an ingredient list
type PriceAggregator struct {
	maxConcurrency int
	logger         *zap.Logger
}

// NewPriceAggregator creates a new price aggregator
func NewPriceAggregator(config AggregatorConfig, logger *zap.Logger) *PriceAggregator {
	limit := config.MaxConcurrency
	if limit <= 0 {
		limit = defaultMaxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PriceAggregator{
		maxConcurrency: limit,
		logger:         logger,
	}
}

// Aggregate looks up sellers for every ingredient and sums, across
// ingredients, the cheapest and the priciest valid price found for each.
//
// A blank zip returns an empty result without any lookups. Ingredients with
// no valid price are left out of both totals. The first lookup error aborts
// the whole run and is returned.
func (a *PriceAggregator) Aggregate(
	ctx context.Context,
	ingredients []domain.IngredientLine,
	zip string,
	fetch SellerFetcher,
) (*domain.AggregateResult, error) {
	result := &domain.AggregateResult{}

	zip = strings.TrimSpace(zip)
	if zip == "" || len(ingredients) == 0 {
		return result, nil
	}
	if fetch == nil {
		return nil, fmt.Errorf("%w: seller fetcher is required", domain.ErrInvalidRequest)
	}

	// Each lookup owns one slot; the reduction below reads them only after Wait.
	found := make([][]domain.SellerListing, len(ingredients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)

	for i, line := range ingredients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			sellers, err := fetch(gctx, line.Ingredient, zip)
			if err != nil {
				a.logger.Warn("seller lookup failed",
					zap.String("ingredient", line.Ingredient),
					zap.String("zip", zip),
					zap.Error(err))
				return fmt.Errorf("fetch sellers for %q: %w", line.Ingredient, err)
			}

			found[i] = sellers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	minTotal := decimal.Zero
	maxTotal := decimal.Zero

	for i, line := range ingredients {
		sellers := found[i]
		if len(sellers) > 0 {
			result.SellersByIngredient.Set(line.Ingredient, sellers)
		}

		low, high, ok := priceEnvelope(sellers)
		if !ok {
			a.logger.Debug("no valid prices for ingredient",
				zap.String("ingredient", line.Ingredient),
				zap.Int("sellers", len(sellers)))
			continue
		}

		minTotal = minTotal.Add(low)
		maxTotal = maxTotal.Add(high)
	}

	result.Range = domain.PriceRange{
		Min: roundCents(minTotal),
		Max: roundCents(maxTotal),
	}

	a.logger.Debug("aggregation complete",
		zap.String("zip", zip),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("with_sellers", result.SellersByIngredient.Len()),
		zap.Float64("min", result.Range.Min),
		zap.Float64("max", result.Range.Max))

	return result, nil
}

// priceEnvelope returns the lowest and highest valid price across every
// produce item of every seller. ok is false when no price is usable.
func priceEnvelope(sellers []domain.SellerListing) (low, high decimal.Decimal, ok bool) {
	for _, seller := range sellers {
		for _, item := range seller.ProduceItems {
			price, valid := NormalizePrice(item.Price)
			if !valid {
				continue
			}
			if !ok {
				low, high, ok = price, price, true
				continue
			}
			if price.LessThan(low) {
				low = price
			}
			if price.GreaterThan(high) {
				high = price
			}
		}
	}
	return low, high, ok
}

// NormalizePrice converts a display price such as "$3.50" or "USD 3.50" to a
// decimal. Prices that do not parse or are not positive are reported invalid.
// A minus sign directly ahead of the amount marks it negative.
func NormalizePrice(p domain.Price) (decimal.Decimal, bool) {
	if p.IsNumber() {
		// Wire numbers may use exponent form ("1e2"), which stripping would mangle
		d, err := decimal.NewFromString(p.String())
		if err != nil || !d.IsPositive() {
			return decimal.Zero, false
		}
		return d, true
	}

	text := p.String()
	if hasLeadingMinus(text) {
		return decimal.Zero, false
	}

	cleaned := priceNoiseRegex.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	// strconv rejects shapes like "1.2.3" that survive stripping
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f <= 0 {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// hasLeadingMinus reports whether the last sign-relevant character before the
// first digit is '-'. Spaces and a decimal point may sit between the two, so
// "-1", "$-2.00" and "- .5" all count; hyphens after the amount do not.
func hasLeadingMinus(s string) bool {
	first := strings.IndexAny(s, "0123456789")
	if first < 0 {
		return false
	}
	prefix := strings.TrimRight(s[:first], " \t.")
	return strings.HasSuffix(prefix, "-")
}

// roundCents rounds half-up to two decimal places
func roundCents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
