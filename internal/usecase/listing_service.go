package usecase

import (
	"context"
	"strings"

	"github.com/farmstand/backend/internal/domain"
	"go.uber.org/zap"
)

// ListingService serves the marketplace browse view: nearby listings,
// optionally narrowed by a produce name filter
type ListingService struct {
	produceClient domain.ProduceQueryClient
	listingLimit  int
	logger        *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(produceClient domain.ProduceQueryClient, listingLimit int, logger *zap.Logger) *ListingService {
	if listingLimit <= 0 {
		listingLimit = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		produceClient: produceClient,
		listingLimit:  listingLimit,
		logger:        logger,
	}
}

// Browse queries listings near a zip code (or coordinates) and keeps those
// with an item whose name contains filter
func (s *ListingService) Browse(
	ctx context.Context,
	query domain.ProduceQuery,
	filter string,
) (*domain.ProduceQueryResponse, error) {
	query.Zip = strings.TrimSpace(query.Zip)
	if query.Zip == "" && (query.Lat == nil || query.Lon == nil) {
		return nil, domain.ErrInvalidRequest
	}
	if query.Limit <= 0 {
		query.Limit = s.listingLimit
	}

	resp, err := s.produceClient.QueryProduce(ctx, query)
	if err != nil {
		return nil, wrapProduceError(err)
	}

	var listings []domain.SellerListing
	if resp != nil {
		listings = resp.MatchingListings
	}

	filtered := FilterListings(listings, filter)
	s.logger.Debug("browse listings",
		zap.String("zip", query.Zip),
		zap.String("produce", query.Produce),
		zap.String("filter", filter),
		zap.Int("matched", len(listings)),
		zap.Int("kept", len(filtered)))

	return &domain.ProduceQueryResponse{MatchingListings: filtered}, nil
}

// FilterListings keeps listings that offer at least one item whose name
// contains filter, ignoring case. An empty filter keeps every listing.
func FilterListings(listings []domain.SellerListing, filter string) []domain.SellerListing {
	needle := strings.ToLower(strings.TrimSpace(filter))

	kept := make([]domain.SellerListing, 0, len(listings))
	for _, listing := range listings {
		if needle == "" || offersItem(listing, needle) {
			kept = append(kept, listing)
		}
	}
	return kept
}

func offersItem(listing domain.SellerListing, needle string) bool {
	for _, item := range listing.ProduceItems {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}
