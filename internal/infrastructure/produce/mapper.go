package produce

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/farmstand/backend/internal/domain"
)

// maxMessageLength bounds upstream error text carried into our errors
const maxMessageLength = 200

// queryResponse is the wire shape of /query_produce. Failures carry only error.
type queryResponse struct {
	MatchingListings []domain.SellerListing `json:"matching_listings"`
	Error            string                 `json:"error,omitempty"`
}

// decodeQueryResponse parses a 200 body into the domain response
func decodeQueryResponse(body []byte) (*domain.ProduceQueryResponse, error) {
	var wire queryResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProduceAPIFailure, err)
	}
	if wire.Error != "" && len(wire.MatchingListings) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProduceAPIFailure, truncate(wire.Error))
	}

	listings := make([]domain.SellerListing, 0, len(wire.MatchingListings))
	for _, l := range wire.MatchingListings {
		listings = append(listings, normalizeListing(l))
	}
	return &domain.ProduceQueryResponse{MatchingListings: listings}, nil
}

// normalizeListing trims names and drops items without one
func normalizeListing(l domain.SellerListing) domain.SellerListing {
	l.Name = strings.TrimSpace(l.Name)
	l.UserName = strings.TrimSpace(l.UserName)
	l.Location = strings.TrimSpace(l.Location)

	items := make([]domain.ProduceItem, 0, len(l.ProduceItems))
	for _, item := range l.ProduceItems {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		item.Unit = strings.TrimSpace(item.Unit)
		items = append(items, item)
	}
	l.ProduceItems = items
	return l
}

// upstreamMessage extracts {"error": "..."} from a body, falling back to the
// raw text
func upstreamMessage(body []byte) string {
	var wire queryResponse
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		return truncate(wire.Error)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no details"
	}
	return truncate(msg)
}

// truncate shortens s to at most maxMessageLength bytes without splitting a rune
func truncate(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	cut := maxMessageLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
