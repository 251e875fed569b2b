package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/farmstand/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterListings(t *testing.T) {
	listings := []domain.SellerListing{
		seller("Green Acres", "Cherry Tomatoes", "$3.00"),
		seller("Herb Hut", "Basil", "$2.00"),
		{Name: "Empty Stall"},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "empty filter keeps all", filter: "", want: []string{"Green Acres", "Herb Hut", "Empty Stall"}},
		{name: "whitespace filter keeps all", filter: "  ", want: []string{"Green Acres", "Herb Hut", "Empty Stall"}},
		{name: "substring match", filter: "tomato", want: []string{"Green Acres"}},
		{name: "case-insensitive", filter: "BASIL", want: []string{"Herb Hut"}},
		{name: "no match", filter: "kale", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterListings(listings, tt.filter)
			names := make([]string, 0, len(got))
			for _, l := range got {
				names = append(names, l.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	t.Run("nil input gives empty slice", func(t *testing.T) {
		got := FilterListings(nil, "kale")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestListingService_Browse(t *testing.T) {
	t.Run("by zip with filter", func(t *testing.T) {
		client := NewMockProduceClient()
		client.listings[""] = []domain.SellerListing{
			seller("Green Acres", "Tomatoes", "$3.00"),
			seller("Herb Hut", "Basil", "$2.00"),
		}
		service := NewListingService(client, 0, nil)

		resp, err := service.Browse(context.Background(), domain.ProduceQuery{Zip: " 60601 "}, "basil")

		require.NoError(t, err)
		require.Len(t, resp.MatchingListings, 1)
		assert.Equal(t, "Herb Hut", resp.MatchingListings[0].Name)

		require.Equal(t, 1, client.QueryCount())
		assert.Equal(t, "60601", client.queries[0].Zip)
		assert.Equal(t, 20, client.queries[0].Limit)
	})

	t.Run("by coordinates", func(t *testing.T) {
		client := NewMockProduceClient()
		service := NewListingService(client, 5, nil)
		lat, lon := 41.88, -87.63

		resp, err := service.Browse(context.Background(), domain.ProduceQuery{Lat: &lat, Lon: &lon, Limit: 3}, "")

		require.NoError(t, err)
		assert.NotNil(t, resp.MatchingListings)
		assert.Equal(t, 3, client.queries[0].Limit)
	})

	t.Run("needs a location", func(t *testing.T) {
		client := NewMockProduceClient()
		service := NewListingService(client, 0, nil)
		lat := 41.88

		_, err := service.Browse(context.Background(), domain.ProduceQuery{Lat: &lat}, "")

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Equal(t, 0, client.QueryCount())
	})

	t.Run("upstream failure", func(t *testing.T) {
		client := NewMockProduceClient()
		client.errors["kale"] = errors.New("timeout")
		service := NewListingService(client, 0, nil)

		_, err := service.Browse(context.Background(), domain.ProduceQuery{Zip: "60601", Produce: "kale"}, "")

		assert.ErrorIs(t, err, domain.ErrProduceAPIFailure)
	})
}
