package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRaw     string
		wantNumeric bool
		wantErr     bool
	}{
		{name: "dollar string", input: `"$3.50"`, wantRaw: "$3.50"},
		{name: "plain string", input: `"3.50"`, wantRaw: "3.50"},
		{name: "number", input: `3.5`, wantRaw: "3.5", wantNumeric: true},
		{name: "integer number", input: `4`, wantRaw: "4", wantNumeric: true},
		{name: "null", input: `null`, wantRaw: ""},
		{name: "bool rejected", input: `true`, wantErr: true},
		{name: "object rejected", input: `{"amount":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, p.String())
			assert.Equal(t, tt.wantNumeric, p.numeric)
		})
	}
}

func TestPriceRoundTripPreservesDisplayForm(t *testing.T) {
	input := `[{"name":"Tomato","quantity":"10","unit":"lb","price":"$3.00"},{"name":"Basil","quantity":2,"unit":"bunch","price":2.5}]`

	var items []ProduceItem
	require.NoError(t, json.Unmarshal([]byte(input), &items))
	require.Len(t, items, 2)

	assert.Equal(t, Quantity(10), items[0].Quantity)
	assert.Equal(t, "$3.00", items[0].Price.String())
	assert.Equal(t, Quantity(2), items[1].Quantity)

	out, err := json.Marshal(items)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"price":"$3.00"`)
	assert.Contains(t, string(out), `"price":2.5`)
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Quantity
	}{
		{`1.5`, 1.5},
		{`"0.5"`, 0.5},
		{`" 3 "`, 3},
		{`""`, 0},
		{`"a few"`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestSellerListingDisplayName(t *testing.T) {
	assert.Equal(t, "Green Acres", SellerListing{Name: "Green Acres", UserName: "ga"}.DisplayName())
	assert.Equal(t, "ga", SellerListing{UserName: "ga"}.DisplayName())
	assert.Equal(t, "", SellerListing{}.DisplayName())
}

func TestPriceFromNumber(t *testing.T) {
	p := PriceFromNumber(3.25)
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "3.25", string(out))

	assert.True(t, Price{}.IsZero())
	assert.False(t, PriceFromString("free").IsZero())
}
