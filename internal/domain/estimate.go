package domain

import "encoding/json"

// PriceRange is the estimated basket cost envelope: Min sums each
// ingredient's cheapest valid price, Max sums each ingredient's priciest.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// IngredientSellers pairs an ingredient name with the sellers found for it
type IngredientSellers struct {
	Ingredient string          `json:"ingredient"`
	Sellers    []SellerListing `json:"sellers"`
}

// SellersByIngredient maps ingredient names to seller listings while keeping
// the order in which ingredients were first recorded. Setting an existing
// name replaces its sellers in place. The zero value is ready to use.
type SellersByIngredient struct {
	entries []IngredientSellers
	index   map[string]int
}

// Set records sellers under the exact ingredient name
func (s *SellersByIngredient) Set(ingredient string, sellers []SellerListing) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[ingredient]; ok {
		s.entries[i].Sellers = sellers
		return
	}
	s.index[ingredient] = len(s.entries)
	s.entries = append(s.entries, IngredientSellers{Ingredient: ingredient, Sellers: sellers})
}

// Get returns the sellers recorded for an ingredient
func (s SellersByIngredient) Get(ingredient string) ([]SellerListing, bool) {
	i, ok := s.index[ingredient]
	if !ok {
		return nil, false
	}
	return s.entries[i].Sellers, true
}

// Len returns the number of distinct ingredients recorded
func (s SellersByIngredient) Len() int {
	return len(s.entries)
}

// Entries returns the recorded ingredients in insertion order
func (s SellersByIngredient) Entries() []IngredientSellers {
	out := make([]IngredientSellers, len(s.entries))
	copy(out, s.entries)
	return out
}

// MarshalJSON encodes the index as an ordered array
func (s SellersByIngredient) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.entries)
}

// UnmarshalJSON decodes an ordered array back into the index
func (s *SellersByIngredient) UnmarshalJSON(data []byte) error {
	var entries []IngredientSellers
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*s = SellersByIngredient{}
	for _, e := range entries {
		s.Set(e.Ingredient, e.Sellers)
	}
	return nil
}

// AggregateResult is the output of one price aggregation run
type AggregateResult struct {
	SellersByIngredient SellersByIngredient `json:"sellersByIngredient"`
	Range               PriceRange          `json:"range"`
}

// EstimateRequest asks for local sellers and a price envelope for a set of ingredients
type EstimateRequest struct {
	Ingredients []IngredientLine `json:"ingredients"`
	Zip         string           `json:"zip"`
	SessionID   string           `json:"sessionId,omitempty"`
}

// EstimateResult is the response to an EstimateRequest
type EstimateResult struct {
	SearchID            string              `json:"searchId,omitempty"`
	Zip                 string              `json:"zip"`
	SellersByIngredient SellersByIngredient `json:"sellersByIngredient"`
	Range               PriceRange          `json:"range"`
}
