package domain

// IngredientLine is one (ingredient, amount) pair parsed from a recipe response.
// Neither field is normalized; Amount is display text and may be empty.
type IngredientLine struct {
	Ingredient string `json:"ingredient"`
	Amount     string `json:"amount,omitempty"`
}

// ParsedRecipe is the structured form of a recipe generation response
type ParsedRecipe struct {
	Ingredients []IngredientLine `json:"ingredients"`
	Recipe      string           `json:"recipe"`
}

// RecipeRequest represents a recipe generation request
type RecipeRequest struct {
	Query string `json:"query" binding:"required"`
}

// ParseRequest carries a raw recipe response that the client already holds.
// The field must be present but may be empty.
type ParseRequest struct {
	Response *string `json:"response" binding:"required"`
}
