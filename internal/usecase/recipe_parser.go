package usecase

import (
	"regexp"
	"strings"

	"github.com/farmstand/backend/internal/domain"
)

// Section markers of a recipe response. The CSV block ends at the first line
// that starts (after optional blanks) with "Recipe:".
var (
	csvSectionRegex    = regexp.MustCompile(`(?is)CSV:\s*(.*?)\n\s*Recipe:`)
	csvToEndRegex      = regexp.MustCompile(`(?is)CSV:\s*(.*)`)
	recipeSectionRegex = regexp.MustCompile(`(?is)Recipe:\s*(.*)`)
)

// ParserConfig holds configuration for the recipe response parser
type ParserConfig struct {
	// Lenient treats everything after "CSV:" as ingredient lines when no
	// "Recipe:" line follows it. Strict parsing yields no ingredients then.
	Lenient bool
}

// RecipeParser turns a free-text recipe response into a ParsedRecipe.
// Parse never fails: missing sections come back empty.
type RecipeParser struct {
	lenient bool
}

// NewRecipeParser creates a parser with the given configuration
func NewRecipeParser(config ParserConfig) *RecipeParser {
	return &RecipeParser{lenient: config.Lenient}
}

// ParseRecipeResponse parses a response with the default strict parser
func ParseRecipeResponse(raw string) domain.ParsedRecipe {
	return (&RecipeParser{}).Parse(raw)
}

// Parse extracts the ingredient lines and recipe text from raw.
// Ingredient order and duplicates are kept exactly as they appear.
func (p *RecipeParser) Parse(raw string) domain.ParsedRecipe {
	result := domain.ParsedRecipe{
		Ingredients: []domain.IngredientLine{},
	}

	if m := recipeSectionRegex.FindStringSubmatch(raw); m != nil {
		result.Recipe = strings.TrimSpace(m[1])
	}

	csvBlock, ok := p.csvSection(raw)
	if !ok {
		return result
	}

	for _, line := range strings.Split(csvBlock, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result.Ingredients = append(result.Ingredients, parseIngredientLine(line))
	}

	return result
}

// csvSection returns the text of the CSV block, if one can be located
func (p *RecipeParser) csvSection(raw string) (string, bool) {
	if m := csvSectionRegex.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if !p.lenient {
		return "", false
	}
	if m := csvToEndRegex.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

// parseIngredientLine splits "name,amount" on the first comma only, so
// amounts like "1 tbsp, packed" survive intact. A line without a comma is
// all ingredient name.
func parseIngredientLine(line string) domain.IngredientLine {
	name, amount, _ := strings.Cut(line, ",")
	return domain.IngredientLine{
		Ingredient: strings.TrimSpace(name),
		Amount:     strings.TrimSpace(amount),
	}
}
