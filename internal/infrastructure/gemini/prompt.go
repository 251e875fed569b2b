package gemini

import (
	"fmt"
	"strings"
)

// extractionPrompt asks the model to reduce a free-text meal request to its
// food keywords
func extractionPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Extract the key food-related words from this query. ")
	b.WriteString("Focus on main ingredients, meal types, and cooking styles. ")
	b.WriteString("Return ONLY the extracted words separated by commas. ")
	b.WriteString("Example: 'I'm craving steak tonight' -> 'steak, dinner'\n\n")
	fmt.Fprintf(&b, "Query: %s\n", query)
	b.WriteString("Extracted words:")
	return b.String()
}

// recipePrompt asks for an ingredient CSV followed by a recipe, in the
// CSV: / Recipe: layout the parser understands
func recipePrompt(keywords string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give me an ingredients list for %s. Give me 2 things:\n\n", keywords)
	b.WriteString("1. a CSV file of an ingredients list formatted in this format: {ingredient, amount}. ")
	b.WriteString("Do NOT print ingredient, amount in the final CSV output.\n")
	fmt.Fprintf(&b, "2. a recipe for %s using these ingredients.\n\n", keywords)
	b.WriteString("I want the output to be formatted in this way, with the curly braces replaced ")
	b.WriteString("with the corresponding sections of the output:\n")
	b.WriteString("CSV:\n{CSV output}\n")
	b.WriteString("Recipe:\n{Recipe output}\n\n")
	b.WriteString("Do NOT produce any other text. All text should be unformatted ")
	b.WriteString("(e.g. no bold, italics, underlined, etc.).")
	return b.String()
}

// cleanKeywords normalizes the extraction reply
func cleanKeywords(reply string) string {
	reply = strings.Trim(strings.TrimSpace(reply), `'"`)
	return strings.ToLower(strings.TrimSpace(reply))
}
