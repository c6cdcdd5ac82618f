// Package foodtype guesses a food-type label from a donation's free-text
// description, so the donor form can pre-fill its category field.
package foodtype

import "strings"

const Other = "Other"

// Suggest returns the food-type label for the given description.
// Matching is case-insensitive: whole-word match first, then substring
// match ordered with the more specific keywords in front. Falls back to
// "Other" when nothing matches.
func Suggest(description string) string {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return Other
	}

	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '\n'
	}) {
		if label, ok := wordMatch[word]; ok {
			return label
		}
	}

	for _, entry := range substringMatches {
		if strings.Contains(text, entry.keyword) {
			return entry.label
		}
	}

	return Other
}

var wordMatch = map[string]string{
	// Vegetables
	"vegetable":  "Vegetables",
	"vegetables": "Vegetables",
	"tomato":     "Vegetables",
	"tomatoes":   "Vegetables",
	"potato":     "Vegetables",
	"potatoes":   "Vegetables",
	"onion":      "Vegetables",
	"onions":     "Vegetables",
	"carrot":     "Vegetables",
	"carrots":    "Vegetables",
	"lettuce":    "Vegetables",
	"spinach":    "Vegetables",
	"broccoli":   "Vegetables",
	"greens":     "Vegetables",
	"salad":      "Vegetables",

	// Fruits
	"fruit":   "Fruits",
	"fruits":  "Fruits",
	"apple":   "Fruits",
	"apples":  "Fruits",
	"banana":  "Fruits",
	"bananas": "Fruits",
	"orange":  "Fruits",
	"oranges": "Fruits",
	"berries": "Fruits",
	"mango":   "Fruits",
	"mangoes": "Fruits",

	// Bakery Items
	"bread":      "Bakery Items",
	"loaf":       "Bakery Items",
	"loaves":     "Bakery Items",
	"bagel":      "Bakery Items",
	"bagels":     "Bakery Items",
	"pastry":     "Bakery Items",
	"pastries":   "Bakery Items",
	"cake":       "Bakery Items",
	"cakes":      "Bakery Items",
	"croissant":  "Bakery Items",
	"croissants": "Bakery Items",
	"muffin":     "Bakery Items",
	"muffins":    "Bakery Items",

	// Canned Goods
	"canned": "Canned Goods",
	"cans":   "Canned Goods",
	"tins":   "Canned Goods",

	// Dairy
	"milk":   "Dairy",
	"cheese": "Dairy",
	"yogurt": "Dairy",
	"butter": "Dairy",
	"cream":  "Dairy",
	"eggs":   "Dairy",

	// Meat & Fish
	"chicken": "Meat & Fish",
	"beef":    "Meat & Fish",
	"pork":    "Meat & Fish",
	"fish":    "Meat & Fish",
	"salmon":  "Meat & Fish",
	"turkey":  "Meat & Fish",

	// Grains
	"rice":    "Grains & Pasta",
	"pasta":   "Grains & Pasta",
	"flour":   "Grains & Pasta",
	"cereal":  "Grains & Pasta",
	"oats":    "Grains & Pasta",
	"beans":   "Grains & Pasta",
	"lentils": "Grains & Pasta",

	// Beverages
	"juice":  "Beverages",
	"water":  "Beverages",
	"coffee": "Beverages",
	"tea":    "Beverages",
	"soda":   "Beverages",
}

var substringMatches = []struct {
	keyword string
	label   string
}{
	{"cooked meal", "Cooked Meals"},
	{"prepared meal", "Cooked Meals"},
	{"leftover", "Cooked Meals"},
	{"catering", "Cooked Meals"},
	{"soup", "Cooked Meals"},
	{"curry", "Cooked Meals"},
	{"stew", "Cooked Meals"},
	{"bakery", "Bakery Items"},
	{"baked", "Bakery Items"},
	{"sandwich", "Cooked Meals"},
	{"produce", "Vegetables"},
	{"veggie", "Vegetables"},
	{"dairy", "Dairy"},
	{"grain", "Grains & Pasta"},
	{"meat", "Meat & Fish"},
	{"snack", "Snacks"},
	{"chips", "Snacks"},
	{"cookie", "Snacks"},
	{"drink", "Beverages"},
	{"beverage", "Beverages"},
}
