package foodtype

import "testing"

func TestSuggest(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Fresh vegetables from our garden harvest", "Vegetables"},
		{"Surplus bread from bakery", "Bakery Items"},
		{"Canned soup, assorted", "Canned Goods"}, // "canned" word match wins over "soup"
		{"Leftover catering trays from an event", "Cooked Meals"},
		{"Two crates of apples and oranges", "Fruits"},
		{"MILK and cheese nearing sell-by", "Dairy"},
		{"Rice and lentils, 5kg bags", "Grains & Pasta"},
		{"Mystery box", "Other"},
		{"", "Other"},
	}
	for _, tc := range cases {
		if got := Suggest(tc.description); got != tc.want {
			t.Errorf("Suggest(%q) = %q, want %q", tc.description, got, tc.want)
		}
	}
}

func TestSuggestSubstringFallback(t *testing.T) {
	// No whole word matches, but the substring pass catches it.
	if got := Suggest("assorted veggies"); got != "Vegetables" {
		t.Errorf("Suggest = %q, want Vegetables", got)
	}
}
