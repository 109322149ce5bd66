package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Custmers", "Customers", 1},
		{"Café", "Cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Customers", "Contacts", "Orders", "Order_Lines", "Invoices"}

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{"typo", "Custmers", []string{"Customers"}},
		{"case insensitive", "orders", []string{"Orders"}},
		{"closest first", "Ordrs", []string{"Orders"}},
		{"nothing close", "Zebra", []string{}},
		{"exact match is not a suggestion", "Invoices", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSimilar(tt.target, candidates)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestFindSimilarCapsSuggestions(t *testing.T) {
	result := FindSimilar("a", []string{"b", "c", "d", "e", "f"})
	if len(result) != DefaultMaxSuggestions {
		t.Errorf("expected %d suggestions, got %v", DefaultMaxSuggestions, result)
	}
	if !reflect.DeepEqual(result, []string{"b", "c", "d"}) {
		t.Errorf("ties should keep candidate order, got %v", result)
	}
}
