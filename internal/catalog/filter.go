package catalog

import (
	"sort"
	"strings"
)

// Sentinel filter values that disable the corresponding stage.
const (
	AllConditions = "all"
	AllCategories = "All Genres"
)

type SortKey string

const (
	SortTitle     SortKey = "title"
	SortAuthor    SortKey = "author"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortFeatured  SortKey = "featured"
)

// Filters holds the active filter values for one catalog view.
type Filters struct {
	Query     string
	Condition string
	Category  string
	Sort      SortKey
}

// Apply runs the full pipeline: search, condition, category, sort.
// Each stage receives the previous stage's output and none of them
// mutate their input.
func Apply(books []Book, f Filters) []Book {
	out := Search(books, f.Query)
	out = FilterByCondition(out, f.Condition)
	out = FilterByCategory(out, f.Category)
	return SortBooks(out, f.Sort)
}

// Search keeps books whose title, author, category or description contains
// the query, case-insensitively. A blank query returns the input unchanged.
func Search(books []Book, query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books
	}

	var out []Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Category), q) ||
			strings.Contains(strings.ToLower(b.Description), q) {
			out = append(out, b)
		}
	}
	return out
}

// FilterByCondition keeps books whose condition matches exactly.
// The AllConditions sentinel (or an empty value) disables the filter.
func FilterByCondition(books []Book, condition string) []Book {
	if condition == "" || condition == AllConditions {
		return books
	}

	var out []Book
	for _, b := range books {
		if string(b.Condition) == condition {
			out = append(out, b)
		}
	}
	return out
}

// FilterByCategory keeps books whose category matches exactly.
// The AllCategories sentinel (or an empty value) disables the filter.
func FilterByCategory(books []Book, category string) []Book {
	if category == "" || category == AllCategories {
		return books
	}

	var out []Book
	for _, b := range books {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// SortBooks returns a new slice ordered by the given key. The input is
// never mutated. An unrecognized key returns a copy in the input order.
func SortBooks(books []Book, key SortKey) []Book {
	out := make([]Book, len(books))
	copy(out, books)

	switch key {
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case SortAuthor:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Author) < strings.ToLower(out[j].Author)
		})
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price < out[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price > out[j].Price
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortFeatured:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Featured && !out[j].Featured
		})
	}
	// Unknown keys fall through without reordering.

	return out
}
