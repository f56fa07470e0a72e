package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
)

// Pagination bounds shared by every storefront surface.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Params is the canonical filter state for a catalog listing surface.
// Values are immutable: every setter returns a new Params and leaves the
// receiver untouched, so surfaces can detect changes by comparison.
//
// Nil price bounds mean unbounded on that side; a nil MinRating means no
// rating floor. FreeText and Category use "" for "no filter".
type Params struct {
	FreeText  string
	Category  string
	PriceMin  *int64
	PriceMax  *int64
	MinRating *float64
	Sort      string
	Page      int
	PerPage   int
}

// Defaults returns the starting parameters for a surface: no filters,
// relevance order, first page.
func Defaults() Params {
	return Params{
		Sort:    domain.SortRelevance,
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// WithFreeText returns params with the free-text query replaced and the
// page reset to 1.
func (p Params) WithFreeText(text string) Params {
	p.FreeText = strings.TrimSpace(text)
	p.Page = 1
	return p
}

// WithCategory returns params filtered to the given category. An empty
// string clears the category filter. Resets the page to 1.
func (p Params) WithCategory(category string) Params {
	p.Category = strings.TrimSpace(category)
	p.Page = 1
	return p
}

// WithPriceRange returns params with the given inclusive price bounds in
// cents. Invalid input (a negative bound, or min above max) is rejected and
// the previous params are returned unchanged; bounds are never swapped.
func (p Params) WithPriceRange(min, max *int64) Params {
	if min != nil && *min < 0 {
		return p
	}
	if max != nil && *max < 0 {
		return p
	}
	if min != nil && max != nil && *min > *max {
		return p
	}
	p.PriceMin = copyInt64(min)
	p.PriceMax = copyInt64(max)
	p.Page = 1
	return p
}

// WithMinRating returns params with the rating floor clamped to [0, 5].
// NaN is rejected. Resets the page to 1.
func (p Params) WithMinRating(rating float64) Params {
	if math.IsNaN(rating) {
		return p
	}
	r := math.Min(math.Max(rating, 0), 5)
	p.MinRating = &r
	p.Page = 1
	return p
}

// WithoutMinRating returns params with the rating floor removed.
func (p Params) WithoutMinRating() Params {
	p.MinRating = nil
	p.Page = 1
	return p
}

// WithSort returns params ordered by the given sort key. Unknown keys are
// rejected and the previous params are returned unchanged.
func (p Params) WithSort(sort string) Params {
	if !domain.IsValidSort(sort) {
		return p
	}
	p.Sort = sort
	p.Page = 1
	return p
}

// WithPage returns params positioned at the given page. This is the only
// setter that does not reset pagination. Pages below 1 are rejected.
func (p Params) WithPage(page int) Params {
	if page < 1 {
		return p
	}
	p.Page = page
	return p
}

// WithPerPage returns params with the given page size, capped at MaxPerPage.
// Non-positive sizes are rejected. Resets the page to 1.
func (p Params) WithPerPage(perPage int) Params {
	if perPage < 1 {
		return p
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	p.PerPage = perPage
	p.Page = 1
	return p
}

// Equal reports whether two params describe the same query, comparing
// pointer fields by value.
func (p Params) Equal(other Params) bool {
	return p.FreeText == other.FreeText &&
		p.Category == other.Category &&
		int64PtrEqual(p.PriceMin, other.PriceMin) &&
		int64PtrEqual(p.PriceMax, other.PriceMax) &&
		float64PtrEqual(p.MinRating, other.MinRating) &&
		p.Sort == other.Sort &&
		p.Page == other.Page &&
		p.PerPage == other.PerPage
}

// URL query keys. Unknown keys in incoming URLs are ignored so that old
// bookmarks keep working across releases.
const (
	keyFreeText  = "q"
	keyCategory  = "category"
	keyPriceMin  = "price_min"
	keyPriceMax  = "price_max"
	keyMinRating = "min_rating"
	keySort      = "sort"
	keyPage      = "page"
	keyPerPage   = "per_page"
)

// FromValues builds params from a URL query string, starting from the given
// surface defaults. Absent fields keep their defaults. Malformed values are
// ignored rather than rejected: a hand-edited URL must never break the
// surface. An inverted price range drops both bounds.
func FromValues(values url.Values, defaults Params) Params {
	p := defaults

	if values.Has(keyFreeText) {
		p.FreeText = strings.TrimSpace(values.Get(keyFreeText))
	}
	if values.Has(keyCategory) {
		p.Category = strings.TrimSpace(values.Get(keyCategory))
	}

	var min, max *int64
	if v, err := strconv.ParseInt(values.Get(keyPriceMin), 10, 64); err == nil && v >= 0 {
		min = &v
	}
	if v, err := strconv.ParseInt(values.Get(keyPriceMax), 10, 64); err == nil && v >= 0 {
		max = &v
	}
	if min != nil && max != nil && *min > *max {
		min, max = nil, nil
	}
	if min != nil {
		p.PriceMin = min
	}
	if max != nil {
		p.PriceMax = max
	}

	if v, err := strconv.ParseFloat(values.Get(keyMinRating), 64); err == nil && !math.IsNaN(v) {
		r := math.Min(math.Max(v, 0), 5)
		p.MinRating = &r
	}

	if v := values.Get(keySort); domain.IsValidSort(v) {
		p.Sort = v
	}

	if v, err := strconv.Atoi(values.Get(keyPage)); err == nil && v >= 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(values.Get(keyPerPage)); err == nil && v >= 1 {
		p.PerPage = v
		if p.PerPage > MaxPerPage {
			p.PerPage = MaxPerPage
		}
	}

	return p
}

// Values encodes params as a URL query map. Unset optional filters are
// omitted to keep shared URLs short; FromValues(p.Values(), Defaults())
// reproduces p exactly for every valid p.
func (p Params) Values() url.Values {
	values := url.Values{}

	if p.FreeText != "" {
		values.Set(keyFreeText, p.FreeText)
	}
	if p.Category != "" {
		values.Set(keyCategory, p.Category)
	}
	if p.PriceMin != nil {
		values.Set(keyPriceMin, strconv.FormatInt(*p.PriceMin, 10))
	}
	if p.PriceMax != nil {
		values.Set(keyPriceMax, strconv.FormatInt(*p.PriceMax, 10))
	}
	if p.MinRating != nil {
		values.Set(keyMinRating, strconv.FormatFloat(*p.MinRating, 'f', -1, 64))
	}
	if p.Sort != "" {
		values.Set(keySort, p.Sort)
	}
	values.Set(keyPage, strconv.Itoa(p.Page))
	values.Set(keyPerPage, strconv.Itoa(p.PerPage))

	return values
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
