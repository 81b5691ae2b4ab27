// File: internal/listing/query.go
package listing

import (
	"strings"

	"marketplace_backend/internal/fieldtemplate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort keys accepted by the browse page. Anything else falls back to newest.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// SearchFilter is the structured form of a browse query: slugs resolved to
// ids, price bounds converted to minor units, dynamic filters scoped to the
// selected category's templates. Built once at the service boundary and
// handed to the repository, which only has to translate it to SQL.
type SearchFilter struct {
	CategoryID    *uuid.UUID
	SubCategoryID *uuid.UUID
	CityID        *uuid.UUID
	SearchTerm    string
	Condition     string
	PriceMinCents *int64
	PriceMaxCents *int64
	Sort          string
	Fields        map[string]string
	Page          int
	PageSize      int
}

// BuildSearchFilter converts raw browse parameters into a SearchFilter.
// Malformed numeric input and out-of-scope dynamic keys are dropped rather
// than rejected: browse filtering always degrades to "no filter" instead of
// erroring the page.
func BuildSearchFilter(q BrowseQuery, categoryID, subCategoryID *uuid.UUID, templatesInScope []fieldtemplate.FieldTemplate) SearchFilter {
	filter := SearchFilter{
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		SearchTerm:    strings.TrimSpace(q.SearchTerm),
		Condition:     strings.TrimSpace(q.Condition),
		Sort:          normalizeSort(q.Sort),
		Fields:        ScopeDynamicFilters(q.Fields, templatesInScope),
		Page:          q.Page,
		PageSize:      q.PageSize,
	}

	if cityID, err := uuid.Parse(strings.TrimSpace(q.CityID)); err == nil && cityID != uuid.Nil {
		filter.CityID = &cityID
	}
	if cents, ok := ParsePriceCents(q.PriceMin); ok {
		filter.PriceMinCents = &cents
	}
	if cents, ok := ParsePriceCents(q.PriceMax); ok {
		filter.PriceMaxCents = &cents
	}
	return filter
}

// ScopeDynamicFilters keeps only the submitted dynamic filters whose key
// belongs to a template in scope. Stale keys from a previously selected
// category must be dropped, not matched against unrelated listings.
func ScopeDynamicFilters(submitted map[string]string, templatesInScope []fieldtemplate.FieldTemplate) map[string]string {
	scoped := make(map[string]string)
	if len(submitted) == 0 {
		return scoped
	}
	inScope := make(map[string]struct{}, len(templatesInScope))
	for _, t := range templatesInScope {
		inScope[t.Key] = struct{}{}
	}
	for key, value := range submitted {
		if _, ok := inScope[key]; !ok {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		scoped[key] = value
	}
	return scoped
}

func normalizeSort(sort string) string {
	switch sort {
	case SortPriceAsc, SortPriceDesc:
		return sort
	default:
		return SortNewest
	}
}

// orderClause maps a normalized sort key to exactly one ORDER BY expression.
// No secondary sort key; ties keep the storage order.
func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "listings.price_cents ASC"
	case SortPriceDesc:
		return "listings.price_cents DESC"
	default:
		return "listings.created_at DESC"
	}
}

// applySearchFilter translates a SearchFilter into WHERE clauses. Dynamic
// field filters become one EXISTS subquery against the field-value rows each.
func applySearchFilter(db *gorm.DB, f SearchFilter) *gorm.DB {
	if f.SubCategoryID != nil {
		db = db.Where("listings.sub_category_id = ?", *f.SubCategoryID)
	} else if f.CategoryID != nil {
		db = db.Where("listings.category_id = ?", *f.CategoryID)
	}
	if f.CityID != nil {
		db = db.Where("listings.city_id = ?", *f.CityID)
	}
	if f.Condition != "" {
		db = db.Where("listings.condition = ?", f.Condition)
	}
	if f.SearchTerm != "" {
		term := "%" + strings.ToLower(f.SearchTerm) + "%"
		db = db.Where("LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ?", term, term)
	}
	if f.PriceMinCents != nil {
		db = db.Where("listings.price_cents >= ?", *f.PriceMinCents)
	}
	if f.PriceMaxCents != nil {
		db = db.Where("listings.price_cents <= ?", *f.PriceMaxCents)
	}
	for key, value := range f.Fields {
		db = db.Where(
			"EXISTS (SELECT 1 FROM listing_field_values fv WHERE fv.listing_id = listings.id AND fv.key = ? AND fv.value = ?)",
			key, value,
		)
	}
	return db
}
