package referenceRepo

import "github.com/dietic/aliado-bot/models"

// ReferenceRepository exposes the canonical category and district sets. The
// data is fixed for the lifetime of the process; implementations load it
// once and serve lookups from memory.
type ReferenceRepository interface {
	// Categories returns every canonical category.
	Categories() []models.Category
	// Districts returns every canonical district.
	Districts() []models.District
	// CategorySlugs returns the canonical category slug set.
	CategorySlugs() []string
	// DistrictSlugs returns the canonical district slug set.
	DistrictSlugs() []string
	// HasCategory reports whether slug is a canonical category slug.
	HasCategory(slug string) bool
	// HasDistrict reports whether slug is a canonical district slug.
	HasDistrict(slug string) bool
	// Neighbors returns the fixed adjacency set for a district slug, or nil
	// for an unknown district.
	Neighbors(slug string) []string
}
