package referenceRepo

import (
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/utils"

	"go.uber.org/zap"
)

// StaticReferenceRepo serves reference data from an in-memory snapshot. The
// Mongo implementation builds one of these after loading; tests construct
// them directly.
type StaticReferenceRepo struct {
	categories []models.Category
	districts  []models.District
	catSet     map[string]models.Category
	distSet    map[string]models.District
}

// NewStaticReferenceRepo canonicalizes every slug once at the data-model
// boundary and validates the adjacency lists: neighbor slugs must exist and
// adjacency should be symmetric. Violations are logged, not fatal — the
// source data owns that invariant.
func NewStaticReferenceRepo(categories []models.Category, districts []models.District) *StaticReferenceRepo {
	logger := utils.GetLogger()

	r := &StaticReferenceRepo{
		catSet:  make(map[string]models.Category, len(categories)),
		distSet: make(map[string]models.District, len(districts)),
	}

	for _, c := range categories {
		c.Slug = utils.CanonicalSlug(c.Slug)
		r.categories = append(r.categories, c)
		r.catSet[c.Slug] = c
	}

	for _, d := range districts {
		d.Slug = utils.CanonicalSlug(d.Slug)
		for i, n := range d.Neighbors {
			d.Neighbors[i] = utils.CanonicalSlug(n)
		}
		r.districts = append(r.districts, d)
		r.distSet[d.Slug] = d
	}

	for _, d := range r.districts {
		for _, n := range d.Neighbors {
			other, ok := r.distSet[n]
			if !ok {
				logger.Warn("district adjacency references unknown district",
					zap.String("district", d.Slug), zap.String("neighbor", n))
				continue
			}
			if !contains(other.Neighbors, d.Slug) {
				logger.Warn("district adjacency is not symmetric",
					zap.String("district", d.Slug), zap.String("neighbor", n))
			}
		}
	}

	return r
}

func contains(set []string, slug string) bool {
	for _, s := range set {
		if s == slug {
			return true
		}
	}
	return false
}

func (r *StaticReferenceRepo) Categories() []models.Category { return r.categories }

func (r *StaticReferenceRepo) Districts() []models.District { return r.districts }

func (r *StaticReferenceRepo) CategorySlugs() []string {
	slugs := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		slugs = append(slugs, c.Slug)
	}
	return slugs
}

func (r *StaticReferenceRepo) DistrictSlugs() []string {
	slugs := make([]string, 0, len(r.districts))
	for _, d := range r.districts {
		slugs = append(slugs, d.Slug)
	}
	return slugs
}

func (r *StaticReferenceRepo) HasCategory(slug string) bool {
	_, ok := r.catSet[slug]
	return ok
}

func (r *StaticReferenceRepo) HasDistrict(slug string) bool {
	_, ok := r.distSet[slug]
	return ok
}

func (r *StaticReferenceRepo) Neighbors(slug string) []string {
	d, ok := r.distSet[slug]
	if !ok {
		return nil
	}
	return d.Neighbors
}
