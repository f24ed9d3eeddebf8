package referenceRepo

import (
	"testing"

	"github.com/dietic/aliado-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepo() *StaticReferenceRepo {
	return NewStaticReferenceRepo(
		[]models.Category{
			{ID: "c1", Slug: "Plomería", DisplayName: "Plomería"},
			{ID: "c2", Slug: "electricidad", DisplayName: "Electricidad"},
		},
		[]models.District{
			{ID: "d1", Slug: "Jesús María", DisplayName: "Jesús María", Neighbors: []string{"San Isidro"}},
			{ID: "d2", Slug: "san-isidro", DisplayName: "San Isidro", Neighbors: []string{"jesus-maria"}},
		},
	)
}

func TestSlugsAreCanonicalizedOnLoad(t *testing.T) {
	repo := testRepo()

	assert.True(t, repo.HasCategory("plomeria"), "accented slug must load canonicalized")
	assert.False(t, repo.HasCategory("Plomería"), "lookups are by canonical slug only")
	assert.True(t, repo.HasDistrict("jesus-maria"))
	assert.ElementsMatch(t, []string{"plomeria", "electricidad"}, repo.CategorySlugs())
	assert.ElementsMatch(t, []string{"jesus-maria", "san-isidro"}, repo.DistrictSlugs())
}

func TestNeighborsAreCanonicalizedAndSymmetric(t *testing.T) {
	repo := testRepo()

	assert.Equal(t, []string{"san-isidro"}, repo.Neighbors("jesus-maria"))
	assert.Equal(t, []string{"jesus-maria"}, repo.Neighbors("san-isidro"))
	assert.Nil(t, repo.Neighbors("atlantis"))
}

func TestDisplayNamesSurviveCanonicalization(t *testing.T) {
	repo := testRepo()

	districts := repo.Districts()
	require.Len(t, districts, 2)
	assert.Equal(t, "Jesús María", districts[0].DisplayName)
	assert.Equal(t, "jesus-maria", districts[0].Slug)
}
