package models

import (
	"time"
)

// Provider is a registered service provider ("aliado"). Districts and
// categories are owned slug sets drawn from the canonical reference tables;
// a finalized provider always has at least one of each.
type Provider struct {
	ID           string    `bson:"id" json:"id"`
	FirstName    string    `bson:"firstName" json:"firstName"`
	LastName     string    `bson:"lastName" json:"lastName"`
	Phone        string    `bson:"phone" json:"phone"`
	Districts    []string  `bson:"districts" json:"districts"`
	Categories   []string  `bson:"categories" json:"categories"`
	Rating       float64   `bson:"rating" json:"rating"`
	Available    bool      `bson:"available" json:"available"`
	Complaints   int       `bson:"complaints" json:"complaints"`
	HandoffCount int       `bson:"handoffCount" json:"handoffCount"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Defaults applied to every newly finalized provider.
const (
	DefaultProviderRating = 3.0
)

// ProviderSummary is the reduced shape handed back to requesters.
type ProviderSummary struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Phone     string `bson:"phone" json:"phone"`
}

// HasCategory reports whether the requested slug is a member of the
// provider's category set (not necessarily its only category).
func (p *Provider) HasCategory(slug string) bool {
	for _, c := range p.Categories {
		if c == slug {
			return true
		}
	}
	return false
}

// ServesAnyDistrict reports whether the provider's district set intersects
// the given districts. An empty filter means "any district".
func (p *Provider) ServesAnyDistrict(districts []string) bool {
	if len(districts) == 0 {
		return true
	}
	for _, d := range p.Districts {
		for _, want := range districts {
			if d == want {
				return true
			}
		}
	}
	return false
}

// Summary projects the provider onto its requester-facing shape.
func (p *Provider) Summary() ProviderSummary {
	return ProviderSummary{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}
