package models

// Category is a canonical service category. The slug is the lowercase,
// accent-stripped identifier used everywhere inside the system; the display
// name is what users see.
type Category struct {
	ID          string `bson:"id" json:"id"`
	Slug        string `bson:"slug" json:"slug"`
	DisplayName string `bson:"displayName" json:"displayName"`
}

// District is a Lima Metropolitana district. Neighbors is the fixed
// adjacency set used for the one-hop fallback search expansion.
type District struct {
	ID          string   `bson:"id" json:"id"`
	Slug        string   `bson:"slug" json:"slug"`
	DisplayName string   `bson:"displayName" json:"displayName"`
	Neighbors   []string `bson:"neighbors" json:"neighbors"`
}
