package referenceRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/dietic/aliado-bot/database"
	"github.com/dietic/aliado-bot/models"

	"go.mongodb.org/mongo-driver/bson"
)

// NewMongoReferenceRepo loads the category and district tables from MongoDB
// and returns an in-memory snapshot. Reference data is fixed, so a single
// load at startup is enough.
func NewMongoReferenceRepo(ctx context.Context) (*StaticReferenceRepo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var categories []models.Category
	catCursor, err := database.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if err := catCursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	var districts []models.District
	distCursor, err := database.Collection("districts").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load districts: %w", err)
	}
	if err := distCursor.All(ctx, &districts); err != nil {
		return nil, fmt.Errorf("failed to decode districts: %w", err)
	}

	if len(categories) == 0 || len(districts) == 0 {
		return nil, fmt.Errorf("reference data is empty: %d categories, %d districts", len(categories), len(districts))
	}

	return NewStaticReferenceRepo(categories, districts), nil
}
