package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/dietic/aliado-bot/database"
	"github.com/dietic/aliado-bot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	return &MongoSessionRepo{coll: database.Collection("onboarding_sessions")}
}

func (r *MongoSessionRepo) GetByPhone(ctx context.Context, phone string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var session models.Session
	if err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session for %s: %w", phone, err)
	}
	return &session, nil
}

func (r *MongoSessionRepo) Create(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session for %s: %w", session.Phone, err)
	}
	return nil
}

func (r *MongoSessionRepo) UpdateIfStep(ctx context.Context, phone string, fromStep models.Step, update *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"phone": phone, "step": fromStep}
	set := bson.M{"$set": bson.M{
		"step":       update.Step,
		"name":       update.Name,
		"districts":  update.Districts,
		"services":   update.Services,
		"experience": update.Experience,
		"updatedAt":  time.Now().UTC(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, set)
	if err != nil {
		return fmt.Errorf("failed to update session for %s: %w", phone, err)
	}
	if result.MatchedCount == 0 {
		return ErrStaleStep
	}
	return nil
}

func (r *MongoSessionRepo) ClaimFinalize(ctx context.Context, phone string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"phone": phone, "step": models.StepAwaitConfirm}
	update := bson.M{"$set": bson.M{
		"step":      models.StepFinalized,
		"updatedAt": time.Now().UTC(),
	}}
	var claimed models.Session
	err := r.coll.FindOneAndUpdate(ctx, filter, update).Decode(&claimed)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStaleStep
		}
		return nil, fmt.Errorf("failed to claim session for %s: %w", phone, err)
	}
	return &claimed, nil
}

func (r *MongoSessionRepo) ReleaseFinalize(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"phone": phone, "step": models.StepFinalized}
	update := bson.M{"$set": bson.M{
		"step":      models.StepAwaitConfirm,
		"updatedAt": time.Now().UTC(),
	}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release finalize claim for %s: %w", phone, err)
	}
	return nil
}

func (r *MongoSessionRepo) Delete(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.DeleteOne(ctx, bson.M{"phone": phone}); err != nil {
		return fmt.Errorf("failed to delete session for %s: %w", phone, err)
	}
	return nil
}
