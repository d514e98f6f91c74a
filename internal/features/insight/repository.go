package insight

import (
	"context"
	"time"

	"gearbook/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *InsightRule) error
	FindAll(ctx context.Context, enabledOnly bool) ([]InsightRule, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*InsightRule, error)
	Update(ctx context.Context, id primitive.ObjectID, rule *InsightRule) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type RuleRepositoryImpl struct {
	collection *mongo.Collection
}

func NewRuleRepository(db *database.MongodbDB) RuleRepository {
	return &RuleRepositoryImpl{
		collection: db.DB.Collection("insight_rules"),
	}
}

func (r *RuleRepositoryImpl) Create(ctx context.Context, rule *InsightRule) error {
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return err
	}
	rule.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *RuleRepositoryImpl) FindAll(ctx context.Context, enabledOnly bool) ([]InsightRule, error) {
	filter := bson.M{}
	if enabledOnly {
		filter["enabled"] = true
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []InsightRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RuleRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*InsightRule, error) {
	var rule InsightRule
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, rule *InsightRule) error {
	rule.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":       rule.Name,
			"trigger":    rule.Trigger,
			"script":     rule.Script,
			"enabled":    rule.Enabled,
			"updated_at": rule.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *RuleRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
