package equipment

import (
	"context"
	"time"

	"gearbook/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EquipmentRepository interface {
	Create(ctx context.Context, item *Equipment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Equipment, error)
	FindBySerial(ctx context.Context, serial string) (*Equipment, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]Equipment, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByField(ctx context.Context, field string) (map[string]int64, error)
	UpsertBySerial(ctx context.Context, item *Equipment) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type EquipmentRepositoryImpl struct {
	collection *mongo.Collection
}

func NewEquipmentRepository(db *database.MongodbDB) EquipmentRepository {
	return &EquipmentRepositoryImpl{
		collection: db.DB.Collection("equipment"),
	}
}

func (r *EquipmentRepositoryImpl) Create(ctx context.Context, item *Equipment) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	if item.Status == "" {
		item.Status = StatusAvailable
	}

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return err
	}
	item.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *EquipmentRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Equipment, error) {
	var item Equipment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *EquipmentRepositoryImpl) FindBySerial(ctx context.Context, serial string) (*Equipment, error) {
	var item Equipment
	if err := r.collection.FindOne(ctx, bson.M{"serial_number": serial}).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *EquipmentRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Equipment, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []Equipment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *EquipmentRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *EquipmentRepositoryImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	return r.Update(ctx, id, bson.M{"status": status})
}

func (r *EquipmentRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByField groups equipment counts by the given field (status, category).
func (r *EquipmentRepositoryImpl) CountByField(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// UpsertBySerial inserts or refreshes an item keyed on its serial number.
// Returns true when a new document was inserted. Used by the legacy sync.
func (r *EquipmentRepositoryImpl) UpsertBySerial(ctx context.Context, item *Equipment) (bool, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":        item.Name,
			"category":    item.Category,
			"location":    item.Location,
			"condition":   item.Condition,
			"daily_value": item.DailyValue,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"serial_number": item.SerialNumber,
			"status":        StatusAvailable,
			"created_at":    now,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, bson.M{"serial_number": item.SerialNumber}, update, opts)
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

func (r *EquipmentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "serial_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}
