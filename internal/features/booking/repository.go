package booking

import (
	"context"
	"time"

	"gearbook/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]Booking, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindConflicts(ctx context.Context, equipmentID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]Booking, error)
	CountOpenForEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error)
	FindExpiredActive(ctx context.Context, now time.Time) ([]Booking, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountUpcoming(ctx context.Context, now time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type BookingRepositoryImpl struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *database.MongodbDB) BookingRepository {
	return &BookingRepositoryImpl{
		collection: db.DB.Collection("bookings"),
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, b *Booking) error {
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.Priority == "" {
		b.Priority = PriorityNormal
	}

	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		return err
	}
	b.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var b Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"start_date": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
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

func (r *BookingRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindConflicts returns calendar-holding bookings for the equipment whose
// closed date range intersects [start, end]. excludeID skips the booking
// being edited.
func (r *BookingRepositoryImpl) FindConflicts(ctx context.Context, equipmentID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]Booking, error) {
	filter := bson.M{
		"equipment_id": equipmentID,
		"status":       bson.M{"$in": ConflictStatuses},
		"start_date":   bson.M{"$lte": end},
		"end_date":     bson.M{"$gte": start},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conflicts []Booking
	if err := cursor.All(ctx, &conflicts); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (r *BookingRepositoryImpl) CountOpenForEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"equipment_id": equipmentID,
		"status":       bson.M{"$in": ConflictStatuses},
	})
}

// FindExpiredActive returns active bookings whose end date has passed.
func (r *BookingRepositoryImpl) FindExpiredActive(ctx context.Context, now time.Time) ([]Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":   StatusActive,
		"end_date": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
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

func (r *BookingRepositoryImpl) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"status":     bson.M{"$in": []Status{StatusPending, StatusActive}},
		"start_date": bson.M{"$gte": now},
	})
}

func (r *BookingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "equipment_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_date", Value: 1}},
		},
	})
	return err
}
