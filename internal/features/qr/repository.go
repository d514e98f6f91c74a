package qr

import (
	"context"
	"time"

	"gearbook/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScanRepository interface {
	Create(ctx context.Context, scan *ScanEvent) error
	List(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ScanEvent, error)
}

type ScanRepositoryImpl struct {
	collection *mongo.Collection
}

func NewScanRepository(db *database.MongodbDB) ScanRepository {
	return &ScanRepositoryImpl{
		collection: db.DB.Collection("scan_events"),
	}
}

func (r *ScanRepositoryImpl) Create(ctx context.Context, scan *ScanEvent) error {
	if scan.ID.IsZero() {
		scan.ID = primitive.NewObjectID()
	}
	scan.ScannedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, scan)
	return err
}

// List returns recent scans, newest first. A zero userID returns everyone's.
func (r *ScanRepositoryImpl) List(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ScanEvent, error) {
	filter := bson.M{}
	if !userID.IsZero() {
		filter["scanned_by"] = userID
	}

	opts := options.Find().SetLimit(limit).SetSort(bson.M{"scanned_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scans []ScanEvent
	if err := cursor.All(ctx, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}
