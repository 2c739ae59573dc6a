package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

const snapshotCollection = "stock_snapshots"

// Repository defines the interface for daily stock snapshot storage.
type Repository interface {
	SaveStockSnapshot(ctx context.Context, snapshot models.StockSnapshot) error
	LatestStockSnapshot(ctx context.Context) (*models.StockSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects and pings the cluster.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveStockSnapshot upserts the snapshot of its day, so re-running the daily
// job replaces the earlier document.
func (r *MongoDBRepository) SaveStockSnapshot(ctx context.Context, snapshot models.StockSnapshot) error {
	filter := bson.M{"date": snapshot.Date}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, filter, snapshot, opts); err != nil {
		return fmt.Errorf("failed to save stock snapshot: %w", err)
	}
	return nil
}

// LatestStockSnapshot returns the most recent snapshot, or nil when none exists.
func (r *MongoDBRepository) LatestStockSnapshot(ctx context.Context) (*models.StockSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var snapshot models.StockSnapshot
	err := r.collection().FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest stock snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
