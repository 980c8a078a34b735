// mongodb.go - Optional history persistence for scans and scheduled events

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/extractor"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

// Enabled reports whether history persistence is configured
func Enabled() bool {
	return mongoDB != nil
}

// InitMongoDB initializes the MongoDB connection. An empty MONGO_URI
// disables history storage entirely; the pipeline runs without it.
func InitMongoDB() error {
	if configs.MONGO_URI == "" {
		log.Println("MONGO_URI not set, history storage disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(configs.MONGO_URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(configs.MONGO_DB_NAME)

	log.Println("✅ Connected to MongoDB successfully!")
	return nil
}

// CloseMongoDB closes the MongoDB connection
func CloseMongoDB() {
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
		log.Println("MongoDB connection closed")
	}
}

// ScanHistory records one completed document scan
type ScanHistory struct {
	RequestID      string           `bson:"request_id"`
	SessionID      string           `bson:"session_id"`
	Filename       string           `bson:"filename"`
	Provider       string           `bson:"provider"`
	RecognizedText string           `bson:"recognized_text"`
	Record         extractor.Record `bson:"record"`
	FallbackUsed   bool             `bson:"fallback_used"`
	DurationMS     int64            `bson:"duration_ms"`
	CreatedAt      time.Time        `bson:"created_at"`
}

// EventHistory records one schedule attempt that the endpoint accepted
type EventHistory struct {
	RequestID     string    `bson:"request_id"`
	SessionID     string    `bson:"session_id"`
	EventID       string    `bson:"event_id"`
	Title         string    `bson:"title"`
	Location      string    `bson:"location"`
	StartDateTime string    `bson:"start_datetime"`
	EndDateTime   string    `bson:"end_datetime"`
	CreatedAt     time.Time `bson:"created_at"`
}

// SaveScanHistory inserts a scan record into the scan_history collection
func SaveScanHistory(entry ScanHistory) error {
	if !Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry.CreatedAt = time.Now()
	if _, err := mongoDB.Collection("scan_history").InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert scan history: %w", err)
	}
	return nil
}

// SaveEventHistory inserts a scheduled-event record into event_history
func SaveEventHistory(entry EventHistory) error {
	if !Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry.CreatedAt = time.Now()
	if _, err := mongoDB.Collection("event_history").InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert event history: %w", err)
	}
	return nil
}
