package repository

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"execpanel/config"
	"execpanel/middleware"
	"execpanel/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentKey is the single namespaced key the whole panel document
// lives under, in Mongo and in the cache alike.
const DocumentKey = "execpanel:v2"

// PayloadCache sits in front of the collection and holds the latest
// serialized document. Implemented by services.DocumentCache.
type PayloadCache interface {
	GetPayload(ctx context.Context) ([]byte, error)
	SetPayload(ctx context.Context, payload []byte) error
	DeletePayload(ctx context.Context) error
}

// storedDocument is the one record in the panel collection. The
// payload is kept as a raw JSON blob so that a corrupt or legacy
// shape degrades to defaults in Sanitize instead of failing decode.
type storedDocument struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type DocumentRepo struct {
	MongoCollection *mongo.Collection
	Cache           PayloadCache
}

// Constructor function for DocumentRepo
func GetDocumentRepo(client *mongo.Client) *DocumentRepo {
	dbConfig := config.LoadDatabaseConfig()
	collectionName := os.Getenv("PANEL_COLLECTION")
	if collectionName == "" {
		collectionName = "panel"
	}
	return &DocumentRepo{
		MongoCollection: client.Database(dbConfig.DatabaseName).Collection(collectionName),
	}
}

// Load returns the sanitized panel document. Missing record, malformed
// payload or any storage error all yield a fresh default document;
// load never fails.
func (r *DocumentRepo) Load(ctx context.Context) *model.Document {
	defer middleware.TrackStoreOperation("load").ObserveDuration()

	if r.Cache != nil {
		if payload, err := r.Cache.GetPayload(ctx); err == nil && payload != nil {
			return Sanitize(payload)
		}
	}

	var stored storedDocument
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": DocumentKey}).Decode(&stored)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("Error loading panel document: %v", err)
		}
		return model.DefaultDocument()
	}

	return Sanitize([]byte(stored.Payload))
}

// Save stamps and writes the whole document, then refreshes the cache.
// Cache trouble is logged only; the collection write is authoritative.
func (r *DocumentRepo) Save(ctx context.Context, doc *model.Document) error {
	defer middleware.TrackStoreOperation("save").ObserveDuration()

	doc.SchemaVersion = model.SchemaVersion
	doc.UpdatedAt = model.NowISO()

	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	stored := storedDocument{
		ID:        DocumentKey,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.MongoCollection.ReplaceOne(ctx, bson.M{"_id": DocumentKey}, stored, opts); err != nil {
		return err
	}

	if r.Cache != nil {
		if err := r.Cache.SetPayload(ctx, payload); err != nil {
			log.Printf("Error refreshing document cache: %v", err)
		}
	}
	return nil
}

// Clear removes all persisted panel state.
func (r *DocumentRepo) Clear(ctx context.Context) error {
	defer middleware.TrackStoreOperation("clear").ObserveDuration()

	if _, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": DocumentKey}); err != nil {
		return err
	}
	if r.Cache != nil {
		if err := r.Cache.DeletePayload(ctx); err != nil {
			log.Printf("Error clearing document cache: %v", err)
		}
	}
	return nil
}
