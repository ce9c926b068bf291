package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"
)

const (
	documentsCollection = "documents"
	countersCollection  = "counters"
	documentsCounterID  = "documents"
)

// documentRecord is the BSON shape of a document; model.Document stays free of storage tags.
type documentRecord struct {
	ID          int64     `bson:"_id"`
	Filename    string    `bson:"filename"`
	StoragePath string    `bson:"storage_path"`
	Size        int64     `bson:"filesize"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (r documentRecord) toModel() model.Document {
	return model.Document{
		ID:          r.ID,
		Filename:    r.Filename,
		StoragePath: r.StoragePath,
		Size:        r.Size,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// DocumentMongo implements repository.DocumentRepository on MongoDB.
// Integer ids are drawn from a counters collection with an atomic $inc.
type DocumentMongo struct {
	db       *mongo.Database
	docs     *mongo.Collection
	counters *mongo.Collection
}

// NewDocumentMongo creates a repository on the given database. Call EnsureIndexes once at startup.
func NewDocumentMongo(db *mongo.Database) *DocumentMongo {
	return &DocumentMongo{
		db:       db,
		docs:     db.Collection(documentsCollection),
		counters: db.Collection(countersCollection),
	}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

// EnsureIndexes creates the unique storage_path index and the listing index (idempotent).
func (r *DocumentMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.docs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "storage_path", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *DocumentMongo) nextID(ctx context.Context) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": documentsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return out.Seq, nil
}

func (r *DocumentMongo) Insert(ctx context.Context, filename, storagePath string, size int64) (*model.Document, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	rec := documentRecord{
		ID:          id,
		Filename:    filename,
		StoragePath: storagePath,
		Size:        size,
		// BSON datetimes hold milliseconds; truncate so the returned record matches what is stored.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.docs.InsertOne(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	doc := rec.toModel()
	return &doc, nil
}

func (r *DocumentMongo) ListAll(ctx context.Context) ([]model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.docs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]model.Document, 0)
	for cur.Next(ctx) {
		var rec documentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		items = append(items, rec.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return items, nil
}

func (r *DocumentMongo) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	var rec documentRecord
	err := r.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	doc := rec.toModel()
	return &doc, nil
}

func (r *DocumentMongo) Delete(ctx context.Context, id int64) error {
	res, err := r.docs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DocumentMongo) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client owning the database.
func (r *DocumentMongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.db.Client().Disconnect(ctx)
}
