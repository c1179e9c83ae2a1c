// Package store archives query snapshots in MongoDB.
//
// The serve deployment keeps every snapshot it streams so past answers
// can be re-rendered without re-running the query. Snapshots are stored
// as their canonical JSON payload rather than as BSON documents, so the
// archive format stays byte-identical to the wire format.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/graphlens/graphlens/pkg/cache"
	apperrors "github.com/graphlens/graphlens/pkg/errors"
	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/httputil"
)

const connectTimeout = 10 * time.Second

// Record is one archived snapshot.
type Record struct {
	ID           string    `bson:"_id"`
	Question     string    `bson:"question"`
	QuestionHash string    `bson:"question_hash"`
	NodeCount    int       `bson:"node_count"`
	EdgeCount    int       `bson:"edge_count"`
	Payload      []byte    `bson:"payload"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Snapshot decodes the archived payload.
func (r *Record) Snapshot() (graph.Snapshot, error) {
	return graph.UnmarshalSnapshot(r.Payload)
}

// Archive stores snapshots in one MongoDB collection.
type Archive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewArchive connects to MongoDB and prepares the collection. Lookups
// by question are served by a question_hash index, created here if
// missing.
func NewArchive(ctx context.Context, uri, database, collection string) (*Archive, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to mongodb at %s", uri)
	}
	err = httputil.Retry(connectCtx, 3, 500*time.Millisecond, func() error {
		if err := client.Ping(connectCtx, nil); err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "ping mongodb at %s", uri)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "question_hash", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "create archive index")
	}

	return &Archive{client: client, coll: coll}, nil
}

// Save archives a snapshot and returns the record ID.
func (a *Archive) Save(ctx context.Context, question string, snap graph.Snapshot) (string, error) {
	payload, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidSnapshot, err, "serialize snapshot")
	}

	rec := newRecord(question, snap, payload)
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "insert snapshot record")
	}
	return rec.ID, nil
}

// Load fetches one record by ID.
func (a *Archive) Load(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.New(apperrors.ErrCodeSnapshotNotFound, "no archived snapshot %s", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load snapshot %s", id)
	}
	return &rec, nil
}

// Latest fetches the most recent record for a question, or a
// SNAPSHOT_NOT_FOUND error if the question was never archived.
func (a *Archive) Latest(ctx context.Context, question string) (*Record, error) {
	var rec Record
	err := a.coll.FindOne(ctx,
		bson.M{"question_hash": questionHash(question)},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.New(apperrors.ErrCodeSnapshotNotFound, "question never archived: %s", question)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load latest snapshot")
	}
	return &rec, nil
}

// List returns the newest records, most recent first, without their
// payloads.
func (a *Archive) List(ctx context.Context, limit int64) ([]Record, error) {
	cur, err := a.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"payload": 0}))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "list snapshots")
	}
	defer cur.Close(ctx)

	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "decode snapshot records")
	}
	return recs, nil
}

// Delete removes one record by ID.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "delete snapshot %s", id)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.ErrCodeSnapshotNotFound, "no archived snapshot %s", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (a *Archive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

func newRecord(question string, snap graph.Snapshot, payload []byte) Record {
	return Record{
		ID:           uuid.NewString(),
		Question:     question,
		QuestionHash: questionHash(question),
		NodeCount:    len(snap.Nodes),
		EdgeCount:    len(snap.Edges),
		Payload:      payload,
		CreatedAt:    time.Now().UTC(),
	}
}

func questionHash(question string) string {
	return cache.Hash([]byte(question))
}
