package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepo implements Repository on a MongoDB collection. Notes are keyed by
// the driver-generated ObjectID in "_id".
type MongoRepo struct {
	col *mongo.Collection
}

// noteDoc is the stored shape: the note fields plus the raw _id.
type noteDoc struct {
	ID        interface{} `bson:"_id"`
	note.Note `bson:",inline"`
}

func (d *noteDoc) toNote() note.Note {
	n := d.Note
	n.ID = idString(d.ID)
	n.Normalize()
	return n
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the indexes backing the list query (ordering and tag lookup).
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_pinned", Value: -1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := m.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create note indexes: %w", err)
	}
	return nil
}

func (m *MongoRepo) Create(ctx context.Context, n *note.Note) (string, error) {
	res, err := m.col.InsertOne(ctx, n)
	if err != nil {
		return "", err
	}
	id := idString(res.InsertedID)
	n.ID = id
	return id, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*note.Note, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var d noteDoc
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n := d.toNote()
	return &n, nil
}

// List returns every note matching f, pinned first then oldest first.
func (m *MongoRepo) List(ctx context.Context, f note.Filter) ([]note.Note, error) {
	cur, err := m.col.Find(ctx, buildFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cur.Close(ctx)
	out := []note.Note{}
	for cur.Next(ctx) {
		var d noteDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode note: %w", err)
		}
		out = append(out, d.toNote())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	note.Sort(out)
	return out, nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, fields note.Patch) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// buildFilter translates f into a query document. A missing is_pinned field
// counts as false, so pinned=false matches with $ne: true.
func buildFilter(f note.Filter) bson.M {
	filter := bson.M{}
	if f.Tag != "" {
		filter["tags"] = bson.M{"$in": bson.A{f.Tag}}
	}
	if f.Pinned != nil {
		if *f.Pinned {
			filter["is_pinned"] = true
		} else {
			filter["is_pinned"] = bson.M{"$ne": true}
		}
	}
	if f.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"content": rx},
		}
	}
	return filter
}

var _ Repository = (*MongoRepo)(nil)
