package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"note-keeper/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const notesCollection = "notes"

// noteDoc is the persisted shape of a note
type noteDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	UserID    string        `bson:"userId"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d noteDoc) toNote() *notes.Note {
	return &notes.Note{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		OwnerID:   d.UserID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// newestFirst orders a listing by creation time, ties broken by id
var newestFirst = bson.D{
	{Key: "createdAt", Value: -1},
	{Key: "_id", Value: -1},
}

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// parseNoteID turns a hex id into an ObjectID. A malformed id cannot match
// any note, so it is reported as not found.
func parseNoteID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, notes.ErrNoteNotFound
	}
	return oid, nil
}

// NewNotesRepo creates a new notes repository and ensures its listing index
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection(notesCollection)

	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName("userId_createdAt_id"),
	}

	ctx, cancel := repoCtx(parentCtx)
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("%w: %w", notes.ErrCreateNotesRepo, err)
	}

	return &NotesRepo{
		collection: collection,
		now:        time.Now,
	}, nil
}

// FindByOwner returns all notes of ownerID, newest first
func (r *NotesRepo) FindByOwner(ctx context.Context, ownerID string) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx,
		bson.M{"userId": ownerID},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	out := make([]*notes.Note, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toNote())
	}
	return out, nil
}

// FindOneByIDAndOwner returns the note only when both id and owner match
func (r *NotesRepo) FindOneByIDAndOwner(ctx context.Context, id, ownerID string) (*notes.Note, error) {
	oid, err := parseNoteID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var doc noteDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "userId": ownerID}).Decode(&doc)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return doc.toNote(), nil
}

// Insert stores n under a fresh id. Timestamps are truncated to the
// millisecond precision MongoDB keeps, so the returned note equals what a
// later read yields.
func (r *NotesRepo) Insert(ctx context.Context, n *notes.Note) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := noteDoc{
		ID:        bson.NewObjectID(),
		Title:     n.Title,
		Content:   n.Content,
		UserID:    n.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return doc.toNote(), nil
}

// DeleteByID removes a note by id. Ownership must be checked by the caller.
func (r *NotesRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseNoteID(id)
	if err != nil {
		return err
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}
