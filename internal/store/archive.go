package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDocumentNotFound = errors.New("archived document not found")

// ArchivedDocument preserves the raw source text of an imported document,
// so extraction can be re-run when the parser vocabulary improves.
type ArchivedDocument struct {
	RecordID   string    `bson:"_id" json:"record_id"`
	SourceFile string    `bson:"source_file,omitempty" json:"source_file,omitempty"`
	RawText    string    `bson:"raw_text" json:"raw_text"`
	ArchivedAt time.Time `bson:"archived_at" json:"archived_at"`
}

type ArchiveService interface {
	Archive(ctx context.Context, doc *ArchivedDocument) error
	Get(ctx context.Context, recordID string) (*ArchivedDocument, error)
}

type archiveService struct {
	collection *mongo.Collection
}

func NewArchiveService(client *mongo.Client, database string) ArchiveService {
	return &archiveService{
		collection: client.Database(database).Collection("documents"),
	}
}

func (s *archiveService) Archive(ctx context.Context, doc *ArchivedDocument) error {
	if doc.ArchivedAt.IsZero() {
		doc.ArchivedAt = time.Now()
	}

	// Upsert so re-importing after a partial failure doesn't error out.
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.RecordID}, doc, opts)
	return err
}

func (s *archiveService) Get(ctx context.Context, recordID string) (*ArchivedDocument, error) {
	var doc ArchivedDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": recordID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}
