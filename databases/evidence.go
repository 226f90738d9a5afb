package databases

// go generate: mockery --name EvidenceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const evidenceName = "evidence"

// EvidenceDatabase contains the methods to use with the evidence database
type EvidenceDatabase interface {
	Insert(ctx context.Context, e *models.Evidence) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Evidence, error)
	// List returns evidence newest first. An empty caseID matches every case.
	List(ctx context.Context, caseID string) ([]models.Evidence, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByCase(ctx context.Context, caseID string) error
	Count(ctx context.Context) (int64, error)
}

type evidenceDatabase struct {
	db DatabaseHelper
}

// NewEvidenceDatabase initializes a new instance of evidence database with the provided db connection
func NewEvidenceDatabase(db DatabaseHelper) EvidenceDatabase {
	return &evidenceDatabase{
		db: db,
	}
}

func (e *evidenceDatabase) Insert(ctx context.Context, ev *models.Evidence) error {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	_, err := e.db.Collection(evidenceName).InsertOne(ctx, ev)
	return translate(err)
}

func (e *evidenceDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Evidence, error) {
	ev := &models.Evidence{}
	err := e.db.Collection(evidenceName).FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err != nil {
		return nil, translate(err)
	}
	return ev, nil
}

func (e *evidenceDatabase) List(ctx context.Context, caseID string) ([]models.Evidence, error) {
	filter := bson.M{}
	if caseID != "" {
		filter["evidence.caseID"] = caseID
	}
	evidence := []models.Evidence{}
	if err := findAll(ctx, e.db.Collection(evidenceName), filter, &evidence, newestFirst()); err != nil {
		return nil, err
	}
	return evidence, nil
}

func (e *evidenceDatabase) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := e.db.Collection(evidenceName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (e *evidenceDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := e.db.Collection(evidenceName).DeleteMany(ctx, bson.M{"evidence.caseID": caseID})
	return err
}

func (e *evidenceDatabase) Count(ctx context.Context) (int64, error) {
	return e.db.Collection(evidenceName).CountDocuments(ctx, bson.M{})
}
