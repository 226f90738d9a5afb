package databases

// go generate: mockery --name CaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const caseName = "cases"

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	Insert(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error)
	List(ctx context.Context, status models.CaseStatus, page, limit int) ([]models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Count counts the cases in status. An empty status counts every case.
	Count(ctx context.Context, status models.CaseStatus) (int64, error)
}

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) CaseDatabase {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) Insert(ctx context.Context, cs *models.Case) error {
	if cs.ID.IsZero() {
		cs.ID = primitive.NewObjectID()
	}
	_, err := c.db.Collection(caseName).InsertOne(ctx, cs)
	return translate(err)
}

func (c *caseDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	cs := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, bson.M{"_id": id}).Decode(&cs)
	if err != nil {
		return nil, translate(err)
	}
	return cs, nil
}

// List returns a page of cases, newest first. An empty status matches every case.
func (c *caseDatabase) List(ctx context.Context, status models.CaseStatus, page, limit int) ([]models.Case, error) {
	filter := bson.M{}
	if status != "" {
		filter["case.status"] = status
	}
	opts := newMongoPaginate(limit, page).getPaginatedOpts().SetSort(bson.D{{Key: "_id", Value: -1}})

	var cases []models.Case
	if err := findAll(ctx, c.db.Collection(caseName), filter, &cases, opts); err != nil {
		return nil, err
	}
	return cases, nil
}

// Update stores the case if nobody else changed it since it was loaded, and
// bumps its version
func (c *caseDatabase) Update(ctx context.Context, cs *models.Case) error {
	expected := cs.Version
	cs.Version++
	err := replaceVersioned(ctx, c.db.Collection(caseName), cs.ID, expected, cs)
	if err != nil {
		cs.Version = expected
	}
	return err
}

func (c *caseDatabase) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := c.db.Collection(caseName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *caseDatabase) Count(ctx context.Context, status models.CaseStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["case.status"] = status
	}
	return c.db.Collection(caseName).CountDocuments(ctx, filter)
}
