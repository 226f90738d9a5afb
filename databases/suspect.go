package databases

// go generate: mockery --name SuspectDatabase

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/police-case-api/models"
)

const suspectName = "suspects"

// SuspectDatabase contains the methods to use with the suspect database
type SuspectDatabase interface {
	Insert(ctx context.Context, s *models.Suspect) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Suspect, error)
	Update(ctx context.Context, s *models.Suspect) error
	FindByCase(ctx context.Context, caseID string) ([]models.Suspect, error)
	// FindLatestByName matches the full name case-insensitively and returns the
	// most recently created suspect
	FindLatestByName(ctx context.Context, fullName string) (*models.Suspect, error)
	FindUnderChase(ctx context.Context, startedBefore time.Time) ([]models.Suspect, error)
	DeleteByCase(ctx context.Context, caseID string) error
	Count(ctx context.Context) (int64, error)
}

type suspectDatabase struct {
	db DatabaseHelper
}

// NewSuspectDatabase initializes a new instance of suspect database with the provided db connection
func NewSuspectDatabase(db DatabaseHelper) SuspectDatabase {
	return &suspectDatabase{
		db: db,
	}
}

func (s *suspectDatabase) Insert(ctx context.Context, su *models.Suspect) error {
	if su.ID.IsZero() {
		su.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(suspectName).InsertOne(ctx, su)
	return translate(err)
}

func (s *suspectDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Suspect, error) {
	su := &models.Suspect{}
	err := s.db.Collection(suspectName).FindOne(ctx, bson.M{"_id": id}).Decode(&su)
	if err != nil {
		return nil, translate(err)
	}
	return su, nil
}

func (s *suspectDatabase) Update(ctx context.Context, su *models.Suspect) error {
	expected := su.Version
	su.Version++
	err := replaceVersioned(ctx, s.db.Collection(suspectName), su.ID, expected, su)
	if err != nil {
		su.Version = expected
	}
	return err
}

func (s *suspectDatabase) FindByCase(ctx context.Context, caseID string) ([]models.Suspect, error) {
	suspects := []models.Suspect{}
	if err := findAll(ctx, s.db.Collection(suspectName), bson.M{"suspect.caseID": caseID}, &suspects); err != nil {
		return nil, err
	}
	return suspects, nil
}

func (s *suspectDatabase) FindLatestByName(ctx context.Context, fullName string) (*models.Suspect, error) {
	su := &models.Suspect{}
	filter := bson.M{"suspect.fullName": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(fullName) + "$", Options: "i"}}
	opts := options.FindOne().SetSort(bson.D{
		{Key: "suspect.createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	err := s.db.Collection(suspectName).FindOne(ctx, filter, opts).Decode(&su)
	if err != nil {
		return nil, translate(err)
	}
	return su, nil
}

func (s *suspectDatabase) FindUnderChase(ctx context.Context, startedBefore time.Time) ([]models.Suspect, error) {
	suspects := []models.Suspect{}
	filter := bson.M{
		"suspect.underChase":     true,
		"suspect.chaseStartedAt": bson.M{"$lte": primitive.NewDateTimeFromTime(startedBefore)},
	}
	if err := findAll(ctx, s.db.Collection(suspectName), filter, &suspects); err != nil {
		return nil, err
	}
	return suspects, nil
}

func (s *suspectDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := s.db.Collection(suspectName).DeleteMany(ctx, bson.M{"suspect.caseID": caseID})
	return err
}

func (s *suspectDatabase) Count(ctx context.Context) (int64, error) {
	return s.db.Collection(suspectName).CountDocuments(ctx, bson.M{})
}
