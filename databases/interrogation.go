package databases

// go generate: mockery --name InterrogationDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/police-case-api/models"
)

const interrogationName = "interrogations"

// InterrogationDatabase contains the methods to use with the interrogation database
type InterrogationDatabase interface {
	// SetScore writes one score field for (caseID, suspectID), creating the
	// interrogation if needed, and leaves the other score untouched
	SetScore(ctx context.Context, caseID, suspectID string, field models.ScoreField, score int) (*models.Interrogation, error)
	FindByCase(ctx context.Context, caseID string) ([]models.Interrogation, error)
	DeleteByCase(ctx context.Context, caseID string) error
}

type interrogationDatabase struct {
	db DatabaseHelper
}

// NewInterrogationDatabase initializes a new instance of interrogation database with the provided db connection
func NewInterrogationDatabase(db DatabaseHelper) InterrogationDatabase {
	return &interrogationDatabase{
		db: db,
	}
}

func (i *interrogationDatabase) SetScore(ctx context.Context, caseID, suspectID string, field models.ScoreField, score int) (*models.Interrogation, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	filter := bson.M{"interrogation.caseID": caseID, "interrogation.suspectID": suspectID}
	update := bson.M{
		"$set": bson.M{
			"interrogation." + string(field): score,
			"interrogation.updatedAt":        now,
		},
		"$setOnInsert": bson.M{
			"interrogation.createdAt": now,
			"__v":                     int32(0),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var err error
	// two first writes for the same pair can race on the unique index; the loser retries as an update
	for attempt := 0; attempt < 2; attempt++ {
		in := &models.Interrogation{}
		err = translate(i.db.Collection(interrogationName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&in))
		if err == nil {
			return in, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
	}
	return nil, err
}

func (i *interrogationDatabase) FindByCase(ctx context.Context, caseID string) ([]models.Interrogation, error) {
	interrogations := []models.Interrogation{}
	err := findAll(ctx, i.db.Collection(interrogationName), bson.M{"interrogation.caseID": caseID}, &interrogations)
	if err != nil {
		return nil, err
	}
	return interrogations, nil
}

func (i *interrogationDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := i.db.Collection(interrogationName).DeleteMany(ctx, bson.M{"interrogation.caseID": caseID})
	return err
}
