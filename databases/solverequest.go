package databases

// go generate: mockery --name SolveRequestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/police-case-api/models"
)

const solveRequestName = "solve_requests"

// SolveRequestDatabase contains the methods to use with the solve request database
type SolveRequestDatabase interface {
	// Insert fails with ErrDuplicate when the case already has a SUBMITTED request
	Insert(ctx context.Context, sr *models.SolveRequest) error
	FindLatestSubmitted(ctx context.Context, caseID string) (*models.SolveRequest, error)
	ExistsWithStatus(ctx context.Context, caseID string, status models.SolveRequestStatus) (bool, error)
	FindByCase(ctx context.Context, caseID string) ([]models.SolveRequest, error)
	Update(ctx context.Context, sr *models.SolveRequest) error
	DeleteByCase(ctx context.Context, caseID string) error
}

type solveRequestDatabase struct {
	db DatabaseHelper
}

// NewSolveRequestDatabase initializes a new instance of solve request database with the provided db connection
func NewSolveRequestDatabase(db DatabaseHelper) SolveRequestDatabase {
	return &solveRequestDatabase{
		db: db,
	}
}

func (s *solveRequestDatabase) Insert(ctx context.Context, sr *models.SolveRequest) error {
	if sr.ID.IsZero() {
		sr.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(solveRequestName).InsertOne(ctx, sr)
	return translate(err)
}

func (s *solveRequestDatabase) FindLatestSubmitted(ctx context.Context, caseID string) (*models.SolveRequest, error) {
	sr := &models.SolveRequest{}
	filter := bson.M{"solveRequest.caseID": caseID, "solveRequest.status": models.SolveSubmitted}
	opts := options.FindOne().SetSort(bson.D{
		{Key: "solveRequest.submittedAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	err := s.db.Collection(solveRequestName).FindOne(ctx, filter, opts).Decode(&sr)
	if err != nil {
		return nil, translate(err)
	}
	return sr, nil
}

func (s *solveRequestDatabase) ExistsWithStatus(ctx context.Context, caseID string, status models.SolveRequestStatus) (bool, error) {
	count, err := s.db.Collection(solveRequestName).CountDocuments(ctx, bson.M{"solveRequest.caseID": caseID, "solveRequest.status": status})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *solveRequestDatabase) FindByCase(ctx context.Context, caseID string) ([]models.SolveRequest, error) {
	requests := []models.SolveRequest{}
	err := findAll(ctx, s.db.Collection(solveRequestName), bson.M{"solveRequest.caseID": caseID}, &requests, newestFirst())
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *solveRequestDatabase) Update(ctx context.Context, sr *models.SolveRequest) error {
	expected := sr.Version
	sr.Version++
	err := replaceVersioned(ctx, s.db.Collection(solveRequestName), sr.ID, expected, sr)
	if err != nil {
		sr.Version = expected
	}
	return err
}

func (s *solveRequestDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := s.db.Collection(solveRequestName).DeleteMany(ctx, bson.M{"solveRequest.caseID": caseID})
	return err
}
