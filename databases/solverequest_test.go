package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/databases/mocks"
	"github.com/linesmerrill/police-case-api/models"
)

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
}

func TestSolveRequestDatabase_InsertDuplicate(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("InsertOne", ctx, mock.Anything).Return(nil, duplicateKeyError())
	dbHelper.On("Collection", "solve_requests").Return(collectionHelper)

	srDba := databases.NewSolveRequestDatabase(dbHelper)

	sr := &models.SolveRequest{Details: models.SolveRequestDetails{CaseID: "c1", Status: models.SolveSubmitted}}
	err := srDba.Insert(ctx, sr)

	assert.ErrorIs(t, err, databases.ErrDuplicate)
	assert.False(t, sr.ID.IsZero())
}

func TestSolveRequestDatabase_FindByCase(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.SolveRequest)
		*arg = []models.SolveRequest{{Details: models.SolveRequestDetails{CaseID: "c1", Note: "mocked-request"}}}
	})
	cursorHelper.On("Close", ctx).Return(nil)

	collectionHelper.
		On("Find", ctx, bson.M{"solveRequest.caseID": "c1"}, mock.Anything).
		Return(cursorHelper, nil)
	dbHelper.On("Collection", "solve_requests").Return(collectionHelper)

	srDba := databases.NewSolveRequestDatabase(dbHelper)

	requests, err := srDba.FindByCase(ctx, "c1")
	assert.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, "mocked-request", requests[0].Details.Note)
	cursorHelper.AssertCalled(t, "Close", ctx)
}

func TestSolveRequestDatabase_ExistsWithStatus(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.
		On("CountDocuments", ctx, bson.M{"solveRequest.caseID": "c1", "solveRequest.status": models.SolveApproved}).
		Return(int64(2), nil)
	collectionHelper.
		On("CountDocuments", ctx, bson.M{"solveRequest.caseID": "c2", "solveRequest.status": models.SolveApproved}).
		Return(int64(0), nil)
	dbHelper.On("Collection", "solve_requests").Return(collectionHelper)

	srDba := databases.NewSolveRequestDatabase(dbHelper)

	ok, err := srDba.ExistsWithStatus(ctx, "c1", models.SolveApproved)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = srDba.ExistsWithStatus(ctx, "c2", models.SolveApproved)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestInterrogationDatabase_SetScoreRetriesLostUpsert(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srDuplicate := &mocks.SingleResultHelper{}
	srCorrect := &mocks.SingleResultHelper{}

	srDuplicate.On("Decode", mock.Anything).Return(duplicateKeyError())
	srCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Interrogation)
		score := 8
		(*arg).Details.CaseID = "c1"
		(*arg).Details.SergeantScore = &score
	})

	filter := bson.M{"interrogation.caseID": "c1", "interrogation.suspectID": "s1"}
	collectionHelper.On("FindOneAndUpdate", ctx, filter, mock.Anything, mock.Anything).Return(srDuplicate).Once()
	collectionHelper.On("FindOneAndUpdate", ctx, filter, mock.Anything, mock.Anything).Return(srCorrect).Once()
	dbHelper.On("Collection", "interrogations").Return(collectionHelper)

	inDba := databases.NewInterrogationDatabase(dbHelper)

	in, err := inDba.SetScore(ctx, "c1", "s1", models.SergeantScore, 8)
	assert.NoError(t, err)
	assert.Equal(t, 8, *in.Details.SergeantScore)
	collectionHelper.AssertNumberOfCalls(t, "FindOneAndUpdate", 2)
}

func TestEnsureIndexes(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CreateIndexes", ctx, mock.Anything).Return(nil)
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)

	assert.NoError(t, databases.EnsureIndexes(ctx, dbHelper))
	dbHelper.AssertCalled(t, "Collection", "solve_requests")
	dbHelper.AssertCalled(t, "Collection", "payment_requests")
	collectionHelper.AssertNumberOfCalls(t, "CreateIndexes", 10)
	dbHelper.AssertCalled(t, "Collection", "detective_boards")
}
