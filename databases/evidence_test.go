package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/databases/mocks"
	"github.com/linesmerrill/police-case-api/models"
)

func TestEvidenceDatabase_ListByCase(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Evidence)
		*arg = []models.Evidence{{Details: models.EvidenceDetails{CaseID: "c1", Title: "mocked-evidence"}}}
	})
	cursorHelper.On("Close", ctx).Return(nil)

	collectionHelper.
		On("Find", ctx, bson.M{"evidence.caseID": "c1"}, mock.Anything).
		Return(cursorHelper, nil)
	dbHelper.On("Collection", "evidence").Return(collectionHelper)

	evDba := databases.NewEvidenceDatabase(dbHelper)

	evidence, err := evDba.List(ctx, "c1")
	assert.NoError(t, err)
	assert.Len(t, evidence, 1)
	assert.Equal(t, "mocked-evidence", evidence[0].Details.Title)
}

func TestBoardDatabase_InsertDuplicate(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("InsertOne", ctx, mock.Anything).Return(nil, duplicateKeyError())
	dbHelper.On("Collection", "detective_boards").Return(collectionHelper)

	boardDba := databases.NewBoardDatabase(dbHelper)

	err := boardDba.Insert(ctx, &models.DetectiveBoard{Details: models.DetectiveBoardDetails{CaseID: "c1"}})
	assert.ErrorIs(t, err, databases.ErrDuplicate)
}

func TestCaseDatabase_Count(t *testing.T) {
	ctx := context.Background()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CountDocuments", ctx, bson.M{}).Return(int64(7), nil)
	collectionHelper.On("CountDocuments", ctx, bson.M{"case.status": models.CaseOpen}).Return(int64(3), nil)
	dbHelper.On("Collection", "cases").Return(collectionHelper)

	caseDba := databases.NewCaseDatabase(dbHelper)

	n, err := caseDba.Count(ctx, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
	n, err = caseDba.Count(ctx, models.CaseOpen)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
