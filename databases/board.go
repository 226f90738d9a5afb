package databases

// go generate: mockery --name BoardDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const boardName = "detective_boards"

// BoardDatabase contains the methods to use with the detective board database
type BoardDatabase interface {
	// Insert fails with ErrDuplicate if the case already has a board
	Insert(ctx context.Context, b *models.DetectiveBoard) error
	FindByCase(ctx context.Context, caseID string) (*models.DetectiveBoard, error)
	Update(ctx context.Context, b *models.DetectiveBoard) error
	DeleteByCase(ctx context.Context, caseID string) error
}

type boardDatabase struct {
	db DatabaseHelper
}

// NewBoardDatabase initializes a new instance of detective board database with the provided db connection
func NewBoardDatabase(db DatabaseHelper) BoardDatabase {
	return &boardDatabase{
		db: db,
	}
}

func (b *boardDatabase) Insert(ctx context.Context, board *models.DetectiveBoard) error {
	if board.ID.IsZero() {
		board.ID = primitive.NewObjectID()
	}
	_, err := b.db.Collection(boardName).InsertOne(ctx, board)
	return translate(err)
}

func (b *boardDatabase) FindByCase(ctx context.Context, caseID string) (*models.DetectiveBoard, error) {
	board := &models.DetectiveBoard{}
	err := b.db.Collection(boardName).FindOne(ctx, bson.M{"board.caseID": caseID}).Decode(&board)
	if err != nil {
		return nil, translate(err)
	}
	return board, nil
}

func (b *boardDatabase) Update(ctx context.Context, board *models.DetectiveBoard) error {
	expected := board.Version
	board.Version++
	err := replaceVersioned(ctx, b.db.Collection(boardName), board.ID, expected, board)
	if err != nil {
		board.Version = expected
	}
	return err
}

func (b *boardDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := b.db.Collection(boardName).DeleteMany(ctx, bson.M{"board.caseID": caseID})
	return err
}
