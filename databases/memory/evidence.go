package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

type evidenceStore struct {
	s *Store
}

func (e *evidenceStore) Insert(ctx context.Context, ev *models.Evidence) error {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	return e.s.insert(ctx, evidenceTable, ev.ID, ev, nil)
}

func (e *evidenceStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Evidence, error) {
	return get[models.Evidence](e.s, evidenceTable, id)
}

func (e *evidenceStore) List(_ context.Context, caseID string) ([]models.Evidence, error) {
	found, err := scan(e.s, evidenceTable, func(ev *models.Evidence) bool {
		return caseID == "" || ev.Details.CaseID == caseID
	})
	if err != nil {
		return nil, err
	}
	return reverse(found), nil
}

func (e *evidenceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := deleteWhere(ctx, e.s, evidenceTable, func(docID primitive.ObjectID, _ *models.Evidence) bool { return docID == id })
	if err != nil {
		return err
	}
	if n == 0 {
		return databases.ErrNotFound
	}
	return nil
}

func (e *evidenceStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, e.s, evidenceTable, func(_ primitive.ObjectID, ev *models.Evidence) bool {
		return ev.Details.CaseID == caseID
	})
	return err
}

func (e *evidenceStore) Count(_ context.Context) (int64, error) {
	return count[models.Evidence](e.s, evidenceTable, nil)
}

type boardStore struct {
	s *Store
}

func (b *boardStore) caseClash(board *models.DetectiveBoard) func() (bool, error) {
	return func() (bool, error) {
		others, err := scanLocked(b.s, boardTable, func(o *models.DetectiveBoard) bool {
			return o.ID != board.ID && o.Details.CaseID == board.Details.CaseID
		})
		return len(others) > 0, err
	}
}

func (b *boardStore) Insert(ctx context.Context, board *models.DetectiveBoard) error {
	if board.ID.IsZero() {
		board.ID = primitive.NewObjectID()
	}
	return b.s.insert(ctx, boardTable, board.ID, board, b.caseClash(board))
}

func (b *boardStore) FindByCase(_ context.Context, caseID string) (*models.DetectiveBoard, error) {
	found, err := scan(b.s, boardTable, func(board *models.DetectiveBoard) bool {
		return board.Details.CaseID == caseID
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, databases.ErrNotFound
	}
	return &found[0], nil
}

func (b *boardStore) Update(ctx context.Context, board *models.DetectiveBoard) error {
	expected := board.Version
	board.Version++
	err := b.s.replace(ctx, boardTable, board.ID, expected, board, nil)
	if err != nil {
		board.Version = expected
	}
	return err
}

func (b *boardStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, b.s, boardTable, func(_ primitive.ObjectID, board *models.DetectiveBoard) bool {
		return board.Details.CaseID == caseID
	})
	return err
}
