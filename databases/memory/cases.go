package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

const (
	caseTable          = "cases"
	solveRequestTable  = "solve_requests"
	interrogationTable = "interrogations"
	intakeTable        = "intake_complaints"
	rewardTipTable     = "reward_tips"
	suspectTable       = "suspects"
	notificationTable  = "case_notifications"
	paymentTable       = "payment_requests"
	evidenceTable      = "evidence"
	boardTable         = "detective_boards"
)

type caseStore struct {
	s *Store
}

func (c *caseStore) Insert(ctx context.Context, cs *models.Case) error {
	if cs.ID.IsZero() {
		cs.ID = primitive.NewObjectID()
	}
	return c.s.insert(ctx, caseTable, cs.ID, cs, nil)
}

func (c *caseStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Case, error) {
	return get[models.Case](c.s, caseTable, id)
}

func (c *caseStore) List(_ context.Context, status models.CaseStatus, page, limit int) ([]models.Case, error) {
	cases, err := scan(c.s, caseTable, func(cs *models.Case) bool {
		return status == "" || cs.Details.Status == status
	})
	if err != nil {
		return nil, err
	}
	cases = reverse(cases)

	if limit <= 0 {
		limit = databases.DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(cases) {
		return []models.Case{}, nil
	}
	end := start + limit
	if end > len(cases) {
		end = len(cases)
	}
	return cases[start:end], nil
}

func (c *caseStore) Update(ctx context.Context, cs *models.Case) error {
	expected := cs.Version
	cs.Version++
	err := c.s.replace(ctx, caseTable, cs.ID, expected, cs, nil)
	if err != nil {
		cs.Version = expected
	}
	return err
}

func (c *caseStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := deleteWhere(ctx, c.s, caseTable, func(docID primitive.ObjectID, _ *models.Case) bool { return docID == id })
	if err != nil {
		return err
	}
	if n == 0 {
		return databases.ErrNotFound
	}
	return nil
}

func (c *caseStore) Count(_ context.Context, status models.CaseStatus) (int64, error) {
	return count(c.s, caseTable, func(cs *models.Case) bool {
		return status == "" || cs.Details.Status == status
	})
}

type solveRequestStore struct {
	s *Store
}

// pendingClash must run with the store lock held
func (r *solveRequestStore) pendingClash(sr *models.SolveRequest) func() (bool, error) {
	return func() (bool, error) {
		if sr.Details.Status != models.SolveSubmitted {
			return false, nil
		}
		others, err := scanLocked(r.s, solveRequestTable, func(o *models.SolveRequest) bool {
			return o.ID != sr.ID && o.Details.CaseID == sr.Details.CaseID && o.Details.Status == models.SolveSubmitted
		})
		return len(others) > 0, err
	}
}

func (r *solveRequestStore) Insert(ctx context.Context, sr *models.SolveRequest) error {
	if sr.ID.IsZero() {
		sr.ID = primitive.NewObjectID()
	}
	return r.s.insert(ctx, solveRequestTable, sr.ID, sr, r.pendingClash(sr))
}

func (r *solveRequestStore) FindLatestSubmitted(_ context.Context, caseID string) (*models.SolveRequest, error) {
	pending, err := scan(r.s, solveRequestTable, func(sr *models.SolveRequest) bool {
		return sr.Details.CaseID == caseID && sr.Details.Status == models.SolveSubmitted
	})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, databases.ErrNotFound
	}
	latest := pending[0]
	for _, sr := range pending[1:] {
		if sr.Details.SubmittedAt > latest.Details.SubmittedAt ||
			(sr.Details.SubmittedAt == latest.Details.SubmittedAt && laterID(sr.ID, latest.ID)) {
			latest = sr
		}
	}
	return &latest, nil
}

func (r *solveRequestStore) ExistsWithStatus(_ context.Context, caseID string, status models.SolveRequestStatus) (bool, error) {
	found, err := scan(r.s, solveRequestTable, func(sr *models.SolveRequest) bool {
		return sr.Details.CaseID == caseID && sr.Details.Status == status
	})
	return len(found) > 0, err
}

func (r *solveRequestStore) FindByCase(_ context.Context, caseID string) ([]models.SolveRequest, error) {
	requests, err := scan(r.s, solveRequestTable, func(sr *models.SolveRequest) bool {
		return sr.Details.CaseID == caseID
	})
	if err != nil {
		return nil, err
	}
	return reverse(requests), nil
}

func (r *solveRequestStore) Update(ctx context.Context, sr *models.SolveRequest) error {
	expected := sr.Version
	sr.Version++
	err := r.s.replace(ctx, solveRequestTable, sr.ID, expected, sr, r.pendingClash(sr))
	if err != nil {
		sr.Version = expected
	}
	return err
}

func (r *solveRequestStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, r.s, solveRequestTable, func(_ primitive.ObjectID, sr *models.SolveRequest) bool {
		return sr.Details.CaseID == caseID
	})
	return err
}

type interrogationStore struct {
	s *Store
}

func (i *interrogationStore) SetScore(ctx context.Context, caseID, suspectID string, field models.ScoreField, score int) (*models.Interrogation, error) {
	defer i.s.lockWrite(ctx)()

	now := primitive.NewDateTimeFromTime(time.Now())
	existing, err := scanLocked(i.s, interrogationTable, func(in *models.Interrogation) bool {
		return in.Details.CaseID == caseID && in.Details.SuspectID == suspectID
	})
	if err != nil {
		return nil, err
	}

	var in models.Interrogation
	if len(existing) > 0 {
		in = existing[0]
		in.Version++
	} else {
		in = models.Interrogation{
			ID: primitive.NewObjectID(),
			Details: models.InterrogationDetails{
				CaseID:    caseID,
				SuspectID: suspectID,
				CreatedAt: now,
			},
		}
	}
	v := score
	switch field {
	case models.DetectiveScore:
		in.Details.DetectiveScore = &v
	case models.SergeantScore:
		in.Details.SergeantScore = &v
	}
	in.Details.UpdatedAt = now

	if err := i.s.putLocked(interrogationTable, in.ID, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (i *interrogationStore) FindByCase(_ context.Context, caseID string) ([]models.Interrogation, error) {
	return scan(i.s, interrogationTable, func(in *models.Interrogation) bool {
		return in.Details.CaseID == caseID
	})
}

func (i *interrogationStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, i.s, interrogationTable, func(_ primitive.ObjectID, in *models.Interrogation) bool {
		return in.Details.CaseID == caseID
	})
	return err
}
