package memory

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

type intakeStore struct {
	s *Store
}

func (i *intakeStore) Insert(ctx context.Context, ic *models.IntakeComplaint) error {
	if ic.ID.IsZero() {
		ic.ID = primitive.NewObjectID()
	}
	return i.s.insert(ctx, intakeTable, ic.ID, ic, nil)
}

func (i *intakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.IntakeComplaint, error) {
	return get[models.IntakeComplaint](i.s, intakeTable, id)
}

func (i *intakeStore) Update(ctx context.Context, ic *models.IntakeComplaint) error {
	expected := ic.Version
	ic.Version++
	err := i.s.replace(ctx, intakeTable, ic.ID, expected, ic, nil)
	if err != nil {
		ic.Version = expected
	}
	return err
}

func (i *intakeStore) FindByStatus(_ context.Context, statuses ...models.IntakeStatus) ([]models.IntakeComplaint, error) {
	complaints, err := scan(i.s, intakeTable, func(ic *models.IntakeComplaint) bool {
		for _, st := range statuses {
			if ic.Details.Status == st {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return reverse(complaints), nil
}

func (i *intakeStore) FindByCreator(_ context.Context, userID string) ([]models.IntakeComplaint, error) {
	complaints, err := scan(i.s, intakeTable, func(ic *models.IntakeComplaint) bool {
		return ic.Details.CreatedBy == userID
	})
	if err != nil {
		return nil, err
	}
	return reverse(complaints), nil
}

type rewardTipStore struct {
	s *Store
}

func (r *rewardTipStore) codeClash(tip *models.RewardTip) func() (bool, error) {
	return func() (bool, error) {
		if tip.Details.UniqueCode == "" {
			return false, nil
		}
		others, err := scanLocked(r.s, rewardTipTable, func(o *models.RewardTip) bool {
			return o.ID != tip.ID && o.Details.UniqueCode == tip.Details.UniqueCode
		})
		return len(others) > 0, err
	}
}

func (r *rewardTipStore) Insert(ctx context.Context, tip *models.RewardTip) error {
	if tip.ID.IsZero() {
		tip.ID = primitive.NewObjectID()
	}
	return r.s.insert(ctx, rewardTipTable, tip.ID, tip, r.codeClash(tip))
}

func (r *rewardTipStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.RewardTip, error) {
	return get[models.RewardTip](r.s, rewardTipTable, id)
}

func (r *rewardTipStore) Update(ctx context.Context, tip *models.RewardTip) error {
	expected := tip.Version
	tip.Version++
	err := r.s.replace(ctx, rewardTipTable, tip.ID, expected, tip, r.codeClash(tip))
	if err != nil {
		tip.Version = expected
	}
	return err
}

func (r *rewardTipStore) CodeExists(_ context.Context, code string) (bool, error) {
	found, err := scan(r.s, rewardTipTable, func(t *models.RewardTip) bool {
		return t.Details.UniqueCode == code
	})
	return len(found) > 0, err
}

func (r *rewardTipStore) FindApproved(_ context.Context, nationalID, code string) (*models.RewardTip, error) {
	found, err := scan(r.s, rewardTipTable, func(t *models.RewardTip) bool {
		return t.Details.CitizenNationalID == nationalID &&
			t.Details.UniqueCode == code &&
			t.Details.Status == models.TipDetectiveApproved
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, databases.ErrNotFound
	}
	return &found[0], nil
}

func (r *rewardTipStore) Count(_ context.Context, status models.RewardTipStatus) (int64, error) {
	return count(r.s, rewardTipTable, func(t *models.RewardTip) bool {
		return status == "" || t.Details.Status == status
	})
}

type suspectStore struct {
	s *Store
}

func (su *suspectStore) Insert(ctx context.Context, s *models.Suspect) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	return su.s.insert(ctx, suspectTable, s.ID, s, nil)
}

func (su *suspectStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Suspect, error) {
	return get[models.Suspect](su.s, suspectTable, id)
}

func (su *suspectStore) Update(ctx context.Context, s *models.Suspect) error {
	expected := s.Version
	s.Version++
	err := su.s.replace(ctx, suspectTable, s.ID, expected, s, nil)
	if err != nil {
		s.Version = expected
	}
	return err
}

func (su *suspectStore) FindByCase(_ context.Context, caseID string) ([]models.Suspect, error) {
	return scan(su.s, suspectTable, func(s *models.Suspect) bool {
		return s.Details.CaseID == caseID
	})
}

func (su *suspectStore) FindLatestByName(_ context.Context, fullName string) (*models.Suspect, error) {
	found, err := scan(su.s, suspectTable, func(s *models.Suspect) bool {
		return strings.EqualFold(s.Details.FullName, fullName)
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, databases.ErrNotFound
	}
	latest := found[0]
	for _, s := range found[1:] {
		if s.Details.CreatedAt > latest.Details.CreatedAt ||
			(s.Details.CreatedAt == latest.Details.CreatedAt && laterID(s.ID, latest.ID)) {
			latest = s
		}
	}
	return &latest, nil
}

func (su *suspectStore) FindUnderChase(_ context.Context, startedBefore time.Time) ([]models.Suspect, error) {
	cutoff := primitive.NewDateTimeFromTime(startedBefore)
	return scan(su.s, suspectTable, func(s *models.Suspect) bool {
		return s.Details.UnderChase && s.Details.ChaseStartedAt <= cutoff
	})
}

func (su *suspectStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, su.s, suspectTable, func(_ primitive.ObjectID, s *models.Suspect) bool {
		return s.Details.CaseID == caseID
	})
	return err
}

func (su *suspectStore) Count(_ context.Context) (int64, error) {
	return count[models.Suspect](su.s, suspectTable, nil)
}

type notificationStore struct {
	s *Store
}

func (n *notificationStore) Insert(ctx context.Context, cn *models.CaseNotification) error {
	if cn.ID.IsZero() {
		cn.ID = primitive.NewObjectID()
	}
	return n.s.insert(ctx, notificationTable, cn.ID, cn, nil)
}

func (n *notificationStore) FindByRecipient(_ context.Context, recipientID string) ([]models.CaseNotification, error) {
	found, err := scan(n.s, notificationTable, func(cn *models.CaseNotification) bool {
		return cn.Details.RecipientID == recipientID
	})
	if err != nil {
		return nil, err
	}
	return reverse(found), nil
}

func (n *notificationStore) MarkRead(ctx context.Context, id primitive.ObjectID, recipientID string, at time.Time) (*models.CaseNotification, error) {
	defer n.s.lockWrite(ctx)()

	raw, ok := n.s.table(notificationTable)[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	cn, err := decode[models.CaseNotification](raw)
	if err != nil {
		return nil, err
	}
	if cn.Details.RecipientID != recipientID {
		return nil, databases.ErrNotFound
	}
	if cn.Details.ReadAt == nil {
		readAt := primitive.NewDateTimeFromTime(at)
		cn.Details.ReadAt = &readAt
		cn.Version++
		if err := n.s.putLocked(notificationTable, cn.ID, cn); err != nil {
			return nil, err
		}
	}
	return cn, nil
}

func (n *notificationStore) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := deleteWhere(ctx, n.s, notificationTable, func(_ primitive.ObjectID, cn *models.CaseNotification) bool {
		return cn.Details.CaseID == caseID
	})
	return err
}

type paymentStore struct {
	s *Store
}

func (p *paymentStore) publicIDClash(pr *models.PaymentRequest) func() (bool, error) {
	return func() (bool, error) {
		others, err := scanLocked(p.s, paymentTable, func(o *models.PaymentRequest) bool {
			return o.ID != pr.ID && o.Details.PublicID == pr.Details.PublicID
		})
		return len(others) > 0, err
	}
}

func (p *paymentStore) Insert(ctx context.Context, pr *models.PaymentRequest) error {
	if pr.ID.IsZero() {
		pr.ID = primitive.NewObjectID()
	}
	return p.s.insert(ctx, paymentTable, pr.ID, pr, p.publicIDClash(pr))
}

func (p *paymentStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.PaymentRequest, error) {
	return get[models.PaymentRequest](p.s, paymentTable, id)
}

func (p *paymentStore) FindByPublicID(_ context.Context, publicID string) (*models.PaymentRequest, error) {
	found, err := scan(p.s, paymentTable, func(pr *models.PaymentRequest) bool {
		return pr.Details.PublicID == publicID
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, databases.ErrNotFound
	}
	return &found[0], nil
}

func (p *paymentStore) Update(ctx context.Context, pr *models.PaymentRequest) error {
	expected := pr.Version
	pr.Version++
	err := p.s.replace(ctx, paymentTable, pr.ID, expected, pr, nil)
	if err != nil {
		pr.Version = expected
	}
	return err
}

func (p *paymentStore) FindStaleInitiated(_ context.Context, initiatedBefore time.Time) ([]models.PaymentRequest, error) {
	cutoff := primitive.NewDateTimeFromTime(initiatedBefore)
	return scan(p.s, paymentTable, func(pr *models.PaymentRequest) bool {
		return pr.Details.Status == models.PaymentInitiated &&
			pr.Details.InitiatedAt != nil && *pr.Details.InitiatedAt < cutoff
	})
}
