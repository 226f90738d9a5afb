// Package workflow holds the case workflow engine: the role checks, state
// machines and stage gates of every transition. Services validate role, then
// state, then mutate and persist, so a refused transition never writes.
package workflow

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/gateway"
)

// Options carries the collaborators of the workflow services
type Options struct {
	Gateway    gateway.Gateway
	Metrics    *Metrics
	Deliverers []Deliverer
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Services is the full workflow engine
type Services struct {
	Cases         *CaseService
	Intake        *IntakeService
	Rewards       *RewardService
	Payments      *PaymentService
	Suspects      *SuspectService
	Evidence      *EvidenceService
	Boards        *BoardService
	Stats         *StatsService
	Notifications *NotificationService
}

// New wires every workflow service over stores
func New(stores *databases.Stores, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Gateway == nil {
		opts.Gateway = gateway.NewMockGateway()
	}
	b := base{stores: stores, clock: opts.Clock, metrics: opts.Metrics}
	notifications := &NotificationService{base: b, deliverers: opts.Deliverers}
	b.notifier = notifications

	return &Services{
		Cases:         &CaseService{base: b},
		Intake:        &IntakeService{base: b},
		Rewards:       &RewardService{base: b},
		Payments:      &PaymentService{base: b, gateway: opts.Gateway},
		Suspects:      &SuspectService{base: b},
		Evidence:      &EvidenceService{base: b},
		Boards:        &BoardService{base: b},
		Stats:         &StatsService{base: b},
		Notifications: notifications,
	}
}

// base is shared by every service
type base struct {
	stores   *databases.Stores
	clock    func() time.Time
	metrics  *Metrics
	notifier *NotificationService
}

func (b *base) now() primitive.DateTime {
	return primitive.NewDateTimeFromTime(b.clock())
}

func (b *base) nowPtr() *primitive.DateTime {
	t := b.now()
	return &t
}

func (b *base) record(workflow, transition string, err error) error {
	if err != nil && KindOf(err) == KindServer {
		zap.S().Errorw("workflow transition failed", "workflow", workflow, "transition", transition, "error", err)
	}
	return b.metrics.record(workflow, transition, err)
}

// parseID turns a path id into an ObjectID. A malformed id can never match a
// record, so it reads as not found.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound(what)
	}
	return oid, nil
}
