package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/databases/memory"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

var (
	admin     = &models.Actor{ID: "admin-1", Name: "Ada Admin", Roles: []models.Role{models.RoleAdmin}}
	root      = &models.Actor{ID: "root-1", Name: "Root", Superuser: true}
	cadet     = &models.Actor{ID: "cadet-1", Name: "Cal Cadet", Roles: []models.Role{models.RoleCadet}}
	officer   = &models.Actor{ID: "officer-1", Name: "Olive Officer", Roles: []models.Role{models.RoleOfficer}}
	detective = &models.Actor{ID: "detective-1", Name: "Dana Detective", Roles: []models.Role{models.RoleDetective}}
	sergeant  = &models.Actor{ID: "sergeant-1", Name: "Sam Sergeant", Roles: []models.Role{models.RoleSergeant}}
	captain   = &models.Actor{ID: "captain-1", Name: "Cas Captain", Roles: []models.Role{models.RoleCaptain}}
	chief     = &models.Actor{ID: "chief-1", Name: "Chris Chief", Roles: []models.Role{models.RoleChief}}
	judge     = &models.Actor{ID: "judge-1", Name: "Jo Judge", Roles: []models.Role{models.RoleJudge}}
	citizen   = &models.Actor{ID: "citizen-1", Name: "Cy Citizen", Roles: []models.Role{models.RoleCitizen}}
	neighbour = &models.Actor{ID: "citizen-2", Name: "Nat Neighbour", Roles: []models.Role{models.RoleCitizen}}
)

// testClock is a settable clock shared by the services under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	*workflow.Services
	stores *databases.Stores
	clock  *testClock
}

func newHarness(t *testing.T, opts ...func(*workflow.Options)) *harness {
	t.Helper()
	return newHarnessOn(t, memory.New().Stores(), opts...)
}

func newHarnessOn(t *testing.T, stores *databases.Stores, opts ...func(*workflow.Options)) *harness {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	o := workflow.Options{Clock: clock.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &harness{Services: workflow.New(stores, o), stores: stores, clock: clock}
}

var errTransient = errors.New("TransientTransactionError")

// abortOnceTx aborts the first transaction after its callback ran and then
// runs the callback again, the way the mongo driver retries a transient error
type abortOnceTx struct {
	inner    databases.Transactor
	mu       sync.Mutex
	aborted  bool
	attempts int
}

func (tx *abortOnceTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := tx.inner.WithTransaction(ctx, func(ctx context.Context) error {
		tx.mu.Lock()
		tx.attempts++
		tx.mu.Unlock()
		if err := fn(ctx); err != nil {
			return err
		}
		tx.mu.Lock()
		defer tx.mu.Unlock()
		if !tx.aborted {
			tx.aborted = true
			return errTransient
		}
		return nil
	})
	if errors.Is(err, errTransient) {
		return tx.WithTransaction(ctx, fn)
	}
	return err
}

// newRetryHarness runs every transaction twice, the first attempt aborted
func newRetryHarness(t *testing.T) (*harness, *abortOnceTx) {
	t.Helper()
	stores := memory.New().Stores()
	tx := &abortOnceTx{inner: stores.Tx}
	stores.Tx = tx
	return newHarnessOn(t, stores), tx
}

func requireKind(t *testing.T, err error, kind workflow.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, workflow.KindOf(err), err.Error())
}

func (h *harness) openCase(t *testing.T, level int) *models.Case {
	t.Helper()
	cs, err := h.Cases.Create(context.Background(), officer, workflow.CreateCaseInput{Title: "Burglary", CrimeLevel: level})
	require.NoError(t, err)
	return cs
}

func (h *harness) complaintCase(t *testing.T) *models.Case {
	t.Helper()
	cs, err := h.Cases.CreateFromComplaint(context.Background(), citizen, workflow.FromComplaintInput{
		Title:   "Stolen bike",
		Details: "My bike was taken from the station rack.",
	})
	require.NoError(t, err)
	return cs
}

// approvedSolve opens a case and walks it to an approved solve request
func (h *harness) approvedSolve(t *testing.T, level int) *models.Case {
	t.Helper()
	ctx := context.Background()
	cs := h.openCase(t, level)
	_, err := h.Cases.SolveSubmit(ctx, detective, cs.ID.Hex(), workflow.SolveSubmitInput{SuspectIDs: []string{"s-1"}})
	require.NoError(t, err)
	_, err = h.Cases.SolveReview(ctx, sergeant, cs.ID.Hex(), workflow.ReviewInput{Decision: "approve"})
	require.NoError(t, err)
	return cs
}
