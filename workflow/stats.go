package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/police-case-api/models"
)

var (
	caseStatuses = []models.CaseStatus{
		models.CaseDraft, models.CaseUnderReview, models.CaseOpen, models.CaseClosed, models.CaseInvalidated,
	}
	tipStatuses = []models.RewardTipStatus{
		models.TipSubmitted, models.TipOfficerRejected, models.TipOfficerApproved, models.TipDetectiveApproved,
	}
)

// StatsService summarises the case load for the dashboard
type StatsService struct {
	base
}

// Stats counts cases, evidence, suspects and tips. Any signed in actor may
// read it. The per status maps only list statuses that occur.
func (s *StatsService) Stats(ctx context.Context, actor *models.Actor) (*models.Stats, error) {
	if actor == nil {
		return nil, forbidden()
	}

	caseCounts := make([]int64, len(caseStatuses))
	tipCounts := make([]int64, len(tipStatuses))
	stats := &models.Stats{}
	now := s.clock()

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range caseStatuses {
		g.Go(func() (err error) {
			caseCounts[i], err = s.stores.Cases.Count(gctx, st)
			return err
		})
	}
	for i, st := range tipStatuses {
		g.Go(func() (err error) {
			tipCounts[i], err = s.stores.RewardTips.Count(gctx, st)
			return err
		})
	}
	g.Go(func() (err error) {
		stats.CasesTotal, err = s.stores.Cases.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.TipsTotal, err = s.stores.RewardTips.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.EvidenceTotal, err = s.stores.Evidence.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.SuspectsTotal, err = s.stores.Suspects.Count(gctx)
		return err
	})
	g.Go(func() error {
		chased, err := s.stores.Suspects.FindUnderChase(gctx, now.Add(-models.MostWantedAfter))
		for _, su := range chased {
			if su.IsMostWanted(now) {
				stats.MostWantedTotal++
			}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fromStore(err, "Stats")
	}

	stats.CasesByStatus = map[models.CaseStatus]int64{}
	for i, st := range caseStatuses {
		if caseCounts[i] > 0 {
			stats.CasesByStatus[st] = caseCounts[i]
		}
	}
	stats.TipsByStatus = map[models.RewardTipStatus]int64{}
	for i, st := range tipStatuses {
		if tipCounts[i] > 0 {
			stats.TipsByStatus[st] = tipCounts[i]
		}
	}
	stats.CasesOpen = stats.CasesByStatus[models.CaseOpen]
	stats.CasesClosed = stats.CasesByStatus[models.CaseClosed]
	stats.TipsPending = stats.TipsByStatus[models.TipSubmitted]
	return stats, nil
}
