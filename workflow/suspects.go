package workflow

import (
	"context"
	"sort"

	"github.com/linesmerrill/police-case-api/models"
)

const suspectWorkflow = "suspect"

// SuspectService keeps the persons of interest on each case and the most
// wanted list derived from them
type SuspectService struct {
	base
}

// SuspectInput adds a suspect to a case. Omitted ranks default to 1 and a new
// suspect is under chase unless stated otherwise.
type SuspectInput struct {
	FullName   string `json:"full_name"`
	MaxL       *int   `json:"max_l"`
	MaxD       *int   `json:"max_d"`
	UnderChase *bool  `json:"under_chase"`
}

// RankInput changes a suspect's rank or chase state
type RankInput struct {
	MaxL       *int  `json:"max_l"`
	MaxD       *int  `json:"max_d"`
	UnderChase *bool `json:"under_chase"`
}

func rankValue(field string, v *int) (int, error) {
	if v == nil {
		return 1, nil
	}
	if *v < 0 {
		return 0, validationError("%s must not be negative.", field).WithDetail(field, *v)
	}
	return *v, nil
}

// AddSuspect links a new suspect to a case
func (s *SuspectService) AddSuspect(ctx context.Context, actor *models.Actor, caseID string, in SuspectInput) (*models.RankedSuspect, error) {
	su, err := s.addSuspect(ctx, actor, caseID, in)
	return su, s.record(suspectWorkflow, "add", err)
}

func (s *SuspectService) addSuspect(ctx context.Context, actor *models.Actor, caseID string, in SuspectInput) (*models.RankedSuspect, error) {
	if err := requireRole(actor, suspectEditors...); err != nil {
		return nil, err
	}
	name, err := requiredText("full_name", in.FullName)
	if err != nil {
		return nil, err
	}
	maxL, err := rankValue("max_l", in.MaxL)
	if err != nil {
		return nil, err
	}
	maxD, err := rankValue("max_d", in.MaxD)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(caseID, "Case")
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Cases.FindByID(ctx, oid); err != nil {
		return nil, fromStore(err, "Case")
	}

	now := s.now()
	su := &models.Suspect{Details: models.SuspectDetails{
		CaseID:         oid.Hex(),
		FullName:       name,
		ChaseStartedAt: now,
		MaxL:           maxL,
		MaxD:           maxD,
		UnderChase:     in.UnderChase == nil || *in.UnderChase,
		CreatedAt:      now,
	}}
	if err := s.stores.Suspects.Insert(ctx, su); err != nil {
		return nil, fromStore(err, "Suspect")
	}
	ranked := models.Ranked(*su)
	return &ranked, nil
}

// UpdateSuspectRank changes the rank inputs or chase state of a suspect
func (s *SuspectService) UpdateSuspectRank(ctx context.Context, actor *models.Actor, id string, in RankInput) (*models.RankedSuspect, error) {
	su, err := s.updateSuspectRank(ctx, actor, id, in)
	return su, s.record(suspectWorkflow, "update_rank", err)
}

func (s *SuspectService) updateSuspectRank(ctx context.Context, actor *models.Actor, id string, in RankInput) (*models.RankedSuspect, error) {
	if err := requireRole(actor, suspectEditors...); err != nil {
		return nil, err
	}
	if in.MaxL == nil && in.MaxD == nil && in.UnderChase == nil {
		return nil, validationError("Nothing to update.")
	}
	oid, err := parseID(id, "Suspect")
	if err != nil {
		return nil, err
	}
	su, err := s.stores.Suspects.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Suspect")
	}
	if in.MaxL != nil {
		if su.Details.MaxL, err = rankValue("max_l", in.MaxL); err != nil {
			return nil, err
		}
	}
	if in.MaxD != nil {
		if su.Details.MaxD, err = rankValue("max_d", in.MaxD); err != nil {
			return nil, err
		}
	}
	if in.UnderChase != nil {
		// a renewed chase starts the most wanted clock again
		if *in.UnderChase && !su.Details.UnderChase {
			su.Details.ChaseStartedAt = s.now()
		}
		su.Details.UnderChase = *in.UnderChase
	}
	if err := s.stores.Suspects.Update(ctx, su); err != nil {
		return nil, fromStore(err, "Suspect")
	}
	ranked := models.Ranked(*su)
	return &ranked, nil
}

// CaseSuspects lists a case's suspects, newest first
func (s *SuspectService) CaseSuspects(ctx context.Context, actor *models.Actor, caseID string) ([]models.RankedSuspect, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	oid, err := parseID(caseID, "Case")
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Cases.FindByID(ctx, oid); err != nil {
		return nil, fromStore(err, "Case")
	}
	suspects, err := s.stores.Suspects.FindByCase(ctx, oid.Hex())
	if err != nil {
		return nil, fromStore(err, "Suspect")
	}
	sort.SliceStable(suspects, func(i, j int) bool {
		return suspects[i].Details.CreatedAt > suspects[j].Details.CreatedAt
	})
	return rankAll(suspects), nil
}

// MostWanted lists suspects chased for at least MostWantedAfter, highest rank first
func (s *SuspectService) MostWanted(ctx context.Context, actor *models.Actor) ([]models.RankedSuspect, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	now := s.clock()
	suspects, err := s.stores.Suspects.FindUnderChase(ctx, now.Add(-models.MostWantedAfter))
	if err != nil {
		return nil, fromStore(err, "Suspect")
	}
	wanted := suspects[:0]
	for _, su := range suspects {
		if su.IsMostWanted(now) {
			wanted = append(wanted, su)
		}
	}
	sort.SliceStable(wanted, func(i, j int) bool {
		ri, rj := wanted[i].RankScore(), wanted[j].RankScore()
		if ri != rj {
			return ri > rj
		}
		return wanted[i].Details.CreatedAt > wanted[j].Details.CreatedAt
	})
	return rankAll(wanted), nil
}

func rankAll(suspects []models.Suspect) []models.RankedSuspect {
	out := make([]models.RankedSuspect, 0, len(suspects))
	for _, su := range suspects {
		out = append(out, models.Ranked(su))
	}
	return out
}
