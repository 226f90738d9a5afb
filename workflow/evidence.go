package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

const evidenceWorkflow = "evidence"

// EvidenceService records the evidence collected on a case
type EvidenceService struct {
	base
}

// EvidenceInput records one item of evidence. Which fields are required
// depends on EvidenceType, which defaults to GENERIC.
type EvidenceInput struct {
	CaseID        string            `json:"case"`
	EvidenceType  string            `json:"evidence_type"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url"`
	ImageURLs     []string          `json:"image_urls"`
	MedicalResult string            `json:"medical_result"`
	VehicleModel  string            `json:"vehicle_model"`
	VehicleColor  string            `json:"vehicle_color"`
	PlateNumber   string            `json:"plate_number"`
	SerialNumber  string            `json:"serial_number"`
	IDFields      map[string]string `json:"id_fields"`
}

func (in EvidenceInput) details() (models.EvidenceDetails, error) {
	title, err := requiredText("title", in.Title)
	if err != nil {
		return models.EvidenceDetails{}, err
	}
	kind := models.EvidenceType(strings.ToUpper(strings.TrimSpace(in.EvidenceType)))
	if kind == "" {
		kind = models.EvidenceGeneric
	}
	if !kind.Valid() {
		return models.EvidenceDetails{}, validationError("evidence_type is not a known evidence type.").
			WithDetail("evidence_type", in.EvidenceType)
	}

	d := models.EvidenceDetails{
		Type:          kind,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		MedicalResult: strings.TrimSpace(in.MedicalResult),
		VehicleModel:  strings.TrimSpace(in.VehicleModel),
		VehicleColor:  strings.TrimSpace(in.VehicleColor),
		PlateNumber:   strings.TrimSpace(in.PlateNumber),
		SerialNumber:  strings.TrimSpace(in.SerialNumber),
		IDFields:      in.IDFields,
	}
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			d.ImageURLs = append(d.ImageURLs, u)
		}
	}

	switch kind {
	case models.EvidenceVehicle:
		if d.PlateNumber != "" && d.SerialNumber != "" {
			return d, validationError("Vehicle evidence cannot have both plate_number and serial_number.")
		}
		if d.PlateNumber == "" && d.SerialNumber == "" {
			return d, validationError("Vehicle evidence must have either plate_number or serial_number.")
		}
	case models.EvidenceMedical:
		if d.ImageURL == "" && len(d.ImageURLs) == 0 {
			return d, validationError("Medical evidence must include at least one image URL.")
		}
	}
	return d, nil
}

// Create records evidence on a case and tells the owner of the case's
// detective board, if there is one
func (s *EvidenceService) Create(ctx context.Context, actor *models.Actor, in EvidenceInput) (*models.Evidence, error) {
	ev, err := s.create(ctx, actor, in)
	return ev, s.record(evidenceWorkflow, "create", err)
}

func (s *EvidenceService) create(ctx context.Context, actor *models.Actor, in EvidenceInput) (*models.Evidence, error) {
	if err := requireRole(actor, caseEditors...); err != nil {
		return nil, err
	}
	d, err := in.details()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CaseID) == "" {
		return nil, validationError("case is required.").WithDetail("case", "This field is required.")
	}
	oid, err := parseID(strings.TrimSpace(in.CaseID), "Case")
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Cases.FindByID(ctx, oid); err != nil {
		return nil, fromStore(err, "Case")
	}

	d.CaseID = oid.Hex()
	d.CreatedBy = actor.ID
	d.CreatedAt = s.now()
	ev := &models.Evidence{Details: d}
	if err := s.stores.Evidence.Insert(ctx, ev); err != nil {
		return nil, fromStore(err, "Evidence")
	}

	board, err := s.stores.Boards.FindByCase(ctx, d.CaseID)
	switch {
	case err == nil:
		s.notifier.notify(ctx, d.CaseID, board.Details.CreatedBy, models.NotificationEvidenceAdded,
			fmt.Sprintf("New evidence added to case %s: %s", d.CaseID, d.Title))
	case !errors.Is(err, databases.ErrNotFound):
		zap.S().Warnw("failed to look up detective board", "case", d.CaseID, "error", err)
	}
	return ev, nil
}

// List returns evidence newest first, optionally only that of one case
func (s *EvidenceService) List(ctx context.Context, actor *models.Actor, caseID string) ([]models.Evidence, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	filter := ""
	if caseID != "" {
		oid, err := parseID(caseID, "Case")
		if err != nil {
			return []models.Evidence{}, nil
		}
		filter = oid.Hex()
	}
	evidence, err := s.stores.Evidence.List(ctx, filter)
	if err != nil {
		return nil, fromStore(err, "Evidence")
	}
	return evidence, nil
}

// Get returns one item of evidence
func (s *EvidenceService) Get(ctx context.Context, actor *models.Actor, id string) (*models.Evidence, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	oid, err := parseID(id, "Evidence")
	if err != nil {
		return nil, err
	}
	ev, err := s.stores.Evidence.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Evidence")
	}
	return ev, nil
}

// Delete removes an item of evidence
func (s *EvidenceService) Delete(ctx context.Context, actor *models.Actor, id string) error {
	return s.record(evidenceWorkflow, "delete", s.delete(ctx, actor, id))
}

func (s *EvidenceService) delete(ctx context.Context, actor *models.Actor, id string) error {
	if err := requireRole(actor, suspectEditors...); err != nil {
		return err
	}
	oid, err := parseID(id, "Evidence")
	if err != nil {
		return err
	}
	return fromStore(s.stores.Evidence.Delete(ctx, oid), "Evidence")
}
