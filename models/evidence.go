package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EvidenceType classifies a piece of evidence and decides which fields it needs
type EvidenceType string

// Evidence types
const (
	EvidenceGeneric EvidenceType = "GENERIC"
	EvidenceMedical EvidenceType = "MEDICAL"
	EvidenceVehicle EvidenceType = "VEHICLE"
	EvidenceIDDoc   EvidenceType = "ID_DOC"
)

// Valid reports whether t is a known evidence type
func (t EvidenceType) Valid() bool {
	switch t {
	case EvidenceGeneric, EvidenceMedical, EvidenceVehicle, EvidenceIDDoc:
		return true
	}
	return false
}

// Evidence holds the structure for the evidence collection in mongo
type Evidence struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details EvidenceDetails    `json:"evidence" bson:"evidence"`
	Version int32              `json:"__v" bson:"__v"`
}

// EvidenceDetails holds an item of evidence recorded on a case. Only the
// fields of its type are filled.
type EvidenceDetails struct {
	CaseID      string       `json:"caseID" bson:"caseID"`
	Type        EvidenceType `json:"evidenceType" bson:"evidenceType"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description" bson:"description"`

	// medical
	ImageURL      string   `json:"imageURL,omitempty" bson:"imageURL,omitempty"`
	ImageURLs     []string `json:"imageURLs,omitempty" bson:"imageURLs,omitempty"`
	MedicalResult string   `json:"medicalResult,omitempty" bson:"medicalResult,omitempty"`

	// vehicle
	VehicleModel string `json:"vehicleModel,omitempty" bson:"vehicleModel,omitempty"`
	VehicleColor string `json:"vehicleColor,omitempty" bson:"vehicleColor,omitempty"`
	PlateNumber  string `json:"plateNumber,omitempty" bson:"plateNumber,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty" bson:"serialNumber,omitempty"`

	// identity document
	IDFields map[string]string `json:"idFields,omitempty" bson:"idFields,omitempty"`

	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
