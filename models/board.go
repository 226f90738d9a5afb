package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// BoardItemType classifies a pin on a detective board
type BoardItemType string

// Board item types
const (
	BoardNote       BoardItemType = "NOTE"
	BoardEvidence   BoardItemType = "EVIDENCE"
	BoardSuspect    BoardItemType = "SUSPECT"
	BoardComplaint  BoardItemType = "COMPLAINT"
	BoardCrimeScene BoardItemType = "CRIME_SCENE"
	BoardCustom     BoardItemType = "CUSTOM"
)

// Valid reports whether t is a known board item type
func (t BoardItemType) Valid() bool {
	switch t {
	case BoardNote, BoardEvidence, BoardSuspect, BoardComplaint, BoardCrimeScene, BoardCustom:
		return true
	}
	return false
}

// DetectiveBoard holds the structure for the detective_boards collection in
// mongo. Every case has at most one board, and its items and links live in
// the board document.
type DetectiveBoard struct {
	ID      primitive.ObjectID    `json:"_id" bson:"_id"`
	Details DetectiveBoardDetails `json:"board" bson:"board"`
	Version int32                 `json:"__v" bson:"__v"`
}

// DetectiveBoardDetails holds the pins and strings of a case's board
type DetectiveBoardDetails struct {
	CaseID    string             `json:"caseID" bson:"caseID"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	Items     []BoardItem        `json:"items" bson:"items"`
	Links     []BoardLink        `json:"links" bson:"links"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// BoardItem is a pin on the board. RefModel and RefID point at the record the
// pin stands for, if any.
type BoardItem struct {
	ID        primitive.ObjectID     `json:"_id" bson:"_id"`
	Type      BoardItemType          `json:"itemType" bson:"itemType"`
	Title     string                 `json:"title" bson:"title"`
	Content   string                 `json:"content" bson:"content"`
	RefModel  string                 `json:"refModel,omitempty" bson:"refModel,omitempty"`
	RefID     string                 `json:"refID,omitempty" bson:"refID,omitempty"`
	X         float64                `json:"x" bson:"x"`
	Y         float64                `json:"y" bson:"y"`
	Meta      map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedBy string                 `json:"createdBy" bson:"createdBy"`
	CreatedAt primitive.DateTime     `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime     `json:"updatedAt" bson:"updatedAt"`
}

// BoardLink is a string between two pins of the same board
type BoardLink struct {
	ID        primitive.ObjectID     `json:"_id" bson:"_id"`
	SourceID  primitive.ObjectID     `json:"source" bson:"source"`
	TargetID  primitive.ObjectID     `json:"target" bson:"target"`
	Label     string                 `json:"label" bson:"label"`
	Meta      map[string]interface{} `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedBy string                 `json:"createdBy" bson:"createdBy"`
	CreatedAt primitive.DateTime     `json:"createdAt" bson:"createdAt"`
}

// Item returns the index of the item with id, or -1
func (b *DetectiveBoard) Item(id primitive.ObjectID) int {
	for i, it := range b.Details.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Link returns the index of the link with id, or -1
func (b *DetectiveBoard) Link(id primitive.ObjectID) int {
	for i, l := range b.Details.Links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// RemoveItem drops the item with id and every link touching it
func (b *DetectiveBoard) RemoveItem(id primitive.ObjectID) bool {
	i := b.Item(id)
	if i < 0 {
		return false
	}
	b.Details.Items = append(b.Details.Items[:i], b.Details.Items[i+1:]...)
	links := b.Details.Links[:0]
	for _, l := range b.Details.Links {
		if l.SourceID != id && l.TargetID != id {
			links = append(links, l)
		}
	}
	b.Details.Links = links
	return true
}
