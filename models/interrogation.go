package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Interrogation holds the structure for the interrogations collection in mongo.
// There is one document per (case, suspect).
type Interrogation struct {
	ID      primitive.ObjectID   `json:"_id" bson:"_id"`
	Details InterrogationDetails `json:"interrogation" bson:"interrogation"`
	Version int32                `json:"__v" bson:"__v"`
}

// InterrogationDetails holds the scores given to a suspect, each 1-10 or unset
type InterrogationDetails struct {
	CaseID         string             `json:"caseID" bson:"caseID"`
	SuspectID      string             `json:"suspectID" bson:"suspectID"`
	DetectiveScore *int               `json:"detectiveScore" bson:"detectiveScore"`
	SergeantScore  *int               `json:"sergeantScore" bson:"sergeantScore"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ScoreField selects which interrogation score is written
type ScoreField string

// Score fields
const (
	DetectiveScore ScoreField = "detectiveScore"
	SergeantScore  ScoreField = "sergeantScore"
)

// MinScore and MaxScore bound an interrogation score
const (
	MinScore = 1
	MaxScore = 10
)
