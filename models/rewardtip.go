package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RewardTipStatus is the review state of a reward tip
type RewardTipStatus string

// Reward tip statuses
const (
	TipSubmitted         RewardTipStatus = "SUBMITTED"
	TipOfficerRejected   RewardTipStatus = "OFFICER_REJECTED"
	TipOfficerApproved   RewardTipStatus = "OFFICER_APPROVED"
	TipDetectiveApproved RewardTipStatus = "DETECTIVE_APPROVED"
)

// RewardTip holds the structure for the reward_tips collection in mongo
type RewardTip struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details RewardTipDetails   `json:"tip" bson:"tip"`
	Version int32              `json:"__v" bson:"__v"`
}

// RewardTipDetails holds a citizen tip about a suspect. The citizen identity is
// a snapshot taken at submission time.
type RewardTipDetails struct {
	CitizenID         string `json:"citizenID" bson:"citizenID"`
	CitizenName       string `json:"citizenName" bson:"citizenName"`
	CitizenNationalID string `json:"citizenNationalID" bson:"citizenNationalID"`
	CitizenPhone      string `json:"citizenPhone" bson:"citizenPhone"`

	SuspectName     string `json:"suspectName" bson:"suspectName"`
	SuspectLastSeen string `json:"suspectLastSeen" bson:"suspectLastSeen"`
	Message         string `json:"message" bson:"message"`

	Status RewardTipStatus `json:"status" bson:"status"`

	// only set once a detective approves the tip
	UniqueCode string `json:"uniqueCode,omitempty" bson:"uniqueCode,omitempty"`

	OfficerID         string              `json:"officerID,omitempty" bson:"officerID,omitempty"`
	OfficerReviewedAt *primitive.DateTime `json:"officerReviewedAt,omitempty" bson:"officerReviewedAt,omitempty"`
	OfficerNote       string              `json:"officerNote" bson:"officerNote"`

	DetectiveID         string              `json:"detectiveID,omitempty" bson:"detectiveID,omitempty"`
	DetectiveApprovedAt *primitive.DateTime `json:"detectiveApprovedAt,omitempty" bson:"detectiveApprovedAt,omitempty"`
	DetectiveNote       string              `json:"detectiveNote" bson:"detectiveNote"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// RewardLookup is the answer to a police reward lookup
type RewardLookup struct {
	RewardAmount int64     `json:"rewardAmount"`
	Tip          RewardTip `json:"tip"`
}
