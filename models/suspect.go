package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MostWantedAfter is how long a suspect must be chased before making the most wanted list
const MostWantedAfter = 30 * 24 * time.Hour

// RewardPerRankPoint is the reward in rials for each point of rank score
const RewardPerRankPoint = 20_000_000

// Suspect holds the structure for the suspects collection in mongo
type Suspect struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details SuspectDetails     `json:"suspect" bson:"suspect"`
	Version int32              `json:"__v" bson:"__v"`
}

// SuspectDetails holds a person of interest linked to a case
type SuspectDetails struct {
	CaseID         string             `json:"caseID" bson:"caseID"`
	FullName       string             `json:"fullName" bson:"fullName"`
	ChaseStartedAt primitive.DateTime `json:"chaseStartedAt" bson:"chaseStartedAt"`
	// MaxL tracks how long the suspect has been chased, MaxD the severity of the case
	MaxL       int                `json:"maxL" bson:"maxL"`
	MaxD       int                `json:"maxD" bson:"maxD"`
	UnderChase bool               `json:"underChase" bson:"underChase"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// RankScore is the suspect's wanted level
func (s *Suspect) RankScore() int64 {
	return int64(s.Details.MaxL) * int64(s.Details.MaxD)
}

// RewardAmount is the reward in rials for a tip leading to this suspect
func (s *Suspect) RewardAmount() int64 {
	return s.RankScore() * RewardPerRankPoint
}

// IsMostWanted reports whether the suspect has been chased long enough to be listed
func (s *Suspect) IsMostWanted(now time.Time) bool {
	return s.Details.UnderChase && now.Sub(s.Details.ChaseStartedAt.Time()) >= MostWantedAfter
}

// RankedSuspect is a suspect with its derived scores, used by list responses
type RankedSuspect struct {
	Suspect
	RankScore    int64 `json:"rankScore"`
	RewardAmount int64 `json:"rewardAmount"`
}

// Ranked attaches the derived scores to a suspect
func Ranked(s Suspect) RankedSuspect {
	return RankedSuspect{Suspect: s, RankScore: s.RankScore(), RewardAmount: s.RewardAmount()}
}
