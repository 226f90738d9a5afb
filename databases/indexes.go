package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/models"
)

// indexes lists the indexes every collection needs. The unique ones back the
// workflow invariants.
func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		caseName: {
			{Keys: bson.D{{Key: "case.status", Value: 1}}},
		},
		solveRequestName: {
			// one pending solve request per case
			{
				Keys: bson.D{{Key: "solveRequest.caseID", Value: 1}},
				Options: options.Index().
					SetName("one_submitted_per_case").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"solveRequest.status": models.SolveSubmitted}),
			},
			{Keys: bson.D{{Key: "solveRequest.caseID", Value: 1}, {Key: "solveRequest.status", Value: 1}}},
		},
		interrogationName: {
			{
				Keys:    bson.D{{Key: "interrogation.caseID", Value: 1}, {Key: "interrogation.suspectID", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		intakeName: {
			{Keys: bson.D{{Key: "intake.status", Value: 1}}},
			{Keys: bson.D{{Key: "intake.createdBy", Value: 1}}},
		},
		rewardTipName: {
			{
				Keys:    bson.D{{Key: "tip.uniqueCode", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{Keys: bson.D{{Key: "tip.citizenNationalID", Value: 1}}},
		},
		suspectName: {
			{Keys: bson.D{{Key: "suspect.caseID", Value: 1}}},
			{Keys: bson.D{{Key: "suspect.underChase", Value: 1}, {Key: "suspect.chaseStartedAt", Value: 1}}},
		},
		evidenceName: {
			{Keys: bson.D{{Key: "evidence.caseID", Value: 1}}},
		},
		boardName: {
			// one board per case
			{
				Keys:    bson.D{{Key: "board.caseID", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		notificationName: {
			{Keys: bson.D{{Key: "notification.recipientID", Value: 1}}},
			{Keys: bson.D{{Key: "notification.caseID", Value: 1}}},
		},
		paymentName: {
			{
				Keys:    bson.D{{Key: "paymentRequest.publicID", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "paymentRequest.status", Value: 1}, {Key: "paymentRequest.initiatedAt", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the indexes for every collection. It is safe to run
// against a database that already has them.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	for name, idx := range indexes() {
		if err := db.Collection(name).CreateIndexes(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		zap.S().Infow("ensured indexes", "collection", name, "count", len(idx))
	}
	return nil
}
