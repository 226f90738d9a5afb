package databases

// go generate: mockery --name RewardTipDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const rewardTipName = "reward_tips"

// RewardTipDatabase contains the methods to use with the reward tip database
type RewardTipDatabase interface {
	Insert(ctx context.Context, tip *models.RewardTip) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.RewardTip, error)
	Update(ctx context.Context, tip *models.RewardTip) error
	CodeExists(ctx context.Context, code string) (bool, error)
	FindApproved(ctx context.Context, nationalID, code string) (*models.RewardTip, error)
	// Count counts the tips in status. An empty status counts every tip.
	Count(ctx context.Context, status models.RewardTipStatus) (int64, error)
}

type rewardTipDatabase struct {
	db DatabaseHelper
}

// NewRewardTipDatabase initializes a new instance of reward tip database with the provided db connection
func NewRewardTipDatabase(db DatabaseHelper) RewardTipDatabase {
	return &rewardTipDatabase{
		db: db,
	}
}

func (r *rewardTipDatabase) Insert(ctx context.Context, tip *models.RewardTip) error {
	if tip.ID.IsZero() {
		tip.ID = primitive.NewObjectID()
	}
	_, err := r.db.Collection(rewardTipName).InsertOne(ctx, tip)
	return translate(err)
}

func (r *rewardTipDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RewardTip, error) {
	tip := &models.RewardTip{}
	err := r.db.Collection(rewardTipName).FindOne(ctx, bson.M{"_id": id}).Decode(&tip)
	if err != nil {
		return nil, translate(err)
	}
	return tip, nil
}

// Update fails with ErrDuplicate if the tip's unique code is already taken
func (r *rewardTipDatabase) Update(ctx context.Context, tip *models.RewardTip) error {
	expected := tip.Version
	tip.Version++
	err := replaceVersioned(ctx, r.db.Collection(rewardTipName), tip.ID, expected, tip)
	if err != nil {
		tip.Version = expected
	}
	return err
}

func (r *rewardTipDatabase) CodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.db.Collection(rewardTipName).CountDocuments(ctx, bson.M{"tip.uniqueCode": code})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *rewardTipDatabase) FindApproved(ctx context.Context, nationalID, code string) (*models.RewardTip, error) {
	tip := &models.RewardTip{}
	filter := bson.M{
		"tip.citizenNationalID": nationalID,
		"tip.uniqueCode":        code,
		"tip.status":            models.TipDetectiveApproved,
	}
	err := r.db.Collection(rewardTipName).FindOne(ctx, filter).Decode(&tip)
	if err != nil {
		return nil, translate(err)
	}
	return tip, nil
}

func (r *rewardTipDatabase) Count(ctx context.Context, status models.RewardTipStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["tip.status"] = status
	}
	return r.db.Collection(rewardTipName).CountDocuments(ctx, filter)
}
