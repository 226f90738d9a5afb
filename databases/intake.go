package databases

// go generate: mockery --name IntakeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const intakeName = "intake_complaints"

// IntakeDatabase contains the methods to use with the intake complaint database
type IntakeDatabase interface {
	Insert(ctx context.Context, ic *models.IntakeComplaint) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.IntakeComplaint, error)
	Update(ctx context.Context, ic *models.IntakeComplaint) error
	FindByStatus(ctx context.Context, statuses ...models.IntakeStatus) ([]models.IntakeComplaint, error)
	FindByCreator(ctx context.Context, userID string) ([]models.IntakeComplaint, error)
}

type intakeDatabase struct {
	db DatabaseHelper
}

// NewIntakeDatabase initializes a new instance of intake database with the provided db connection
func NewIntakeDatabase(db DatabaseHelper) IntakeDatabase {
	return &intakeDatabase{
		db: db,
	}
}

func (i *intakeDatabase) Insert(ctx context.Context, ic *models.IntakeComplaint) error {
	if ic.ID.IsZero() {
		ic.ID = primitive.NewObjectID()
	}
	_, err := i.db.Collection(intakeName).InsertOne(ctx, ic)
	return translate(err)
}

func (i *intakeDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.IntakeComplaint, error) {
	ic := &models.IntakeComplaint{}
	err := i.db.Collection(intakeName).FindOne(ctx, bson.M{"_id": id}).Decode(&ic)
	if err != nil {
		return nil, translate(err)
	}
	return ic, nil
}

func (i *intakeDatabase) Update(ctx context.Context, ic *models.IntakeComplaint) error {
	expected := ic.Version
	ic.Version++
	err := replaceVersioned(ctx, i.db.Collection(intakeName), ic.ID, expected, ic)
	if err != nil {
		ic.Version = expected
	}
	return err
}

func (i *intakeDatabase) FindByStatus(ctx context.Context, statuses ...models.IntakeStatus) ([]models.IntakeComplaint, error) {
	complaints := []models.IntakeComplaint{}
	filter := bson.M{"intake.status": bson.M{"$in": statuses}}
	if err := findAll(ctx, i.db.Collection(intakeName), filter, &complaints, newestFirst()); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (i *intakeDatabase) FindByCreator(ctx context.Context, userID string) ([]models.IntakeComplaint, error) {
	complaints := []models.IntakeComplaint{}
	if err := findAll(ctx, i.db.Collection(intakeName), bson.M{"intake.createdBy": userID}, &complaints, newestFirst()); err != nil {
		return nil, err
	}
	return complaints, nil
}
