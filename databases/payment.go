package databases

// go generate: mockery --name PaymentDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const paymentName = "payment_requests"

// PaymentDatabase contains the methods to use with the payment request database
type PaymentDatabase interface {
	Insert(ctx context.Context, p *models.PaymentRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentRequest, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.PaymentRequest, error)
	Update(ctx context.Context, p *models.PaymentRequest) error
	FindStaleInitiated(ctx context.Context, initiatedBefore time.Time) ([]models.PaymentRequest, error)
}

type paymentDatabase struct {
	db DatabaseHelper
}

// NewPaymentDatabase initializes a new instance of payment database with the provided db connection
func NewPaymentDatabase(db DatabaseHelper) PaymentDatabase {
	return &paymentDatabase{
		db: db,
	}
}

func (p *paymentDatabase) Insert(ctx context.Context, pr *models.PaymentRequest) error {
	if pr.ID.IsZero() {
		pr.ID = primitive.NewObjectID()
	}
	_, err := p.db.Collection(paymentName).InsertOne(ctx, pr)
	return translate(err)
}

func (p *paymentDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentRequest, error) {
	pr := &models.PaymentRequest{}
	err := p.db.Collection(paymentName).FindOne(ctx, bson.M{"_id": id}).Decode(&pr)
	if err != nil {
		return nil, translate(err)
	}
	return pr, nil
}

func (p *paymentDatabase) FindByPublicID(ctx context.Context, publicID string) (*models.PaymentRequest, error) {
	pr := &models.PaymentRequest{}
	err := p.db.Collection(paymentName).FindOne(ctx, bson.M{"paymentRequest.publicID": publicID}).Decode(&pr)
	if err != nil {
		return nil, translate(err)
	}
	return pr, nil
}

func (p *paymentDatabase) Update(ctx context.Context, pr *models.PaymentRequest) error {
	expected := pr.Version
	pr.Version++
	err := replaceVersioned(ctx, p.db.Collection(paymentName), pr.ID, expected, pr)
	if err != nil {
		pr.Version = expected
	}
	return err
}

func (p *paymentDatabase) FindStaleInitiated(ctx context.Context, initiatedBefore time.Time) ([]models.PaymentRequest, error) {
	payments := []models.PaymentRequest{}
	filter := bson.M{
		"paymentRequest.status":      models.PaymentInitiated,
		"paymentRequest.initiatedAt": bson.M{"$lt": primitive.NewDateTimeFromTime(initiatedBefore)},
	}
	if err := findAll(ctx, p.db.Collection(paymentName), filter, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
