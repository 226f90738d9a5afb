package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/police-case-api/models"
)

const notificationName = "case_notifications"

// NotificationDatabase contains the methods to use with the case notification database
type NotificationDatabase interface {
	Insert(ctx context.Context, n *models.CaseNotification) error
	FindByRecipient(ctx context.Context, recipientID string) ([]models.CaseNotification, error)
	// MarkRead stamps the read time once. A notification owned by someone else is ErrNotFound.
	MarkRead(ctx context.Context, id primitive.ObjectID, recipientID string, at time.Time) (*models.CaseNotification, error)
	DeleteByCase(ctx context.Context, caseID string) error
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) Insert(ctx context.Context, cn *models.CaseNotification) error {
	if cn.ID.IsZero() {
		cn.ID = primitive.NewObjectID()
	}
	_, err := n.db.Collection(notificationName).InsertOne(ctx, cn)
	return translate(err)
}

func (n *notificationDatabase) FindByRecipient(ctx context.Context, recipientID string) ([]models.CaseNotification, error) {
	notifications := []models.CaseNotification{}
	err := findAll(ctx, n.db.Collection(notificationName), bson.M{"notification.recipientID": recipientID}, &notifications, newestFirst())
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) MarkRead(ctx context.Context, id primitive.ObjectID, recipientID string, at time.Time) (*models.CaseNotification, error) {
	cn := &models.CaseNotification{}
	filter := bson.M{"_id": id, "notification.recipientID": recipientID, "notification.readAt": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{"notification.readAt": primitive.NewDateTimeFromTime(at)},
		"$inc": bson.M{"__v": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := translate(n.db.Collection(notificationName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&cn))
	if err != ErrNotFound {
		if err != nil {
			return nil, err
		}
		return cn, nil
	}

	// already read, or not the recipient's
	cn = &models.CaseNotification{}
	err = n.db.Collection(notificationName).FindOne(ctx, bson.M{"_id": id, "notification.recipientID": recipientID}).Decode(&cn)
	if err != nil {
		return nil, translate(err)
	}
	return cn, nil
}

func (n *notificationDatabase) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := n.db.Collection(notificationName).DeleteMany(ctx, bson.M{"notification.caseID": caseID})
	return err
}
