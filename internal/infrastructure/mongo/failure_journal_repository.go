package mongo

import (
	"context"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// FailureJournalRepository persists undelivered notifications.
type FailureJournalRepository struct {
	collection *mongo.Collection
}

func NewFailureJournalRepository(db *mongo.Database, collectionName string) *FailureJournalRepository {
	return &FailureJournalRepository{collection: db.Collection(collectionName)}
}

// Record inserts one pending failure entry.
func (r *FailureJournalRepository) Record(ctx context.Context, failure domain.NotificationFailure) error {
	_, err := r.collection.InsertOne(ctx, mapNotificationFailureDocument(failure))
	return err
}
