package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

const collectionSubmissions = "wizard_submissions"

// SubmissionRepository stores the submit audit trail in MongoDB.
type SubmissionRepository struct {
	col *mongo.Collection
}

var _ ports.SubmissionRepository = (*SubmissionRepository)(nil)

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{col: db.Collection(collectionSubmissions)}
}

// Insert appends one audit record.
func (r *SubmissionRepository) Insert(ctx context.Context, rec *domain.SubmissionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert submission %s: %w", rec.WizardID, err)
	}
	return nil
}

// ListByWizard returns every attempt recorded for a wizard, oldest first.
func (r *SubmissionRepository) ListByWizard(ctx context.Context, wizardID string) ([]domain.SubmissionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"wizard_id": wizardID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.SubmissionRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by audit queries.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "wizard_id", Value: 1}, {Key: "at", Value: 1}}},
		{Keys: bson.D{{Key: "enterprise_id", Value: 1}}},
		{Keys: bson.D{{Key: "outcome", Value: 1}, {Key: "at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
