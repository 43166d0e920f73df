package mongo

import (
	"context"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubmissionRepository は問い合わせを MongoDB のコレクションへ保存する実装リポジトリ。
type SubmissionRepository struct {
	submissions *mongo.Collection
}

// NewSubmissionRepository は TABLE_NAME で指定されたコレクションを束縛したリポジトリを構築する。
func NewSubmissionRepository(db *mongo.Database, collection string) *SubmissionRepository {
	return &SubmissionRepository{submissions: db.Collection(collection)}
}

// EnsureIndexes は email + timestamp の複合インデックスを作成する。一意制約は付けない。
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.submissions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("email_timestamp"),
	})
	return err
}

// Put は email + timestamp をキーにドキュメントを書き込む。同一キーは上書きされる。
func (r *SubmissionRepository) Put(ctx context.Context, submission domain.Submission) error {
	doc := mapSubmissionDocument(submission)
	filter := bson.M{"email": doc.Email, "timestamp": doc.Timestamp}
	_, err := r.submissions.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}
