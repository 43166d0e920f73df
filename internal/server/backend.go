package server

import (
	"context"
	"fmt"

	contactapp "github.com/sngm3741/contact-form/api/internal/contact/application"
	"github.com/sngm3741/contact-form/api/internal/config"
	boltstore "github.com/sngm3741/contact-form/api/internal/infrastructure/bolt"
	mongodoc "github.com/sngm3741/contact-form/api/internal/infrastructure/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Backend は永続化層のハンドル一式。プロセス起動時に 1 度だけ構築し、全リクエストで共有する。
type Backend struct {
	Submissions contactapp.SubmissionRepository
	Journal     contactapp.FailureJournal
	ping        func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// OpenBackend は STORE_DRIVER に応じて MongoDB もしくは BoltDB へ接続する。
func OpenBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverBolt:
		return openBoltBackend(cfg)
	case config.StoreDriverMongo:
		return openMongoBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: STORE_DRIVER=%q", config.ErrInvalidSetting, cfg.StoreDriver)
	}
}

func openMongoBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}

	database := client.Database(cfg.MongoDatabase)
	submissions := mongodoc.NewSubmissionRepository(database, cfg.TableName)
	if err := submissions.EnsureIndexes(ctx); err != nil && cfg.ServerLog != nil {
		cfg.ServerLog.Printf("インデックス作成に失敗しました: %v", err)
	}

	backend := &Backend{
		Submissions: submissions,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
	if cfg.FailedNotificationTable != "" {
		backend.Journal = mongodoc.NewFailureJournalRepository(database, cfg.FailedNotificationTable)
	}
	return backend, nil
}

func openBoltBackend(cfg config.Config) (*Backend, error) {
	store, err := boltstore.Open(cfg.BoltPath, cfg.TableName, cfg.FailedNotificationTable)
	if err != nil {
		return nil, err
	}

	backend := &Backend{
		Submissions: store,
		ping:        store.Ping,
		close: func(context.Context) error {
			return store.Close()
		},
	}
	if cfg.FailedNotificationTable != "" {
		backend.Journal = store
	}
	return backend, nil
}

// Ping は永続化層への疎通を確認する。
func (b *Backend) Ping(ctx context.Context) error {
	if b == nil || b.ping == nil {
		return fmt.Errorf("storage is not configured")
	}
	return b.ping(ctx)
}

// Close は永続化層のハンドルを解放する。
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close(ctx)
}
