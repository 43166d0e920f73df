package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
	"go.etcd.io/bbolt"
)

var errNotConfigured = errors.New("storage is not configured")

// Store provides a BoltDB-backed submission store.
type Store struct {
	db             *bbolt.DB
	submissions    string
	failureJournal string
}

// Open opens the database at path and creates the submission bucket.
// failureBucket may be empty, in which case Record is unavailable.
func Open(path, submissionBucket, failureBucket string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if strings.TrimSpace(submissionBucket) == "" {
		return nil, fmt.Errorf("submission bucket is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, submissions: submissionBucket, failureJournal: failureBucket}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is still open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errNotConfigured
	}
	return s.db.View(func(tx *bbolt.Tx) error { return nil })
}

type submissionRecord struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Message   string `json:"message"`
}

// Put writes a submission keyed by email and timestamp, overwriting any existing value.
func (s *Store) Put(ctx context.Context, submission domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errNotConfigured
	}

	payload, err := json.Marshal(submissionRecord{
		Email:     submission.Email,
		Timestamp: submission.Timestamp,
		Name:      submission.Name,
		Message:   submission.Message,
	})
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.submissions))
		if bucket == nil {
			return fmt.Errorf("submission bucket is missing")
		}
		return bucket.Put(submissionKey(submission.Email, submission.Timestamp), payload)
	})
}

// Get fetches a submission by its key. The boolean is false when no record exists.
func (s *Store) Get(ctx context.Context, email, timestamp string) (domain.Submission, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Submission{}, false, err
	}
	if s == nil || s.db == nil {
		return domain.Submission{}, false, errNotConfigured
	}

	var (
		record submissionRecord
		found  bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.submissions))
		if bucket == nil {
			return fmt.Errorf("submission bucket is missing")
		}
		payload := bucket.Get(submissionKey(email, timestamp))
		if payload == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(payload, &record); err != nil {
			return fmt.Errorf("unmarshal submission: %w", err)
		}
		return nil
	})
	if err != nil || !found {
		return domain.Submission{}, false, err
	}

	return domain.Submission{
		Email:     record.Email,
		Timestamp: record.Timestamp,
		Name:      record.Name,
		Message:   record.Message,
	}, true, nil
}

// ListByEmail returns every submission for email in timestamp order.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s == nil || s.db == nil {
		return nil, errNotConfigured
	}

	prefix := emailPrefix(email)
	var submissions []domain.Submission
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.submissions))
		if bucket == nil {
			return fmt.Errorf("submission bucket is missing")
		}
		cursor := bucket.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var record submissionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshal submission: %w", err)
			}
			submissions = append(submissions, domain.Submission{
				Email:     record.Email,
				Timestamp: record.Timestamp,
				Name:      record.Name,
				Message:   record.Message,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

type failureRecord struct {
	ID                  string    `json:"id"`
	Kind                string    `json:"kind"`
	From                string    `json:"from"`
	To                  []string  `json:"to"`
	Subject             string    `json:"subject"`
	SubmissionEmail     string    `json:"submissionEmail"`
	SubmissionTimestamp string    `json:"submissionTimestamp"`
	Error               string    `json:"error"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Record stores an undelivered notification under its ID.
func (s *Store) Record(ctx context.Context, failure domain.NotificationFailure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errNotConfigured
	}
	if s.failureJournal == "" {
		return fmt.Errorf("failure journal is not configured")
	}
	if strings.TrimSpace(failure.ID) == "" {
		return fmt.Errorf("failure id is required")
	}

	payload, err := json.Marshal(failureRecord{
		ID:                  failure.ID,
		Kind:                string(failure.Kind),
		From:                failure.From,
		To:                  failure.To,
		Subject:             failure.Subject,
		SubmissionEmail:     failure.SubmissionEmail,
		SubmissionTimestamp: failure.SubmissionTimestamp,
		Error:               failure.Error,
		CreatedAt:           failure.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal failure: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.failureJournal))
		if bucket == nil {
			return fmt.Errorf("failure bucket is missing")
		}
		return bucket.Put([]byte(failure.ID), payload)
	})
}

// Failures returns all journal entries ordered by ID.
func (s *Store) Failures(ctx context.Context) ([]domain.NotificationFailure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, errNotConfigured
	}
	if s.failureJournal == "" {
		return nil, nil
	}

	var failures []domain.NotificationFailure
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(s.failureJournal))
		if bucket == nil {
			return fmt.Errorf("failure bucket is missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			var record failureRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshal failure: %w", err)
			}
			failures = append(failures, domain.NotificationFailure{
				ID:                  record.ID,
				Kind:                domain.NotificationKind(record.Kind),
				From:                record.From,
				To:                  record.To,
				Subject:             record.Subject,
				SubmissionEmail:     record.SubmissionEmail,
				SubmissionTimestamp: record.SubmissionTimestamp,
				Error:               record.Error,
				CreatedAt:           record.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return failures, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(s.submissions)); err != nil {
			return fmt.Errorf("create submission bucket: %w", err)
		}
		if s.failureJournal == "" {
			return nil
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(s.failureJournal)); err != nil {
			return fmt.Errorf("create failure bucket: %w", err)
		}
		return nil
	})
}

// emailPrefix is the big-endian email length followed by the email, so one
// email's keys never share a prefix with a longer email that starts with it.
func emailPrefix(email string) []byte {
	prefix := make([]byte, 4, 4+len(email))
	binary.BigEndian.PutUint32(prefix, uint32(len(email)))
	return append(prefix, email...)
}

func submissionKey(email, timestamp string) []byte {
	return append(emailPrefix(email), timestamp...)
}
