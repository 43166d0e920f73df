package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

// SubmissionRepository persists contact submissions keyed by email and timestamp.
type SubmissionRepository interface {
	Put(ctx context.Context, submission domain.Submission) error
}

// Notifier delivers outbound email.
type Notifier interface {
	Send(ctx context.Context, email domain.Email) error
}

// FailureJournal records notifications that could not be delivered.
type FailureJournal interface {
	Record(ctx context.Context, failure domain.NotificationFailure) error
}

// SubmissionService describes the contact-form use-case.
type SubmissionService interface {
	Submit(ctx context.Context, cmd SubmitCommand) (*domain.Submission, error)
}

// SubmitCommand captures the raw form fields. Empty strings are accepted as-is.
type SubmitCommand struct {
	Email   string
	Name    string
	Message string
}

// Settings carries process-wide values resolved once at startup.
type Settings struct {
	SenderEmail string
	OwnerEmail  string
	Location    *time.Location
	Now         func() time.Time
	Journal     FailureJournal
	Logger      *log.Logger
}

func NewSubmissionService(repo SubmissionRepository, notifier Notifier, settings Settings) SubmissionService {
	loc := settings.Location
	if loc == nil {
		loc = time.Local
	}
	now := settings.Now
	if now == nil {
		now = time.Now
	}
	return &submissionService{
		repo:     repo,
		notifier: notifier,
		journal:  settings.Journal,
		logger:   settings.Logger,
		sender:   settings.SenderEmail,
		owner:    settings.OwnerEmail,
		location: loc,
		now:      now,
	}
}

type submissionService struct {
	repo     SubmissionRepository
	notifier Notifier
	journal  FailureJournal
	logger   *log.Logger
	sender   string
	owner    string
	location *time.Location
	now      func() time.Time
}

// Submit persists the submission and then sends the acknowledgement and the owner alert, in that order.
// The first failing step aborts the rest. Steps already issued are not undone.
func (s *submissionService) Submit(ctx context.Context, cmd SubmitCommand) (*domain.Submission, error) {
	submission := &domain.Submission{
		Email:     cmd.Email,
		Name:      cmd.Name,
		Message:   cmd.Message,
		Timestamp: domain.FormatTimestamp(s.now().In(s.location)),
	}

	if err := s.repo.Put(ctx, *submission); err != nil {
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	ack := domain.AcknowledgementEmail(s.sender, *submission)
	if err := s.send(ctx, domain.NotificationAcknowledgement, ack, *submission); err != nil {
		return nil, err
	}

	alert := domain.OwnerAlertEmail(s.sender, s.owner, *submission)
	if err := s.send(ctx, domain.NotificationOwnerAlert, alert, *submission); err != nil {
		return nil, err
	}

	return submission, nil
}

func (s *submissionService) send(ctx context.Context, kind domain.NotificationKind, email domain.Email, submission domain.Submission) error {
	err := s.notifier.Send(ctx, email)
	if err == nil {
		return nil
	}
	s.recordFailure(ctx, kind, email, submission, err)
	return fmt.Errorf("send %s notification: %w", kind, err)
}

func (s *submissionService) recordFailure(ctx context.Context, kind domain.NotificationKind, email domain.Email, submission domain.Submission, sendErr error) {
	if s.journal == nil {
		return
	}
	failure := domain.NotificationFailure{
		ID:                  uuid.NewString(),
		Kind:                kind,
		From:                email.From,
		To:                  append([]string(nil), email.To...),
		Subject:             email.Subject,
		SubmissionEmail:     submission.Email,
		SubmissionTimestamp: submission.Timestamp,
		Error:               sendErr.Error(),
		CreatedAt:           s.now().UTC(),
	}
	if err := s.journal.Record(ctx, failure); err != nil && s.logger != nil {
		s.logger.Printf("通知失敗ジャーナルへの保存に失敗: %v", err)
	}
}
