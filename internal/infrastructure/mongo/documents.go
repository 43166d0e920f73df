package mongo

import (
	"time"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

// SubmissionDocument は問い合わせ 1 件分の MongoDB スキーマ。email + timestamp が論理キー。
type SubmissionDocument struct {
	Email     string `bson:"email"`
	Timestamp string `bson:"timestamp"`
	Name      string `bson:"name"`
	Message   string `bson:"message"`
}

// NotificationFailureDocument は送信できなかった通知を後追い対応のために残すドキュメント。
type NotificationFailureDocument struct {
	ID         string                   `bson:"_id"`
	Target     string                   `bson:"target"`
	Payload    NotificationPayloadField `bson:"payload"`
	Error      string                   `bson:"error"`
	Status     string                   `bson:"status"`
	CreatedAt  time.Time                `bson:"createdAt"`
	Submission SubmissionKeyField       `bson:"submission"`
}

// NotificationPayloadField は失敗した通知メールの宛先と件名を保持する埋め込みドキュメント。
type NotificationPayloadField struct {
	From    string   `bson:"from"`
	To      []string `bson:"to"`
	Subject string   `bson:"subject"`
}

// SubmissionKeyField は失敗通知から元の問い合わせを引くためのキー。
type SubmissionKeyField struct {
	Email     string `bson:"email"`
	Timestamp string `bson:"timestamp"`
}

func mapSubmissionDocument(s domain.Submission) SubmissionDocument {
	return SubmissionDocument{
		Email:     s.Email,
		Timestamp: s.Timestamp,
		Name:      s.Name,
		Message:   s.Message,
	}
}

func mapNotificationFailureDocument(f domain.NotificationFailure) NotificationFailureDocument {
	return NotificationFailureDocument{
		ID:     f.ID,
		Target: string(f.Kind),
		Payload: NotificationPayloadField{
			From:    f.From,
			To:      append([]string{}, f.To...),
			Subject: f.Subject,
		},
		Error:     f.Error,
		Status:    "pending",
		CreatedAt: f.CreatedAt,
		Submission: SubmissionKeyField{
			Email:     f.SubmissionEmail,
			Timestamp: f.SubmissionTimestamp,
		},
	}
}
