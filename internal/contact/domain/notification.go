package domain

import (
	"fmt"
	"time"
)

// NotificationKind distinguishes the two messages sent per submission.
type NotificationKind string

const (
	NotificationAcknowledgement NotificationKind = "acknowledgement"
	NotificationOwnerAlert      NotificationKind = "owner_alert"
)

// AcknowledgementSubject is the fixed subject of the message sent back to the submitter.
const AcknowledgementSubject = "Thank you for contacting us"

// Email is an outbound plain-text message.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// NotificationFailure is a journal entry for a send that did not go through.
type NotificationFailure struct {
	ID                  string
	Kind                NotificationKind
	From                string
	To                  []string
	Subject             string
	SubmissionEmail     string
	SubmissionTimestamp string
	Error               string
	CreatedAt           time.Time
}

// AcknowledgementEmail builds the thank-you message addressed to the submitter.
func AcknowledgementEmail(sender string, s Submission) Email {
	return Email{
		From:    sender,
		To:      []string{s.Email},
		Subject: AcknowledgementSubject,
		Body:    fmt.Sprintf("Hello %s,\n\nWe received your message and will reply soon.\n\nBest regards", s.Name),
	}
}

// OwnerAlertEmail builds the new-contact alert addressed to the site owner.
func OwnerAlertEmail(sender, owner string, s Submission) Email {
	return Email{
		From:    sender,
		To:      []string{owner},
		Subject: fmt.Sprintf("New contact from %s", s.Name),
		Body:    fmt.Sprintf("From: %s\nEmail: %s\n\n%s", s.Name, s.Email, s.Message),
	}
}
