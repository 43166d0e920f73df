package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

func TestGatewayNotifierSend(t *testing.T) {
	var (
		gotPath        string
		gotContentType string
		got            gatewayMessage
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	notifier := NewGatewayNotifier(srv.Client(), srv.URL+"/")
	err := notifier.Send(context.Background(), domain.Email{
		From:    "noreply@example.com",
		To:      []string{"a@x.com"},
		Subject: "Thank you for contacting us",
		Body:    "Hello Ann",
	})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if gotPath != "/messages" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
	if got.From != "noreply@example.com" || got.Subject != "Thank you for contacting us" || got.Text != "Hello Ann" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got.To) != 1 || got.To[0] != "a@x.com" {
		t.Fatalf("unexpected recipients: %v", got.To)
	}
}

func TestGatewayNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "recipient rejected", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewGatewayNotifier(srv.Client(), srv.URL).Send(context.Background(), domain.Email{To: []string{""}})
	if err == nil {
		t.Fatal("expected error for 422 response")
	}
	if !strings.Contains(err.Error(), "status=422") || !strings.Contains(err.Error(), "recipient rejected") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGatewayNotifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if err := NewGatewayNotifier(nil, url).Send(context.Background(), domain.Email{}); err == nil {
		t.Fatal("expected error for closed gateway")
	}
}

func TestGatewayNotifierEmptyEndpoint(t *testing.T) {
	if err := NewGatewayNotifier(nil, " ").Send(context.Background(), domain.Email{}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(log.New(&buf, "", 0))

	if err := notifier.Send(context.Background(), domain.Email{To: []string{"owner@example.com"}, Subject: "New contact from Ann"}); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if !strings.Contains(buf.String(), "New contact from Ann") {
		t.Fatalf("expected subject in log, got %q", buf.String())
	}
}
