package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	contactapp "github.com/sngm3741/contact-form/api/internal/contact/application"
	"github.com/sngm3741/contact-form/api/internal/interfaces/http/common"
)

type submitResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		cmd, err := decodeSubmitCommand(http.MaxBytesReader(w, r.Body, common.MaxSubmissionRequestBody))
		if err != nil {
			h.fail(w, err)
			return
		}

		// A started invocation runs to completion even if the client goes away.
		submission, err := h.submissions.Submit(context.WithoutCancel(r.Context()), cmd)
		if err != nil {
			h.fail(w, err)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		common.WriteJSON(h.logger, w, http.StatusOK, submitResponse{
			Message:   "Success",
			Timestamp: submission.Timestamp,
		})
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Printf("問い合わせの処理に失敗: %v", err)
	}
	common.WriteFailure(w)
}

// decodeSubmitCommand treats an empty body or JSON null as an empty form.
// Absent or null fields become "". Unreadable bodies and non-object JSON are errors.
func decodeSubmitCommand(body io.Reader) (contactapp.SubmitCommand, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return contactapp.SubmitCommand{}, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return contactapp.SubmitCommand{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return contactapp.SubmitCommand{}, fmt.Errorf("decode body: %w", err)
	}

	return contactapp.SubmitCommand{
		Email:   fieldString(fields, "email"),
		Name:    fieldString(fields, "name"),
		Message: fieldString(fields, "message"),
	}, nil
}

// fieldString returns the string value of key, or the raw JSON text for non-string values.
func fieldString(fields map[string]json.RawMessage, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	// null leaves s untouched.
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(value))
}
