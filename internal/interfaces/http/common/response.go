package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSON marshals payload before touching the response so an encode error
// turns into WriteFailure instead of a truncated body behind a success status.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		if logger != nil {
			logger.Printf("JSON エンコードに失敗: %v", err)
		}
		WriteFailure(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil && logger != nil {
		logger.Printf("レスポンス書き込みに失敗: %v", err)
	}
}

// WriteFailure writes the generic, unstructured 500 used for every internal fault.
func WriteFailure(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
