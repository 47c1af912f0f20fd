package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
	JPEG string
}{
	JSON: "application/json",
	Text: "text/plain; charset=utf-8",
	JPEG: "image/jpeg",
}

func WriteResponse(w http.ResponseWriter, contentType, message string, statusCode int) {
	WriteResponseBytes(w, contentType, []byte(message), statusCode)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.Text, message, http.StatusOK)
}

// WriteJSON marshals v and writes it with the given status code.
// Returns the marshal error, in which case nothing is written.
func WriteJSON(w http.ResponseWriter, v any, statusCode int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	WriteResponseBytes(w, ContentType.JSON, b, statusCode)
	return nil
}
