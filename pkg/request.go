package pkg

import (
	"mime"
	"net/http"
)

// HasJSONBody reports whether the request body can be read as JSON:
// either no content type was sent or it is application/json.
func HasJSONBody(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}
