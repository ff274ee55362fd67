package handlers

import (
	"mime"
	"net/http"
)

// checkContentType пустой заголовок допустим: у команд без аргументов тела может не быть
func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == target
}
