package handlers

import (
	"encoding/json"
	"net/http"
)

// Response конверт каждого ответа: при успехе error == null, при ошибке data == null
type Response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func responseWithJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func responseWithData(w http.ResponseWriter, data any) {
	responseWithJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, Response{Success: false, Error: &message})
}
