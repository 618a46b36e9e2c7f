// Package response writes the JSON wire contract: success bodies are the
// bare record or array, error bodies are {"err": "..."}.
package response

import (
	"encoding/json"
	"net/http"
)

type errBody struct {
	Err string `json:"err"`
}

// JSON writes data as-is with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends a JSON error response with body {"err": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errBody{Err: message})
}

// Unauthorized sends the uniform invalid-token rejection.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Invalid or expired token")
}

// Forbidden sends the uniform admin-resource rejection.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Admin Resource, Access denied")
}

// NotFound sends a 404 with a resource-specific message.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unprocessable sends a 422 for a semantically invalid request body.
func Unprocessable(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, message)
}

// Internal sends a generic 500 with no internal detail.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}
