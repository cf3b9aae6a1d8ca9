package api

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Problem is an RFC 7807 problem document extended with a machine readable
// code and an optional payload describing the caller's state.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
	Usage  any    `json:"usage,omitempty"`
}

const problemContentType = "application/problem+json"

func JSON(w http.ResponseWriter, status int, data any) {
	Write(w, status, Response{Data: data})
}

// Write encodes body as-is, without the data envelope.
func Write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func JSONMessage(w http.ResponseWriter, status int, message string) {
	Write(w, status, Response{Message: message})
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	Write(w, status, Response{Error: message})
}

// WriteProblem writes p with the problem+json media type. Missing Type and
// Title are filled from the status.
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}
