// Package server provides the HTTP REST API for career-copilot.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/career-copilot/internal/ai"
	"github.com/jonathan/career-copilot/internal/types"
)

// AIHandler handles the AI proxy endpoints. Every route it serves sits behind
// the auth middleware, so requests arriving here carry a verified subject.
type AIHandler struct {
	service   *ai.Service
	validator *validator.Validate
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(service *ai.Service) *AIHandler {
	return &AIHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Generate handles free-text generation requests.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

// ATSScore handles resume/job compatibility scoring requests.
func (h *AIHandler) ATSScore(w http.ResponseWriter, r *http.Request) {
	var req types.ATSScoreRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ATSScore(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

// AnalyzeJob handles job description analysis requests.
func (h *AIHandler) AnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeJobRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.AnalyzeJob(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

// AnalyzeResume handles resume assessment requests.
func (h *AIHandler) AnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeResumeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.AnalyzeResume(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

// Chat handles conversational assistant requests.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Chat(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

// decodeAndValidate decodes the request body and runs struct validation.
// Writes the error response and returns false on failure.
func (h *AIHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return false
	}

	return true
}

// writeError maps service errors to HTTP statuses, logging upstream causes.
func (h *AIHandler) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusBadGateway {
		log.Printf("upstream AI failure: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func (h *AIHandler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
