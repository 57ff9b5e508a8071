package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/azeasycpa/askcpa/internal/lifecycle"
	"github.com/gorilla/mux"
)

type QuestionsHandler struct {
	engine *lifecycle.Engine
}

func NewQuestionsHandler(engine *lifecycle.Engine) *QuestionsHandler {
	return &QuestionsHandler{engine: engine}
}

type submitQuestionRequest struct {
	Email    string `json:"email"`
	Question string `json:"question"`
}

// SubmitQuestion is the public submission endpoint.
func (h *QuestionsHandler) SubmitQuestion(w http.ResponseWriter, r *http.Request) {
	var req submitQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	q, err := h.engine.Submit(r.Context(), req.Email, req.Question)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, q, http.StatusCreated)
}

// ListQuestions returns the dashboard view: newest first, optional exact
// status filter, paginated.
func (h *QuestionsHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	items, total, err := h.engine.ListAll(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}

	writeJSON(w, resp, http.StatusOK)
}

// MarkReviewed moves a pending question to reviewed.
func (h *QuestionsHandler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	q, err := h.engine.MarkReviewed(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, q, http.StatusOK)
}

type submitAnswerRequest struct {
	Response string `json:"response"`
}

// SubmitAnswer records the CPA response and notifies the submitter.
func (h *QuestionsHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	q, err := h.engine.Answer(r.Context(), id, req.Response)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, q, http.StatusOK)
}

// Usage exposes the per-email submission counter to the dashboard.
func (h *QuestionsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	u, err := h.engine.Usage(r.Context(), email)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if u == nil {
		http.Error(w, "no usage recorded", http.StatusNotFound)
		return
	}

	writeJSON(w, u, http.StatusOK)
}
