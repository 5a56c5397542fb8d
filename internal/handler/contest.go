package handler

import (
	"net/http"

	"github.com/fanpicks/platform/internal/service"
)

// ContestHandler serves questions, entries, the leaderboard and the
// caller's ledger.
type ContestHandler struct {
	questions *service.QuestionService
	entries   *service.EntryService
}

// NewContestHandler creates a new ContestHandler.
func NewContestHandler(questions *service.QuestionService, entries *service.EntryService) *ContestHandler {
	return &ContestHandler{questions: questions, entries: entries}
}

// ListQuestions handles GET /contests/{id}/questions.
func (h *ContestHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	questions, err := h.questions.ListByContest(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, questions)
}

// CreateQuestion handles POST /admin/questions.
func (h *ContestHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var input service.CreateQuestionInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	q, err := h.questions.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, q)
}

type outcomeBody struct {
	Outcome *bool `json:"outcome" validate:"required"`
}

// SetOutcome handles PUT /admin/questions/{id}/outcome.
func (h *ContestHandler) SetOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var body outcomeBody
	if !decodeAndValidate(w, r, &body) {
		return
	}

	q, err := h.questions.SetOutcome(r.Context(), id, *body.Outcome)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, q)
}

// Join handles POST /contests/{id}/join.
func (h *ContestHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	contestID, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	uc, err := h.entries.Join(r.Context(), userID, contestID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, uc)
}

// Leaderboard handles GET /contests/{id}/leaderboard.
func (h *ContestHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	board, err := h.entries.Leaderboard(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, board)
}

// MyEntries handles GET /user-contests/me.
func (h *ContestHandler) MyEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	entries, err := h.entries.ListEntries(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}

// MyTransactions handles GET /transactions/me.
func (h *ContestHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	txs, err := h.entries.ListTransactions(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, txs)
}

// MyPayouts handles GET /payouts/me.
func (h *ContestHandler) MyPayouts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	payouts, err := h.entries.ListPayouts(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, payouts)
}

// RecordTransaction handles POST /admin/transactions.
func (h *ContestHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var input service.RecordTransactionInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tx, err := h.entries.RecordTransaction(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, tx)
}
