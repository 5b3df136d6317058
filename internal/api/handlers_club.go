/**
 * @description
 * This file contains the HTTP handlers for the club endpoints. A club's budget
 * is set once at creation; afterwards only the budget ledger moves it, so the
 * update endpoint accepts a name change and nothing else.
 */

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/app"
	"github.com/transfersystem/transfer-service/internal/domain"
)

type createClubRequest struct {
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

type renameClubRequest struct {
	Name string `json:"name"`
}

type clubResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

func buildClubResponse(c *domain.Club) clubResponse {
	return clubResponse{
		ID:     c.ID.String(),
		Name:   c.Name,
		Budget: c.Budget,
	}
}

// CreateClubHandler handles requests to register a new club with its opening budget.
func (h *TransferHandlers) CreateClubHandler(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	club, err := h.service.CreateClub(r.Context(), app.CreateClubInput{Name: req.Name, Budget: req.Budget})
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_club outcome=failed err=%v", err)
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, buildClubResponse(club))
}

// ListClubsHandler returns all clubs.
func (h *TransferHandlers) ListClubsHandler(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.service.ListClubs(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	responses := make([]clubResponse, 0, len(clubs))
	for i := range clubs {
		responses = append(responses, buildClubResponse(&clubs[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// GetClubHandler returns a single club by id.
func (h *TransferHandlers) GetClubHandler(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.parseUUIDParam(w, r, "clubID")
	if !ok {
		return
	}
	club, err := h.service.GetClub(r.Context(), clubID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildClubResponse(club))
}

// RenameClubHandler handles requests to rename a club. Budget fields in the
// body are ignored; the ledger owns that column.
func (h *TransferHandlers) RenameClubHandler(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.parseUUIDParam(w, r, "clubID")
	if !ok {
		return
	}
	var req renameClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	club, err := h.service.RenameClub(r.Context(), clubID, req.Name)
	if err != nil {
		log.Printf("level=warn component=api endpoint=rename_club outcome=failed club_id=%s err=%v", clubID, err)
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildClubResponse(club))
}

// DeleteClubHandler handles requests to remove a club.
func (h *TransferHandlers) DeleteClubHandler(w http.ResponseWriter, r *http.Request) {
	clubID, ok := h.parseUUIDParam(w, r, "clubID")
	if !ok {
		return
	}
	if err := h.service.DeleteClub(r.Context(), clubID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
