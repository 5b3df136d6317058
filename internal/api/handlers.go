/**
 * @description
 * This file contains the HTTP handlers for the transfer workflow endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain: For service logic, models, and typed errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/app"
	"github.com/transfersystem/transfer-service/internal/domain"
)

// TransferHandlers holds the application service that handlers will use.
type TransferHandlers struct {
	service *app.Service
}

// NewTransferHandlers creates a new instance of TransferHandlers.
func NewTransferHandlers(service *app.Service) *TransferHandlers {
	return &TransferHandlers{service: service}
}

// transferResponse is the JSON shape returned for a transfer. It mirrors the
// domain record and adds display_status, the UI-facing label that renders a
// cancel out of SUBMITTED or NEGOTIATION as REJECTED.
type transferResponse struct {
	ID                      string           `json:"id"`
	PlayerID                string           `json:"player_id"`
	FromClubID              string           `json:"from_club_id"`
	ToClubID                string           `json:"to_club_id"`
	Status                  string           `json:"status"`
	DisplayStatus           string           `json:"display_status"`
	Clauses                 []domain.Clause  `json:"clauses"`
	ComputedFee             *decimal.Decimal `json:"computed_fee,omitempty"`
	InitiationTimestamp     string           `json:"initiation_timestamp"`
	LastTransitionTimestamp string           `json:"last_transition_timestamp"`
}

func buildTransferResponse(t *domain.Transfer) transferResponse {
	clauses := t.Clauses
	if clauses == nil {
		clauses = []domain.Clause{}
	}
	return transferResponse{
		ID:                      t.ID.String(),
		PlayerID:                t.PlayerID.String(),
		FromClubID:              t.FromClubID.String(),
		ToClubID:                t.ToClubID.String(),
		Status:                  string(t.Status),
		DisplayStatus:           string(t.DisplayStatus()),
		Clauses:                 clauses,
		ComputedFee:             t.ComputedFee,
		InitiationTimestamp:     t.InitiationTimestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		LastTransitionTimestamp: t.LastTransitionTimestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// initiateTransferRequest is the body for POST /transfers.
type initiateTransferRequest struct {
	PlayerID   string          `json:"player_id"`
	FromClubID string          `json:"from_club_id"`
	ToClubID   string          `json:"to_club_id"`
	Clauses    []domain.Clause `json:"clauses"`
}

// InitiateTransferHandler handles requests to create a new DRAFT transfer.
func (h *TransferHandlers) InitiateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req initiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=initiate_transfer outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	input := app.InitiateTransferInput{Clauses: req.Clauses}
	var ok bool
	if input.PlayerID, ok = h.parseUUIDField(w, "player_id", req.PlayerID); !ok {
		return
	}
	if input.FromClubID, ok = h.parseUUIDField(w, "from_club_id", req.FromClubID); !ok {
		return
	}
	if input.ToClubID, ok = h.parseUUIDField(w, "to_club_id", req.ToClubID); !ok {
		return
	}

	transfer, err := h.service.InitiateTransfer(r.Context(), input)
	if err != nil {
		log.Printf("level=warn component=api endpoint=initiate_transfer outcome=failed player_id=%s err=%v", req.PlayerID, err)
		h.writeDomainError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=initiate_transfer outcome=accepted transfer_id=%s", transfer.ID)
	h.writeJSON(w, http.StatusCreated, buildTransferResponse(transfer))
}

// ListTransfersHandler returns all transfers, newest first.
func (h *TransferHandlers) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.service.ListTransfers(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transfers outcome=failed err=%v", err)
		h.writeDomainError(w, err)
		return
	}

	responses := make([]transferResponse, 0, len(transfers))
	for i := range transfers {
		responses = append(responses, buildTransferResponse(&transfers[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// GetTransferHandler returns a single transfer by id.
func (h *TransferHandlers) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	transferID, ok := h.parseUUIDParam(w, r, "transferID")
	if !ok {
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), transferID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildTransferResponse(transfer))
}

// ApplyActionHandler returns a handler that applies the given workflow action
// to the transfer named in the URL. The five action routes share this body;
// only the action differs.
func (h *TransferHandlers) ApplyActionHandler(action domain.TransferAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transferID, ok := h.parseUUIDParam(w, r, "transferID")
		if !ok {
			return
		}

		transfer, err := h.service.ApplyAction(r.Context(), transferID, action)
		if err != nil {
			log.Printf("level=warn component=api endpoint=apply_action outcome=failed transfer_id=%s action=%s err=%v",
				transferID, action, err)
			h.writeDomainError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, buildTransferResponse(transfer))
	}
}

func (h *TransferHandlers) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TransferHandlers) parseUUIDField(w http.ResponseWriter, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: must be a UUID", field))
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps a typed error from the core to its HTTP status.
func (h *TransferHandlers) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		h.writeError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		h.writeError(w, http.StatusConflict, transitionErr.Error())
		return
	}
	var fundsErr *domain.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		h.writeError(w, http.StatusPaymentRequired, fundsErr.Error())
		return
	}
	if errors.Is(err, app.ErrPlayerInActiveTransfer) {
		h.writeError(w, http.StatusConflict, "Player is already in an active transfer.")
		return
	}
	var transientErr *domain.TransientError
	if errors.As(err, &transientErr) {
		h.writeError(w, http.StatusServiceUnavailable, "Temporary infrastructure failure. Please retry.")
		return
	}
	h.writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

// writeJSON is a helper for writing JSON responses.
func (h *TransferHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *TransferHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
