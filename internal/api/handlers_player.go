/**
 * @description
 * This file contains the HTTP handlers for the player roster endpoints. Player
 * records carry the market value the fee estimator prices from, so the write
 * surface validates through the application service rather than touching the
 * store directly.
 */

package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/app"
	"github.com/transfersystem/transfer-service/internal/domain"
)

type playerRequest struct {
	Name          string          `json:"name"`
	MarketValue   decimal.Decimal `json:"market_value"`
	CurrentClubID *string         `json:"current_club_id,omitempty"`
}

type playerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MarketValue   decimal.Decimal `json:"market_value"`
	CurrentClubID *string         `json:"current_club_id,omitempty"`
}

func buildPlayerResponse(p *domain.Player) playerResponse {
	resp := playerResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		MarketValue: p.MarketValue,
	}
	if p.CurrentClubID != nil {
		clubID := p.CurrentClubID.String()
		resp.CurrentClubID = &clubID
	}
	return resp
}

func (h *TransferHandlers) parsePlayerRequest(w http.ResponseWriter, r *http.Request) (app.CreatePlayerInput, bool) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return app.CreatePlayerInput{}, false
	}

	input := app.CreatePlayerInput{
		Name:        req.Name,
		MarketValue: req.MarketValue,
	}
	if req.CurrentClubID != nil && *req.CurrentClubID != "" {
		clubID, err := uuid.Parse(*req.CurrentClubID)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid current_club_id: must be a UUID")
			return app.CreatePlayerInput{}, false
		}
		input.CurrentClubID = &clubID
	}
	return input, true
}

// CreatePlayerHandler handles requests to register a new player.
func (h *TransferHandlers) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parsePlayerRequest(w, r)
	if !ok {
		return
	}

	player, err := h.service.CreatePlayer(r.Context(), input)
	if err != nil {
		log.Printf("level=warn component=api endpoint=create_player outcome=failed err=%v", err)
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, buildPlayerResponse(player))
}

// ListPlayersHandler returns all players.
func (h *TransferHandlers) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	players, err := h.service.ListPlayers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	responses := make([]playerResponse, 0, len(players))
	for i := range players {
		responses = append(responses, buildPlayerResponse(&players[i]))
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// GetPlayerHandler returns a single player by id.
func (h *TransferHandlers) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.parseUUIDParam(w, r, "playerID")
	if !ok {
		return
	}
	player, err := h.service.GetPlayer(r.Context(), playerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildPlayerResponse(player))
}

// UpdatePlayerHandler handles requests to update a player's details.
func (h *TransferHandlers) UpdatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.parseUUIDParam(w, r, "playerID")
	if !ok {
		return
	}
	input, ok := h.parsePlayerRequest(w, r)
	if !ok {
		return
	}

	player, err := h.service.UpdatePlayer(r.Context(), playerID, input)
	if err != nil {
		log.Printf("level=warn component=api endpoint=update_player outcome=failed player_id=%s err=%v", playerID, err)
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildPlayerResponse(player))
}

// DeletePlayerHandler handles requests to remove a player.
func (h *TransferHandlers) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.parseUUIDParam(w, r, "playerID")
	if !ok {
		return
	}
	if err := h.service.DeletePlayer(r.Context(), playerID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
