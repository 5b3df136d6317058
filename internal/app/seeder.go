/**
 * @description
 * This file seeds a demo roster of clubs and players at startup so a fresh
 * deployment has data to drive the admin UI against. Seeding is idempotent:
 * records are matched by name and never duplicated or overwritten.
 */

package app

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
	"github.com/transfersystem/transfer-service/internal/store"
)

// Seeder populates demo clubs and players.
type Seeder struct {
	repo store.Repository
}

// NewSeeder creates a new Seeder instance.
func NewSeeder(repo store.Repository) *Seeder {
	return &Seeder{repo: repo}
}

type seedClub struct {
	name   string
	budget int64
}

type seedPlayer struct {
	name        string
	marketValue int64
	clubName    string
}

var seedClubs = []seedClub{
	{"Real Madrid CF", 600_000_000},
	{"FC Barcelona", 550_000_000},
	{"Manchester United FC", 700_000_000},
	{"Liverpool FC", 450_000_000},
	{"FC Bayern Munich", 500_000_000},
}

var seedPlayers = []seedPlayer{
	{"Vinícius Júnior", 150_000_000, "Real Madrid CF"},
	{"Jude Bellingham", 180_000_000, "Real Madrid CF"},
	{"Gavi", 90_000_000, "FC Barcelona"},
	{"Lamine Yamal", 75_000_000, "FC Barcelona"},
	{"Bruno Fernandes", 70_000_000, "Manchester United FC"},
	{"Mohamed Salah", 65_000_000, "Liverpool FC"},
	{"Jamal Musiala", 110_000_000, "FC Bayern Munich"},
	{"Harry Kane", 110_000_000, "FC Bayern Munich"},
}

// Seed inserts any missing demo clubs and players.
func (s *Seeder) Seed(ctx context.Context) error {
	clubIDs := make(map[string]uuid.UUID, len(seedClubs))

	for _, sc := range seedClubs {
		existing, err := s.repo.FindClubByName(ctx, sc.name)
		if err == nil {
			clubIDs[sc.name] = existing.ID
			continue
		}
		if !domain.IsNotFound(err) {
			return err
		}
		club := &domain.Club{
			ID:     uuid.New(),
			Name:   sc.name,
			Budget: decimal.NewFromInt(sc.budget),
		}
		if err := s.repo.CreateClub(ctx, club); err != nil {
			return err
		}
		clubIDs[sc.name] = club.ID
		log.Printf("level=info component=seeder msg=\"club seeded\" name=%q budget=%s", club.Name, club.Budget)
	}

	for _, sp := range seedPlayers {
		_, err := s.repo.FindPlayerByName(ctx, sp.name)
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			return err
		}
		player := &domain.Player{
			ID:          uuid.New(),
			Name:        sp.name,
			MarketValue: decimal.NewFromInt(sp.marketValue),
		}
		if clubID, ok := clubIDs[sp.clubName]; ok {
			id := clubID
			player.CurrentClubID = &id
		}
		if err := s.repo.CreatePlayer(ctx, player); err != nil {
			return err
		}
		log.Printf("level=info component=seeder msg=\"player seeded\" name=%q market_value=%s", player.Name, player.MarketValue)
	}
	return nil
}
