package ingest

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/nhl"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/pkg/logger"
	"github.com/fortuna/faceoff/pkg/metrics"
)

// PlayerLookup resolves one player's status and bio.
type PlayerLookup interface {
	Player(ctx context.Context, playerID int) (*nhl.PlayerCareerStats, error)
}

// Maintainer keeps the players table in step with upstream activity:
// inactive players are pruned, active ones are inserted or refreshed.
type Maintainer struct {
	lookup  PlayerLookup
	ledger  ledger.Ledger
	log     *logrus.Entry
	metrics *metrics.Manager
}

// MaintainResult counts what one pass did.
type MaintainResult struct {
	Upserted int
	Pruned   int
	Failed   int
}

// NewMaintainer builds a maintainer. log and m may be nil.
func NewMaintainer(lookup PlayerLookup, l ledger.Ledger, log *logrus.Entry, m *metrics.Manager) *Maintainer {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.NewManager()
	}
	return &Maintainer{
		lookup:  lookup,
		ledger:  l,
		log:     log.WithField("component", "player-maintainer"),
		metrics: m,
	}
}

// Reconcile checks each player id once. A failed lookup or write affects
// only that player.
func (m *Maintainer) Reconcile(ctx context.Context, playerIDs []int) MaintainResult {
	var res MaintainResult
	for _, id := range playerIDs {
		if ctx.Err() != nil {
			break
		}
		log := m.log.WithField("player_id", id)

		upserted, pruned, err := m.reconcileOne(ctx, id)
		switch {
		case err != nil:
			log.WithError(err).Error("Failed to maintain player")
			m.metrics.UnitFailed(metrics.UnitPlayer)
			res.Failed++
		case pruned:
			log.Info("Pruned inactive player")
			m.metrics.PlayerPruned()
			res.Pruned++
		case upserted:
			m.metrics.PlayerUpserted()
			res.Upserted++
		}
	}

	m.log.WithFields(logrus.Fields{
		"players":  len(playerIDs),
		"upserted": res.Upserted,
		"pruned":   res.Pruned,
		"failed":   res.Failed,
	}).Info("Player maintenance complete")
	return res
}

func (m *Maintainer) reconcileOne(ctx context.Context, id int) (upserted, pruned bool, err error) {
	p, err := m.lookup.Player(ctx, id)
	if err != nil {
		return false, false, err
	}

	if !p.Active {
		// Retired players never seen by this ledger need no write.
		known, err := m.ledger.HasPlayer(ctx, id)
		if err != nil || !known {
			return false, false, err
		}
		removed, err := m.ledger.DeletePlayer(ctx, id)
		return false, removed, err
	}

	err = m.ledger.UpsertPlayer(ctx, store.Player{
		PlayerID:     id,
		TeamID:       p.TeamID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Position:     p.Position,
		HeightInches: p.HeightInches,
		WeightPounds: p.WeightPounds,
	})
	if err != nil {
		return false, false, err
	}
	return true, false, nil
}
