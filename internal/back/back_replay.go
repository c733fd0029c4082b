package back

import (
	"log"
	"time"
	"topspin/internal/metrics"
	"topspin/internal/rating"

	"github.com/jmoiron/sqlx"
)

// replayAllMatches recomputes every player's rating state from scratch:
// everyone is reset to baseline and the surviving match log is folded back
// in chronological order. Deleting a match cannot be undone locally because
// every later match read the K-factor, rust and expected performance that
// this match produced, so the whole projection is rebuilt instead.
//
// Must run inside the transaction of whatever mutation triggered it.
func (b *Back) replayAllMatches(tx *sqlx.Tx) error {
	start := time.Now()

	var players []Player
	if err := tx.Select(&players, `SELECT * FROM Player`); err != nil {
		return err
	}

	matches, err := getMatchesChronological(tx)
	if err != nil {
		return err
	}

	states := make(map[string]rating.PlayerState, len(players))
	for k := range players {
		states[players[k].ID.String()] = players[k].RatingState()
	}

	history := make([]rating.Match, 0, len(matches))
	for k := range matches {
		history = append(history, matches[k].ratingMatch())
	}

	states = rating.Replay(history, states)

	for k := range players {
		players[k].SetRatingState(states[players[k].ID.String()])
		if err := players[k].update(tx); err != nil {
			return err
		}
	}

	metrics.ObserveReplay(time.Since(start))

	return nil
}

// RecomputeRatings replays the full match log on demand. Submissions and
// replays always produce the same states (replay is idempotent), so this is
// only useful to heal a store that was edited out-of-band.
func (b *Back) RecomputeRatings() error {
	start := time.Now()

	if err := b.transaction(b.replayAllMatches); err != nil {
		return err
	}

	log.Printf("info: recomputed all ratings in %s", time.Since(start))

	return nil
}
