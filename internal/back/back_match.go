package back

import (
	"time"
	"topspin/internal/metrics"
	"topspin/internal/rating"
	"topspin/internal/util"

	"github.com/jmoiron/sqlx"
)

// SubmitMatch validates and records a played game, runs the rating engine
// over it, and persists both players' new state alongside the match
// snapshot. The winner earns a lootbox.
func (b *Back) SubmitMatch(
	player1ID, player2ID util.UUIDAsBlob,
	score1, score2 int,
) (match Match, _ error) {
	// The engine trusts its winner/loser labels, malformed outcomes stop here.
	if player1ID == player2ID {
		return Match{}, util.ErrPublic("a player cannot play against themselves")
	}

	if score1 < 0 || score2 < 0 {
		return Match{}, util.ErrPublic("scores must be non-negative")
	}

	if score1 == score2 {
		return Match{}, util.ErrPublic("scores cannot be equal, one player must win")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		p1, err := getPlayerByID(tx, player1ID)
		if err != nil {
			return err
		}

		p2, err := getPlayerByID(tx, player2ID)
		if err != nil {
			return err
		}

		match = playMatch(&p1, &p2, score1, score2, time.Now())

		if score1 > score2 {
			p1.Lootboxes++
		} else {
			p2.Lootboxes++
		}

		if err := p1.update(tx); err != nil {
			return err
		}

		if err := p2.update(tx); err != nil {
			return err
		}

		return match.insert(tx)
	}); err != nil {
		return Match{}, err
	}

	metrics.MatchesSubmitted.Inc()

	return match, nil
}

// playMatch runs the engine over one game, folds the result into both
// players and returns the match row to persist.
func playMatch(p1, p2 *Player, score1, score2 int, playedAt time.Time) Match {
	p1Won := score1 > score2

	winner, loser := p1, p2
	winnerScore, loserScore := score1, score2
	if !p1Won {
		winner, loser = p2, p1
		winnerScore, loserScore = score2, score1
	}

	r := rating.ComputeRatingChange(
		winner.RatingState(), loser.RatingState(),
		winnerScore, loserScore,
		playedAt,
	)

	match := Match{
		ID:           util.NewUUIDAsBlob(),
		CreatedAt:    util.TimeAsTimestamp(playedAt),
		Player1ID:    p1.ID,
		Player2ID:    p2.ID,
		Player1Name:  p1.Name,
		Player2Name:  p2.Name,
		Player1Score: score1,
		Player2Score: score2,

		Player1RatingBefore: p1.Rating,
		Player2RatingBefore: p2.Rating,
	}

	winnerState, loserState := rating.Apply(
		winner.RatingState(), loser.RatingState(),
		r, playedAt,
	)
	winner.SetRatingState(winnerState)
	loser.SetRatingState(loserState)

	match.Player1RatingAfter = p1.Rating
	match.Player2RatingAfter = p2.Rating

	if p1Won {
		match.Player1RatingChange = r.WinnerChange
		match.Player2RatingChange = r.LoserChange
		match.Player1Rust = r.WinnerRust
		match.Player2Rust = r.LoserRust
		match.Player1DaysInactive = r.WinnerDaysInactive
		match.Player2DaysInactive = r.LoserDaysInactive
	} else {
		match.Player1RatingChange = r.LoserChange
		match.Player2RatingChange = r.WinnerChange
		match.Player1Rust = r.LoserRust
		match.Player2Rust = r.WinnerRust
		match.Player1DaysInactive = r.LoserDaysInactive
		match.Player2DaysInactive = r.WinnerDaysInactive
	}

	return match
}

// GetMatches returns the full history, most recent first.
func (b *Back) GetMatches() (matches []Match, _ error) {
	return matches, b.transaction(func(tx *sqlx.Tx) (err error) {
		matches, err = getMatchesNewestFirst(tx)
		return err
	})
}

// DeleteMatch removes one match from history and replays everything that
// remains. Deletion and replay share a transaction: either the ledger and
// every rating move together or nothing moves at all.
func (b *Back) DeleteMatch(id util.UUIDAsBlob) error {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getMatchByID(tx, id); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM Match WHERE ID = ?`, id); err != nil {
			return err
		}

		return b.replayAllMatches(tx)
	}); err != nil {
		return err
	}

	metrics.MatchesDeleted.Inc()

	return nil
}
