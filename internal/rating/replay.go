package rating

import "time"

// Match is the stored outcome of a single game, in the player order it was
// submitted with. Scores decide the winner, PlayedAt is the recorded match
// time used as "now" during replay.
type Match struct {
	Player1ID    string
	Player2ID    string
	Player1Score int
	Player2Score int
	PlayedAt     time.Time
}

// Replay recomputes every player's rating state from scratch: each player in
// the lookup is reset to baseline, then every match is folded in, in the
// given order. Deleting a match and replaying the rest is therefore
// equivalent to the match never having been processed at all.
//
// Matches referencing a player absent from the lookup are skipped, they
// cannot affect the ratings of players that no longer exist.
//
// The inputs are never mutated, the returned map is a fresh projection. The
// matches slice must already be in chronological order, ties broken by
// insertion order.
func Replay(matches []Match, players map[string]PlayerState) map[string]PlayerState {
	out := make(map[string]PlayerState, len(players))
	for id := range players {
		out[id] = NewPlayerState()
	}

	for _, m := range matches {
		p1, ok1 := out[m.Player1ID]
		p2, ok2 := out[m.Player2ID]
		if !ok1 || !ok2 {
			continue
		}

		p1Won := m.Player1Score > m.Player2Score

		winner, loser := p1, p2
		winnerScore, loserScore := m.Player1Score, m.Player2Score
		if !p1Won {
			winner, loser = p2, p1
			winnerScore, loserScore = m.Player2Score, m.Player1Score
		}

		r := ComputeRatingChange(winner, loser, winnerScore, loserScore, m.PlayedAt)
		winner, loser = Apply(winner, loser, r, m.PlayedAt)

		if p1Won {
			out[m.Player1ID], out[m.Player2ID] = winner, loser
		} else {
			out[m.Player1ID], out[m.Player2ID] = loser, winner
		}
	}

	return out
}
