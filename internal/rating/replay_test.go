package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testLog() []Match {
	return []Match{
		{Player1ID: "ada", Player2ID: "bob", Player1Score: 11, Player2Score: 5, PlayedAt: day(0)},
		{Player1ID: "bob", Player2ID: "cleo", Player1Score: 7, Player2Score: 11, PlayedAt: day(2)},
		{Player1ID: "ada", Player2ID: "cleo", Player1Score: 13, Player2Score: 15, PlayedAt: day(3)},
		{Player1ID: "bob", Player2ID: "ada", Player1Score: 11, Player2Score: 9, PlayedAt: day(40)},
	}
}

func testPlayers() map[string]PlayerState {
	return map[string]PlayerState{
		"ada":  NewPlayerState(),
		"bob":  NewPlayerState(),
		"cleo": NewPlayerState(),
	}
}

func TestReplayMatchesIncrementalApplication(t *testing.T) {
	// Folding the log one match at a time the way a live submission does
	// must land on the same states as a full replay.
	states := testPlayers()
	for _, m := range testLog() {
		winnerID, loserID := m.Player1ID, m.Player2ID
		winnerScore, loserScore := m.Player1Score, m.Player2Score
		if m.Player2Score > m.Player1Score {
			winnerID, loserID = m.Player2ID, m.Player1ID
			winnerScore, loserScore = m.Player2Score, m.Player1Score
		}

		r := ComputeRatingChange(states[winnerID], states[loserID], winnerScore, loserScore, m.PlayedAt)
		states[winnerID], states[loserID] = Apply(states[winnerID], states[loserID], r, m.PlayedAt)
	}

	assert.Equal(t, states, Replay(testLog(), testPlayers()))
}

func TestReplayIsIdempotent(t *testing.T) {
	first := Replay(testLog(), testPlayers())
	second := Replay(testLog(), testPlayers())
	assert.Equal(t, first, second)
}

func TestReplayDeletionEquivalence(t *testing.T) {
	// Replaying the log with one match removed must equal replaying a log
	// that never contained it, whichever match is removed.
	log := testLog()
	for removed := range log {
		pruned := make([]Match, 0, len(log)-1)
		pruned = append(pruned, log[:removed]...)
		pruned = append(pruned, log[removed+1:]...)

		fabricated := make([]Match, len(pruned))
		copy(fabricated, pruned)

		assert.Equal(t,
			Replay(fabricated, testPlayers()),
			Replay(pruned, testPlayers()),
			"removed match #%d", removed,
		)
	}
}

func TestReplaySkipsUnknownPlayers(t *testing.T) {
	log := testLog()
	players := testPlayers()
	delete(players, "bob")

	states := Replay(log, players)

	assert.Len(t, states, 2)
	assert.NotContains(t, states, "bob")

	// Matches involving bob contributed nothing: ada and cleo end up as if
	// only their own match had been played.
	bobless := Replay([]Match{log[2]}, players)
	assert.Equal(t, bobless, states)
}

func TestReplayResetsToBaseline(t *testing.T) {
	players := testPlayers()
	skewed := players["ada"]
	skewed.Rating = 1785.23
	skewed.Wins = 12
	skewed.GamesPlayed = 30
	skewed.RustAccumulated = 1.8
	skewed.LastPlayedAt = day(99)
	players["ada"] = skewed

	states := Replay(nil, players)

	for id, state := range states {
		assert.Equal(t, NewPlayerState(), state, "player %s", id)
	}
	assert.Equal(t, 1785.23, players["ada"].Rating, "input map is not mutated")
}

func TestReplayWinLossInvariant(t *testing.T) {
	for id, state := range Replay(testLog(), testPlayers()) {
		assert.Equal(t, state.GamesPlayed, state.Wins+state.Losses, "player %s", id)
	}
}
