package back

import (
	"errors"
	"io/ioutil"
	"os"
	"testing"
	"topspin/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func createTestBack(t *testing.T) *Back {
	t.Helper()

	f, err := ioutil.TempFile("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}

	return back
}

func TestSubmitMatch(t *testing.T) {
	back := createTestBack(t)

	alice, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)
	bob, err := back.RegisterPlayer("Bob")
	require.NoError(t, err)

	match, err := back.SubmitMatch(alice.ID, bob.ID, 11, 5)
	require.NoError(t, err)

	require.Equal(t, 13.03, match.Player1RatingChange)
	require.Equal(t, -9.14, match.Player2RatingChange)
	require.Equal(t, 1013.03, match.Player1RatingAfter)
	require.Equal(t, 990.86, match.Player2RatingAfter)

	alice, err = back.GetPlayer(alice.ID)
	require.NoError(t, err)
	require.Equal(t, 1013.03, alice.Rating)
	require.Equal(t, 1, alice.Wins)
	require.Equal(t, 0, alice.Losses)
	require.Equal(t, 1, alice.GamesPlayed)
	require.True(t, alice.LastPlayedAt.Valid)
	require.Equal(t, 1, alice.Lootboxes, "the winner earns a lootbox")

	bob, err = back.GetPlayer(bob.ID)
	require.NoError(t, err)
	require.Equal(t, 990.86, bob.Rating)
	require.Equal(t, 0, bob.Wins)
	require.Equal(t, 1, bob.Losses)
	require.Equal(t, 0, bob.Lootboxes)
}

func TestSubmitMatchValidation(t *testing.T) {
	back := createTestBack(t)

	alice, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)
	bob, err := back.RegisterPlayer("Bob")
	require.NoError(t, err)

	for _, v := range []struct {
		name           string
		score1, score2 int
	}{
		{"equal scores", 11, 11},
		{"negative score", -1, 11},
	} {
		_, err := back.SubmitMatch(alice.ID, bob.ID, v.score1, v.score2)
		require.True(t, errors.Is(err, util.ErrPublic("")), "%s: expected a public error, got %v", v.name, err)
	}

	_, err = back.SubmitMatch(alice.ID, alice.ID, 11, 5)
	require.True(t, errors.Is(err, util.ErrPublic("")), "self-play should be rejected")

	alice, err = back.GetPlayer(alice.ID)
	require.NoError(t, err)
	require.Equal(t, 0, alice.GamesPlayed, "rejected matches must not touch ratings")
}

func TestRegisterPlayerDuplicateName(t *testing.T) {
	back := createTestBack(t)

	_, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)

	for _, name := range []string{"Alice", "alice", "  Alice  "} {
		_, err := back.RegisterPlayer(name)
		require.True(t, errors.Is(err, util.ErrPublic("")), "%q should collide with Alice", name)
	}
}

func TestDeleteMatchReplaysHistory(t *testing.T) {
	back := createTestBack(t)

	alice, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)
	bob, err := back.RegisterPlayer("Bob")
	require.NoError(t, err)

	_, err = back.SubmitMatch(alice.ID, bob.ID, 11, 5)
	require.NoError(t, err)
	_, err = back.SubmitMatch(bob.ID, alice.ID, 11, 7)
	require.NoError(t, err)

	before := ratingSnapshot(t, back, alice.ID, bob.ID)

	match, err := back.SubmitMatch(alice.ID, bob.ID, 15, 13)
	require.NoError(t, err)

	after := ratingSnapshot(t, back, alice.ID, bob.ID)
	require.NotEqual(t, before, after)

	require.NoError(t, back.DeleteMatch(match.ID))

	require.Equal(t, before, ratingSnapshot(t, back, alice.ID, bob.ID),
		"deleting the last match must restore the prior standings")

	matches, err := back.GetMatches()
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestDeletePlayerReplaysHistory(t *testing.T) {
	back := createTestBack(t)

	alice, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)
	bob, err := back.RegisterPlayer("Bob")
	require.NoError(t, err)

	_, err = back.SubmitMatch(alice.ID, bob.ID, 11, 5)
	require.NoError(t, err)

	require.NoError(t, back.DeletePlayer(bob.ID))

	_, err = back.GetPlayer(bob.ID)
	require.Error(t, err)

	matches, err := back.GetMatches()
	require.NoError(t, err)
	require.Len(t, matches, 0, "a deleted player's matches go with them")

	alice, err = back.GetPlayer(alice.ID)
	require.NoError(t, err)
	require.Equal(t, 1000.0, alice.Rating, "with no matches left, Alice is back at baseline")
	require.Equal(t, 0, alice.GamesPlayed)
	require.False(t, alice.LastPlayedAt.Valid)
}

func TestLoadFixtures(t *testing.T) {
	back := createTestBack(t)
	require.NoError(t, back.LoadFixtures())

	players, err := back.GetLeaderboard()
	require.NoError(t, err)
	require.Len(t, players, 4)

	for k := 1; k < len(players); k++ {
		require.GreaterOrEqual(t, players[k-1].Rating, players[k].Rating,
			"leaderboard must be sorted by rating")
	}

	matches, err := back.GetMatches()
	require.NoError(t, err)
	require.Len(t, matches, 4)
}

func TestPredictMatch(t *testing.T) {
	back := createTestBack(t)

	alice, err := back.RegisterPlayer("Alice")
	require.NoError(t, err)
	bob, err := back.RegisterPlayer("Bob")
	require.NoError(t, err)

	pred, err := back.PredictMatch(alice.ID, bob.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.5, pred.Player1WinProbability, 1e-9)
	require.InDelta(t, 0.5, pred.Player2WinProbability, 1e-9)
}

// ratingSnapshot reads the fields a replay is allowed to rewrite.
func ratingSnapshot(t *testing.T, back *Back, ids ...util.UUIDAsBlob) map[string]interface{} {
	t.Helper()

	ret := map[string]interface{}{}
	for _, id := range ids {
		p, err := back.GetPlayer(id)
		require.NoError(t, err)
		ret[p.Name] = p.RatingState()
	}

	return ret
}
