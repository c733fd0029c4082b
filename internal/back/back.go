package back

import (
	"context"
	"topspin/internal/util"

	"github.com/jmoiron/sqlx"
)

// Back holds the storage access and every ladder operation. All mutations go
// through a single transaction helper so a match submission, a deletion and
// its replay can never observe each other's intermediate state.
type Back struct {
	db *sqlx.DB
}

func New(sqlDriver string, sqlDSN string) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// A single writer serializes replays with concurrent submissions.
	db.SetMaxOpenConns(1)

	return &Back{
		db: db,
	}, nil
}

func (b *Back) transaction(cb util.TransactionCallback) error {
	return util.Transaction(context.Background(), b.db, cb)
}

// LoadFixtures creates a small roster with a few played matches for quick
// testing during development.
func (b *Back) LoadFixtures() error {
	names := []string{"Darunia", "Nabooru", "Rauru", "Ruto"}
	players := make([]Player, 0, len(names))

	if err := b.transaction(func(tx *sqlx.Tx) error {
		for _, name := range names {
			player := NewPlayer(name)
			if err := player.insert(tx); err != nil {
				return err
			}

			players = append(players, player)
		}

		return nil
	}); err != nil {
		return err
	}

	games := []struct {
		p1, p2         int
		score1, score2 int
	}{
		{0, 1, 11, 5},
		{2, 3, 15, 13},
		{0, 2, 11, 9},
		{1, 3, 8, 11},
	}

	for _, g := range games {
		if _, err := b.SubmitMatch(
			players[g.p1].ID, players[g.p2].ID,
			g.score1, g.score2,
		); err != nil {
			return err
		}
	}

	return nil
}
