package back

import (
	"topspin/internal/rating"
	"topspin/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A Match is one recorded game between two players, kept in the order it was
// submitted with. Everything beyond the scores is the RatingChangeResult
// snapshot taken when the match was folded in, stored so the history can be
// shown without recomputing it.
//
// A Match is immutable once recorded: it is created on submission and exists
// until explicitly deleted, which triggers a full replay.
type Match struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	Player1ID util.UUIDAsBlob
	Player2ID util.UUIDAsBlob

	// Names are denormalized so the history stays readable.
	Player1Name string
	Player2Name string

	Player1Score int
	Player2Score int

	Player1RatingBefore float64
	Player2RatingBefore float64
	Player1RatingAfter  float64
	Player2RatingAfter  float64
	Player1RatingChange float64
	Player2RatingChange float64

	Player1Rust float64
	Player2Rust float64

	Player1DaysInactive int
	Player2DaysInactive int
}

func (m *Match) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":                  m.ID,
		"CreatedAt":           m.CreatedAt,
		"Player1ID":           m.Player1ID,
		"Player2ID":           m.Player2ID,
		"Player1Name":         m.Player1Name,
		"Player2Name":         m.Player2Name,
		"Player1Score":        m.Player1Score,
		"Player2Score":        m.Player2Score,
		"Player1RatingBefore": m.Player1RatingBefore,
		"Player2RatingBefore": m.Player2RatingBefore,
		"Player1RatingAfter":  m.Player1RatingAfter,
		"Player2RatingAfter":  m.Player2RatingAfter,
		"Player1RatingChange": m.Player1RatingChange,
		"Player2RatingChange": m.Player2RatingChange,
		"Player1Rust":         m.Player1Rust,
		"Player2Rust":         m.Player2Rust,
		"Player1DaysInactive": m.Player1DaysInactive,
		"Player2DaysInactive": m.Player2DaysInactive,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getMatchByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Match{}, err
	}

	return ret, nil
}

// getMatchesChronological returns every match in replay order: timestamps
// are stored at second resolution so ties are broken by insertion order via
// the implicit rowid.
func getMatchesChronological(tx *sqlx.Tx) ([]Match, error) {
	var ret []Match
	query := `SELECT * FROM Match ORDER BY Match.CreatedAt ASC, Match.rowid ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

func getMatchesNewestFirst(tx *sqlx.Tx) ([]Match, error) {
	var ret []Match
	query := `SELECT * FROM Match ORDER BY Match.CreatedAt DESC, Match.rowid DESC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

// ratingMatch projects the stored row down to what the replay needs.
func (m *Match) ratingMatch() rating.Match {
	return rating.Match{
		Player1ID:    m.Player1ID.String(),
		Player2ID:    m.Player2ID.String(),
		Player1Score: m.Player1Score,
		Player2Score: m.Player2Score,
		PlayedAt:     m.CreatedAt.Time(),
	}
}
