package back

import (
	"strings"
	"time"
	"topspin/internal/rating"
	"topspin/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a ladder competitor. Its rating fields are a projection of the
// match log and are only ever written by a submission or a replay, the
// cosmetic fields (Lootboxes, CurrentAvatarID) are earned currency and
// survive replays untouched.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string

	Rating          float64
	Wins            int
	Losses          int
	GamesPlayed     int
	LastPlayedAt    util.NullTimeAsTimestamp
	RustAccumulated float64

	Lootboxes       int
	CurrentAvatarID null.String
}

func NewPlayer(name string) Player {
	return Player{
		ID:              util.NewUUIDAsBlob(),
		CreatedAt:       util.TimeAsTimestamp(time.Now()),
		Name:            name,
		Rating:          rating.BaseRating,
		RustAccumulated: 1.0,
	}
}

// RatingState extracts the snapshot the rating engine operates on.
func (p *Player) RatingState() rating.PlayerState {
	state := rating.PlayerState{
		Rating:          p.Rating,
		Wins:            p.Wins,
		Losses:          p.Losses,
		GamesPlayed:     p.GamesPlayed,
		RustAccumulated: p.RustAccumulated,
	}

	if p.LastPlayedAt.Valid {
		state.LastPlayedAt = p.LastPlayedAt.Time.Time()
	}

	return state
}

// SetRatingState folds an engine-produced snapshot back into the player.
func (p *Player) SetRatingState(state rating.PlayerState) {
	p.Rating = state.Rating
	p.Wins = state.Wins
	p.Losses = state.Losses
	p.GamesPlayed = state.GamesPlayed
	p.LastPlayedAt = util.NewNullTimeAsTimestamp(state.LastPlayedAt)
	p.RustAccumulated = state.RustAccumulated
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":              p.ID,
		"CreatedAt":       p.CreatedAt,
		"Name":            p.Name,
		"Rating":          p.Rating,
		"Wins":            p.Wins,
		"Losses":          p.Losses,
		"GamesPlayed":     p.GamesPlayed,
		"LastPlayedAt":    p.LastPlayedAt,
		"RustAccumulated": p.RustAccumulated,
		"Lootboxes":       p.Lootboxes,
		"CurrentAvatarID": p.CurrentAvatarID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":            p.Name,
		"Rating":          p.Rating,
		"Wins":            p.Wins,
		"Losses":          p.Losses,
		"GamesPlayed":     p.GamesPlayed,
		"LastPlayedAt":    p.LastPlayedAt,
		"RustAccumulated": p.RustAccumulated,
		"Lootboxes":       p.Lootboxes,
		"CurrentAvatarID": p.CurrentAvatarID,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE LOWER(Player.Name) = LOWER(?) LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayers(tx *sqlx.Tx) ([]Player, error) {
	var ret []Player
	if err := tx.Select(&ret, `SELECT * FROM Player ORDER BY Player.Rating DESC`); err != nil {
		return nil, err
	}

	return ret, nil
}

// RegisterPlayer creates a new player at the baseline rating state.
func (b *Back) RegisterPlayer(name string) (player Player, _ error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, util.ErrPublic("a player name is required")
	}

	if len(name) > 32 {
		return Player{}, util.ErrPublic("a player name must be 32 characters or less")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByName(tx, name); err == nil {
			return util.ErrPublic("a player with this name already exists")
		}

		player = NewPlayer(name)
		return player.insert(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// GetLeaderboard returns every player, best rating first.
func (b *Back) GetLeaderboard() (players []Player, _ error) {
	return players, b.transaction(func(tx *sqlx.Tx) (err error) {
		players, err = getPlayers(tx)
		return err
	})
}

func (b *Back) GetPlayer(id util.UUIDAsBlob) (player Player, _ error) {
	return player, b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, id)
		return err
	})
}

// DeletePlayer removes a player together with every match they played, then
// replays the remaining history so the other ratings no longer carry any
// effect of those matches.
func (b *Back) DeletePlayer(id util.UUIDAsBlob) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByID(tx, id); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM PlayerAvatar WHERE PlayerID = ?`, id); err != nil {
			return err
		}

		if _, err := tx.Exec(
			`DELETE FROM Match WHERE Player1ID = ? OR Player2ID = ?`,
			id, id,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM Player WHERE ID = ?`, id); err != nil {
			return err
		}

		return b.replayAllMatches(tx)
	})
}
