package back

import (
	"topspin/internal/util"

	"github.com/jmoiron/sqlx"
)

type AvatarRarity string

const ( // this is stored in DB, don't change values
	AvatarRarityCommon    AvatarRarity = "common"
	AvatarRarityRare      AvatarRarity = "rare"
	AvatarRarityEpic      AvatarRarity = "epic"
	AvatarRarityLegendary AvatarRarity = "legendary"
)

// lootboxWeight is the relative draw chance of a rarity tier.
func (r AvatarRarity) lootboxWeight() int {
	switch r {
	case AvatarRarityCommon:
		return 70
	case AvatarRarityRare:
		return 25
	case AvatarRarityEpic:
		return 4
	case AvatarRarityLegendary:
		return 1
	}

	return 1
}

// An Avatar is a cosmetic a player can unlock from lootboxes and display on
// the leaderboard.
type Avatar struct {
	ID     string
	Name   string
	Emoji  string
	Rarity AvatarRarity
}

// A PlayerAvatar records one unlocked avatar in a player's collection.
type PlayerAvatar struct {
	ID         util.UUIDAsBlob
	PlayerID   util.UUIDAsBlob
	AvatarID   string
	ObtainedAt util.TimeAsTimestamp
}

// OwnedAvatar is an Avatar augmented with when the player obtained it.
type OwnedAvatar struct {
	Avatar
	ObtainedAt util.TimeAsTimestamp
}

// rarityOrder sorts legendary first, as the catalogue is displayed.
const rarityOrder = `CASE Rarity
        WHEN 'legendary' THEN 1
        WHEN 'epic' THEN 2
        WHEN 'rare' THEN 3
        WHEN 'common' THEN 4
    END`

func getAvatars(tx *sqlx.Tx) ([]Avatar, error) {
	var ret []Avatar
	query := `SELECT * FROM Avatar ORDER BY ` + rarityOrder + `, Name ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

func getAvatarByID(tx *sqlx.Tx, id string) (Avatar, error) {
	var ret Avatar
	query := `SELECT * FROM Avatar WHERE Avatar.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Avatar{}, err
	}

	return ret, nil
}

func getOwnedAvatars(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]OwnedAvatar, error) {
	var ret []OwnedAvatar
	query := `
        SELECT Avatar.ID, Avatar.Name, Avatar.Emoji, Avatar.Rarity,
               PlayerAvatar.ObtainedAt
        FROM PlayerAvatar
        INNER JOIN Avatar ON(Avatar.ID = PlayerAvatar.AvatarID)
        WHERE PlayerAvatar.PlayerID = ?
        ORDER BY ` + rarityOrder + `, PlayerAvatar.ObtainedAt DESC`
	if err := tx.Select(&ret, query, playerID); err != nil {
		return nil, err
	}

	return ret, nil
}

func (pa *PlayerAvatar) insert(tx *sqlx.Tx) error {
	_, err := tx.Exec(
		`INSERT INTO PlayerAvatar (ID, PlayerID, AvatarID, ObtainedAt) VALUES (?, ?, ?, ?)`,
		pa.ID, pa.PlayerID, pa.AvatarID, pa.ObtainedAt,
	)

	return err
}
