package back

import (
	"database/sql"
	"errors"
	"math/rand"
	"time"
	"topspin/internal/metrics"
	"topspin/internal/util"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// LootboxReward is what opening one lootbox yields.
type LootboxReward struct {
	Avatar             Avatar
	IsNew              bool
	RemainingLootboxes int
}

// OpenLootbox consumes one of the player's lootboxes and draws a
// rarity-weighted random avatar, preferring avatars the player does not own
// yet. Duplicates only become possible once the whole catalogue is owned.
// A player's first avatar automatically becomes their displayed one.
func (b *Back) OpenLootbox(playerID util.UUIDAsBlob) (reward LootboxReward, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, playerID)
		if err != nil {
			return err
		}

		if player.Lootboxes < 1 {
			return util.ErrPublic("no lootboxes available, win a match first")
		}

		avatars, err := getAvatars(tx)
		if err != nil {
			return err
		}
		if len(avatars) == 0 {
			return errors.New("the avatar catalogue is empty")
		}

		owned, err := getOwnedAvatars(tx, playerID)
		if err != nil {
			return err
		}

		ownedIDs := make(map[string]bool, len(owned))
		for k := range owned {
			ownedIDs[owned[k].ID] = true
		}

		pool := make([]Avatar, 0, len(avatars))
		for k := range avatars {
			if !ownedIDs[avatars[k].ID] {
				pool = append(pool, avatars[k])
			}
		}
		if len(pool) == 0 {
			pool = avatars
		}

		selected := pickWeightedAvatar(pool)

		reward = LootboxReward{
			Avatar: selected,
			IsNew:  !ownedIDs[selected.ID],
		}

		if reward.IsNew {
			pa := PlayerAvatar{
				ID:         util.NewUUIDAsBlob(),
				PlayerID:   playerID,
				AvatarID:   selected.ID,
				ObtainedAt: util.TimeAsTimestamp(time.Now()),
			}
			if err := pa.insert(tx); err != nil {
				return err
			}

			if !player.CurrentAvatarID.Valid {
				player.CurrentAvatarID = null.StringFrom(selected.ID)
			}
		}

		player.Lootboxes--
		reward.RemainingLootboxes = player.Lootboxes

		return player.update(tx)
	}); err != nil {
		return LootboxReward{}, err
	}

	metrics.LootboxesOpened.Inc()

	return reward, nil
}

func pickWeightedAvatar(pool []Avatar) Avatar {
	total := 0
	for k := range pool {
		total += pool[k].Rarity.lootboxWeight()
	}

	roll := rand.Intn(total)
	for k := range pool {
		roll -= pool[k].Rarity.lootboxWeight()
		if roll < 0 {
			return pool[k]
		}
	}

	return pool[len(pool)-1]
}

// SetCurrentAvatar changes the avatar a player displays, which must be one
// they own.
func (b *Back) SetCurrentAvatar(playerID util.UUIDAsBlob, avatarID string) (avatar Avatar, _ error) {
	return avatar, b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, playerID)
		if err != nil {
			return err
		}

		var count int
		if err := tx.Get(
			&count,
			`SELECT COUNT(*) FROM PlayerAvatar WHERE PlayerID = ? AND AvatarID = ?`,
			playerID, avatarID,
		); err != nil {
			return err
		}
		if count == 0 {
			return util.ErrPublic("you do not own this avatar")
		}

		if avatar, err = getAvatarByID(tx, avatarID); err != nil {
			return err
		}

		player.CurrentAvatarID = null.StringFrom(avatarID)

		return player.update(tx)
	})
}

// GetAvatarCatalogue returns every unlockable avatar, rarest first.
func (b *Back) GetAvatarCatalogue() (avatars []Avatar, _ error) {
	return avatars, b.transaction(func(tx *sqlx.Tx) (err error) {
		avatars, err = getAvatars(tx)
		return err
	})
}

// GetPlayerAvatars returns a player's collection, rarest first.
func (b *Back) GetPlayerAvatars(playerID util.UUIDAsBlob) (avatars []OwnedAvatar, _ error) {
	return avatars, b.transaction(func(tx *sqlx.Tx) (err error) {
		if _, err = getPlayerByID(tx, playerID); err != nil {
			return err
		}

		avatars, err = getOwnedAvatars(tx, playerID)
		return err
	})
}

// GetCurrentAvatar returns the avatar a player currently displays, or
// sql.ErrNoRows if they display none.
func (b *Back) GetCurrentAvatar(playerID util.UUIDAsBlob) (avatar Avatar, _ error) {
	return avatar, b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err := getPlayerByID(tx, playerID)
		if err != nil {
			return err
		}

		if !player.CurrentAvatarID.Valid {
			return sql.ErrNoRows
		}

		avatar, err = getAvatarByID(tx, player.CurrentAvatarID.String)
		return err
	})
}
