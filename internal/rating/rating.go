// Package rating implements the performance-based rating engine behind the
// ladder rankings. Rating changes are driven by how a player performed
// against expectation rather than by the bare win/loss outcome, which lets
// an underdog gain rating on a close loss.
//
// Everything in this package is pure: callers pass prior state in and
// persist the returned values themselves.
package rating

import (
	"math"
	"time"
)

// BaseRating is the rating every player starts from.
const BaseRating = 1000.0

// Base K-factors.
const (
	kProvisional = 40.0 // higher volatility for new players
	kEstablished = 24.0

	// A player is provisional until they played this many games.
	provisionalGames = 10
)

// ratingScale is the standard ELO logistic scale.
const ratingScale = 400.0

// Performance model weights.
const (
	winAnchorBonus   = 0.08
	marginWeight     = 0.4
	deuceBattleBonus = 0.06
)

// maxPoints is the standard table tennis game cap, any game won past it went
// into deuce.
const maxPoints = 11

// Rust settings. Rust is extra rating volatility earned by sitting out.
const (
	rustGracePeriodDays = 14
	rustScaleDays       = 60.0
	rustMax             = 2.0
	rustDecayRate       = 0.4 // fraction of excess rust lost per game played
)

// PlayerState is the snapshot of a player the engine reads and produces. A
// zero LastPlayedAt means the player never played.
type PlayerState struct {
	Rating          float64
	Wins            int
	Losses          int
	GamesPlayed     int
	LastPlayedAt    time.Time
	RustAccumulated float64
}

// NewPlayerState returns the baseline state every player starts from and
// every replay resets to.
func NewPlayerState() PlayerState {
	return PlayerState{
		Rating:          BaseRating,
		RustAccumulated: 1.0,
	}
}

// Result is the outcome of running the engine over a single match. Rating
// changes and rust values are rounded to two decimals, NewWinnerRust and
// NewLoserRust are the accumulated rust to persist before the decay-after-play
// step (see Apply).
type Result struct {
	WinnerChange float64
	LoserChange  float64

	// Rust multipliers applied to this match's K-factors.
	WinnerRust float64
	LoserRust  float64

	// Accumulated rust, pre-decay.
	NewWinnerRust float64
	NewLoserRust  float64

	WinnerDaysInactive int
	LoserDaysInactive  int
}

// ExpectedPerformance is the logistic win probability implied by both
// ratings. ExpectedPerformance(a, b) + ExpectedPerformance(b, a) == 1.
func ExpectedPerformance(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/ratingScale))
}

// ActualPerformance is the continuous stand-in for the binary win/loss
// outcome: the share of points scored, anchored by a small bonus for
// actually winning, plus a bonus for both sides of an extended deuce battle.
func ActualPerformance(pointsFor, pointsAgainst int, won bool) float64 {
	total := pointsFor + pointsAgainst
	if total == 0 {
		return 0.5
	}

	perf := float64(pointsFor) / float64(total)

	if won {
		perf += winAnchorBonus
	}

	if winnerScore := max(pointsFor, pointsAgainst); winnerScore > maxPoints {
		deuceIntensity := float64(winnerScore-maxPoints) / 10.0
		perf += deuceBattleBonus * deuceIntensity
	}

	return math.Max(0.0, math.Min(1.0, perf))
}

// MarginMultiplier amplifies both sides' changes on blowouts and dampens
// them on close games. Deuce games normalize the margin against the total
// points played so a long rally does not trivially inflate it.
func MarginMultiplier(margin, totalPoints, winnerScore int) float64 {
	if totalPoints == 0 {
		return 1.0
	}

	var normalizedMargin float64
	if winnerScore > maxPoints {
		relativeMargin := float64(margin) / float64(totalPoints)
		normalizedMargin = relativeMargin * (float64(totalPoints) / maxPoints) * 0.5
	} else {
		normalizedMargin = float64(margin) / maxPoints
	}

	return 1.0 + (normalizedMargin * marginWeight)
}

// TimeBasedRust maps days of inactivity to a rust multiplier: 1.0 within the
// grace period, then growing linearly up to the cap.
func TimeBasedRust(daysInactive int) float64 {
	if daysInactive <= rustGracePeriodDays {
		return 1.0
	}

	excessDays := float64(daysInactive - rustGracePeriodDays)

	return math.Min(1.0+excessDays/rustScaleDays, rustMax)
}

// RustMultiplier is the effective rust for a match: whichever of time-based
// and accumulated rust is worse, capped.
func RustMultiplier(daysInactive int, accumulatedRust float64) float64 {
	return math.Min(math.Max(TimeBasedRust(daysInactive), accumulatedRust), rustMax)
}

// DecayRust shrinks accumulated rust after a played game by a fixed fraction
// of the excess above 1.0, snapping to exactly 1.0 once close enough.
func DecayRust(accumulatedRust float64) float64 {
	newRust := 1.0 + (accumulatedRust-1.0)*(1.0-rustDecayRate)
	if newRust < 1.01 {
		return 1.0
	}

	return newRust
}

// KFactor transitions smoothly from the provisional K to the established K
// over a player's first games, then gets amplified by rust so inactive
// players recalibrate faster.
func KFactor(gamesPlayed int, rustMultiplier float64) float64 {
	baseK := kEstablished
	if gamesPlayed < provisionalGames {
		progress := float64(gamesPlayed) / provisionalGames
		baseK = kProvisional - (kProvisional-kEstablished)*progress
	}

	return baseK * rustMultiplier
}

// DaysInactive counts whole days between the last played game and now. A
// zero lastPlayed means the player never played and yields 0.
func DaysInactive(lastPlayed, now time.Time) int {
	if lastPlayed.IsZero() {
		return 0
	}

	days := int(math.Floor(now.Sub(lastPlayed).Hours() / 24.0))
	if days < 0 {
		return 0
	}

	return days
}

// ComputeRatingChange runs the engine over one match. It trusts the
// winner/loser labels, validating scores is the caller's job. playedAt is
// "now" for the inactivity computation so replaying a historical match is
// deterministic.
func ComputeRatingChange(
	winner, loser PlayerState,
	winnerScore, loserScore int,
	playedAt time.Time,
) Result {
	winnerExpected := ExpectedPerformance(winner.Rating, loser.Rating)
	loserExpected := ExpectedPerformance(loser.Rating, winner.Rating)

	winnerActual := ActualPerformance(winnerScore, loserScore, true)
	loserActual := ActualPerformance(loserScore, winnerScore, false)

	// Positive delta = exceeded expectations, this is deliberately not
	// symmetric between both sides.
	winnerDelta := winnerActual - winnerExpected
	loserDelta := loserActual - loserExpected

	mult := MarginMultiplier(winnerScore-loserScore, winnerScore+loserScore, winnerScore)

	winnerDays := DaysInactive(winner.LastPlayedAt, playedAt)
	loserDays := DaysInactive(loser.LastPlayedAt, playedAt)

	winnerRust := RustMultiplier(winnerDays, winner.RustAccumulated)
	loserRust := RustMultiplier(loserDays, loser.RustAccumulated)

	winnerK := KFactor(winner.GamesPlayed, winnerRust)
	loserK := KFactor(loser.GamesPlayed, loserRust)

	return Result{
		WinnerChange: round2(winnerK * winnerDelta * mult),
		LoserChange:  round2(loserK * loserDelta * mult),

		WinnerRust: round2(winnerRust),
		LoserRust:  round2(loserRust),

		// Rust only grows from elapsed time here, it shrinks in the
		// decay-after-play step once the result is folded in.
		NewWinnerRust: round2(math.Max(winner.RustAccumulated, TimeBasedRust(winnerDays))),
		NewLoserRust:  round2(math.Max(loser.RustAccumulated, TimeBasedRust(loserDays))),

		WinnerDaysInactive: winnerDays,
		LoserDaysInactive:  loserDays,
	}
}

// Apply folds a Result into both players' states: rating, win/loss counters,
// last played time, and the decay-after-play of accumulated rust. The inputs
// are left untouched.
func Apply(winner, loser PlayerState, r Result, playedAt time.Time) (PlayerState, PlayerState) {
	winner.Rating += r.WinnerChange
	winner.Wins++
	winner.GamesPlayed++
	winner.LastPlayedAt = playedAt
	winner.RustAccumulated = DecayRust(r.NewWinnerRust)

	loser.Rating += r.LoserChange
	loser.Losses++
	loser.GamesPlayed++
	loser.LastPlayedAt = playedAt
	loser.RustAccumulated = DecayRust(r.NewLoserRust)

	return winner, loser
}

// round2 rounds half away from zero to two decimals, the precision every
// persisted value is stored at. Replay correctness requires this to be
// reproducible bit-for-bit.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
