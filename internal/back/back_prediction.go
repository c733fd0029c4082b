package back

import (
	"math"
	"topspin/internal/rating"
	"topspin/internal/util"

	"github.com/jmoiron/sqlx"
)

// A Prediction is the head-to-head outlook implied by two players' current
// ratings.
type Prediction struct {
	Player1Name           string
	Player2Name           string
	Player1WinProbability float64
	Player2WinProbability float64
	RatingDifference      float64
	Favorite              string
}

// PredictMatch computes win probabilities for a hypothetical game between
// two players from the logistic expected-performance curve.
func (b *Back) PredictMatch(player1ID, player2ID util.UUIDAsBlob) (pred Prediction, _ error) {
	if player1ID == player2ID {
		return Prediction{}, util.ErrPublic("pick two different players")
	}

	return pred, b.transaction(func(tx *sqlx.Tx) error {
		p1, err := getPlayerByID(tx, player1ID)
		if err != nil {
			return err
		}

		p2, err := getPlayerByID(tx, player2ID)
		if err != nil {
			return err
		}

		p1WinProbability := rating.ExpectedPerformance(p1.Rating, p2.Rating)

		pred = Prediction{
			Player1Name:           p1.Name,
			Player2Name:           p2.Name,
			Player1WinProbability: p1WinProbability,
			Player2WinProbability: 1.0 - p1WinProbability,
			RatingDifference:      math.Abs(p1.Rating - p2.Rating),
			Favorite:              p1.Name,
		}
		if p2.Rating > p1.Rating {
			pred.Favorite = p2.Name
		}

		return nil
	})
}
