package engine

import "github.com/nlemma/numberguessr/internal/model"

// evaluateGuess computes the feedback for value against the opponent's
// secret. Feedback is phrased from the guesser's perspective: "higher"
// means the secret is above the guess.
//
// When the lie is requested and still available it is consumed and the
// directional feedback is inverted. A lie on an exactly-correct guess
// reports "higher" instead of ending the game; the ability can mask a
// win, which mirrors the original rules even though it looks like a
// bug. A lie requested after the ability is spent is ignored entirely.
func evaluateGuess(value, secret int, lieRequested, lieAvailable bool) (feedback model.Feedback, lieConsumed bool) {
	if lieRequested && lieAvailable {
		switch {
		case value < secret:
			return model.FeedbackLower, true
		case value > secret:
			return model.FeedbackHigher, true
		default:
			return model.FeedbackHigher, true
		}
	}

	switch {
	case value < secret:
		return model.FeedbackHigher, false
	case value > secret:
		return model.FeedbackLower, false
	default:
		return model.FeedbackCorrect, false
	}
}
