package dice

import (
	"errors"
	"fmt"
)

// ErrInvalidDualityDie indicates hope or fear values outside 1-12.
var ErrInvalidDualityDie = errors.New("duality dice must be between 1 and 12")

// Outcome is the result category of a duality roll.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	OutcomeRollWithHope
	OutcomeRollWithFear
	OutcomeSuccessWithHope
	OutcomeSuccessWithFear
	OutcomeFailureWithHope
	OutcomeFailureWithFear
	OutcomeCriticalSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRollWithHope:
		return "Rolled with Hope"
	case OutcomeRollWithFear:
		return "Rolled with Fear"
	case OutcomeSuccessWithHope:
		return "Success with Hope"
	case OutcomeSuccessWithFear:
		return "Success with Fear"
	case OutcomeFailureWithHope:
		return "Failure with Hope"
	case OutcomeFailureWithFear:
		return "Failure with Fear"
	case OutcomeCriticalSuccess:
		return "Critical Success"
	default:
		return "Unspecified"
	}
}

// DualityResult is the evaluated outcome of a Hope/Fear pair.
type DualityResult struct {
	Hope       int
	Fear       int
	Modifier   int
	Difficulty *int
	Total      int
	// IsCrit is set on matching dice. Matching dice favor Hope.
	IsCrit bool
	// WithFear is set only when Fear is strictly greater than Hope.
	WithFear        bool
	MeetsDifficulty bool
	Outcome         Outcome
}

// EvaluateDuality resolves a duality roll against an optional difficulty.
func EvaluateDuality(hope, fear, modifier int, difficulty *int) (DualityResult, error) {
	if hope < 1 || hope > 12 || fear < 1 || fear > 12 {
		return DualityResult{}, ErrInvalidDualityDie
	}
	if difficulty != nil && *difficulty < 0 {
		return DualityResult{}, fmt.Errorf("difficulty must be non-negative, got %d", *difficulty)
	}

	total := hope + fear + modifier
	isCrit := hope == fear
	withFear := fear > hope
	meets := false
	if difficulty != nil {
		meets = isCrit || total >= *difficulty
	}

	outcome := OutcomeUnspecified
	switch {
	case isCrit:
		outcome = OutcomeCriticalSuccess
	case difficulty == nil && !withFear:
		outcome = OutcomeRollWithHope
	case difficulty == nil:
		outcome = OutcomeRollWithFear
	case meets && !withFear:
		outcome = OutcomeSuccessWithHope
	case meets:
		outcome = OutcomeSuccessWithFear
	case !withFear:
		outcome = OutcomeFailureWithHope
	default:
		outcome = OutcomeFailureWithFear
	}

	return DualityResult{
		Hope:            hope,
		Fear:            fear,
		Modifier:        modifier,
		Difficulty:      difficulty,
		Total:           total,
		IsCrit:          isCrit,
		WithFear:        withFear,
		MeetsDifficulty: meets,
		Outcome:         outcome,
	}, nil
}
