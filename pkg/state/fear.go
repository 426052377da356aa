package state

import "github.com/qui-ball/virtualGM/pkg/errs"

// SpendFear removes amount from the Fear pool. The pool is unchanged on
// failure.
func (gs *GameState) SpendFear(amount int) (int, error) {
	if amount <= 0 {
		return gs.FearPool, errs.Validation("amount", "must be at least 1, got %d", amount)
	}
	if gs.FearPool < amount {
		return gs.FearPool, errs.InvalidOperation("fear_pool",
			"cannot spend %d Fear: pool has %d, short by %d", amount, gs.FearPool, amount-gs.FearPool)
	}
	gs.FearPool -= amount
	return gs.FearPool, nil
}

// GainFear adds amount to the Fear pool.
func (gs *GameState) GainFear(amount int) (int, error) {
	if amount <= 0 {
		return gs.FearPool, errs.Validation("amount", "must be at least 1, got %d", amount)
	}
	gs.FearPool += amount
	return gs.FearPool, nil
}

// RecordDualityRoll gives the GM one Fear when the Fear die beats the Hope
// die. Ties favor Hope. It reports whether Fear was gained.
func (gs *GameState) RecordDualityRoll(hope, fear int) bool {
	if fear <= hope {
		return false
	}
	_, err := gs.GainFear(1)
	return err == nil
}
