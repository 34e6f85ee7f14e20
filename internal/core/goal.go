package core

import "github.com/shopspring/decimal"

var maxPercentage = decimal.NewFromInt(100)

// GoalProgress is a goal enriched with figures derived from the ledger.
// It is never persisted.
type GoalProgress struct {
	Goal               SavingsGoal
	CurrentProgress    decimal.Decimal
	RemainingAmount    decimal.Decimal
	ProgressPercentage decimal.Decimal
}

// ComputeProgress derives progress from the net flow since the goal's
// start date. The percentage is capped at 100 but has no lower bound, so a
// net outflow shows as a negative percentage.
func ComputeProgress(goal SavingsGoal, net decimal.Decimal) GoalProgress {
	remaining := goal.TargetAmount.Sub(net)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	pct := decimal.Zero
	if goal.TargetAmount.IsPositive() {
		pct = net.DivRound(goal.TargetAmount, 4).Mul(hundred)
		if pct.GreaterThan(maxPercentage) {
			pct = maxPercentage
		}
		pct = pct.Round(AmountScale)
	}

	return GoalProgress{
		Goal:               goal,
		CurrentProgress:    net,
		RemainingAmount:    remaining,
		ProgressPercentage: pct,
	}
}
