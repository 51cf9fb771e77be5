package clix

import (
	"github.com/spf13/pflag"
)

// RefreshParams are the flags shared by every command that may touch
// the model catalog.
type RefreshParams struct {
	Force       bool
	CheckVision bool
}

func ParseRefresh(flags *pflag.FlagSet) RefreshParams {
	force, _ := flags.GetBool("force")
	skip, _ := flags.GetBool("skip-vision-check")
	return RefreshParams{Force: force, CheckVision: !skip}
}

// BudgetParams are the flags gating a paid call.
type BudgetParams struct {
	Limit    float64
	Approved bool // --yes given; skip the interactive confirmation
}

func ParseBudget(flags *pflag.FlagSet, defaultLimit float64) BudgetParams {
	limit, _ := flags.GetFloat64("budget")
	if limit <= 0 {
		limit = defaultLimit
	}
	yes, _ := flags.GetBool("yes")
	return BudgetParams{Limit: limit, Approved: yes}
}
