// Package clix holds small flag-parsing helpers shared by CLI commands.
package clix

import (
	"fmt"

	"github.com/spf13/pflag"

	"mailsift/pkg/classifier"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads the standard --limit/--offset flags. A zero or
// negative limit means unrestricted.
func ParsePagination(flags *pflag.FlagSet) PaginationParams {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}
}

// ParseStrategy validates the --strategy flag. An empty value defers to
// the configured default.
func ParseStrategy(flags *pflag.FlagSet) (string, error) {
	strategy, _ := flags.GetString("strategy")
	switch strategy {
	case "", classifier.StrategyEmbedding, classifier.StrategyLLM:
		return strategy, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)",
			strategy, classifier.StrategyEmbedding, classifier.StrategyLLM)
	}
}
