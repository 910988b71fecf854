package extract

import (
	"context"
	"fmt"

	"github.com/funvibe/luaharvest/internal/config"
	"github.com/funvibe/luaharvest/internal/host"
	"github.com/funvibe/luaharvest/internal/modules"
)

// RecipeResult is the outcome of a recipe scan.
type RecipeResult struct {
	RunID   string         `json:"run_id" yaml:"run_id"`
	Recipes []*host.Recipe `json:"recipes" yaml:"recipes"`
	// Completed reports that the file ended at its stop target rather than
	// running to the end.
	Completed bool `json:"completed" yaml:"completed"`
}

// ScanRecipes evaluates the recipe file in allow-list mode: only recipe
// registration calls run, and evaluation ends once the recipe definitions
// are behind.
func ScanRecipes(ctx context.Context, src modules.Source, opts Options) (*RecipeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := NewSession(src, opts)
	if err != nil {
		return nil, err
	}
	host.InstallRecipes(s.Evaluator, s.Registry)

	pctx, err := s.RunFile(config.RecipesModule, config.ProfileRecipes)
	if err != nil {
		return nil, fmt.Errorf("scanning recipes: %w", err)
	}
	res := &RecipeResult{
		RunID:     s.RunID,
		Recipes:   s.Registry.Recipes(),
		Completed: pctx.Completed,
	}
	s.logger.Info("recipe scan done", "recipes", len(res.Recipes), "completed", res.Completed)
	return res, nil
}
