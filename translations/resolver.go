package translations

import (
	"fmt"
	"log/slog"

	"hitodl/models"
	"hitodl/prompt"
)

// Resolver maps raw names to canonical names, asking the operator on a miss.
type Resolver struct {
	store    *Store
	prompter prompt.Prompter
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by store.
func NewResolver(store *Store, prompter prompt.Prompter, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		prompter: prompter,
		logger:   logger,
	}
}

// Resolve returns the canonical name for raw. A miss blocks on the prompter
// and the answer is stored before returning. An empty answer keeps the raw name.
func (r *Resolver) Resolve(c models.Category, raw string) (string, error) {
	if v, ok := r.store.Lookup(c, raw); ok {
		return v, nil
	}

	r.logger.Info("Missing translation", "category", string(c), "name", raw)

	answer, err := r.prompter.Ask(fmt.Sprintf("What is the original name of %s '%s'?", c.Singular(), raw))
	if err != nil {
		return "", fmt.Errorf("resolve %s %q: %w", c.Singular(), raw, err)
	}
	if answer == "" {
		answer = raw
	}

	r.store.Set(c, raw, answer)
	return answer, nil
}

// ResolveAll resolves every name in order. The result is aligned with raws.
func (r *Resolver) ResolveAll(c models.Category, raws []string) ([]string, error) {
	resolved := make([]string, len(raws))
	for i, raw := range raws {
		v, err := r.Resolve(c, raw)
		if err != nil {
			return nil, err
		}
		resolved[i] = v
	}
	return resolved, nil
}
