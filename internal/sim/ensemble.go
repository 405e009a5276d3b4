package sim

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/config"
)

// Ensemble runs several named configurations side by side. Each run owns
// its own playground, so runs share nothing.
type Ensemble struct {
	configs map[string]*config.Config
	logger  *log.Logger
}

func NewEnsemble(configs map[string]*config.Config, logger *log.Logger) *Ensemble {
	return &Ensemble{configs: configs, logger: logger}
}

func (e *Ensemble) Run(ctx context.Context) (map[string]*Result, error) {
	names := make([]string, 0, len(e.configs))
	for name := range e.configs {
		names = append(names, name)
	}

	results := make([]*Result, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			r := New(e.configs[name], WithPreset(name), WithLogger(e.logger))
			results[idx], errs[idx] = r.Run(ctx)
		}(i, name)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string]*Result, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}
