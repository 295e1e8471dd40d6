package decode

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// GenerateBatch decodes independent prompts concurrently, one goroutine
// per prompt. The model and vocabulary are shared read-only; each decode
// gets its own buffer and its own RNG (seeded cfg.Seed+index so prompts
// draw distinct but reproducible streams).
//
// Results align with prompts. A failed prompt leaves a nil slot and its
// error, wrapped with the prompt index, in the joined error return; the
// other prompts still complete.
func (g *Generator) GenerateBatch(ctx context.Context, prompts []string, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(prompts))
	errs := make([]error, len(prompts))

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			pcfg := cfg
			pcfg.Seed = cfg.Seed + int64(i)
			res, err := g.Generate(ctx, prompt, pcfg, nil)
			if err != nil {
				errs[i] = fmt.Errorf("prompt %d: %w", i, err)
				return
			}
			results[i] = res
		}(i, prompt)
	}
	wg.Wait()

	return results, errors.Join(errs...)
}
