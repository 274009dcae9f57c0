package trends

import (
	"context"
	"fmt"
	"log"
	"sort"

	"shorts-pipeline/config"
	"shorts-pipeline/series"
	"shorts-pipeline/types"
)

// MaxTopicsPerRun bounds how many topics a single run emits, which in turn
// bounds the cost of downstream generative API calls.
const MaxTopicsPerRun = 3

// Selector turns configured (or discovered) seeds into the bounded list of
// topics to process this run, establishing series records on first sight.
// Selection is deterministic: seed order in, topic order out.
type Selector struct {
	cfg        *config.Config
	store      *series.Store
	discoverer *Discoverer
}

// NewSelector creates a selector over the given store.
func NewSelector(cfg *config.Config, store *series.Store) *Selector {
	return &Selector{cfg: cfg, store: store, discoverer: NewDiscoverer(cfg)}
}

// Run resolves the seed list, ensures a series record per seed, and emits one
// topic per non-exhausted series in seed order, capped at MaxTopicsPerRun.
// An empty result is not an error; only a failure to persist state is.
func (s *Selector) Run(ctx context.Context) ([]types.Topic, error) {
	seeds := s.resolveSeeds(ctx)
	if len(seeds) == 0 {
		log.Println("[trends] no seeds available")
		return nil, nil
	}

	st := s.store.Load()
	created := false
	for _, seed := range seeds {
		if st.Ensure(seed, s.cfg.Mode, s.cfg.PartsPerSeries) {
			created = true
		}
	}
	if created {
		if err := s.store.Save(st); err != nil {
			return nil, fmt.Errorf("persist new series records: %w", err)
		}
	}

	var topics []types.Topic
	for _, seed := range seeds {
		if len(topics) >= MaxTopicsPerRun {
			break
		}
		key := series.Key(s.cfg.Mode, seed)
		rec, ok := st.Series[key]
		if !ok {
			continue
		}
		if rec.Exhausted() {
			log.Printf("[trends] series %q finished (%d parts), skipping", key, rec.PartsPerSeries)
			continue
		}
		topics = append(topics, types.Topic{
			Title:   fmt.Sprintf("%s — Part %d", seed, rec.NextPart),
			Snippet: fmt.Sprintf("Part %d of %d in the %q series.", rec.NextPart, rec.PartsPerSeries, seed),
			Meta: types.TopicMeta{
				SeriesKey: key,
				Seed:      seed,
				Part:      rec.NextPart,
				Mode:      s.cfg.Mode,
			},
		})
	}

	log.Printf("[trends] selected %d topic(s)", len(topics))
	return topics, nil
}

// resolveSeeds picks the seed list for this run: configured seeds win, then
// trending discovery when enabled, then the built-in catalog for the mode.
func (s *Selector) resolveSeeds(ctx context.Context) []string {
	if len(s.cfg.Seeds) > 0 {
		return dedupeSeeds(s.cfg.Seeds)
	}
	if s.cfg.Discovery.Enabled {
		if discovered := s.discoverer.Run(ctx); len(discovered) > 0 {
			return discovered
		}
		log.Println("[trends] discovery returned nothing, falling back to catalog")
	}
	return s.catalogSeeds()
}

// catalogSeeds returns the default seeds for the configured mode. The mixed
// mode draws the first seed of every mode, in stable (sorted) mode order.
func (s *Selector) catalogSeeds() []string {
	if s.cfg.Mode != config.ModeMixed {
		return dedupeSeeds(s.cfg.ModeSettings(s.cfg.Mode).Seeds)
	}
	modes := make([]string, 0, len(s.cfg.Modes))
	for m := range s.cfg.Modes {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	var seeds []string
	for _, m := range modes {
		if mc := s.cfg.Modes[m]; len(mc.Seeds) > 0 {
			seeds = append(seeds, mc.Seeds[0])
		}
	}
	return dedupeSeeds(seeds)
}

func dedupeSeeds(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
