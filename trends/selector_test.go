package trends

import (
	"context"
	"path/filepath"
	"testing"

	"shorts-pipeline/config"
	"shorts-pipeline/series"
)

func testConfig(mode string, seeds []string, parts int) *config.Config {
	cfg := config.Default()
	cfg.Mode = mode
	cfg.Seeds = seeds
	cfg.PartsPerSeries = parts
	return cfg
}

func testStore(t *testing.T) *series.Store {
	t.Helper()
	return series.NewStore(filepath.Join(t.TempDir(), "series_state.json"))
}

func TestFreshSeriesLifecycle(t *testing.T) {
	store := testStore(t)
	sel := NewSelector(testConfig("funny_texts", []string{"X"}, 2), store)
	ctx := context.Background()

	// First run: part 1.
	topics, err := sel.Run(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	got := topics[0]
	if got.Meta.Part != 1 || got.Meta.Seed != "X" || got.Meta.Mode != "funny_texts" {
		t.Errorf("unexpected topic meta: %+v", got.Meta)
	}
	if got.Meta.SeriesKey != "funny_texts:X" {
		t.Errorf("series key = %q", got.Meta.SeriesKey)
	}
	if got.Title != "X — Part 1" {
		t.Errorf("title = %q", got.Title)
	}

	// After one advance: part 2.
	if err := store.Advance(got.Meta.SeriesKey); err != nil {
		t.Fatal(err)
	}
	topics, err = sel.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].Meta.Part != 2 {
		t.Fatalf("expected part 2, got %+v", topics)
	}

	// After the second advance the series is exhausted.
	if err := store.Advance(got.Meta.SeriesKey); err != nil {
		t.Fatal(err)
	}
	topics, err = sel.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 0 {
		t.Errorf("exhausted series still selected: %+v", topics)
	}
}

func TestSelectorCapsAtThree(t *testing.T) {
	seeds := []string{"A", "B", "C", "D", "E"}
	sel := NewSelector(testConfig("spooky_story", seeds, 3), testStore(t))

	topics, err := sel.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != MaxTopicsPerRun {
		t.Fatalf("expected %d topics, got %d", MaxTopicsPerRun, len(topics))
	}
	// Order-preserving: first three seeds, in order.
	for i, want := range []string{"A", "B", "C"} {
		if topics[i].Meta.Seed != want {
			t.Errorf("topic %d seed = %q, want %q", i, topics[i].Meta.Seed, want)
		}
	}
}

func TestSelectorSkipsExhaustedKeepsOrder(t *testing.T) {
	store := testStore(t)
	cfg := testConfig("voxel_story", []string{"A", "B"}, 1)
	sel := NewSelector(cfg, store)
	ctx := context.Background()

	if _, err := sel.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Advance(series.Key("voxel_story", "A")); err != nil {
		t.Fatal(err)
	}

	topics, err := sel.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].Meta.Seed != "B" {
		t.Fatalf("expected only B selectable, got %+v", topics)
	}
}

func TestEnsureKeepsExistingCeiling(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := NewSelector(testConfig("funny_texts", []string{"X"}, 2), store).Run(ctx); err != nil {
		t.Fatal(err)
	}
	// Re-select with a different ceiling: the stored record must keep its own.
	if _, err := NewSelector(testConfig("funny_texts", []string{"X"}, 9), store).Run(ctx); err != nil {
		t.Fatal(err)
	}

	rec := store.Load().Series[series.Key("funny_texts", "X")]
	if rec.PartsPerSeries != 2 {
		t.Errorf("parts_per_series = %d, want 2", rec.PartsPerSeries)
	}
}

func TestCatalogFallbackPerMode(t *testing.T) {
	cfg := testConfig("spooky_story", nil, 3)
	topics, err := NewSelector(cfg, testStore(t)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) == 0 {
		t.Fatal("default catalog produced no topics")
	}
	want := cfg.Modes["spooky_story"].Seeds[0]
	if topics[0].Meta.Seed != want {
		t.Errorf("first topic seed = %q, want catalog seed %q", topics[0].Meta.Seed, want)
	}
}

func TestMixedModeDrawsOneSeedPerMode(t *testing.T) {
	cfg := testConfig(config.ModeMixed, nil, 3)
	topics, err := NewSelector(cfg, testStore(t)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != MaxTopicsPerRun {
		t.Fatalf("mixed mode should fill the cap, got %d topics", len(topics))
	}
	// One representative seed per mode, modes in sorted order.
	wantSeeds := []string{
		cfg.Modes["funny_texts"].Seeds[0],
		cfg.Modes["spooky_story"].Seeds[0],
		cfg.Modes["voxel_story"].Seeds[0],
	}
	for i, want := range wantSeeds {
		if topics[i].Meta.Seed != want {
			t.Errorf("topic %d seed = %q, want %q", i, topics[i].Meta.Seed, want)
		}
		if topics[i].Meta.Mode != config.ModeMixed {
			t.Errorf("topic %d mode = %q, want mixed", i, topics[i].Meta.Mode)
		}
	}
}

func TestDedupeSeeds(t *testing.T) {
	got := dedupeSeeds([]string{"A", "B", "A", "", "C"})
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("dedupeSeeds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupeSeeds[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
