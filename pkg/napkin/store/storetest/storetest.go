// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

// Run exercises st against the common store contract. st must be empty.
func Run(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := st.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})

	t.Run("IncrementAndTopN", func(t *testing.T) {
		mustReset(t, st)
		for _, term := range []string{"dog", "cat", "dog", "bird", "dog", "cat"} {
			if err := st.Increment(ctx, category.Noun, term); err != nil {
				t.Fatalf("Increment: %v", err)
			}
		}

		got, err := st.TopN(ctx, category.Noun, store.NoLimit)
		if err != nil {
			t.Fatalf("TopN: %v", err)
		}
		want := []store.Entry{{Term: "dog", Count: 3}, {Term: "cat", Count: 2}, {Term: "bird", Count: 1}}
		assertEntries(t, got, want)

		top, err := st.TopN(ctx, category.Noun, 1)
		if err != nil {
			t.Fatalf("TopN(1): %v", err)
		}
		assertEntries(t, top, want[:1])

		none, err := st.TopN(ctx, category.Noun, 0)
		if err != nil {
			t.Fatalf("TopN(0): %v", err)
		}
		if len(none) != 0 {
			t.Errorf("TopN(0) returned %d entries", len(none))
		}
	})

	t.Run("SameTokenTwice", func(t *testing.T) {
		mustReset(t, st)
		for i := 0; i < 2; i++ {
			if err := st.Increment(ctx, category.Noun, "dog"); err != nil {
				t.Fatalf("Increment: %v", err)
			}
		}
		got, err := st.TopN(ctx, category.Noun, 1)
		if err != nil {
			t.Fatalf("TopN: %v", err)
		}
		assertEntries(t, got, []store.Entry{{Term: "dog", Count: 2}})
	})

	t.Run("CategoriesAreIndependent", func(t *testing.T) {
		mustReset(t, st)
		if err := st.Increment(ctx, category.Verb, "run"); err != nil {
			t.Fatal(err)
		}
		if err := st.Increment(ctx, category.Label("PERSON"), "Ada Lovelace"); err != nil {
			t.Fatal(err)
		}
		nouns, err := st.TopN(ctx, category.Noun, store.NoLimit)
		if err != nil {
			t.Fatal(err)
		}
		if len(nouns) != 0 {
			t.Errorf("noun table should be empty, got %v", nouns)
		}
		people, err := st.TopN(ctx, category.Label("PERSON"), store.NoLimit)
		if err != nil {
			t.Fatal(err)
		}
		assertEntries(t, people, []store.Entry{{Term: "Ada Lovelace", Count: 1}})
	})

	t.Run("Stats", func(t *testing.T) {
		mustReset(t, st)
		for i := 0; i < 3; i++ {
			if err := st.IncrementStat(ctx, "verb"); err != nil {
				t.Fatal(err)
			}
		}
		if err := st.SetTokenCount(ctx, 10); err != nil {
			t.Fatal(err)
		}
		if err := st.SetTokenCount(ctx, 7); err != nil {
			t.Fatal(err)
		}
		stats, err := st.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats["verb"] != 3 {
			t.Errorf("verb stat = %d, want 3", stats["verb"])
		}
		if stats[category.TokenStat] != 7 {
			t.Errorf("token stat = %d, want 7 (overwrite, not increment)", stats[category.TokenStat])
		}
	})

	t.Run("ResetClearsEverything", func(t *testing.T) {
		cats := append(category.Base(), category.Span, category.Label("DATE"))
		for _, c := range cats {
			if err := st.Increment(ctx, c, "x"); err != nil {
				t.Fatal(err)
			}
		}
		if err := st.IncrementStat(ctx, "noun"); err != nil {
			t.Fatal(err)
		}
		mustReset(t, st)

		for _, c := range cats {
			got, err := st.TopN(ctx, c, store.NoLimit)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Errorf("TopN(%s) after reset = %v", c, got)
			}
		}
		stats, err := st.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(stats) != 0 {
			t.Errorf("stats after reset = %v", stats)
		}
	})

	t.Run("Runs", func(t *testing.T) {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		first := store.Run{ID: "01A", Source: "a.txt", Lang: "en", Flushed: true, Tokens: 5, StartedAt: now}
		second := store.Run{ID: "01B", Source: "b.txt", Lang: "en", Tokens: 9, StartedAt: now.Add(time.Minute)}
		if err := st.RecordRun(ctx, first); err != nil {
			t.Fatal(err)
		}
		if err := st.RecordRun(ctx, second); err != nil {
			t.Fatal(err)
		}
		mustReset(t, st)

		runs, err := st.Runs(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Fatalf("Runs(1) returned %d runs", len(runs))
		}
		got := runs[0]
		if got.ID != second.ID || got.Source != second.Source || got.Tokens != 9 || got.Flushed {
			t.Errorf("latest run = %+v, want %+v", got, second)
		}
		if !got.StartedAt.Equal(second.StartedAt) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, second.StartedAt)
		}

		all, err := st.Runs(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 2 || all[1].ID != first.ID {
			t.Errorf("Runs(0) = %+v", all)
		}
	})
}

func mustReset(t *testing.T, st store.Store) {
	t.Helper()
	if err := st.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func assertEntries(t *testing.T, got, want []store.Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
