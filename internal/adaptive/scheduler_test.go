package adaptive

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"geoclash/internal/models"
)

type testEntity struct {
	ID   int64
	Code string
}

// fakePool is an in-memory Pool for scheduler tests.
type fakePool struct {
	scored      []Scored[testEntity]
	unattempted []testEntity
	all         []testEntity
}

func (p *fakePool) ScoresBefore(_ context.Context, cutoff time.Time) ([]Scored[testEntity], error) {
	var out []Scored[testEntity]
	for _, s := range p.scored {
		last := lastGuessOf(s.Guesses)
		if last == nil || !last.CreatedAt.After(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *fakePool) Scores(_ context.Context) ([]Scored[testEntity], error) {
	return p.scored, nil
}

func (p *fakePool) Unattempted(_ context.Context) ([]testEntity, error) {
	return p.unattempted, nil
}

func (p *fakePool) All(_ context.Context) ([]testEntity, error) {
	out := make([]testEntity, len(p.all))
	copy(out, p.all)
	return out, nil
}

func identify(e testEntity) string { return e.Code }

func entities(n int) []testEntity {
	out := make([]testEntity, n)
	for i := range out {
		out[i] = testEntity{ID: int64(i + 1), Code: fmt.Sprintf("E%02d", i+1)}
	}
	return out
}

func newTestScheduler(pool *fakePool, seed int64) *Scheduler[testEntity] {
	return NewScheduler(pool, identify, WithRand[testEntity](rand.New(rand.NewSource(seed))))
}

func TestChallengeReturnsFullPool(t *testing.T) {
	pool := &fakePool{all: entities(12)}
	s := newTestScheduler(pool, 1)

	batch, err := s.ComputeQuestions(context.Background(), true, models.GameModeCountryFlagChallenge, 5, "")
	if err != nil {
		t.Fatalf("ComputeQuestions() error = %v", err)
	}

	if len(batch) != 12 {
		t.Fatalf("challenge batch length = %d, want 12", len(batch))
	}
	seen := map[string]bool{}
	for _, e := range batch {
		if seen[e.Code] {
			t.Errorf("entity %s returned more than once", e.Code)
		}
		seen[e.Code] = true
	}
}

func TestChallengeOrderVaries(t *testing.T) {
	pool := &fakePool{all: entities(10)}
	s := newTestScheduler(pool, 1)

	orders := map[string]bool{}
	for i := 0; i < 10; i++ {
		batch, err := s.ComputeQuestions(context.Background(), false, models.GameModeDepartmentChallenge, 10, "")
		if err != nil {
			t.Fatalf("ComputeQuestions() error = %v", err)
		}
		key := ""
		for _, e := range batch {
			key += e.Code + ","
		}
		orders[key] = true
	}

	if len(orders) < 2 {
		t.Errorf("challenge order fixed across 10 calls, want shuffled")
	}
}

func TestAnonymousTrainingSamplesPackSize(t *testing.T) {
	pool := &fakePool{all: entities(30)}
	s := newTestScheduler(pool, 2)

	batch, err := s.ComputeQuestions(context.Background(), false, models.GameModeCountryFlagTraining, 10, "")
	if err != nil {
		t.Fatalf("ComputeQuestions() error = %v", err)
	}
	if len(batch) != 10 {
		t.Errorf("anonymous training batch length = %d, want 10", len(batch))
	}
}

func TestPersonalizedNoDuplicates(t *testing.T) {
	now := time.Now()
	pool := &fakePool{}
	for _, e := range entities(8) {
		pool.scored = append(pool.scored, Scored[testEntity]{
			Entity: e,
			Guesses: []models.Guess{
				{CreatedAt: now.Add(-2 * time.Hour), IsCorrect: e.ID%2 == 0},
			},
		})
	}
	pool.unattempted = []testEntity{{ID: 100, Code: "NEW"}}
	s := newTestScheduler(pool, 3)

	for trial := 0; trial < 20; trial++ {
		batch, err := s.ComputeQuestions(context.Background(), true, models.GameModeCountryFlagTraining, 9, "")
		if err != nil {
			t.Fatalf("ComputeQuestions() error = %v", err)
		}
		seen := map[string]bool{}
		for _, e := range batch {
			if seen[e.Code] {
				t.Fatalf("trial %d: entity %s selected twice in one batch", trial, e.Code)
			}
			seen[e.Code] = true
		}
	}
}

func TestPersonalizedStopsEarlyWhenPoolExhausted(t *testing.T) {
	pool := &fakePool{unattempted: entities(3)}
	s := newTestScheduler(pool, 4)

	batch, err := s.ComputeQuestions(context.Background(), true, models.GameModeCapitalTraining, 10, "")
	if err != nil {
		t.Fatalf("ComputeQuestions() error = %v", err)
	}
	if len(batch) != 3 {
		t.Errorf("batch length = %d, want 3 (never pad with duplicates)", len(batch))
	}
}

func TestPersonalizedEmptyPoolReturnsEmptyBatch(t *testing.T) {
	pool := &fakePool{}
	s := newTestScheduler(pool, 5)

	batch, err := s.ComputeQuestions(context.Background(), true, models.GameModeCountryFlagTraining, 10, "")
	if err != nil {
		t.Fatalf("ComputeQuestions() error = %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("batch length = %d, want 0 for empty pool", len(batch))
	}
}

func TestPersonalizedBroadensCooldownWhenStarved(t *testing.T) {
	now := time.Now()
	pool := &fakePool{}
	// Every record was touched seconds ago, inside the cooldown window.
	for _, e := range entities(4) {
		pool.scored = append(pool.scored, Scored[testEntity]{
			Entity:  e,
			Guesses: []models.Guess{{CreatedAt: now.Add(-10 * time.Second), IsCorrect: true}},
		})
	}
	s := newTestScheduler(pool, 6)

	batch, err := s.ComputeQuestions(context.Background(), true, models.GameModeCountryFlagTraining, 4, "")
	if err != nil {
		t.Fatalf("ComputeQuestions() error = %v", err)
	}
	if len(batch) != 4 {
		t.Errorf("batch length = %d, want 4 after broadening past the cooldown", len(batch))
	}
}

func TestAntiRepeatRotation(t *testing.T) {
	pool := &fakePool{all: entities(5)}
	s := newTestScheduler(pool, 7)

	for trial := 0; trial < 50; trial++ {
		last := fmt.Sprintf("E%02d", trial%5+1)
		batch, err := s.ComputeQuestions(context.Background(), false, models.GameModeCountryFlagTraining, 5, last)
		if err != nil {
			t.Fatalf("ComputeQuestions() error = %v", err)
		}
		if len(batch) >= 2 && batch[0].Code == last {
			t.Fatalf("trial %d: last question %s placed first in the batch", trial, last)
		}
	}
}

func TestAntiRepeatKeepsRotatedEntity(t *testing.T) {
	s := newTestScheduler(&fakePool{}, 8)

	batch := []testEntity{{ID: 1, Code: "A"}, {ID: 2, Code: "B"}, {ID: 3, Code: "C"}}
	rotated := s.rotateRepeat(batch, "A")

	if len(rotated) != 3 {
		t.Fatalf("rotated batch length = %d, want 3 (rotate, never discard)", len(rotated))
	}
	if rotated[0].Code != "B" || rotated[2].Code != "A" {
		t.Errorf("rotated batch = %v, want first B, last A", rotated)
	}
}

func TestDrawWeightedConvergesToWeights(t *testing.T) {
	s := newTestScheduler(&fakePool{}, 9)

	entries := []weighted[testEntity]{
		{entity: testEntity{ID: 1, Code: "A"}, weight: 0.1},
		{entity: testEntity{ID: 2, Code: "B"}, weight: 0.3},
		{entity: testEntity{ID: 3, Code: "C"}, weight: 0.6},
	}

	const draws = 20000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		picked := s.drawWeighted(entries, 1.0, 1)
		counts[picked[0].Code]++
	}

	tests := []struct {
		code string
		want float64
	}{
		{"A", 0.1},
		{"B", 0.3},
		{"C", 0.6},
	}
	for _, tt := range tests {
		got := float64(counts[tt.code]) / draws
		if diff := got - tt.want; diff < -0.02 || diff > 0.02 {
			t.Errorf("selection frequency of %s = %.3f, want %.1f ± 0.02", tt.code, got, tt.want)
		}
	}
}
