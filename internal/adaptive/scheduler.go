package adaptive

import (
	"context"
	"math/rand"
	"time"

	"geoclash/internal/models"
)

// DefaultCooldown is the minimum time since an entity's last guess before it
// becomes eligible for re-selection in training mode.
const DefaultCooldown = 5 * time.Minute

// DefaultPackSize is the number of questions returned per training batch.
const DefaultPackSize = 10

// Scored pairs a candidate entity with its guess history.
type Scored[E any] struct {
	Entity  E
	Guesses []models.Guess
}

// Pool supplies the candidate entities for one scheduling call. Validity and
// continent filters are applied by the implementation, so every entity the
// pool returns is already eligible for the mode being scheduled.
type Pool[E any] interface {
	// ScoresBefore returns scored candidates whose record was last updated
	// at or before the cutoff.
	ScoresBefore(ctx context.Context, cutoff time.Time) ([]Scored[E], error)

	// Scores returns every scored candidate regardless of cooldown.
	Scores(ctx context.Context) ([]Scored[E], error)

	// Unattempted returns entities with no score record yet.
	Unattempted(ctx context.Context) ([]E, error)

	// All returns the full filtered entity pool.
	All(ctx context.Context) ([]E, error)
}

// Scheduler selects the next batch of entities to ask for one user and mode.
// The rand source and clock are injectable so selection is reproducible in
// tests.
type Scheduler[E any] struct {
	pool     Pool[E]
	identify func(E) string
	cooldown time.Duration
	now      func() time.Time
	rng      *rand.Rand
}

// Option configures a Scheduler.
type Option[E any] func(*Scheduler[E])

// WithClock overrides the scheduler's clock.
func WithClock[E any](now func() time.Time) Option[E] {
	return func(s *Scheduler[E]) { s.now = now }
}

// WithRand overrides the scheduler's random source.
func WithRand[E any](rng *rand.Rand) Option[E] {
	return func(s *Scheduler[E]) { s.rng = rng }
}

// WithCooldown overrides the re-selection cooldown.
func WithCooldown[E any](cooldown time.Duration) Option[E] {
	return func(s *Scheduler[E]) { s.cooldown = cooldown }
}

// NewScheduler creates a scheduler over the given pool. The identify function
// returns a stable identifier per entity, used for the anti-repeat rule.
func NewScheduler[E any](pool Pool[E], identify func(E) string, opts ...Option[E]) *Scheduler[E] {
	s := &Scheduler[E]{
		pool:     pool,
		identify: identify,
		cooldown: DefaultCooldown,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeQuestions selects the next pack of entities.
//
// Challenge modes and unauthenticated users skip the weighting entirely:
// challenge returns the whole filtered pool shuffled (each entity exactly
// once), anonymous training returns a uniform random sample. Authenticated
// training applies the adaptive weighting over cooled-down score records plus
// never-attempted entities.
//
// lastQuestionID is the identity of the previously asked entity; it is never
// placed first in the returned batch when the batch has at least two entries.
func (s *Scheduler[E]) ComputeQuestions(ctx context.Context, authenticated bool, mode models.GameMode, packSize int, lastQuestionID string) ([]E, error) {
	if packSize <= 0 {
		packSize = DefaultPackSize
	}

	if !authenticated || mode.IsChallenge() {
		entities, err := s.pool.All(ctx)
		if err != nil {
			return nil, err
		}
		s.shuffle(entities)
		if !mode.IsChallenge() && len(entities) > packSize {
			entities = entities[:packSize]
		}
		return s.rotateRepeat(entities, lastQuestionID), nil
	}

	return s.personalizedQuestions(ctx, packSize, lastQuestionID)
}

func (s *Scheduler[E]) personalizedQuestions(ctx context.Context, packSize int, lastQuestionID string) ([]E, error) {
	cutoff := s.now().Add(-s.cooldown)

	scored, err := s.pool.ScoresBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	unattempted, err := s.pool.Unattempted(ctx)
	if err != nil {
		return nil, err
	}

	// Everything is inside the cooldown window: broaden to all records so
	// the scheduler never starves.
	if len(scored) == 0 && len(unattempted) == 0 {
		scored, err = s.pool.Scores(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	entries := make([]weighted[E], 0, len(scored)+len(unattempted))
	for _, sc := range scored {
		failure := FailureScore(sc.Guesses, now)
		forgetting := ForgettingScore(lastGuessOf(sc.Guesses), now)
		entries = append(entries, weighted[E]{
			entity: sc.Entity,
			weight: QuestionWeight(failure, forgetting),
		})
	}
	for _, entity := range unattempted {
		entries = append(entries, weighted[E]{entity: entity, weight: DefaultWeight()})
	}

	if len(entries) == 0 {
		return []E{}, nil
	}

	var totalWeight float64
	for _, e := range entries {
		totalWeight += e.weight
	}
	if totalWeight == 0 {
		// Should not happen given the weight floor; fall back to uniform.
		entities := make([]E, len(entries))
		for i, e := range entries {
			entities[i] = e.entity
		}
		s.shuffle(entities)
		if len(entities) > packSize {
			entities = entities[:packSize]
		}
		return s.rotateRepeat(entities, lastQuestionID), nil
	}

	selection := s.drawWeighted(entries, totalWeight, packSize)
	return s.rotateRepeat(selection, lastQuestionID), nil
}

type weighted[E any] struct {
	entity E
	weight float64
}

// drawWeighted samples packSize entities without replacement: each draw picks
// a point in the remaining total weight, walks the cumulative list, removes
// the hit, and renormalizes. Stops early when candidates run out.
func (s *Scheduler[E]) drawWeighted(entries []weighted[E], totalWeight float64, packSize int) []E {
	remaining := make([]weighted[E], len(entries))
	copy(remaining, entries)

	selection := make([]E, 0, packSize)
	for len(selection) < packSize && len(remaining) > 0 {
		point := s.rng.Float64() * totalWeight

		chosen := len(remaining) - 1
		cumulative := 0.0
		for i, e := range remaining {
			cumulative += e.weight
			if point < cumulative {
				chosen = i
				break
			}
		}

		selection = append(selection, remaining[chosen].entity)
		totalWeight -= remaining[chosen].weight
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}
	return selection
}

// rotateRepeat moves the first entity to the end of the batch when it matches
// the previously asked question, so the same question is never shown twice in
// a row.
func (s *Scheduler[E]) rotateRepeat(entities []E, lastQuestionID string) []E {
	if lastQuestionID == "" || len(entities) < 2 {
		return entities
	}
	if s.identify(entities[0]) != lastQuestionID {
		return entities
	}
	first := entities[0]
	copy(entities, entities[1:])
	entities[len(entities)-1] = first
	return entities
}

func (s *Scheduler[E]) shuffle(entities []E) {
	s.rng.Shuffle(len(entities), func(i, j int) {
		entities[i], entities[j] = entities[j], entities[i]
	})
}

func lastGuessOf(guesses []models.Guess) *models.Guess {
	if len(guesses) == 0 {
		return nil
	}
	last := &guesses[0]
	for i := range guesses {
		if guesses[i].CreatedAt.After(last.CreatedAt) {
			last = &guesses[i]
		}
	}
	return last
}
