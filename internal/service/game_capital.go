package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"geoclash/internal/adaptive"
	"geoclash/internal/models"
	"geoclash/internal/repository"
	"geoclash/internal/validation"
)

// CapitalGame is the guess-the-capital mode. The prompt is a country name and
// the expected answers are all of its capital cities; a question with several
// capitals stays open until every one was found. Only countries with at least
// one capital are eligible.
type CapitalGame struct {
	mode      models.GameMode
	countries *repository.CountryRepository
	scores    *repository.ScoreRepository
	packSize  int
	opts      []adaptive.Option[models.Country]
}

// NewCapitalGame creates the capital strategy for one of the capital
// sub-modes.
func NewCapitalGame(mode models.GameMode, countries *repository.CountryRepository, scores *repository.ScoreRepository, packSize int, opts ...adaptive.Option[models.Country]) *CapitalGame {
	return &CapitalGame{
		mode:      mode,
		countries: countries,
		scores:    scores,
		packSize:  packSize,
		opts:      opts,
	}
}

func (g *CapitalGame) Mode() models.GameMode { return g.mode }

func (g *CapitalGame) BuildQuestions(ctx context.Context, userID int64, authenticated bool, prefs SessionPrefs, startIndex int, lastQuestionID string) ([]QuestionView, map[int]PendingQuestion, error) {
	filter := repository.CountryFilter{
		Continents:     prefs.Continents,
		RequireCapital: true,
	}
	pool := repository.NewCountryPool(g.countries, g.scores, userID, g.mode, filter)
	scheduler := adaptive.NewScheduler[models.Country](pool, countryIdentity, g.opts...)

	countries, err := scheduler.ComputeQuestions(ctx, authenticated, g.mode, g.packSize, lastQuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute capital questions: %w", err)
	}

	views := make([]QuestionView, len(countries))
	pending := make(map[int]PendingQuestion, len(countries))
	for i, country := range countries {
		index := startIndex + i
		views[i] = QuestionView{
			Index:     index,
			Prompt:    country.Name(prefs.Language),
			Remaining: len(country.Capitals),
		}
		pending[index] = PendingQuestion{
			EntityID: country.ID,
			CityIDs:  country.CapitalIDs(),
		}
	}
	return views, pending, nil
}

// CheckAnswer judges a guessed capital city. The guess is the city's name as
// typed by the player; it matches when it equals one of the not-yet-found
// capitals in any catalog language.
func (g *CapitalGame) CheckAnswer(ctx context.Context, userID int64, authenticated bool, pending PendingQuestion, guess string) (AnswerCheck, error) {
	country, err := g.resolveCountry(ctx, pending.CityIDs)
	if err != nil {
		return AnswerCheck{}, err
	}

	found := make(map[int64]bool, len(pending.FoundIDs))
	for _, id := range pending.FoundIDs {
		found[id] = true
	}

	normalized := validation.NormalizeAnswer(guess)
	var matchedID int64
	for _, city := range country.Capitals {
		if found[city.ID] {
			continue
		}
		if normalized == validation.NormalizeAnswer(city.NameEN) || normalized == validation.NormalizeAnswer(city.NameFR) {
			matchedID = city.ID
			break
		}
	}

	correct := matchedID != 0
	if authenticated {
		if err := g.scores.RegisterGuess(ctx, userID, models.EntityKindCountry, country.ID, g.mode, correct); err != nil {
			return AnswerCheck{}, fmt.Errorf("failed to register capital guess: %w", err)
		}
	}

	ref := &EntityRef{Kind: models.EntityKindCountry, ID: country.ID}
	if !correct {
		return AnswerCheck{
			Entity:    ref,
			Known:     true,
			Remaining: len(pending.CityIDs) - len(pending.FoundIDs),
			Updated:   pending,
		}, nil
	}

	updated := pending
	updated.FoundIDs = append(append([]int64{}, pending.FoundIDs...), matchedID)
	remaining := len(updated.CityIDs) - len(updated.FoundIDs)
	return AnswerCheck{
		Entity:    ref,
		Known:     true,
		Correct:   true,
		Done:      remaining == 0,
		Remaining: remaining,
		Updated:   updated,
	}, nil
}

// CorrectAnswers reveals the capitals still missing from each open question.
func (g *CapitalGame) CorrectAnswers(ctx context.Context, questions map[int]PendingQuestion, language string) ([]CorrectAnswer, error) {
	answers := make([]CorrectAnswer, 0, len(questions))
	for index, pending := range questions {
		country, err := g.resolveCountry(ctx, pending.CityIDs)
		if err != nil {
			return nil, err
		}

		found := make(map[int64]bool, len(pending.FoundIDs))
		for _, id := range pending.FoundIDs {
			found[id] = true
		}
		var missing []string
		var linkLabel string
		for _, city := range country.Capitals {
			if found[city.ID] {
				continue
			}
			name := city.Name(language)
			missing = append(missing, name)
			if linkLabel == "" {
				linkLabel = name
			}
		}
		if len(missing) == 0 {
			continue
		}
		answers = append(answers, CorrectAnswer{
			Index:        index,
			Label:        strings.Join(missing, ", "),
			WikipediaURL: wikipediaURL(linkLabel, language),
		})
	}
	sortAnswers(answers)
	return answers, nil
}

// resolveCountry maps a question's capital city ids back to their country.
// The catalog guarantees a set of capitals belongs to exactly one country;
// anything else is corrupt reference data and aborts the request.
func (g *CapitalGame) resolveCountry(ctx context.Context, cityIDs []int64) (*models.Country, error) {
	countries, err := g.countries.GetByCapitalIDs(ctx, cityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve capital cities: %w", err)
	}
	if len(countries) != 1 {
		return nil, fmt.Errorf("%w: capital cities %s resolve to %d countries, want 1",
			ErrCatalogIntegrity, formatIDs(cityIDs), len(countries))
	}
	return &countries[0], nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
