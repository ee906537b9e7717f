package service

import (
	"context"
	"fmt"
	"strconv"

	"geoclash/internal/adaptive"
	"geoclash/internal/models"
	"geoclash/internal/repository"
	"geoclash/internal/validation"
)

// FlagGame is the guess-the-country-from-its-flag mode. The prompt is a flag
// image path and the expected answer is the country's iso2 code. Only
// countries with a flag asset are eligible.
type FlagGame struct {
	mode      models.GameMode
	countries *repository.CountryRepository
	scores    *repository.ScoreRepository
	packSize  int
	opts      []adaptive.Option[models.Country]
}

// NewFlagGame creates the flag strategy for one of the flag sub-modes.
func NewFlagGame(mode models.GameMode, countries *repository.CountryRepository, scores *repository.ScoreRepository, packSize int, opts ...adaptive.Option[models.Country]) *FlagGame {
	return &FlagGame{
		mode:      mode,
		countries: countries,
		scores:    scores,
		packSize:  packSize,
		opts:      opts,
	}
}

func (g *FlagGame) Mode() models.GameMode { return g.mode }

func (g *FlagGame) BuildQuestions(ctx context.Context, userID int64, authenticated bool, prefs SessionPrefs, startIndex int, lastQuestionID string) ([]QuestionView, map[int]PendingQuestion, error) {
	filter := repository.CountryFilter{
		Continents:  prefs.Continents,
		RequireFlag: true,
	}
	pool := repository.NewCountryPool(g.countries, g.scores, userID, g.mode, filter)
	scheduler := adaptive.NewScheduler[models.Country](pool, countryIdentity, g.opts...)

	countries, err := scheduler.ComputeQuestions(ctx, authenticated, g.mode, g.packSize, lastQuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute flag questions: %w", err)
	}

	views := make([]QuestionView, len(countries))
	pending := make(map[int]PendingQuestion, len(countries))
	for i, country := range countries {
		index := startIndex + i
		views[i] = QuestionView{
			Index:     index,
			Prompt:    country.FlagPath,
			Remaining: 1,
		}
		pending[index] = PendingQuestion{
			EntityID: country.ID,
			Code:     country.ISO2Code,
		}
	}
	return views, pending, nil
}

func (g *FlagGame) CheckAnswer(ctx context.Context, userID int64, authenticated bool, pending PendingQuestion, guess string) (AnswerCheck, error) {
	correct := validation.NormalizeCode(guess) == validation.NormalizeCode(pending.Code)
	if authenticated {
		if err := g.scores.RegisterGuess(ctx, userID, models.EntityKindCountry, pending.EntityID, g.mode, correct); err != nil {
			return AnswerCheck{}, fmt.Errorf("failed to register flag guess: %w", err)
		}
	}
	return singleAnswerCheck(models.EntityKindCountry, pending, correct), nil
}

func (g *FlagGame) CorrectAnswers(ctx context.Context, questions map[int]PendingQuestion, language string) ([]CorrectAnswer, error) {
	return countryAnswers(ctx, g.countries, questions, language)
}

// countryIdentity is the scheduler identity for country entities.
func countryIdentity(country models.Country) string {
	return strconv.FormatInt(country.ID, 10)
}

// countryAnswers renders reveals for country questions, resolving the asked
// countries in one query.
func countryAnswers(ctx context.Context, countries *repository.CountryRepository, questions map[int]PendingQuestion, language string) ([]CorrectAnswer, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, pending := range questions {
		ids = append(ids, pending.EntityID)
	}
	resolved, err := countries.ListByIDs(ctx, ids, repository.CountryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve countries for reveal: %w", err)
	}
	byID := make(map[int64]models.Country, len(resolved))
	for _, country := range resolved {
		byID[country.ID] = country
	}

	answers := make([]CorrectAnswer, 0, len(questions))
	for index, pending := range questions {
		country, ok := byID[pending.EntityID]
		if !ok {
			continue
		}
		label := country.Name(language)
		answers = append(answers, CorrectAnswer{
			Index:        index,
			Label:        label,
			WikipediaURL: wikipediaURL(label, language),
		})
	}
	sortAnswers(answers)
	return answers, nil
}
