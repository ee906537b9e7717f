package service

import (
	"context"
	"errors"
	"testing"

	"geoclash/internal/models"
)

type stubStrategy struct {
	mode models.GameMode
}

func (s *stubStrategy) Mode() models.GameMode { return s.mode }

func (s *stubStrategy) BuildQuestions(context.Context, int64, bool, SessionPrefs, int, string) ([]QuestionView, map[int]PendingQuestion, error) {
	return nil, nil, nil
}

func (s *stubStrategy) CheckAnswer(context.Context, int64, bool, PendingQuestion, string) (AnswerCheck, error) {
	return AnswerCheck{}, nil
}

func (s *stubStrategy) CorrectAnswers(context.Context, map[int]PendingQuestion, string) ([]CorrectAnswer, error) {
	return nil, nil
}

func TestRegistryGet(t *testing.T) {
	registry, err := NewRegistry(
		&stubStrategy{mode: models.GameModeCountryFlagTraining},
		&stubStrategy{mode: models.GameModeCapitalChallenge},
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	strategy, err := registry.Get(models.GameModeCountryFlagTraining)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if strategy.Mode() != models.GameModeCountryFlagTraining {
		t.Errorf("Got strategy for mode %s", strategy.Mode())
	}

	if _, err := registry.Get(models.GameMode("NOPE")); !errors.Is(err, ErrUnsupportedGameMode) {
		t.Errorf("Expected ErrUnsupportedGameMode, got %v", err)
	}
}

func TestRegistryRejectsDuplicateModes(t *testing.T) {
	_, err := NewRegistry(
		&stubStrategy{mode: models.GameModeCapitalTraining},
		&stubStrategy{mode: models.GameModeCapitalTraining},
	)
	if err == nil {
		t.Fatal("Expected an error for duplicate mode registration")
	}
}

func TestRegistryModes(t *testing.T) {
	registry, err := NewRegistry(
		&stubStrategy{mode: models.GameModeDepartmentTraining},
		&stubStrategy{mode: models.GameModeDepartmentChallenge},
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if got := len(registry.Modes()); got != 2 {
		t.Errorf("Expected 2 modes, got %d", got)
	}
}
