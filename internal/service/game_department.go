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

// DepartmentGame is the guess-the-French-department-from-its-number mode.
// The prompt is the department number and the expected answer is its name.
// Continent preferences do not apply; the department catalog is flat.
type DepartmentGame struct {
	mode        models.GameMode
	departments *repository.DepartmentRepository
	scores      *repository.ScoreRepository
	packSize    int
	opts        []adaptive.Option[models.Department]
}

// NewDepartmentGame creates the department strategy for one of the
// department sub-modes.
func NewDepartmentGame(mode models.GameMode, departments *repository.DepartmentRepository, scores *repository.ScoreRepository, packSize int, opts ...adaptive.Option[models.Department]) *DepartmentGame {
	return &DepartmentGame{
		mode:        mode,
		departments: departments,
		scores:      scores,
		packSize:    packSize,
		opts:        opts,
	}
}

func (g *DepartmentGame) Mode() models.GameMode { return g.mode }

func (g *DepartmentGame) BuildQuestions(ctx context.Context, userID int64, authenticated bool, prefs SessionPrefs, startIndex int, lastQuestionID string) ([]QuestionView, map[int]PendingQuestion, error) {
	pool := repository.NewDepartmentPool(g.departments, g.scores, userID, g.mode)
	scheduler := adaptive.NewScheduler[models.Department](pool, departmentIdentity, g.opts...)

	departments, err := scheduler.ComputeQuestions(ctx, authenticated, g.mode, g.packSize, lastQuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute department questions: %w", err)
	}

	views := make([]QuestionView, len(departments))
	pending := make(map[int]PendingQuestion, len(departments))
	for i, department := range departments {
		index := startIndex + i
		views[i] = QuestionView{
			Index:     index,
			Prompt:    department.Number,
			Remaining: 1,
		}
		pending[index] = PendingQuestion{
			EntityID: department.ID,
			Code:     validation.NormalizeAnswer(department.Name),
		}
	}
	return views, pending, nil
}

func (g *DepartmentGame) CheckAnswer(ctx context.Context, userID int64, authenticated bool, pending PendingQuestion, guess string) (AnswerCheck, error) {
	correct := validation.NormalizeAnswer(guess) == pending.Code
	if authenticated {
		if err := g.scores.RegisterGuess(ctx, userID, models.EntityKindDepartment, pending.EntityID, g.mode, correct); err != nil {
			return AnswerCheck{}, fmt.Errorf("failed to register department guess: %w", err)
		}
	}
	return singleAnswerCheck(models.EntityKindDepartment, pending, correct), nil
}

func (g *DepartmentGame) CorrectAnswers(ctx context.Context, questions map[int]PendingQuestion, language string) ([]CorrectAnswer, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, pending := range questions {
		ids = append(ids, pending.EntityID)
	}
	resolved, err := g.departments.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve departments for reveal: %w", err)
	}
	byID := make(map[int64]models.Department, len(resolved))
	for _, department := range resolved {
		byID[department.ID] = department
	}

	answers := make([]CorrectAnswer, 0, len(questions))
	for index, pending := range questions {
		department, ok := byID[pending.EntityID]
		if !ok {
			continue
		}
		answers = append(answers, CorrectAnswer{
			Index:        index,
			Label:        department.Name,
			WikipediaURL: wikipediaURL(department.Name, language),
		})
	}
	sortAnswers(answers)
	return answers, nil
}

// departmentIdentity is the scheduler identity for department entities.
func departmentIdentity(department models.Department) string {
	return strconv.FormatInt(department.ID, 10)
}
