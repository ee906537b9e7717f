package repository

import (
	"context"
	"time"

	"geoclash/internal/adaptive"
	"geoclash/internal/models"
)

// CountryPool adapts the country and score repositories to the scheduler's
// pool interface for one (user, mode, filter) scheduling call. Validity and
// continent filtering happen here, so the scheduler only ever sees eligible
// countries.
type CountryPool struct {
	countries *CountryRepository
	scores    *ScoreRepository
	userID    int64
	mode      models.GameMode
	filter    CountryFilter
}

// NewCountryPool creates a pool bound to one user, mode and filter.
func NewCountryPool(countries *CountryRepository, scores *ScoreRepository, userID int64, mode models.GameMode, filter CountryFilter) *CountryPool {
	return &CountryPool{
		countries: countries,
		scores:    scores,
		userID:    userID,
		mode:      mode,
		filter:    filter,
	}
}

func (p *CountryPool) ScoresBefore(ctx context.Context, cutoff time.Time) ([]adaptive.Scored[models.Country], error) {
	records, err := p.scores.ListByUser(ctx, p.userID, models.EntityKindCountry, p.mode, &cutoff)
	if err != nil {
		return nil, err
	}
	return p.scoredCountries(ctx, records)
}

func (p *CountryPool) Scores(ctx context.Context) ([]adaptive.Scored[models.Country], error) {
	records, err := p.scores.ListByUser(ctx, p.userID, models.EntityKindCountry, p.mode, nil)
	if err != nil {
		return nil, err
	}
	return p.scoredCountries(ctx, records)
}

func (p *CountryPool) Unattempted(ctx context.Context) ([]models.Country, error) {
	return p.countries.ListUnattempted(ctx, p.userID, p.mode, p.filter)
}

func (p *CountryPool) All(ctx context.Context) ([]models.Country, error) {
	return p.countries.List(ctx, p.filter)
}

// scoredCountries resolves score records to filtered countries. Records whose
// country no longer passes the filter are dropped.
func (p *CountryPool) scoredCountries(ctx context.Context, records []models.ScoreRecord) ([]adaptive.Scored[models.Country], error) {
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(records))
	for i, record := range records {
		ids[i] = record.EntityID
	}
	countries, err := p.countries.ListByIDs(ctx, ids, p.filter)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Country, len(countries))
	for _, country := range countries {
		byID[country.ID] = country
	}

	var scored []adaptive.Scored[models.Country]
	for _, record := range records {
		country, ok := byID[record.EntityID]
		if !ok {
			continue
		}
		scored = append(scored, adaptive.Scored[models.Country]{
			Entity:  country,
			Guesses: record.Guesses,
		})
	}
	return scored, nil
}

// DepartmentPool adapts the department and score repositories to the
// scheduler's pool interface. Departments have no validity attributes, so no
// filtering applies.
type DepartmentPool struct {
	departments *DepartmentRepository
	scores      *ScoreRepository
	userID      int64
	mode        models.GameMode
}

// NewDepartmentPool creates a pool bound to one user and mode.
func NewDepartmentPool(departments *DepartmentRepository, scores *ScoreRepository, userID int64, mode models.GameMode) *DepartmentPool {
	return &DepartmentPool{
		departments: departments,
		scores:      scores,
		userID:      userID,
		mode:        mode,
	}
}

func (p *DepartmentPool) ScoresBefore(ctx context.Context, cutoff time.Time) ([]adaptive.Scored[models.Department], error) {
	records, err := p.scores.ListByUser(ctx, p.userID, models.EntityKindDepartment, p.mode, &cutoff)
	if err != nil {
		return nil, err
	}
	return p.scoredDepartments(ctx, records)
}

func (p *DepartmentPool) Scores(ctx context.Context) ([]adaptive.Scored[models.Department], error) {
	records, err := p.scores.ListByUser(ctx, p.userID, models.EntityKindDepartment, p.mode, nil)
	if err != nil {
		return nil, err
	}
	return p.scoredDepartments(ctx, records)
}

func (p *DepartmentPool) Unattempted(ctx context.Context) ([]models.Department, error) {
	return p.departments.ListUnattempted(ctx, p.userID, p.mode)
}

func (p *DepartmentPool) All(ctx context.Context) ([]models.Department, error) {
	return p.departments.List(ctx)
}

func (p *DepartmentPool) scoredDepartments(ctx context.Context, records []models.ScoreRecord) ([]adaptive.Scored[models.Department], error) {
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(records))
	for i, record := range records {
		ids[i] = record.EntityID
	}
	departments, err := p.departments.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Department, len(departments))
	for _, department := range departments {
		byID[department.ID] = department
	}

	var scored []adaptive.Scored[models.Department]
	for _, record := range records {
		department, ok := byID[record.EntityID]
		if !ok {
			continue
		}
		scored = append(scored, adaptive.Scored[models.Department]{
			Entity:  department,
			Guesses: record.Guesses,
		})
	}
	return scored, nil
}
