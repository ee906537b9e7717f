package repository

import (
	"context"
	"fmt"

	"geoclash/internal/database"
	"geoclash/internal/models"
)

// CountryFilter narrows country catalog queries. Zero value means no
// filtering.
type CountryFilter struct {
	// Continents restricts results to the given continent codes.
	Continents []string

	// RequireFlag keeps only countries with a flag asset (flag
	// identification modes).
	RequireFlag bool

	// RequireCapital keeps only countries with at least one capital city
	// (capital guessing modes).
	RequireCapital bool
}

// CountryRepository handles country catalog queries. The catalog is read-only
// for the game core; imports happen out of band.
type CountryRepository struct {
	db *database.DB
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *database.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

const countryColumns = "c.id, c.name_en, c.name_fr, c.name_native, c.iso2_code, c.iso3_code, c.flag_path, c.continent"

// List retrieves all countries matching the filter, capitals attached.
func (r *CountryRepository) List(ctx context.Context, filter CountryFilter) ([]models.Country, error) {
	query := fmt.Sprintf("SELECT %s FROM countries c", countryColumns)
	where, args := filter.clauses()
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY c.name_en ASC"

	return r.queryCountries(ctx, query, args...)
}

// ListByIDs retrieves the countries with the given ids that match the filter.
func (r *CountryRepository) ListByIDs(ctx context.Context, ids []int64, filter CountryFilter) ([]models.Country, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM countries c WHERE c.id IN (%s)", countryColumns, inPlaceholders(len(ids)))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	where, filterArgs := filter.clauses()
	if where != "" {
		query += " AND " + where
		args = append(args, filterArgs...)
	}

	return r.queryCountries(ctx, query, args...)
}

// ListUnattempted retrieves countries matching the filter that have no score
// record for (user, mode).
func (r *CountryRepository) ListUnattempted(ctx context.Context, userID int64, mode models.GameMode, filter CountryFilter) ([]models.Country, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM countries c
		WHERE NOT EXISTS (
			SELECT 1 FROM user_scores s
			WHERE s.entity_kind = ? AND s.entity_id = c.id AND s.user_id = ? AND s.game_mode = ?
		)
	`, countryColumns)
	args := []interface{}{string(models.EntityKindCountry), userID, string(mode)}

	where, filterArgs := filter.clauses()
	if where != "" {
		query += " AND " + where
		args = append(args, filterArgs...)
	}
	query += " ORDER BY c.name_en ASC"

	return r.queryCountries(ctx, query, args...)
}

// GetByISO2 retrieves a country by its iso2 code. Returns nil when no country
// matches.
func (r *CountryRepository) GetByISO2(ctx context.Context, iso2Code string) (*models.Country, error) {
	query := fmt.Sprintf("SELECT %s FROM countries c WHERE c.iso2_code = ?", countryColumns)

	countries, err := r.queryCountries(ctx, query, iso2Code)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return &countries[0], nil
}

// GetByCapitalIDs retrieves the distinct countries owning any of the given
// capital cities. Catalog integrity guarantees at most one country per
// question's capital set; callers treat any other outcome as fatal.
func (r *CountryRepository) GetByCapitalIDs(ctx context.Context, cityIDs []int64) ([]models.Country, error) {
	if len(cityIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM countries c
		JOIN country_cities cc ON cc.country_id = c.id
		WHERE cc.city_id IN (%s)
	`, countryColumns, inPlaceholders(len(cityIDs)))
	args := make([]interface{}, len(cityIDs))
	for i, id := range cityIDs {
		args[i] = id
	}

	return r.queryCountries(ctx, query, args...)
}

func (r *CountryRepository) queryCountries(ctx context.Context, query string, args ...interface{}) ([]models.Country, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []models.Country
	for rows.Next() {
		var country models.Country
		err := rows.Scan(
			&country.ID,
			&country.NameEN,
			&country.NameFR,
			&country.NameNative,
			&country.ISO2Code,
			&country.ISO3Code,
			&country.FlagPath,
			&country.Continent,
		)
		if err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachCapitals(ctx, countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// attachCapitals loads the capital cities for each country in one query.
func (r *CountryRepository) attachCapitals(ctx context.Context, countries []models.Country) error {
	if len(countries) == 0 {
		return nil
	}

	ids := make([]interface{}, len(countries))
	byID := make(map[int64]*models.Country, len(countries))
	for i := range countries {
		ids[i] = countries[i].ID
		byID[countries[i].ID] = &countries[i]
	}

	query := fmt.Sprintf(`
		SELECT cc.country_id, ci.id, ci.name_en, ci.name_fr, ci.is_capital
		FROM country_cities cc
		JOIN cities ci ON ci.id = cc.city_id
		WHERE cc.country_id IN (%s) AND ci.is_capital = ?
		ORDER BY ci.name_en ASC
	`, inPlaceholders(len(ids)))
	args := append(ids, true)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var countryID int64
		var city models.City
		if err := rows.Scan(&countryID, &city.ID, &city.NameEN, &city.NameFR, &city.IsCapital); err != nil {
			return err
		}
		if country, ok := byID[countryID]; ok {
			country.Capitals = append(country.Capitals, city)
		}
	}
	return rows.Err()
}

// clauses builds the WHERE fragment for the filter, without the leading
// "WHERE".
func (f CountryFilter) clauses() (string, []interface{}) {
	var where string
	var args []interface{}

	and := func(clause string) {
		if where != "" {
			where += " AND "
		}
		where += clause
	}

	if len(f.Continents) > 0 {
		and(fmt.Sprintf("c.continent IN (%s)", inPlaceholders(len(f.Continents))))
		for _, continent := range f.Continents {
			args = append(args, continent)
		}
	}
	if f.RequireFlag {
		and("c.flag_path <> ''")
	}
	if f.RequireCapital {
		and(`EXISTS (
			SELECT 1 FROM country_cities cc
			JOIN cities ci ON ci.id = cc.city_id
			WHERE cc.country_id = c.id AND ci.is_capital = ?
		)`)
		args = append(args, true)
	}

	return where, args
}
