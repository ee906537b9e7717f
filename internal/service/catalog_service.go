package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"geoclash/internal/database"
)

// CatalogData is the portable JSON form of the reference catalog: countries
// with their cities, and departments. Score and user data are deliberately
// not part of it; the catalog is the only data shipped between environments.
type CatalogData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Countries   []CountryBackup    `json:"countries"`
	Departments []DepartmentBackup `json:"departments"`
}

// CountryBackup is a country record with its cities inlined.
type CountryBackup struct {
	ID         int64        `json:"id"`
	NameEN     string       `json:"name_en"`
	NameFR     string       `json:"name_fr"`
	NameNative string       `json:"name_native"`
	ISO2Code   string       `json:"iso2_code"`
	ISO3Code   string       `json:"iso3_code"`
	FlagPath   string       `json:"flag_path"`
	Continent  string       `json:"continent"`
	Cities     []CityBackup `json:"cities"`
}

// CityBackup is a city record attached to a country.
type CityBackup struct {
	ID        int64  `json:"id"`
	NameEN    string `json:"name_en"`
	NameFR    string `json:"name_fr"`
	IsCapital bool   `json:"is_capital"`
}

// DepartmentBackup is a department record.
type DepartmentBackup struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Number     string `json:"number"`
	Region     string `json:"region"`
	Prefecture string `json:"prefecture"`
}

// CatalogService exports and imports the reference catalog as JSON.
type CatalogService struct {
	db *database.DB
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *database.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Export writes the full catalog to a JSON file.
func (s *CatalogService) Export(ctx context.Context, path string) error {
	data := CatalogData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}

	countries, err := s.exportCountries(ctx)
	if err != nil {
		return err
	}
	data.Countries = countries

	departments, err := s.exportDepartments(ctx)
	if err != nil {
		return err
	}
	data.Departments = departments

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Import loads a catalog export into the database in one transaction. Rows
// colliding with existing ids fail the whole import; restore into an empty
// catalog.
func (s *CatalogService) Import(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	var data CatalogData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, country := range data.Countries {
		_, err := tx.Exec(ctx, `
			INSERT INTO countries (id, name_en, name_fr, name_native, iso2_code, iso3_code, flag_path, continent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			country.ID, country.NameEN, country.NameFR, country.NameNative,
			country.ISO2Code, country.ISO3Code, country.FlagPath, country.Continent)
		if err != nil {
			return fmt.Errorf("failed to import country %s: %w", country.ISO2Code, err)
		}
		for _, city := range country.Cities {
			_, err := tx.Exec(ctx,
				"INSERT INTO cities (id, name_en, name_fr, is_capital) VALUES (?, ?, ?, ?)",
				city.ID, city.NameEN, city.NameFR, city.IsCapital)
			if err != nil {
				return fmt.Errorf("failed to import city %s: %w", city.NameEN, err)
			}
			_, err = tx.Exec(ctx,
				"INSERT INTO country_cities (country_id, city_id) VALUES (?, ?)",
				country.ID, city.ID)
			if err != nil {
				return fmt.Errorf("failed to link city %s: %w", city.NameEN, err)
			}
		}
	}

	for _, department := range data.Departments {
		_, err := tx.Exec(ctx, `
			INSERT INTO departments (id, name, number, region, prefecture)
			VALUES (?, ?, ?, ?, ?)`,
			department.ID, department.Name, department.Number, department.Region, department.Prefecture)
		if err != nil {
			return fmt.Errorf("failed to import department %s: %w", department.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func (s *CatalogService) exportCountries(ctx context.Context) ([]CountryBackup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name_en, name_fr, name_native, iso2_code, iso3_code, flag_path, continent
		FROM countries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export countries: %w", err)
	}
	defer rows.Close()

	var countries []CountryBackup
	for rows.Next() {
		var country CountryBackup
		if err := rows.Scan(&country.ID, &country.NameEN, &country.NameFR, &country.NameNative,
			&country.ISO2Code, &country.ISO3Code, &country.FlagPath, &country.Continent); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range countries {
		cities, err := s.exportCities(ctx, countries[i].ID)
		if err != nil {
			return nil, err
		}
		countries[i].Cities = cities
	}
	return countries, nil
}

func (s *CatalogService) exportCities(ctx context.Context, countryID int64) ([]CityBackup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ci.id, ci.name_en, ci.name_fr, ci.is_capital
		FROM cities ci
		JOIN country_cities cc ON cc.city_id = ci.id
		WHERE cc.country_id = ?
		ORDER BY ci.id`, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to export cities: %w", err)
	}
	defer rows.Close()

	var cities []CityBackup
	for rows.Next() {
		var city CityBackup
		if err := rows.Scan(&city.ID, &city.NameEN, &city.NameFR, &city.IsCapital); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func (s *CatalogService) exportDepartments(ctx context.Context) ([]DepartmentBackup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, number, region, prefecture
		FROM departments ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to export departments: %w", err)
	}
	defer rows.Close()

	var departments []DepartmentBackup
	for rows.Next() {
		var department DepartmentBackup
		if err := rows.Scan(&department.ID, &department.Name, &department.Number,
			&department.Region, &department.Prefecture); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}
