package repository

import (
	"context"
	"fmt"

	"geoclash/internal/database"
	"geoclash/internal/models"
)

// DepartmentRepository handles department catalog queries
type DepartmentRepository struct {
	db *database.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *database.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

const departmentColumns = "id, name, number, region, prefecture"

// List retrieves all departments ordered by number.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments ORDER BY number ASC", departmentColumns)
	return r.queryDepartments(ctx, query)
}

// ListByIDs retrieves the departments with the given ids.
func (r *DepartmentRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM departments WHERE id IN (%s)", departmentColumns, inPlaceholders(len(ids)))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryDepartments(ctx, query, args...)
}

// ListUnattempted retrieves departments with no score record for (user, mode).
func (r *DepartmentRepository) ListUnattempted(ctx context.Context, userID int64, mode models.GameMode) ([]models.Department, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM departments d
		WHERE NOT EXISTS (
			SELECT 1 FROM user_scores s
			WHERE s.entity_kind = ? AND s.entity_id = d.id AND s.user_id = ? AND s.game_mode = ?
		)
		ORDER BY d.number ASC
	`, "d.id, d.name, d.number, d.region, d.prefecture")

	return r.queryDepartments(ctx, query, string(models.EntityKindDepartment), userID, string(mode))
}

// GetByNumber retrieves a department by its number. Returns nil when no
// department matches.
func (r *DepartmentRepository) GetByNumber(ctx context.Context, number string) (*models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE number = ?", departmentColumns)

	departments, err := r.queryDepartments(ctx, query, number)
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, nil
	}
	return &departments[0], nil
}

func (r *DepartmentRepository) queryDepartments(ctx context.Context, query string, args ...interface{}) ([]models.Department, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var department models.Department
		err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.Number,
			&department.Region,
			&department.Prefecture,
		)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}
