package stall

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrStallNotFound    = errors.New("stall not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
)

type MenuItemFilter struct {
	StallID       *uuid.UUID
	Category      string
	AvailableOnly bool
}

type Repository interface {
	ListStalls(ctx context.Context) ([]Stall, error)
	GetStall(ctx context.Context, id uuid.UUID) (*Stall, error)
	CreateStall(ctx context.Context, s *Stall) error
	ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	CreateMenuItem(ctx context.Context, m *MenuItem) error
	UpdateMenuItem(ctx context.Context, m *MenuItem) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, stallID uuid.UUID) ([]string, error)
	SearchMenuItems(ctx context.Context, query string, stallID *uuid.UUID) ([]MenuItem, error)
	SearchStalls(ctx context.Context, query string) ([]Stall, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const stallColumns = `id, name, COALESCE(name_bm, ''), cuisine_type, COALESCE(cuisine_type_bm, ''),
	COALESCE(description, ''), COALESCE(description_bm, ''), rating, COALESCE(image_url, ''),
	is_active, average_prep_time, created_at`

func scanStall(row pgx.Row) (*Stall, error) {
	var s Stall
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.NameBM,
		&s.CuisineType,
		&s.CuisineTypeBM,
		&s.Description,
		&s.DescriptionBM,
		&s.Rating,
		&s.ImageURL,
		&s.IsActive,
		&s.AveragePrepTime,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) ListStalls(ctx context.Context) ([]Stall, error) {
	query := `
		SELECT ` + stallColumns + `,
			(SELECT m.name FROM menu_items m WHERE m.stall_id = stalls.id AND m.is_best_seller LIMIT 1)
		FROM stalls
		WHERE is_active
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query stalls: %w", err)
	}
	defer rows.Close()

	stalls := make([]Stall, 0)
	for rows.Next() {
		var s Stall
		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.NameBM,
			&s.CuisineType,
			&s.CuisineTypeBM,
			&s.Description,
			&s.DescriptionBM,
			&s.Rating,
			&s.ImageURL,
			&s.IsActive,
			&s.AveragePrepTime,
			&s.CreatedAt,
			&s.BestSeller,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan stall: %w", err)
		}
		stalls = append(stalls, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating stalls: %w", err)
	}

	return stalls, nil
}

func (r *postgresRepository) GetStall(ctx context.Context, id uuid.UUID) (*Stall, error) {
	s, err := scanStall(r.db.QueryRow(ctx, `SELECT `+stallColumns+` FROM stalls WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStallNotFound
		}
		return nil, fmt.Errorf("repository: failed to select stall by id %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresRepository) CreateStall(ctx context.Context, s *Stall) error {
	query := `
		INSERT INTO stalls (id, name, name_bm, cuisine_type, cuisine_type_bm, description, description_bm,
			rating, image_url, is_active, average_prep_time, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11, $12)
	`

	s.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, query,
		s.ID, s.Name, s.NameBM, s.CuisineType, s.CuisineTypeBM, s.Description, s.DescriptionBM,
		s.Rating, s.ImageURL, s.IsActive, s.AveragePrepTime, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert stall: %w", err)
	}
	return nil
}

const menuItemColumns = `id, stall_id, name, COALESCE(name_bm, ''), COALESCE(description, ''),
	COALESCE(description_bm, ''), price, category, COALESCE(category_bm, ''), is_best_seller,
	is_available, COALESCE(image_url, ''), base_prep_time, complexity_multiplier, current_queue_count,
	calories, protein, carbs, fat, is_hospital_friendly, allergens, allergens_bm, created_at`

func scanMenuItem(row pgx.Row) (*MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.StallID,
		&m.Name,
		&m.NameBM,
		&m.Description,
		&m.DescriptionBM,
		&m.Price,
		&m.Category,
		&m.CategoryBM,
		&m.IsBestSeller,
		&m.IsAvailable,
		&m.ImageURL,
		&m.BasePrepTime,
		&m.ComplexityMultiplier,
		&m.CurrentQueueCount,
		&m.Calories,
		&m.Protein,
		&m.Carbs,
		&m.Fat,
		&m.IsHospitalFriendly,
		&m.Allergens,
		&m.AllergensBM,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Allergens == nil {
		m.Allergens = []string{}
	}
	return &m, nil
}

func (r *postgresRepository) ListMenuItems(ctx context.Context, filter MenuItemFilter) ([]MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE 1=1`
	args := make([]any, 0, 3)

	if filter.AvailableOnly {
		query += ` AND is_available`
	}
	if filter.StallID != nil {
		args = append(args, *filter.StallID)
		query += fmt.Sprintf(` AND stall_id = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	return collectMenuItems(rows)
}

func collectMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	items := make([]MenuItem, 0)
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}
	return items, nil
}

func (r *postgresRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	m, err := scanMenuItem(r.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item by id %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresRepository) CreateMenuItem(ctx context.Context, m *MenuItem) error {
	query := `
		INSERT INTO menu_items (id, stall_id, name, name_bm, description, description_bm, price, category,
			category_bm, is_best_seller, is_available, image_url, base_prep_time, complexity_multiplier,
			current_queue_count, calories, protein, carbs, fat, is_hospital_friendly, allergens, allergens_bm, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10, $11,
			NULLIF($12, ''), $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	if m.Allergens == nil {
		m.Allergens = []string{}
	}
	if m.AllergensBM == nil {
		m.AllergensBM = []string{}
	}
	m.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query,
		m.ID, m.StallID, m.Name, m.NameBM, m.Description, m.DescriptionBM, m.Price, m.Category,
		m.CategoryBM, m.IsBestSeller, m.IsAvailable, m.ImageURL, m.BasePrepTime, m.ComplexityMultiplier,
		m.CurrentQueueCount, m.Calories, m.Protein, m.Carbs, m.Fat, m.IsHospitalFriendly,
		m.Allergens, m.AllergensBM, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert menu item: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateMenuItem(ctx context.Context, m *MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, name_bm = NULLIF($2, ''), description = NULLIF($3, ''), description_bm = NULLIF($4, ''),
			price = $5, category = $6, category_bm = NULLIF($7, ''), is_best_seller = $8, is_available = $9,
			image_url = NULLIF($10, ''), base_prep_time = $11, complexity_multiplier = $12, calories = $13,
			protein = $14, carbs = $15, fat = $16, is_hospital_friendly = $17, allergens = $18, allergens_bm = $19
		WHERE id = $20
	`

	if m.Allergens == nil {
		m.Allergens = []string{}
	}
	if m.AllergensBM == nil {
		m.AllergensBM = []string{}
	}

	cmdTag, err := r.db.Exec(ctx, query,
		m.Name, m.NameBM, m.Description, m.DescriptionBM, m.Price, m.Category, m.CategoryBM,
		m.IsBestSeller, m.IsAvailable, m.ImageURL, m.BasePrepTime, m.ComplexityMultiplier,
		m.Calories, m.Protein, m.Carbs, m.Fat, m.IsHospitalFriendly, m.Allergens, m.AllergensBM, m.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item %s: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete menu item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *postgresRepository) ListCategories(ctx context.Context, stallID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT category FROM menu_items WHERE stall_id = $1 AND is_available ORDER BY category`,
		stallID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories for stall %s: %w", stallID, err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *postgresRepository) SearchMenuItems(ctx context.Context, query string, stallID *uuid.UUID) ([]MenuItem, error) {
	sql := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE is_available AND name ILIKE '%' || $1 || '%'`
	args := []any{query}
	if stallID != nil {
		args = append(args, *stallID)
		sql += ` AND stall_id = $2`
	}
	sql += ` ORDER BY name`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search menu items: %w", err)
	}
	defer rows.Close()

	return collectMenuItems(rows)
}

func (r *postgresRepository) SearchStalls(ctx context.Context, query string) ([]Stall, error) {
	sql := `SELECT ` + stallColumns + ` FROM stalls WHERE is_active AND name ILIKE '%' || $1 || '%' ORDER BY name`

	rows, err := r.db.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search stalls: %w", err)
	}
	defer rows.Close()

	stalls := make([]Stall, 0)
	for rows.Next() {
		s, err := scanStall(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan stall: %w", err)
		}
		stalls = append(stalls, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating stalls: %w", err)
	}
	return stalls, nil
}
