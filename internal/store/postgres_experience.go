package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

type postgresExperienceStore struct {
	db *sql.DB
}

const experienceColumns = `id, created_at, updated_at, user_id, title, description,
	city, country, lat, lng, images, visit_start, visit_end,
	categories, tips, budget_amount, budget_currency, rating, likes`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExperience(row rowScanner) (*models.Experience, error) {
	var (
		exp                  models.Experience
		lat, lng             sql.NullFloat64
		visitStart, visitEnd sql.NullTime
	)
	err := row.Scan(
		&exp.ID, &exp.CreatedAt, &exp.UpdatedAt, &exp.UserID,
		&exp.Title, &exp.Description,
		&exp.Location.City, &exp.Location.Country, &lat, &lng,
		pq.Array(&exp.Images), &visitStart, &visitEnd,
		pq.Array(&exp.Categories), pq.Array(&exp.Tips),
		&exp.Budget.Amount, &exp.Budget.Currency, &exp.Rating,
		pq.Array(&exp.Likes),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lat.Valid && lng.Valid {
		exp.Location.Coordinates = &models.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if visitStart.Valid {
		t := visitStart.Time
		exp.DateOfVisit.StartDate = &t
	}
	if visitEnd.Valid {
		t := visitEnd.Time
		exp.DateOfVisit.EndDate = &t
	}
	if exp.Images == nil {
		exp.Images = []string{}
	}
	if exp.Categories == nil {
		exp.Categories = []string{}
	}
	if exp.Tips == nil {
		exp.Tips = []string{}
	}
	if exp.Likes == nil {
		exp.Likes = []string{}
	}
	return &exp, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern quotes the LIKE metacharacters so a keyword matches as a
// literal substring, the same way the other backends match it.
func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// buildExperienceListWhere translates an ExperienceFilter into a WHERE clause
// and its arguments. An empty filter yields an empty clause.
func buildExperienceListWhere(f ExperienceFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}
	if f.Country != "" {
		args = append(args, f.Country)
		conditions = append(conditions, fmt.Sprintf("country = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, "%"+escapeLikePattern(f.Keyword)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR city ILIKE $%d OR country ILIKE $%d)", n, n, n))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *postgresExperienceStore) Create(ctx context.Context, exp *models.Experience) error {
	exp.ID = uuid.New().String()

	var lat, lng interface{}
	if exp.Location.Coordinates != nil {
		lat = exp.Location.Coordinates.Lat
		lng = exp.Location.Coordinates.Lng
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO experiences (
			id, created_at, updated_at, user_id, title, description,
			city, country, lat, lng, images, visit_start, visit_end,
			categories, tips, budget_amount, budget_currency, rating, likes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, exp.ID, exp.CreatedAt, exp.UpdatedAt, exp.UserID, exp.Title, exp.Description,
		exp.Location.City, exp.Location.Country, lat, lng,
		pq.Array(exp.Images), exp.DateOfVisit.StartDate, exp.DateOfVisit.EndDate,
		pq.Array(exp.Categories), pq.Array(exp.Tips),
		exp.Budget.Amount, exp.Budget.Currency, exp.Rating, pq.Array(exp.Likes))
	return err
}

func (s *postgresExperienceStore) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id)
	return scanExperience(row)
}

func (s *postgresExperienceStore) Update(ctx context.Context, id string, upd models.ExperienceUpdate) (*models.Experience, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	sets := []string{"updated_at = $2"}
	args := []interface{}{id, time.Now().UTC()}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("city", upd.Location.City)
		add("country", upd.Location.Country)
		if upd.Location.Coordinates != nil {
			add("lat", upd.Location.Coordinates.Lat)
			add("lng", upd.Location.Coordinates.Lng)
		} else {
			add("lat", nil)
			add("lng", nil)
		}
	}
	if upd.Images != nil {
		add("images", pq.Array(*upd.Images))
	}
	if upd.DateOfVisit != nil {
		add("visit_start", upd.DateOfVisit.StartDate)
		add("visit_end", upd.DateOfVisit.EndDate)
	}
	if upd.Categories != nil {
		add("categories", pq.Array(*upd.Categories))
	}
	if upd.Tips != nil {
		add("tips", pq.Array(*upd.Tips))
	}
	if upd.Budget != nil {
		add("budget_amount", upd.Budget.Amount)
		add("budget_currency", upd.Budget.Currency)
	}
	if upd.Rating != nil {
		add("rating", *upd.Rating)
	}

	query := `UPDATE experiences SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + experienceColumns
	return scanExperience(s.db.QueryRowContext(ctx, query, args...))
}

func (s *postgresExperienceStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresExperienceStore) List(ctx context.Context, filter ExperienceFilter) ([]*models.Experience, int64, error) {
	// An owner filter that is not a UUID cannot match anything in this backend.
	if filter.UserID != "" {
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return []*models.Experience{}, 0, nil
		}
	}

	where, args := buildExperienceListWhere(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, PageSize, (page-1)*PageSize)
	query := fmt.Sprintf(`SELECT %s FROM experiences%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		experienceColumns, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var experiences []*models.Experience
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, 0, err
		}
		experiences = append(experiences, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if experiences == nil {
		experiences = []*models.Experience{}
	}
	return experiences, total, nil
}

// AddLike appends userID only when absent, so repeated likes stay a single entry.
func (s *postgresExperienceStore) AddLike(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE experiences
		SET likes = CASE WHEN $2 = ANY(likes) THEN likes ELSE array_append(likes, $2) END
		WHERE id = $1
	`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresExperienceStore) RemoveLike(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE experiences SET likes = array_remove(likes, $2) WHERE id = $1
	`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
