package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendintel/internal/domain/moodboard"
)

// MoodboardStore implements storage for mood boards
type MoodboardStore struct {
	db *pgxpool.Pool
}

// NewMoodboardStore creates a new mood board store
func NewMoodboardStore(db *pgxpool.Pool) *MoodboardStore {
	return &MoodboardStore{
		db: db,
	}
}

const moodboardColumns = `id, title, description, created_by, category, items, created_at, updated_at`

// Save inserts or updates a mood board
func (s *MoodboardStore) Save(ctx context.Context, board *moodboard.MoodBoard) error {
	query := `
		INSERT INTO mood_boards (id, title, description, created_by, category, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET title = $2, description = $3, category = $5, items = $6, updated_at = $8
	`

	if board.CreatedAt.IsZero() {
		board.CreatedAt = time.Now()
	}
	if board.UpdatedAt.IsZero() {
		board.UpdatedAt = board.CreatedAt
	}

	itemsJSON, err := json.Marshal(board.ItemIDs)
	if err != nil {
		return fmt.Errorf("error marshaling item ids: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		board.ID,
		board.Title,
		board.Description,
		board.CreatedBy,
		board.Category,
		itemsJSON,
		board.CreatedAt,
		board.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving mood board: %w", err)
	}

	return nil
}

// Get retrieves a mood board by ID
func (s *MoodboardStore) Get(ctx context.Context, id string) (*moodboard.MoodBoard, error) {
	query := `SELECT ` + moodboardColumns + ` FROM mood_boards WHERE id = $1`

	board, err := s.scanBoard(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, moodboard.ErrNotFound
		}
		return nil, fmt.Errorf("error querying mood board: %w", err)
	}

	return board, nil
}

// List returns mood boards matching the filter along with the total
// count before pagination, newest first.
func (s *MoodboardStore) List(ctx context.Context, filter moodboard.Filter) ([]moodboard.MoodBoard, int, error) {
	where := " WHERE 1=1"

	var args []interface{}
	argIndex := 1

	if filter.CreatedBy != "" {
		where += fmt.Sprintf(" AND created_by = $%d", argIndex)
		args = append(args, filter.CreatedBy)
		argIndex++
	}

	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM mood_boards` + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting mood boards: %w", err)
	}

	query := `SELECT ` + moodboardColumns + ` FROM mood_boards` + where + " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying mood boards: %w", err)
	}
	defer rows.Close()

	var boards []moodboard.MoodBoard
	for rows.Next() {
		board, err := s.scanBoard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning mood board: %w", err)
		}
		boards = append(boards, *board)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating mood boards: %w", err)
	}

	return boards, total, nil
}

// Delete removes a mood board
func (s *MoodboardStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM mood_boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting mood board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return moodboard.ErrNotFound
	}

	return nil
}

func (s *MoodboardStore) scanBoard(row rowScanner) (*moodboard.MoodBoard, error) {
	var board moodboard.MoodBoard
	var itemsJSON []byte

	err := row.Scan(
		&board.ID,
		&board.Title,
		&board.Description,
		&board.CreatedBy,
		&board.Category,
		&itemsJSON,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &board.ItemIDs); err != nil {
		return nil, fmt.Errorf("error unmarshaling item ids: %w", err)
	}

	return &board, nil
}
