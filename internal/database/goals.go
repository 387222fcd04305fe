package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard-api/internal/models"
)

// SavingGoalRepo is row-level CRUD over saving goals. The current_amount
// counter is incremented only by the funding operation in the ledger
// service.
type SavingGoalRepo struct {
	pool *pgxpool.Pool
}

func NewSavingGoalRepo(pool *pgxpool.Pool) *SavingGoalRepo {
	return &SavingGoalRepo{pool: pool}
}

func (r *SavingGoalRepo) Create(ctx context.Context, userID uuid.UUID, name string, targetAmount decimal.Decimal) (*models.SavingGoal, error) {
	query := `
		INSERT INTO saving_goals (user_id, name, target_amount)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, target_amount, current_amount, created_at`

	goal := &models.SavingGoal{}
	err := r.pool.QueryRow(ctx, query, userID, name, targetAmount).Scan(
		&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &goal.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create saving goal: %w", err)
	}
	return goal, nil
}

func (r *SavingGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]models.SavingGoal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, created_at
		FROM saving_goals
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingGoal
	for rows.Next() {
		var goal models.SavingGoal
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &goal.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *SavingGoalRepo) GetByID(ctx context.Context, userID, goalID uuid.UUID) (*models.SavingGoal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, created_at
		FROM saving_goals
		WHERE id = $1 AND user_id = $2`

	goal := &models.SavingGoal{}
	err := r.pool.QueryRow(ctx, query, goalID, userID).Scan(
		&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &goal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get saving goal: %w", err)
	}
	return goal, nil
}

// Update renames the goal and adjusts its target; the funded counter is
// left alone.
func (r *SavingGoalRepo) Update(ctx context.Context, userID, goalID uuid.UUID, name string, targetAmount decimal.Decimal) error {
	query := `
		UPDATE saving_goals
		SET name = $1, target_amount = $2
		WHERE id = $3 AND user_id = $4`

	tag, err := r.pool.Exec(ctx, query, name, targetAmount, goalID, userID)
	if err != nil {
		return fmt.Errorf("update saving goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SavingGoalRepo) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saving_goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
