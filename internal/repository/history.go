package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"rewards_quest_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// PassSummary is one row of quest_passes.
type PassSummary struct {
	ID          string    `db:"id" json:"id"`
	StartedAt   time.Time `db:"started_at" json:"startedAt"`
	FinishedAt  time.Time `db:"finished_at" json:"finishedAt"`
	Accounts    int       `db:"accounts" json:"accounts"`
	AccountsOK  int       `db:"accounts_ok" json:"accountsOk"`
	WaitSeconds int64     `db:"wait_seconds" json:"waitSeconds"`
	NextPassAt  time.Time `db:"next_pass_at" json:"nextPassAt"`
}

func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// RecordPass stores a finished pass and its per-account results atomically.
func (r *Repository) RecordPass(ctx context.Context, report *model.PassReport) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := passInsert(report).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build pass insert query: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert pass: %w", err)
		}

		if len(report.Results) == 0 {
			return nil
		}

		insert, err := resultsInsert(report)
		if err != nil {
			return err
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build results insert query: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert account results: %w", err)
		}
		return nil
	})
}

func (r *Repository) RecentPasses(ctx context.Context, limit int) ([]PassSummary, error) {
	query, args, err := squirrel.
		Select("id", "started_at", "finished_at", "accounts", "accounts_ok", "wait_seconds", "next_pass_at").
		From("quest_passes").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build passes query: %w", err)
	}

	var passes []PassSummary
	if err := r.db.SelectContext(ctx, &passes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select passes: %w", err)
	}
	return passes, nil
}

func passInsert(report *model.PassReport) squirrel.InsertBuilder {
	return squirrel.
		Insert("quest_passes").
		SetMap(map[string]interface{}{
			"id":           report.ID,
			"started_at":   report.StartedAt,
			"finished_at":  report.FinishedAt,
			"accounts":     len(report.Results),
			"accounts_ok":  report.AccountsOK(),
			"wait_seconds": int64(report.Wait.Seconds()),
			"next_pass_at": report.NextPassAt,
		}).
		PlaceholderFormat(squirrel.Dollar)
}

func resultsInsert(report *model.PassReport) (squirrel.InsertBuilder, error) {
	insert := squirrel.
		Insert("quest_account_results").
		Columns("pass_id", "account_index", "account_ok", "email", "social_completed",
			"roll_outcome", "roll_credits", "dice_rolls", "next_eligible_at", "error").
		PlaceholderFormat(squirrel.Dollar)

	for _, res := range report.Results {
		var (
			outcome *string
			credits *int
			rolls   *string
		)
		if res.Roll != nil {
			kind := string(res.Roll.Kind)
			outcome = &kind
			credits = &res.Roll.Credits

			b, err := json.Marshal(res.Roll.DiceRolls)
			if err != nil {
				return insert, fmt.Errorf("failed to encode dice rolls: %w", err)
			}
			s := string(b)
			rolls = &s
		}

		insert = insert.Values(report.ID, res.AccountIndex, res.AccountOK, res.Email, res.SocialCompleted,
			outcome, credits, rolls, res.NextEligibleAt, res.Error)
	}
	return insert, nil
}

func splitStatements(sql string) []string {
	var stmts []string
	for _, s := range strings.Split(sql, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
