package repository

import (
	"strings"
	"testing"
	"time"

	"rewards_quest_bot/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *model.PassReport {
	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next := started.Add(25 * time.Hour)
	return &model.PassReport{
		ID:         uuid.MustParse("6f1c2a4e-8d4b-4d0f-9a54-1f4c3e0b7a11"),
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Wait:       90 * time.Minute,
		NextPassAt: started.Add(91 * time.Minute),
		Results: []model.CycleResult{
			{
				AccountIndex:   1,
				AccountOK:      true,
				Email:          "a@b.c",
				NextEligibleAt: &next,
				Roll: &model.Outcome{
					Kind:      model.OutcomeCompleted,
					Credits:   10,
					DiceRolls: []int{3, 5, 2},
				},
			},
			{AccountIndex: 2, Error: "profile: timeout"},
		},
	}
}

func TestPassInsert(t *testing.T) {
	report := testReport()

	query, args, err := passInsert(report).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO quest_passes"))
	assert.Contains(t, query, "$7")
	assert.Len(t, args, 7)
	assert.Contains(t, args, int64(5400))
	assert.Contains(t, args, 1)
	assert.Contains(t, args, 2)
}

func TestResultsInsert(t *testing.T) {
	report := testReport()

	insert, err := resultsInsert(report)
	require.NoError(t, err)
	query, args, err := insert.ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO quest_account_results"))
	assert.Contains(t, query, "$20")
	require.Len(t, args, 20)

	// First row carries the roll, the second has NULL roll columns.
	outcome := args[5].(*string)
	assert.Equal(t, "completed", *outcome)
	assert.Equal(t, 10, *args[6].(*int))
	assert.Equal(t, "[3,5,2]", *args[7].(*string))

	assert.Nil(t, args[15].(*string))
	assert.Nil(t, args[16].(*int))
	assert.Nil(t, args[18].(*time.Time))
	assert.Equal(t, "profile: timeout", args[19])
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schema)
	require.Len(t, stmts, 3)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS quest_passes"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS quest_account_results"))
}
