package model

import "time"

type QuestStatus string

const (
	QuestStatusPending   QuestStatus = "PENDING"
	QuestStatusCompleted QuestStatus = "COMPLETED"
)

// Terminal reports whether the quest action is fully completed server-side.
func (s QuestStatus) Terminal() bool {
	return s == QuestStatusCompleted
}

type Quest struct {
	ID    string
	Title string
}

type UserQuest struct {
	ID        string
	QuestID   string
	Status    QuestStatus
	UpdatedAt time.Time
	Credits   int
	DiceRolls []int
}

type ActionResult struct {
	Status    QuestStatus
	Credits   int
	DiceRolls []int
	UpdatedAt time.Time
}
