package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockConversationRepository is a conversation log for testing
type MockConversationRepository struct {
	Turns []*ConversationTurn
	Fail  error
}

// SaveTurn appends one turn
func (m *MockConversationRepository) SaveTurn(_ context.Context, turn *ConversationTurn) error {
	if m.Fail != nil {
		return m.Fail
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	turn.CreatedAt = time.Now()
	m.Turns = append(m.Turns, turn)
	return nil
}

// FindHistory returns the newest turns of a user, newest first
func (m *MockConversationRepository) FindHistory(_ context.Context, userID string, limit int) ([]ConversationTurn, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}

	var turns []ConversationTurn
	for i := len(m.Turns) - 1; i >= 0 && len(turns) < limit; i-- {
		if m.Turns[i].UserID == userID {
			turns = append(turns, *m.Turns[i])
		}
	}
	return turns, nil
}
