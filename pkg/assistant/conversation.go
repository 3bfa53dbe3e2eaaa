package assistant

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/logger"
)

// Role of one chat message
type Role string

const (
	// RoleUser marks a message written by the user
	RoleUser Role = "user"
	// RoleAssistant marks a message written by the assistant
	RoleAssistant Role = "assistant"
)

// AIMessage is one ephemeral chat turn held in session memory, never edited
type AIMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationTurn is one persisted query/response pair of the append-only
// conversation log
type ConversationTurn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Messages expands a stored turn into its two chat messages
func (t ConversationTurn) Messages() []AIMessage {
	return []AIMessage{
		{ID: t.ID + ":user", Role: RoleUser, Content: t.Message, Timestamp: t.CreatedAt},
		{ID: t.ID + ":assistant", Role: RoleAssistant, Content: t.Response, Timestamp: t.CreatedAt},
	}
}

// ConversationRepositoryInterface is the append-only conversation log
type ConversationRepositoryInterface interface {
	SaveTurn(ctx context.Context, turn *ConversationTurn) error
	FindHistory(ctx context.Context, userID string, limit int) ([]ConversationTurn, error)
}

// PostgresConversationRepository stores turns in the ai_conversations table
type PostgresConversationRepository struct {
	DB     *sql.DB
	Logger logger.Interface
}

// SaveTurn appends one turn
func (s *PostgresConversationRepository) SaveTurn(ctx context.Context, turn *ConversationTurn) error {
	if turn.UserID == "" {
		return errors.New("conversation turn without a user")
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	turn.CreatedAt = time.Now()

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO ai_conversations (id, user_id, message, response, context, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.UserID, turn.Message, turn.Response, turn.Context, turn.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "could not save conversation turn")
	}

	return nil
}

// FindHistory returns the newest turns of a user, newest first
func (s *PostgresConversationRepository) FindHistory(ctx context.Context, userID string, limit int) ([]ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, message, response, COALESCE(context, ''), created_at
		 FROM ai_conversations WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "could not query conversation history")
	}
	defer rows.Close()

	var turns []ConversationTurn
	for rows.Next() {
		var turn ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Message, &turn.Response, &turn.Context, &turn.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "could not scan conversation turn")
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read conversation history")
	}

	return turns, nil
}
