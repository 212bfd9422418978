package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/drafte-app/drafte-backend/internal/projects/domain"
)

// MessageRepository stores the append-only chat history of projects.
type MessageRepository struct {
	db DB
}

func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, projectID, role, content string) (*domain.ChatMessage, error) {
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	const q = `
insert into chat_messages (id, project_id, role, content)
values ($1::uuid, $2::uuid, $3, $4)
returning id::text, project_id::text, role, content, created_at;
`
	var m domain.ChatMessage
	err := r.db.QueryRow(ctx, q, uuid.NewString(), projectID, role, content).
		Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &m, nil
}

// List returns a project's messages oldest first.
func (r *MessageRepository) List(ctx context.Context, projectID string) ([]domain.ChatMessage, error) {
	const q = `
select id::text, project_id::text, role, content, created_at
from chat_messages
where project_id = $1::uuid
order by created_at asc, id asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChatMessage, 0, 32)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
