// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
)

const (
	listGuestsWithEmailSQL = `SELECT id, meeting_id, name, email, created_at FROM guests
	WHERE meeting_id = $1 AND COALESCE(email, '') <> ''
	ORDER BY created_at ASC`

	getAgentSQL = `SELECT id, user_id, name, created_at FROM agents WHERE id = $1`

	getAgentByUserSQL = `SELECT id, user_id, name, created_at FROM agents
	WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`
)

// PostgresGuestRepository is the Postgres implementation of domain.GuestRepository.
type PostgresGuestRepository struct {
	baseRepository
}

// NewPostgresGuestRepository creates a new Postgres repository for guests.
func NewPostgresGuestRepository(db DB) *PostgresGuestRepository {
	return &PostgresGuestRepository{baseRepository: newBaseRepository(db, TableGuests, "guest")}
}

// ListWithEmail returns the meeting's guests that have an email address.
func (r *PostgresGuestRepository) ListWithEmail(ctx context.Context, meetingID string) ([]*models.Guest, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("meeting.id", meetingID))
	defer span.End()

	if !r.IsReady() {
		return nil, r.unavailable(span)
	}

	rows, err := r.db.Query(ctx, listGuestsWithEmailSQL, meetingID)
	if err != nil {
		return nil, r.internal(ctx, span, "list", err, "meeting_id", meetingID)
	}
	defer rows.Close()

	var list []*models.Guest
	for rows.Next() {
		var g models.Guest
		if err := rows.Scan(&g.ID, &g.MeetingID, &g.Name, &g.Email, &g.CreatedAt); err != nil {
			return nil, r.internal(ctx, span, "list", err, "meeting_id", meetingID)
		}
		list = append(list, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, r.internal(ctx, span, "list", err, "meeting_id", meetingID)
	}

	span.SetAttributes(attribute.Int("db.rows", len(list)))
	span.SetStatus(codes.Ok, "")
	return list, nil
}

// PostgresAgentRepository is the Postgres implementation of domain.AgentRepository.
type PostgresAgentRepository struct {
	baseRepository
}

// NewPostgresAgentRepository creates a new Postgres repository for agents.
func NewPostgresAgentRepository(db DB) *PostgresAgentRepository {
	return &PostgresAgentRepository{baseRepository: newBaseRepository(db, TableAgents, "agent")}
}

// Get returns the agent with the given id.
func (r *PostgresAgentRepository) Get(ctx context.Context, agentID string) (*models.Agent, error) {
	return r.getOne(ctx, getAgentSQL, agentID, attribute.String("agent.id", agentID))
}

// GetByUserID returns the user's oldest agent.
func (r *PostgresAgentRepository) GetByUserID(ctx context.Context, userID string) (*models.Agent, error) {
	return r.getOne(ctx, getAgentByUserSQL, userID, attribute.String("agent.user_id", userID))
}

func (r *PostgresAgentRepository) getOne(ctx context.Context, query, arg string, attr attribute.KeyValue) (*models.Agent, error) {
	ctx, span := r.startSpan(ctx, "select", attr)
	defer span.End()

	if !r.IsReady() {
		return nil, r.unavailable(span)
	}

	var a models.Agent
	err := r.db.QueryRow(ctx, query, arg).Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound(span, domain.ErrAgentNotFound)
		}
		return nil, r.internal(ctx, span, "get", err, string(attr.Key), arg)
	}

	span.SetStatus(codes.Ok, "")
	return &a, nil
}
