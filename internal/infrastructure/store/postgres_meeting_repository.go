// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/meetbridge/meeting-service/internal/domain"
	"github.com/meetbridge/meeting-service/internal/domain/models"
)

const meetingColumns = `m.id, m.name, m.user_id, m.agent_id, m.status, m.created_at, m.updated_at,
	m.started_at, m.ended_at, m.recording_url, m.transcript_url, m.summary, m.artifacts_notified_at`

const (
	getMeetingSQL = `SELECT ` + meetingColumns + ` FROM meetings m WHERE m.id = $1`

	getMeetingInStatusSQL = `SELECT ` + meetingColumns + ` FROM meetings m
	WHERE m.id = $1 AND m.status = ANY($2::text[])`

	// The locking read returns the row as it is once concurrent writers have committed,
	// and the UPDATE re-checks its guards against that same version.
	updateMeetingSQL = `WITH prev AS (
		SELECT id, status FROM meetings WHERE id = $1 FOR UPDATE
	)
	UPDATE meetings m SET
		status = COALESCE($2::text, m.status),
		started_at = COALESCE($3::timestamptz, m.started_at),
		ended_at = COALESCE($4::timestamptz, m.ended_at),
		recording_url = COALESCE($5::text, m.recording_url),
		transcript_url = COALESCE($6::text, m.transcript_url),
		updated_at = $7
	FROM prev
	WHERE m.id = prev.id
		AND ($8::text = '' OR m.user_id = $8::text)
		AND (cardinality($9::text[]) = 0 OR m.status = ANY($9::text[]))
	RETURNING prev.status, ` + meetingColumns

	claimNotificationSQL = `UPDATE meetings SET artifacts_notified_at = $2
	WHERE id = $1
		AND artifacts_notified_at IS NULL
		AND COALESCE(recording_url, '') <> ''
		AND COALESCE(transcript_url, '') <> ''`

	recordingCandidatesSQL = `SELECT ` + meetingColumns + ` FROM meetings m
	WHERE m.status = 'completed' AND COALESCE(m.recording_url, '') = ''
	ORDER BY m.ended_at ASC NULLS LAST LIMIT $1`

	transcriptCandidatesSQL = `SELECT ` + meetingColumns + ` FROM meetings m
	WHERE m.status = 'completed' AND COALESCE(m.transcript_url, '') = ''
	ORDER BY m.ended_at ASC NULLS LAST LIMIT $1`

	saveSummarySQL = `UPDATE meetings SET summary = $2::jsonb WHERE id = $1 AND summary IS NULL`

	meetingExistsSQL = `SELECT EXISTS (SELECT 1 FROM meetings WHERE id = $1)`
)

// PostgresMeetingRepository is the Postgres implementation of domain.MeetingRepository.
type PostgresMeetingRepository struct {
	baseRepository
}

// NewPostgresMeetingRepository creates a new Postgres repository for meetings.
func NewPostgresMeetingRepository(db DB) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{baseRepository: newBaseRepository(db, TableMeetings, "meeting")}
}

// Get returns the meeting with the given id.
func (r *PostgresMeetingRepository) Get(ctx context.Context, meetingID string) (*models.Meeting, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("meeting.id", meetingID))
	defer span.End()

	if !r.IsReady() {
		return nil, r.unavailable(span)
	}

	meeting, err := scanMeeting(r.db.QueryRow(ctx, getMeetingSQL, meetingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound(span, domain.ErrMeetingNotFound)
		}
		return nil, r.internal(ctx, span, "get", err, "meeting_id", meetingID)
	}

	span.SetStatus(codes.Ok, "")
	return meeting, nil
}

// GetInStatus returns the meeting only when its status is one of statuses.
func (r *PostgresMeetingRepository) GetInStatus(ctx context.Context, meetingID string, statuses []models.MeetingStatus) (*models.Meeting, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("meeting.id", meetingID))
	defer span.End()

	if !r.IsReady() {
		return nil, r.unavailable(span)
	}

	meeting, err := scanMeeting(r.db.QueryRow(ctx, getMeetingInStatusSQL, meetingID, statusStrings(statuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound(span, domain.ErrMeetingNotFound)
		}
		return nil, r.internal(ctx, span, "get", err, "meeting_id", meetingID)
	}

	span.SetStatus(codes.Ok, "")
	return meeting, nil
}

// Update applies a conditional single-row update in one statement.
func (r *PostgresMeetingRepository) Update(ctx context.Context, upd domain.MeetingUpdate) (*domain.MeetingUpdateResult, bool, error) {
	ctx, span := r.startSpan(ctx, "update", attribute.String("meeting.id", upd.ID))
	defer span.End()

	if !r.IsReady() {
		return nil, false, r.unavailable(span)
	}

	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}

	row := r.db.QueryRow(ctx, updateMeetingSQL,
		upd.ID,
		status,
		upd.StartedAt,
		upd.EndedAt,
		upd.RecordingURL,
		upd.TranscriptURL,
		upd.UpdatedAt,
		upd.OwnerID,
		statusStrings(upd.FromStatuses),
	)

	var prev string
	meeting, err := scanMeeting(row, &prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetAttributes(attribute.Bool("db.applied", false))
			span.SetStatus(codes.Ok, "")
			return nil, false, nil
		}
		return nil, false, r.internal(ctx, span, "update", err, "meeting_id", upd.ID)
	}

	span.SetAttributes(attribute.Bool("db.applied", true))
	span.SetStatus(codes.Ok, "")
	return &domain.MeetingUpdateResult{Meeting: meeting, PreviousStatus: models.MeetingStatus(prev)}, true, nil
}

// ClaimArtifactNotification stamps artifacts_notified_at once both artifacts are present.
func (r *PostgresMeetingRepository) ClaimArtifactNotification(ctx context.Context, meetingID string, at time.Time) (bool, error) {
	ctx, span := r.startSpan(ctx, "update", attribute.String("meeting.id", meetingID))
	defer span.End()

	if !r.IsReady() {
		return false, r.unavailable(span)
	}

	tag, err := r.db.Exec(ctx, claimNotificationSQL, meetingID, at)
	if err != nil {
		return false, r.internal(ctx, span, "claim notification for", err, "meeting_id", meetingID)
	}

	claimed := tag.RowsAffected() == 1
	span.SetAttributes(attribute.Bool("db.applied", claimed))
	span.SetStatus(codes.Ok, "")
	return claimed, nil
}

// ListFallbackCandidates returns completed meetings that lack the artifact, earliest end first.
func (r *PostgresMeetingRepository) ListFallbackCandidates(ctx context.Context, artifact models.ArtifactKind, limit int) ([]*models.Meeting, error) {
	ctx, span := r.startSpan(ctx, "select", attribute.String("meeting.artifact", string(artifact)))
	defer span.End()

	if !r.IsReady() {
		return nil, r.unavailable(span)
	}

	var query string
	switch artifact {
	case models.ArtifactRecording:
		query = recordingCandidatesSQL
	case models.ArtifactTranscript:
		query = transcriptCandidatesSQL
	default:
		err := fmt.Errorf("unknown artifact kind %q", artifact)
		return nil, r.internal(ctx, span, "list candidates for", err)
	}

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, r.internal(ctx, span, "list candidates for", err)
	}
	defer rows.Close()

	var list []*models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, r.internal(ctx, span, "list candidates for", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.internal(ctx, span, "list candidates for", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(list)))
	span.SetStatus(codes.Ok, "")
	return list, nil
}

// SaveSummary stores the summary unless one is already stored.
func (r *PostgresMeetingRepository) SaveSummary(ctx context.Context, meetingID string, summary models.MeetingSummary) (bool, error) {
	ctx, span := r.startSpan(ctx, "update", attribute.String("meeting.id", meetingID))
	defer span.End()

	if !r.IsReady() {
		return false, r.unavailable(span)
	}

	if summary.QA == nil {
		summary.QA = []models.QAPair{}
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return false, r.internal(ctx, span, "marshal summary for", err, "meeting_id", meetingID)
	}

	tag, err := r.db.Exec(ctx, saveSummarySQL, meetingID, string(data))
	if err != nil {
		return false, r.internal(ctx, span, "save summary for", err, "meeting_id", meetingID)
	}
	if tag.RowsAffected() == 1 {
		span.SetStatus(codes.Ok, "")
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, meetingExistsSQL, meetingID).Scan(&exists); err != nil {
		return false, r.internal(ctx, span, "save summary for", err, "meeting_id", meetingID)
	}
	if !exists {
		return false, r.notFound(span, domain.ErrMeetingNotFound)
	}

	span.SetStatus(codes.Ok, "")
	return false, nil
}

// scanMeeting scans one meeting row. leading receives columns selected before the meeting columns.
func scanMeeting(row pgx.Row, leading ...any) (*models.Meeting, error) {
	var (
		m           models.Meeting
		status      string
		summaryJSON []byte
	)
	dest := append(leading,
		&m.ID, &m.Name, &m.UserID, &m.AgentID, &status, &m.CreatedAt, &m.UpdatedAt,
		&m.StartedAt, &m.EndedAt, &m.RecordingURL, &m.TranscriptURL, &summaryJSON, &m.ArtifactsNotifiedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Status = models.MeetingStatus(status)
	if len(summaryJSON) > 0 {
		var summary models.MeetingSummary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("invalid summary for meeting %s: %w", m.ID, err)
		}
		if summary.QA == nil {
			summary.QA = []models.QAPair{}
		}
		m.Summary = &summary
	}
	return &m, nil
}

func statusStrings(statuses []models.MeetingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
