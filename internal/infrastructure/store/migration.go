// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"strings"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agents_user ON agents (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		user_id TEXT NOT NULL,
		agent_id TEXT NOT NULL REFERENCES agents(id),
		status TEXT NOT NULL DEFAULT 'upcoming'
			CHECK (status IN ('upcoming', 'active', 'processing', 'completed', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		ended_at TIMESTAMPTZ,
		recording_url TEXT,
		transcript_url TEXT,
		summary JSONB,
		artifacts_notified_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_completed ON meetings (ended_at) WHERE status = 'completed'`,
	`CREATE TABLE IF NOT EXISTS guests (
		id TEXT PRIMARY KEY,
		meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_meeting ON guests (meeting_id)`,
}

// RunMigration creates the schema if it does not exist yet.
func RunMigration(ctx context.Context, db DB) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
