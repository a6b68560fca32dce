// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/votehub/models"
	"github.com/danielhkuo/votehub/realtime"
)

// Settings returns the defaults overlaid with every saved section
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT section, payload FROM setting`)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var section, payload string
		if err := rows.Scan(&section, &payload); err != nil {
			return models.Settings{}, fmt.Errorf("failed to scan setting: %w", err)
		}
		target := settings.Section(section)
		if target == nil {
			continue
		}
		if err := json.Unmarshal([]byte(payload), target); err != nil {
			return models.Settings{}, fmt.Errorf("failed to parse %s settings: %w", section, err)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

// SaveSettingsSection merges payload into one section, validates the
// result and stores it. Fields missing from payload keep their value.
func (s *Store) SaveSettingsSection(ctx context.Context, section string, payload []byte, adminID string) (models.Settings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	target := settings.Section(section)
	if target == nil {
		return models.Settings{}, ErrNotFound
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return models.Settings{}, &models.ValidationError{Field: section, Message: "is malformed: " + err.Error()}
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, err
	}

	encoded, err := json.Marshal(target)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to encode %s settings: %w", section, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO setting (section, payload, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (section) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at, updated_by = excluded.updated_by
	`, section, string(encoded), s.Now(), adminID)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to save %s settings: %w", section, err)
	}

	s.publish(ctx, realtime.Change{Table: "setting", Op: realtime.OpUpdate, RowID: section})
	return settings, nil
}
