package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/brand-audit-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:          "abc12345-6789-0000-0000-000000000000",
			SourceDir:   "audits/acme",
			Status:      model.RunStatusComplete,
			RecordCount: 120,
			BrandHealth: 6.8,
			CreatedAt:   now,
			UpdatedAt:   now.Add(45 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			SourceDir: "audits/beta",
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "SOURCE")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "audits/acme")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "6.8")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "running")
	// Health column stays blank for unfinished runs.
	assert.NotContains(t, output, "0.0")
}

func TestFormatRunsList_TruncatesLongSourceDir(t *testing.T) {
	long := "/var/data/brand-audits/2026/q1/clients/acme-industrial-holdings/site-crawl"
	runs := []model.Run{{
		ID:        "abc12345",
		SourceDir: long,
		Status:    model.RunStatusFailed,
	}}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
