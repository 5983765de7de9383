package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoaar/cacv-bulletin-automation/utils"
)

func TestRunStatusText(t *testing.T) {
	assert.Equal(t, "✓ Success", RunStatusText(0))
	assert.Equal(t, "⚠ Issues (3)", RunStatusText(3))
}

func TestMelbourneTimestamp(t *testing.T) {
	// 22:05 UTC on 19 Feb is 09:05 AEDT on 20 Feb.
	assert.Equal(t, "20 Feb 2026, 9:05 am", MelbourneTimestamp(time.Date(2026, 2, 19, 22, 5, 0, 0, time.UTC)))
	// 07:30 UTC in winter is 17:30 AEST.
	assert.Equal(t, "1 Jul 2026, 5:30 pm", MelbourneTimestamp(time.Date(2026, 7, 1, 7, 30, 0, 0, time.UTC)))
}

func TestWriteRunStatus(t *testing.T) {
	var got []utils.ValueUpdate
	store := &fakeSheetStore{
		getFn: func(rng string) ([][]interface{}, error) {
			assert.Equal(t, "'⚙️  Settings'!A:A", rng)
			return [][]interface{}{
				{"Settings"},
				{"Notification Emails"},
				{},
				{"Last Run Status"},
				{" Last Run Time "},
			}, nil
		},
		batchUpdateFn: func(updates []utils.ValueUpdate) error {
			got = updates
			return nil
		},
	}

	wrote, err := WriteRunStatus(context.Background(), store, "⚠ Issues (2)", time.Date(2026, 2, 19, 22, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, []utils.ValueUpdate{
		{Range: "'⚙️  Settings'!B4", Values: [][]interface{}{{"⚠ Issues (2)"}}},
		{Range: "'⚙️  Settings'!B5", Values: [][]interface{}{{"20 Feb 2026, 9:05 am"}}},
	}, got)
}

func TestWriteRunStatus_NoLabels(t *testing.T) {
	called := false
	store := &fakeSheetStore{
		getFn: func(string) ([][]interface{}, error) { return [][]interface{}{{"Admin Email", "a@b.c"}}, nil },
		batchUpdateFn: func([]utils.ValueUpdate) error {
			called = true
			return nil
		},
	}

	wrote, err := WriteRunStatus(context.Background(), store, "✓ Success", time.Now())
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.False(t, called)
}

func TestWriteRunStatus_MissingTab(t *testing.T) {
	store := &fakeSheetStore{
		getFn: func(string) ([][]interface{}, error) { return nil, errors.New("Unable to parse range") },
	}

	wrote, err := WriteRunStatus(context.Background(), store, "✓ Success", time.Now())
	assert.Error(t, err)
	assert.False(t, wrote)
}
