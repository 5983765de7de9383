package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/phoaar/cacv-bulletin-automation/utils"
)

const (
	statusLabelRange = "'" + settingsTab + "'!A:A"
	statusLabel      = "Last Run Status"
	timeLabel        = "Last Run Time"
)

// RunStatusText is the value written to the Last Run Status cell.
func RunStatusText(issueCount int) string {
	if issueCount == 0 {
		return "✓ Success"
	}
	return fmt.Sprintf("⚠ Issues (%d)", issueCount)
}

// MelbourneTimestamp formats t like "20 Feb 2026, 9:05 am" in Melbourne time.
func MelbourneTimestamp(t time.Time) string {
	loc, err := time.LoadLocation("Australia/Melbourne")
	if err != nil {
		loc = time.UTC
	}
	s := t.In(loc).Format("2 Jan 2006, 3:04 PM")
	return strings.Replace(strings.Replace(s, "AM", "am", 1), "PM", "pm", 1)
}

// WriteRunStatus fills column B next to the Last Run Status and Last Run Time
// labels of the settings tab. It reports false when neither label exists.
func WriteRunStatus(ctx context.Context, store SheetStore, status string, now time.Time) (bool, error) {
	rows, err := store.Get(ctx, statusLabelRange)
	if err != nil {
		return false, fmt.Errorf("read settings labels: %w", err)
	}

	var statusRow, timeRow int
	for i, row := range rows {
		switch utils.Cell(row, 0) {
		case statusLabel:
			statusRow = i + 1
		case timeLabel:
			timeRow = i + 1
		}
	}
	if statusRow == 0 && timeRow == 0 {
		return false, nil
	}

	var updates []utils.ValueUpdate
	if statusRow > 0 {
		updates = append(updates, utils.ValueUpdate{
			Range:  fmt.Sprintf("'%s'!B%d", settingsTab, statusRow),
			Values: [][]interface{}{{status}},
		})
	}
	if timeRow > 0 {
		updates = append(updates, utils.ValueUpdate{
			Range:  fmt.Sprintf("'%s'!B%d", settingsTab, timeRow),
			Values: [][]interface{}{{MelbourneTimestamp(now)}},
		})
	}
	if err := store.BatchUpdate(ctx, updates); err != nil {
		return false, fmt.Errorf("write run status: %w", err)
	}
	return true, nil
}
