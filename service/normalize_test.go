package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// header pads a list tab with the four title rows the sheet template carries.
func header(rows ...[]interface{}) [][]interface{} {
	out := [][]interface{}{{"Title"}, {"Instructions"}, {}, {"Step", "Item", "Detail", "Type"}}
	return append(out, rows...)
}

func TestParseServiceDetails(t *testing.T) {
	rows := [][]interface{}{
		{"SERVICE"},
		{"Service Date", "22nd February 2026"},
		{"Service Time", " 10:00am "},
		{"Venue", "Main Hall"},
		{"Sermon Title", "Living Hope"},
		{"Preacher", "Rev Colin Wun"},
		{"Attendance (Children's)", "23"},
	}

	got := ParseServiceDetails(rows)

	assert.Equal(t, "22nd February 2026", got.Date)
	assert.Equal(t, "10:00am", got.Time)
	assert.Equal(t, "Main Hall", got.Venue)
	assert.Equal(t, "Living Hope", got.SermonTitle)
	assert.Equal(t, "23", got.AttendanceKids)
	assert.Empty(t, got.Chairperson)
}

func TestParseOrder(t *testing.T) {
	got := ParseOrder(header(
		[]interface{}{"1", "Call to Worship", "", "General"},
		[]interface{}{"2", "", "skipped"},
		[]interface{}{"3", "Bible Reading", "John 3:16", "Scripture"},
	))

	require.Len(t, got, 2)
	assert.Equal(t, "Call to Worship", got[0].Item)
	assert.Equal(t, "scripture", got[1].Type)
	assert.True(t, got[1].IsFocus())
	assert.False(t, got[0].IsFocus())
}

func TestParseAnnouncements_CapsAtTwelve(t *testing.T) {
	var rows [][]interface{}
	for i := 0; i < 15; i++ {
		rows = append(rows, []interface{}{"", "Title", "Body"})
	}
	rows = append([][]interface{}{{"", ""}}, rows...)

	got := ParseAnnouncements(header(rows...))

	assert.Len(t, got, 12)
}

func TestParsePrayer_Fold(t *testing.T) {
	got := ParsePrayer(header(
		[]interface{}{"Youth", "Pray A"},
		[]interface{}{"", "Pray B"},
		[]interface{}{"Missions", "Pray C"},
	))

	assert.Equal(t, []models.PrayerGroup{
		{Group: "Youth", Points: []string{"Pray A", "Pray B"}},
		{Group: "Missions", Points: []string{"Pray C"}},
	}, got)
}

func TestParsePrayer_RepeatedLabelAndDefault(t *testing.T) {
	got := ParsePrayer(header(
		[]interface{}{"", "Unlabelled"},
		[]interface{}{"Youth", "A"},
		[]interface{}{"Missions", ""},
		[]interface{}{"Missions", "B"},
		[]interface{}{"Youth", "C"},
		[]interface{}{"", "D"},
	))

	assert.Equal(t, []models.PrayerGroup{
		{Group: "General", Points: []string{"Unlabelled"}},
		{Group: "Youth", Points: []string{"A", "C", "D"}},
		{Group: "Missions", Points: []string{"B"}},
	}, got)
}

func TestParseRoster_FiltersFromToday(t *testing.T) {
	today := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	// Serials for 2026-02-13, 02-20, 03-01, 03-08, 03-15.
	got := ParseRoster(header(
		[]interface{}{46066.0, "", "Past Preacher"},
		[]interface{}{46073.0, "", "Rev Colin Wun", "Chair A"},
		[]interface{}{46082.0, "", "Ps Kwok Kit Chan"},
		[]interface{}{46089.0, "", "Guest"},
		[]interface{}{46096.0, "", "Rev Colin Wun"},
	), today)

	require.Len(t, got, 4)
	assert.Equal(t, "20 Feb 2026", got[0].Date)
	assert.Equal(t, "Chair A", got[0].Chair)
	assert.Equal(t, "1 Mar 2026", got[1].Date)
	assert.Equal(t, "8 Mar 2026", got[2].Date)
	assert.Equal(t, "15 Mar 2026", got[3].Date)
}

func TestParseRoster_TextDates(t *testing.T) {
	today := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	got := ParseRoster(header(
		[]interface{}{"13 Feb", 2026.0, "Past"},
		[]interface{}{"22 Feb", 2026.0, "Upcoming"},
		[]interface{}{"Easter Sunday", "", "Kept"},
		[]interface{}{"1 Mar", 2026.0, ""},
		[]interface{}{"", "", "No date"},
	), today)

	require.Len(t, got, 2)
	assert.Equal(t, "22 Feb 2026", got[0].Date)
	assert.Equal(t, "Upcoming", got[0].Preacher)
	assert.Equal(t, "Easter Sunday", got[1].Date)
}

func TestParseEvents_Window(t *testing.T) {
	now := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	rows := header(
		[]interface{}{"15", "February", "", "Too early"},
		[]interface{}{"22", "February", "", "Same day", "Admin"},
		[]interface{}{"14th (Sat)", "March", "2026", "Camp"},
		[]interface{}{"1", "April", "", "Too late"},
		[]interface{}{"5", "March", "", "Hidden", "", "No"},
		[]interface{}{"TBC", "Someday", "", "Unresolvable"},
		[]interface{}{"", "March", "", "No day"},
	)

	got, applied := ParseEvents(rows, "22nd February 2026", now)

	assert.True(t, applied)
	var names []string
	for _, e := range got {
		names = append(names, e.Event)
	}
	assert.Equal(t, []string{"Same day", "Camp", "Unresolvable"}, names)
	assert.Equal(t, "Admin", got[0].Responsible)
}

func TestParseEvents_UnparseableServiceDate(t *testing.T) {
	rows := header(
		[]interface{}{"1", "January", "2020", "Old"},
		[]interface{}{"5", "March", "", "Hidden", "", "no"},
	)

	got, applied := ParseEvents(rows, "Next Sunday", time.Now())

	assert.False(t, applied)
	require.Len(t, got, 1)
	assert.Equal(t, "Old", got[0].Event)
}

func TestParseSettings(t *testing.T) {
	emails, info := ParseSettings([][]interface{}{
		{"NOTIFICATIONS"},
		{"Notification Emails", "a@cacv.org.au, , b@cacv.org.au"},
		{"Senior Pastor Name", "Rev Someone"},
		{"Admin Email", ""},
	})

	assert.Equal(t, []string{"a@cacv.org.au", "b@cacv.org.au"}, emails)
	assert.Equal(t, "Rev Someone", info.SeniorPastorName)
	assert.Equal(t, models.DefaultChurchInfo().AdminEmail, info.AdminEmail)
	assert.Equal(t, models.DefaultChurchInfo().AsstPastorName, info.AsstPastorName)
}

func TestParseSettings_AbsentTab(t *testing.T) {
	emails, info := ParseSettings(nil)
	assert.Empty(t, emails)
	assert.Equal(t, models.DefaultChurchInfo(), info)
}

func TestFetchBulletin(t *testing.T) {
	store := &fakeSheetStore{
		batchGetFn: func(ranges []string, render utils.RenderOption) ([][][]interface{}, error) {
			if render == utils.UnformattedValue {
				assert.Equal(t, []string{RosterRange}, ranges)
				return [][][]interface{}{header([]interface{}{46080.0, "", "Rev Colin Wun"})}, nil
			}
			if ranges[0] == SettingsRange {
				return [][][]interface{}{nil}, nil
			}
			require.Len(t, ranges, 5)
			return [][][]interface{}{
				{{"Service Date", "22 February 2026"}, {"Venue", "Main Hall"}},
				header([]interface{}{"1", "Welcome"}),
				header([]interface{}{"", "Camp", "Sign up"}),
				header([]interface{}{"Youth", "Pray"}),
				header([]interface{}{"1", "March", "", "Lunch"}),
			}, nil
		},
	}

	b, err := FetchBulletin(context.Background(), store, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), nil)

	require.NoError(t, err)
	assert.Equal(t, "Main Hall", b.Service.Venue)
	assert.Len(t, b.Order, 1)
	assert.Len(t, b.Announcements, 1)
	assert.Len(t, b.Prayer, 1)
	assert.Len(t, b.Events, 1)
	assert.True(t, b.EventWindowApplied)
	require.Len(t, b.Roster, 1)
	assert.Equal(t, "27 Feb 2026", b.Roster[0].Date)
	assert.Equal(t, models.DefaultChurchInfo(), b.ChurchInfo)
}

func TestFetchBulletin_ReadFailureIsFatal(t *testing.T) {
	store := &fakeSheetStore{
		batchGetFn: func([]string, utils.RenderOption) ([][][]interface{}, error) {
			return nil, errors.New("sheets API error: Requested entity was not found.")
		},
	}

	_, err := FetchBulletin(context.Background(), store, time.Now(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Requested entity was not found.")
}

func TestFetchBulletin_MissingSettingsTabUsesDefaults(t *testing.T) {
	store := &fakeSheetStore{
		batchGetFn: func(ranges []string, render utils.RenderOption) ([][][]interface{}, error) {
			switch {
			case ranges[0] == SettingsRange:
				return nil, errors.New("sheets API error: Unable to parse range: '⚙️  Settings'!A:B")
			case render == utils.UnformattedValue:
				return [][][]interface{}{nil}, nil
			}
			return [][][]interface{}{
				{{"Service Date", "22 February 2026"}},
				nil, nil, nil, nil,
			}, nil
		},
	}

	b, err := FetchBulletin(context.Background(), store, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), nil)

	require.NoError(t, err)
	assert.Equal(t, "22 February 2026", b.Service.Date)
	assert.Empty(t, b.NotificationEmails)
	assert.Equal(t, models.DefaultChurchInfo(), b.ChurchInfo)
}
