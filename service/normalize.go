package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/utils"
)

// Spreadsheet tab ranges. The settings tab name carries two spaces after the emoji.
const (
	ServiceDetailsRange = "'📋 Service Details'!A:B"
	OrderRange          = "'🗓 Order of Service'!A:D"
	AnnouncementsRange  = "'📢 Announcements'!A:E"
	PrayerRange         = "'🙏 Prayer Items'!A:C"
	EventsRange         = "'📅 Events'!A:F"
	SettingsRange       = "'⚙️  Settings'!A:B"
	RosterRange         = "'👥 Roster'!A:K"

	settingsTab = "⚙️  Settings"
)

// headerRows is the number of title/instruction rows above the data on each list tab.
const headerRows = 4

const (
	maxAnnouncements = 12
	maxRosterEntries = 4
	defaultGroup     = "General"
)

// SheetStore is the subset of utils.SheetClient the pipeline depends on.
type SheetStore interface {
	BatchGet(ctx context.Context, ranges []string, render utils.RenderOption) ([][][]interface{}, error)
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	BatchUpdate(ctx context.Context, updates []utils.ValueUpdate) error
}

// FetchBulletin reads every tab and normalizes the rows into a Bulletin.
// The roster is read separately with unformatted values so date cells
// arrive as serial numbers. The Settings tab is optional: a failed read
// is logged and the church defaults apply.
func FetchBulletin(ctx context.Context, store SheetStore, now time.Time, logger *zap.Logger) (models.Bulletin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tabs, err := store.BatchGet(ctx, []string{
		ServiceDetailsRange,
		OrderRange,
		AnnouncementsRange,
		PrayerRange,
		EventsRange,
	}, utils.FormattedValue)
	if err != nil {
		return models.Bulletin{}, fmt.Errorf("fetch bulletin tabs: %w", err)
	}
	if len(tabs) < 5 {
		return models.Bulletin{}, fmt.Errorf("fetch bulletin tabs: expected 5 ranges, got %d", len(tabs))
	}

	rosterTabs, err := store.BatchGet(ctx, []string{RosterRange}, utils.UnformattedValue)
	if err != nil {
		return models.Bulletin{}, fmt.Errorf("fetch roster: %w", err)
	}
	var rosterRows [][]interface{}
	if len(rosterTabs) > 0 {
		rosterRows = rosterTabs[0]
	}

	var settingsRows [][]interface{}
	settingsTabs, err := store.BatchGet(ctx, []string{SettingsRange}, utils.FormattedValue)
	switch {
	case err != nil:
		logger.Warn("⚠️  Settings tab unreadable, using church defaults", zap.Error(err))
	case len(settingsTabs) > 0:
		settingsRows = settingsTabs[0]
	}

	b := models.Bulletin{
		Service:       ParseServiceDetails(tabs[0]),
		Order:         ParseOrder(tabs[1]),
		Announcements: ParseAnnouncements(tabs[2]),
		Prayer:        ParsePrayer(tabs[3]),
		Roster:        ParseRoster(rosterRows, now),
	}
	b.Events, b.EventWindowApplied = ParseEvents(tabs[4], b.Service.Date, now)
	b.NotificationEmails, b.ChurchInfo = ParseSettings(settingsRows)
	return b, nil
}

// keyValues maps column A to column B. Rows without a column B are section
// headers and are skipped.
func keyValues(rows [][]interface{}) map[string]string {
	kv := make(map[string]string, len(rows))
	for _, row := range rows {
		key := utils.Cell(row, 0)
		if key == "" || len(row) < 2 {
			continue
		}
		kv[key] = utils.Cell(row, 1)
	}
	return kv
}

// dataRows drops the header rows of a list tab.
func dataRows(rows [][]interface{}) [][]interface{} {
	if len(rows) <= headerRows {
		return nil
	}
	return rows[headerRows:]
}

func ParseServiceDetails(rows [][]interface{}) models.ServiceInfo {
	d := keyValues(rows)
	return models.ServiceInfo{
		Date:            d["Service Date"],
		Time:            d["Service Time"],
		Venue:           d["Venue"],
		SermonTitle:     d["Sermon Title"],
		SermonScripture: d["Scripture Reference"],
		Preacher:        d["Preacher"],
		Chairperson:     d["Chairperson"],
		Worship:         d["Worship Leader"],
		Music:           d["Music / Band"],
		PowerPoint:      d["PowerPoint"],
		PASound:         d["PA / Sound"],
		ChiefUsher:      d["Chief Usher"],
		Usher:           d["Ushers"],
		Flowers:         d["Flowers"],
		MorningTea:      d["Morning Tea"],
		AttendanceEng:   d["Attendance (English)"],
		AttendanceChi:   d["Attendance (Chinese)"],
		AttendanceKids:  d["Attendance (Children's)"],
	}
}

func ParseOrder(rows [][]interface{}) []models.OrderItem {
	var out []models.OrderItem
	for _, r := range dataRows(rows) {
		item := utils.Cell(r, 1)
		if item == "" {
			continue
		}
		out = append(out, models.OrderItem{
			Step:   utils.Cell(r, 0),
			Item:   item,
			Detail: utils.Cell(r, 2),
			Type:   strings.ToLower(utils.Cell(r, 3)),
		})
	}
	return out
}

func ParseAnnouncements(rows [][]interface{}) []models.Announcement {
	var out []models.Announcement
	for _, r := range dataRows(rows) {
		title := utils.Cell(r, 1)
		if title == "" {
			continue
		}
		out = append(out, models.Announcement{Title: title, Body: utils.Cell(r, 2)})
		if len(out) == maxAnnouncements {
			break
		}
	}
	return out
}

// ParsePrayer folds rows into groups. A blank label continues the group of
// the previous point; a label seen again later appends to its first group.
func ParsePrayer(rows [][]interface{}) []models.PrayerGroup {
	var (
		out     []models.PrayerGroup
		index   = map[string]int{}
		current string
	)
	for _, r := range dataRows(rows) {
		point := utils.Cell(r, 1)
		if point == "" {
			continue
		}
		group := utils.Cell(r, 0)
		if group == "" {
			group = current
		}
		if group == "" {
			group = defaultGroup
		}
		current = group

		i, ok := index[group]
		if !ok {
			i = len(out)
			index[group] = i
			out = append(out, models.PrayerGroup{Group: group})
		}
		out[i].Points = append(out[i].Points, point)
	}
	return out
}

// ParseRoster keeps the first four rows with a named preacher dated today or
// later. Column A is either a date serial or day/month text completed by the
// year in column B. Text dates that cannot be resolved are kept.
func ParseRoster(rows [][]interface{}, now time.Time) []models.RosterEntry {
	today := utils.MidnightUTC(now)

	var out []models.RosterEntry
	for _, r := range dataRows(rows) {
		if utils.Cell(r, 2) == "" {
			continue
		}

		var date string
		if serial, ok := utils.CellNumber(r, 0); ok {
			d := utils.SerialToDate(serial)
			if d.Before(today) {
				continue
			}
			date = utils.FormatShortDate(d)
		} else {
			text, year := utils.Cell(r, 0), utils.Cell(r, 1)
			if text == "" {
				continue
			}
			if year != "" {
				if d, ok := utils.ParseDate(text + " " + year); ok && d.Before(today) {
					continue
				}
			}
			date = strings.TrimSpace(text + " " + year)
		}

		out = append(out, models.RosterEntry{
			Date:       date,
			Preacher:   utils.Cell(r, 2),
			Chair:      utils.Cell(r, 3),
			Worship:    utils.Cell(r, 4),
			Music:      utils.Cell(r, 5),
			PowerPoint: utils.Cell(r, 6),
			PASound:    utils.Cell(r, 7),
			ChiefUsher: utils.Cell(r, 8),
			Ushers:     utils.Cell(r, 9),
			MorningTea: utils.Cell(r, 10),
		})
		if len(out) == maxRosterEntries {
			break
		}
	}
	return out
}

// ParseEvents returns visible events between the service date and the end
// of the following month. When the service date cannot be parsed no window
// is applied and windowApplied is false. Rows whose own date cannot be
// resolved are kept.
func ParseEvents(rows [][]interface{}, serviceDate string, now time.Time) (events []models.Event, windowApplied bool) {
	svc, ok := utils.ParseDate(serviceDate)
	fallbackYear := now.UTC().Year()
	var windowEnd time.Time
	if ok {
		fallbackYear = svc.Year()
		windowEnd = utils.EndOfFollowingMonth(svc)
	}

	for _, r := range dataRows(rows) {
		day := utils.Cell(r, 0)
		if day == "" {
			continue
		}
		if strings.EqualFold(utils.Cell(r, 5), "no") {
			continue
		}
		if ok {
			if d, dok := eventDate(utils.Cell(r, 1), day, utils.Cell(r, 2), fallbackYear); dok {
				if d.Before(svc) || d.After(windowEnd) {
					continue
				}
			}
		}
		events = append(events, models.Event{
			Month:       utils.Cell(r, 1),
			Day:         day,
			Event:       utils.Cell(r, 3),
			Responsible: utils.Cell(r, 4),
		})
	}
	return events, ok
}

func eventDate(month, day, year string, fallbackYear int) (time.Time, bool) {
	m, ok := utils.LookupMonth(month)
	if !ok {
		return time.Time{}, false
	}
	d, ok := utils.LeadingInt(day)
	if !ok {
		return time.Time{}, false
	}
	y, ok := utils.LeadingInt(year)
	if !ok || y == 0 {
		y = fallbackYear
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// ParseSettings reads notification recipients and church contact details.
// Blank or absent keys keep their defaults.
func ParseSettings(rows [][]interface{}) ([]string, models.ChurchInfo) {
	s := keyValues(rows)

	var emails []string
	for _, e := range strings.Split(s["Notification Emails"], ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}

	info := models.DefaultChurchInfo()
	override := func(dst *string, key string) {
		if v := s[key]; v != "" {
			*dst = v
		}
	}
	override(&info.SeniorPastorName, "Senior Pastor Name")
	override(&info.SeniorPastorPhone, "Senior Pastor Phone")
	override(&info.SeniorPastorEmail, "Senior Pastor Email")
	override(&info.AsstPastorName, "Assistant Pastor Name")
	override(&info.AsstPastorPhone, "Assistant Pastor Phone")
	override(&info.AsstPastorEmail, "Assistant Pastor Email")
	override(&info.AdminEmail, "Admin Email")
	return emails, info
}
