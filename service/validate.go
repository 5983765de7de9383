package service

import (
	"fmt"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/utils"
)

// Validate lists human readable data-quality issues. An empty result means
// the bulletin is complete.
func Validate(b models.Bulletin) []string {
	var issues []string
	s := b.Service

	required := []struct{ value, issue string }{
		{s.Date, "Service date is missing"},
		{s.Time, "Service time is missing"},
		{s.Venue, "Venue is missing"},
		{s.SermonTitle, "Sermon title is missing"},
		{s.Preacher, "Preacher name is missing"},
	}
	for _, r := range required {
		if r.value == "" {
			issues = append(issues, r.issue)
		}
	}

	if len(b.Order) == 0 {
		issues = append(issues, "Order of service is empty")
	}
	if len(b.Announcements) == 0 {
		issues = append(issues, "No announcements found")
	}
	if len(b.Prayer) == 0 {
		issues = append(issues, "No prayer items found")
	}

	if len(b.Roster) == 0 {
		issues = append(issues, "No upcoming roster entries found")
	} else {
		next := b.Roster[0]
		if next.Preacher == "" {
			issues = append(issues, fmt.Sprintf("Roster (%s): no preacher assigned", next.Date))
		}
		if next.PASound == "" {
			issues = append(issues, fmt.Sprintf("Roster (%s): no PA / Sound assigned", next.Date))
		}
		if s.Date != "" {
			if issue := compareRosterDate(s.Date, next.Date); issue != "" {
				issues = append(issues, issue)
			}
		}
	}

	if s.Date != "" {
		if _, ok := utils.ParseDate(s.Date); !ok {
			issues = append(issues, fmt.Sprintf("Service date %q could not be parsed; events were not filtered by date", s.Date))
		}
	}
	return issues
}

// compareRosterDate checks the service date against the soonest roster date.
func compareRosterDate(serviceDate, rosterDate string) string {
	svc, okSvc := utils.ParseDate(serviceDate)
	roster, okRoster := utils.ParseDate(rosterDate)
	if !okSvc || !okRoster {
		return fmt.Sprintf("Could not compare service date %q with roster date %q", serviceDate, rosterDate)
	}
	if utils.DateKey(svc) != utils.DateKey(roster) {
		return fmt.Sprintf("Service date %q does not match next roster date %q", serviceDate, rosterDate)
	}
	return ""
}

// TranslationIssues turns translation failures into issue lines.
func TranslationIssues(failures []models.TranslationFailure) []string {
	issues := make([]string, 0, len(failures))
	for _, f := range failures {
		issues = append(issues, fmt.Sprintf("Translation failed for %s: %s", f.Field, f.Reason))
	}
	return issues
}
