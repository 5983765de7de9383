package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceInfo is the flat record built from the Service Details tab.
type ServiceInfo struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	Venue           string `json:"venue"`
	SermonTitle     string `json:"sermonTitle"`
	SermonScripture string `json:"sermonScripture"`
	Preacher        string `json:"preacher"`
	Chairperson     string `json:"chairperson"`
	Worship         string `json:"worship"`
	Music           string `json:"music"`
	PowerPoint      string `json:"powerpoint"`
	PASound         string `json:"paSound"`
	ChiefUsher      string `json:"chiefUsher"`
	Usher           string `json:"usher"`
	Flowers         string `json:"flowers"`
	MorningTea      string `json:"morningTea"`
	AttendanceEng   string `json:"attendanceEng"`
	AttendanceChi   string `json:"attendanceChi"`
	AttendanceKids  string `json:"attendanceKids"`
}

// Order item types that get focus styling.
const (
	OrderTypeGeneral   = "general"
	OrderTypeScripture = "scripture"
	OrderTypeSermon    = "sermon"
)

type OrderItem struct {
	Step   string `json:"step"` // advisory only, display order is row order
	Item   string `json:"item"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// IsFocus reports whether the row is a scripture reading or the sermon.
func (o OrderItem) IsFocus() bool {
	return o.Type == OrderTypeScripture || o.Type == OrderTypeSermon
}

type Announcement struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	QRSvg string `json:"qrSvg,omitempty"`
}

type PrayerGroup struct {
	Group  string   `json:"group"`
	Points []string `json:"points"`
}

type RosterEntry struct {
	Date       string `json:"date"`
	Preacher   string `json:"preacher"`
	Chair      string `json:"chair"`
	Worship    string `json:"worship"`
	Music      string `json:"music"`
	PowerPoint string `json:"powerpoint"`
	PASound    string `json:"paSound"`
	ChiefUsher string `json:"chiefUsher"`
	Ushers     string `json:"ushers"`
	MorningTea string `json:"morningTea"`
}

type Event struct {
	Month       string `json:"month"`
	Day         string `json:"day"`
	Event       string `json:"event"`
	Responsible string `json:"responsible"`
}

// ChurchInfo holds the contact block printed in every layout.
type ChurchInfo struct {
	SeniorPastorName  string `json:"seniorPastorName"`
	SeniorPastorPhone string `json:"seniorPastorPhone"`
	SeniorPastorEmail string `json:"seniorPastorEmail"`
	AsstPastorName    string `json:"asstPastorName"`
	AsstPastorPhone   string `json:"asstPastorPhone"`
	AsstPastorEmail   string `json:"asstPastorEmail"`
	AdminEmail        string `json:"adminEmail"`
}

// DefaultChurchInfo is used for any contact field the Settings tab leaves blank.
func DefaultChurchInfo() ChurchInfo {
	return ChurchInfo{
		SeniorPastorName:  "Rev Colin Wun",
		SeniorPastorPhone: "0434 190 205",
		SeniorPastorEmail: "colinwun@cacv.org.au",
		AsstPastorName:    "Ps Kwok Kit Chan",
		AsstPastorPhone:   "0452 349 846",
		AsstPastorEmail:   "kwokit@cacv.org.au",
		AdminEmail:        "admin@cacv.org.au",
	}
}

// Bulletin is the bundle passed between pipeline stages.
type Bulletin struct {
	Service            ServiceInfo    `json:"service"`
	Order              []OrderItem    `json:"order"`
	Announcements      []Announcement `json:"announcements"`
	Prayer             []PrayerGroup  `json:"prayer"`
	Roster             []RosterEntry  `json:"roster"`
	Events             []Event        `json:"events"`
	NotificationEmails []string       `json:"notificationEmails"`
	ChurchInfo         ChurchInfo     `json:"churchInfo"`

	LiveURL   string `json:"liveUrl"`
	LiveQRSvg string `json:"liveQrSvg,omitempty"`

	// EventWindowApplied is false when the service date could not be parsed
	// and events were included without date filtering.
	EventWindowApplied bool `json:"eventWindowApplied"`
}

// Clone returns a copy whose slices can be modified without touching b.
func (b Bulletin) Clone() Bulletin {
	out := b
	out.Order = append([]OrderItem(nil), b.Order...)
	out.Announcements = append([]Announcement(nil), b.Announcements...)
	if b.Prayer != nil {
		out.Prayer = make([]PrayerGroup, len(b.Prayer))
		for i, g := range b.Prayer {
			out.Prayer[i] = PrayerGroup{Group: g.Group, Points: append([]string(nil), g.Points...)}
		}
	}
	out.Roster = append([]RosterEntry(nil), b.Roster...)
	out.Events = append([]Event(nil), b.Events...)
	out.NotificationEmails = append([]string(nil), b.NotificationEmails...)
	return out
}

// TranslationFailure names a field that kept its original text.
type TranslationFailure struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Run statuses written to the history store.
const (
	RunStatusSuccess = "success"
	RunStatusIssues  = "issues"
	RunStatusFailed  = "failed"
)

// RunRecord is one row of the bulletin_runs history table.
type RunRecord struct {
	ID          uuid.UUID `json:"id"`
	ServiceDate string    `json:"serviceDate"`
	Slug        string    `json:"slug"`
	Status      string    `json:"status"`
	Issues      []string  `json:"issues"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}
