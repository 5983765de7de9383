// Package render turns a normalized bulletin into the web, single-sheet
// print and folded booklet HTML documents.
package render

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/phoaar/cacv-bulletin-automation/models"
)

var (
	//go:embed styles/web.css
	webCSS string
	//go:embed styles/print.css
	printCSS string
	//go:embed styles/booklet.css
	bookletCSS string
)

const (
	fontsLink = `<link href="https://fonts.googleapis.com/css2?family=Instrument+Serif:ital@0;1&family=Instrument+Sans:ital,wght@0,400;0,500;0,600;1,400&display=swap" rel="stylesheet">`

	logoLight = "assets/CACV Logo White.png"
	logoDark  = "assets/CACV Logo.png"
)

var navSections = []struct{ id, label string }{
	{"order", "Order"},
	{"team", "Team"},
	{"announcements", "Notices"},
	{"prayer", "Prayer"},
	{"roster", "Roster"},
	{"events", "Events"},
	{"attendance", "Attendance"},
	{"theme", "Theme"},
}

// navScript highlights the nav button of the section in view.
const navScript = `<script>
  const btns = {};
  document.querySelectorAll('.nav-btn').forEach(b => { btns[b.getAttribute('href').slice(1)] = b; });
  const observer = new IntersectionObserver(entries => {
    entries.forEach(entry => {
      const btn = btns[entry.target.id];
      if (!btn || !entry.isIntersecting) return;
      Object.values(btns).forEach(b => b.classList.remove('active'));
      btn.classList.add('active');
    });
  }, { rootMargin: '-20% 0px -60% 0px', threshold: 0 });
  Object.keys(btns).forEach(id => { const el = document.getElementById(id); if (el) observer.observe(el); });
</script>`

func head(title, css string, withFonts bool) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString("<title>" + Esc(title) + "</title>\n")
	if withFonts {
		b.WriteString(fontsLink + "\n")
	}
	b.WriteString("<style>\n" + css + "</style>\n</head>\n")
	return b.String()
}

func card(id, label, content string) string {
	return fmt.Sprintf("<div class=\"card\" id=\"%s\">\n<div class=\"card-label\">%s</div>\n%s\n</div>\n", id, Esc(label), content)
}

func bibleButtons(reference string) string {
	if reference == "" {
		return ""
	}
	return fmt.Sprintf(`<div class="bible-btns"><a class="bible-btn" href="%s" target="_blank" rel="noopener">BibleGateway</a>`+
		`<a class="bible-btn" href="%s" target="_blank" rel="noopener">YouVersion</a></div>`,
		Esc(BibleGatewayURL(reference)), Esc(YouVersionURL(reference)))
}

const hopeCard = `<div class="hope-card" id="theme">
<div class="hope-header"><div class="hope-eyebrow">Church Theme</div><div class="hope-title">Proclaim <em>HOPE</em></div></div>
<div class="hope-grid">
<div class="hope-cell"><div class="hope-letter">H</div><div><div class="hope-word">Healthy Relationships</div><div class="hope-desc">with God and with others</div></div></div>
<div class="hope-cell"><div class="hope-letter">O</div><div><div class="hope-word">On Mission</div><div class="hope-desc">Everyone, everywhere, all the time</div></div></div>
<div class="hope-cell"><div class="hope-letter">P</div><div><div class="hope-word">People of Prayer and Praise</div><div class="hope-desc"></div></div></div>
<div class="hope-cell"><div class="hope-letter">E</div><div><div class="hope-word">Empowered &amp; Equipped</div><div class="hope-desc">by the Holy Spirit for this task</div></div></div>
</div>
</div>
`

// Web renders the interactive online bulletin. When failures is non-empty an
// admin banner listing each untranslated field is shown above the page.
func Web(b models.Bulletin, failures []models.TranslationFailure) string {
	s := b.Service
	var out strings.Builder
	out.WriteString(head("CACV Bulletin · "+s.Date, webCSS, true))
	out.WriteString("<body>\n")
	out.WriteString(adminBanner(failures))

	fmt.Fprintf(&out, `<div class="hero"><div class="hero-inner">
<img class="hero-logo" src="%s" alt="CACV logo">
<div class="bulletin-chip"><span class="chip-dot"></span> Weekly Bulletin</div>
<div class="hero-service-tag">English Service</div>
<h1 class="hero-title">Christian Alliance<br>Church of <em>Victoria</em></h1>
<p class="hero-date">%s</p>
<div class="hero-pills"><span class="hero-pill">%s</span><span class="hero-pill">%s</span></div>
</div></div>
`, Esc(logoLight), Esc(s.Date), Esc(s.Time), Esc(s.Venue))

	fmt.Fprintf(&out, `<div class="sermon-strip"><div class="sermon-inner"><div>
<div class="sermon-eyebrow">This Week's Message</div>
<div class="sermon-title">%s</div>
<div class="sermon-ref">%s</div>
%s
</div><div class="preacher-tag">%s</div></div></div>
`, Esc(s.SermonTitle), Esc(s.SermonScripture), bibleButtons(s.SermonScripture), Esc(s.Preacher))

	out.WriteString(`<nav class="sticky-nav" aria-label="Jump to section"><div class="nav-scroll">`)
	for _, n := range navSections {
		fmt.Fprintf(&out, `<a href="#%s" class="nav-btn">%s</a>`, n.id, n.label)
	}
	out.WriteString("</div></nav>\n")

	out.WriteString("<div class=\"page\">\n")
	out.WriteString(card("order", "Order of Service", orderSection(b.Order, ModeWeb)))
	out.WriteString(card("team", "Service Team", teamSection(s, ModeWeb)))
	out.WriteString(card("announcements", "Announcements", announcementsSection(b.Announcements, ModeWeb)))
	out.WriteString(card("prayer", "Prayer Items", prayerSection(b.Prayer, ModeWeb)))
	out.WriteString(card("roster", "Upcoming Roster", rosterSection(b.Roster, ModeWeb)))
	out.WriteString(card("events", "Upcoming Events", eventsSection(b.Events, ModeWeb)))
	out.WriteString(card("attendance", "Last Week's Attendance", attendanceSection(s, ModeWeb)))
	out.WriteString(hopeCard)
	out.WriteString("</div>\n")

	out.WriteString(contactSection(b.ChurchInfo, ModeWeb))
	out.WriteString("\n" + navScript + "\n</body>\n</html>\n")
	return out.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, Esc(p))
		}
	}
	return strings.Join(kept, sep)
}

// Print renders a black and white A4 sheet: service details, order and team
// on the front; announcements, prayer and contacts on the back.
func Print(b models.Bulletin) string {
	s := b.Service
	var out strings.Builder
	out.WriteString(head("CACV Bulletin Print · "+s.Date, printCSS, false))
	out.WriteString("<body>\n<div class=\"page-1\">\n")

	fmt.Fprintf(&out, `<div class="bulletin-header"><h1>Christian Alliance Church of Victoria</h1><div class="service-info">%s</div></div>
`, joinNonEmpty(" &middot; ", s.Date, s.Time, s.Venue))

	detail := joinNonEmpty(" &middot; ", s.Preacher, s.SermonScripture)
	if detail == "" {
		detail = "&nbsp;"
	}
	fmt.Fprintf(&out, `<div class="sermon-block"><div class="sermon-label">This Week's Message</div><div class="sermon-title">%s</div><div class="sermon-detail">%s</div></div>
`, Esc(orDash(s.SermonTitle)), detail)

	fmt.Fprintf(&out, `<div class="two-col">
<div><div class="section-head">Order of Service</div>
%s
</div>
<div><div class="section-head">Service Team</div>
%s
%s
</div>
</div>
</div>
`, orderSection(b.Order, ModePrint), teamSection(s, ModePrint), liveQRBlock(b, ModePrint))

	fmt.Fprintf(&out, `<div class="page-2">
<div class="announce-section"><div class="section-head">Announcements</div>
%s
</div>
<div class="prayer-section"><div class="section-head">Prayer Items</div>
%s
</div>
%s
%s
</div>
</body>
</html>
`, announcementsSection(b.Announcements, ModePrint), prayerSection(b.Prayer, ModePrint),
		attendanceSection(s, ModePrint), contactSection(b.ChurchInfo, ModePrint))
	return out.String()
}

// Booklet renders two A4 landscape sheets for duplex printing, folded into
// a four page booklet. Sheet 1 carries the back page (prayer) and the cover;
// sheet 2 carries the inside spread (order/team and announcements).
func Booklet(b models.Bulletin) string {
	s := b.Service
	var out strings.Builder
	out.WriteString(head("CACV Bulletin Booklet · "+s.Date, bookletCSS, false))
	out.WriteString("<body>\n")

	fmt.Fprintf(&out, `<div class="sheet">
<div class="panel back">
<div class="section-head">Prayer Items</div>
%s
%s
%s
</div>
<div class="panel cover">
<img class="cover-logo" src="%s" alt="CACV logo">
<div class="cover-church">Christian Alliance<br>Church of Victoria</div>
<div class="cover-service">English Service</div>
<div class="cover-date">%s</div>
<div class="cover-meta">%s</div>
<div class="cover-sermon"><div class="section-head">This Week's Message</div><div class="cover-sermon-title">%s</div><div class="cover-meta">%s</div></div>
%s
</div>
</div>
`, prayerSection(b.Prayer, ModeBooklet), attendanceSection(s, ModeBooklet), contactSection(b.ChurchInfo, ModeBooklet),
		Esc(logoDark), Esc(s.Date), joinNonEmpty(" &middot; ", s.Time, s.Venue),
		Esc(orDash(s.SermonTitle)), joinNonEmpty(" &middot; ", s.Preacher, s.SermonScripture),
		liveQRBlock(b, ModeBooklet))

	fmt.Fprintf(&out, `<div class="sheet">
<div class="panel inside-left">
<div class="section-head">Order of Service</div>
%s
<div class="section-head">Service Team</div>
%s
</div>
<div class="panel inside-right">
<div class="section-head">Announcements</div>
%s
</div>
</div>
</body>
</html>
`, orderSection(b.Order, ModeBooklet), teamSection(s, ModeBooklet), announcementsSection(b.Announcements, ModeBooklet))
	return out.String()
}
