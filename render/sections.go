package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phoaar/cacv-bulletin-automation/models"
)

// Mode selects the markup a section builder produces.
type Mode int

const (
	ModeWeb Mode = iota
	ModePrint
	ModeBooklet
)

func (m Mode) String() string {
	switch m {
	case ModeWeb:
		return "web"
	case ModePrint:
		return "print"
	case ModeBooklet:
		return "booklet"
	}
	return "unknown"
}

func emptyNote(text string) string {
	return `<p class="empty">` + Esc(text) + `</p>`
}

func orderSection(order []models.OrderItem, mode Mode) string {
	var b strings.Builder
	b.WriteString(`<ul class="order-list">` + "\n")
	if len(order) == 0 {
		b.WriteString(`<li class="order-row"><span class="order-name">No items listed</span></li>` + "\n")
	}
	for i, item := range order {
		cls := "order-row"
		if item.IsFocus() {
			cls += " focus"
		}
		n := strconv.Itoa(i + 1)
		switch mode {
		case ModeWeb:
			fmt.Fprintf(&b, `<li class="%s"><div class="order-idx">%s</div><span class="order-name">%s</span>`, cls, n, Esc(item.Item))
			if item.Detail != "" {
				b.WriteString(`<span class="order-sub">` + Esc(item.Detail) + `</span>`)
			}
			if item.Type == models.OrderTypeScripture && item.Detail != "" {
				fmt.Fprintf(&b, `<span class="bible-btns-sm"><a class="bible-btn-sm" href="%s" target="_blank" rel="noopener">BibleGateway</a>`+
					`<a class="bible-btn-sm" href="%s" target="_blank" rel="noopener">YouVersion</a></span>`,
					Esc(BibleGatewayURL(item.Detail)), Esc(YouVersionURL(item.Detail)))
			}
			b.WriteString("</li>\n")
		default:
			fmt.Fprintf(&b, `<li class="%s">%s. %s`, cls, n, Esc(item.Item))
			if item.Detail != "" {
				b.WriteString(` <span class="detail">` + Esc(item.Detail) + `</span>`)
			}
			b.WriteString("</li>\n")
		}
	}
	b.WriteString("</ul>")
	return b.String()
}

func teamSection(s models.ServiceInfo, mode Mode) string {
	roles := TeamRoles(s)
	var b strings.Builder
	if mode == ModeWeb {
		b.WriteString(`<div class="team-grid">` + "\n")
		for _, r := range roles {
			fmt.Fprintf(&b, `<div class="team-chip"><div class="team-role">%s</div><div class="team-name">%s</div></div>`+"\n", Esc(r.Label), Esc(r.Name))
		}
		b.WriteString("</div>")
		return b.String()
	}

	b.WriteString(`<ul class="team-list">` + "\n")
	for _, r := range roles {
		fmt.Fprintf(&b, `<li><span class="role">%s:</span> %s</li>`+"\n", Esc(r.Label), Esc(r.Name))
	}
	b.WriteString("</ul>")
	return b.String()
}

func announcementsSection(anns []models.Announcement, mode Mode) string {
	if len(anns) == 0 {
		return emptyNote("No announcements this week.")
	}

	var b strings.Builder
	if mode == ModeWeb {
		b.WriteString(`<div class="announce-stack">` + "\n")
		for i, a := range anns {
			fmt.Fprintf(&b, `<div class="announce"><div class="announce-n">%d</div><div class="announce-main">`+
				`<div class="announce-t">%s</div><div class="announce-b">%s</div></div>`, i+1, Esc(a.Title), AutoLink(a.Body))
			if a.QRSvg != "" {
				b.WriteString(`<div class="announce-qr">` + a.QRSvg + `</div>`)
			}
			b.WriteString("</div>\n")
		}
		b.WriteString("</div>")
		return b.String()
	}

	b.WriteString(`<ol class="announce-list">` + "\n")
	for _, a := range anns {
		b.WriteString(`<li>`)
		if mode == ModeBooklet && a.QRSvg != "" {
			b.WriteString(`<span class="announce-qr">` + a.QRSvg + `</span>`)
		}
		b.WriteString(`<strong>` + Esc(a.Title) + `</strong>`)
		if a.Body != "" {
			b.WriteString(` &middot; ` + AutoLink(a.Body))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>")
	return b.String()
}

func prayerSection(prayer []models.PrayerGroup, mode Mode) string {
	if len(prayer) == 0 {
		return emptyNote("No prayer items this week.")
	}

	var b strings.Builder
	if mode == ModePrint {
		for _, g := range prayer {
			points := make([]string, len(g.Points))
			for i, p := range g.Points {
				points[i] = `<span class="bullet">&bull;</span> ` + Esc(p)
			}
			fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", Esc(g.Group), strings.Join(points, " "))
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	b.WriteString(`<div class="prayer-groups">` + "\n")
	for _, g := range prayer {
		b.WriteString(`<div class="prayer-group"><div class="prayer-group-head">` + Esc(g.Group) + `</div><div class="prayer-items">` + "\n")
		for _, p := range g.Points {
			b.WriteString(`<div class="prayer-item"><div class="prayer-pip"></div>` + Esc(p) + "</div>\n")
		}
		b.WriteString("</div></div>\n")
	}
	b.WriteString("</div>")
	return b.String()
}

// joinNames combines two roster columns, skipping blanks.
func joinNames(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "" || a == b:
		return a
	}
	return a + " / " + b
}

func rosterSection(roster []models.RosterEntry, mode Mode) string {
	var b strings.Builder
	cls := "tbl"
	if mode != ModeWeb {
		cls += " tbl-compact"
	}
	fmt.Fprintf(&b, `<table class="%s"><thead><tr><th>Date</th><th>Preacher</th><th>Chair</th><th>Worship / Music</th><th>PP &amp; PA</th><th>Ushers</th></tr></thead><tbody>`+"\n", cls)
	if len(roster) == 0 {
		b.WriteString(`<tr><td colspan="6" class="empty">No roster data available</td></tr>` + "\n")
	}
	for _, r := range roster {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			Esc(r.Date), Esc(r.Preacher), Esc(r.Chair),
			Esc(joinNames(r.Worship, r.Music)), Esc(joinNames(r.PowerPoint, r.PASound)),
			Esc(joinNames(r.ChiefUsher, r.Ushers)))
	}
	b.WriteString("</tbody></table>")
	if mode == ModeWeb {
		return `<div class="tbl-scroll">` + b.String() + `</div>`
	}
	return b.String()
}

// eventsSection blanks the month cell when it repeats the previous row's month.
func eventsSection(events []models.Event, mode Mode) string {
	var b strings.Builder
	cls := "tbl"
	if mode != ModeWeb {
		cls += " tbl-compact"
	}
	fmt.Fprintf(&b, `<table class="%s"><thead><tr><th>Month</th><th>Day</th><th>Event</th><th>Responsible</th></tr></thead><tbody>`+"\n", cls)
	if len(events) == 0 {
		b.WriteString(`<tr><td colspan="4" class="empty">No upcoming events</td></tr>` + "\n")
	}
	lastMonth := ""
	for _, e := range events {
		month := e.Month
		if month == lastMonth {
			month = ""
		}
		if e.Month != "" {
			lastMonth = e.Month
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			Esc(month), Esc(e.Day), Esc(e.Event), Esc(e.Responsible))
	}
	b.WriteString("</tbody></table>")
	if mode == ModeWeb {
		return `<div class="tbl-scroll">` + b.String() + `</div>`
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func attendanceSection(s models.ServiceInfo, mode Mode) string {
	cells := []struct{ n, label string }{
		{s.AttendanceEng, "English Service"},
		{s.AttendanceChi, "Chinese Service"},
		{s.AttendanceKids, "Children's Service"},
	}
	var b strings.Builder
	if mode == ModeWeb {
		b.WriteString(`<div class="att-grid">`)
		for _, c := range cells {
			fmt.Fprintf(&b, `<div class="att-cell"><div class="att-n">%s</div><div class="att-l">%s</div></div>`, Esc(orDash(c.n)), Esc(c.label))
		}
		b.WriteString(`</div>`)
		return b.String()
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = Esc(c.label) + ": " + Esc(orDash(c.n))
	}
	return `<p class="attendance">Last week: ` + strings.Join(parts, " &middot; ") + `</p>`
}

// digits strips a phone number down to what a tel: link accepts.
func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, s)
}

const (
	givingAccountName = "Christian Alliance Church of Victoria"
	givingBSB         = "033 389"
	givingAccountNo   = "268 531"
	churchAddress     = "17 Livingstone Close, Burwood VIC 3125"
	churchPOBox       = "PO Box 7091 Wattle Park 3128"
	churchPhone       = "(03) 9888-7114"
	churchEmail       = "cacv@cacv.org.au"
	churchSite        = "https://cacv.org.au"
)

func contactSection(info models.ChurchInfo, mode Mode) string {
	var b strings.Builder
	if mode == ModeWeb {
		b.WriteString(`<footer><div class="footer-inner"><div class="footer-grid">` + "\n")
		b.WriteString(`<div class="footer-col"><div class="footer-col-head">Our Staff</div>` + "\n")
		staff := func(role, name, phone, email string) {
			fmt.Fprintf(&b, `<div class="footer-staff-row"><div class="footer-staff-role">%s</div><div class="footer-staff-name">%s</div><div class="footer-staff-contact">`, Esc(role), Esc(name))
			if phone != "" {
				fmt.Fprintf(&b, `<a href="tel:%s">%s</a>`, Esc(digits(phone)), Esc(phone))
			}
			if email != "" {
				fmt.Fprintf(&b, `<a href="mailto:%s">%s</a>`, Esc(email), Esc(email))
			}
			b.WriteString("</div></div>\n")
		}
		staff("Senior Pastor", info.SeniorPastorName, info.SeniorPastorPhone, info.SeniorPastorEmail)
		staff("Assistant Pastor", info.AsstPastorName, info.AsstPastorPhone, info.AsstPastorEmail)
		staff("Administration", "Church Office", "", info.AdminEmail)
		b.WriteString("</div>\n")

		fmt.Fprintf(&b, `<div class="footer-col"><div class="footer-col-head">Online Giving</div><div class="footer-giving-box">`+
			`<div class="footer-giving-row"><span class="footer-giving-label">Account Name</span><span class="footer-giving-val">%s</span></div>`+
			`<div class="footer-giving-row"><span class="footer-giving-label">BSB</span><span class="footer-giving-val">%s</span></div>`+
			`<div class="footer-giving-row"><span class="footer-giving-label">Account No.</span><span class="footer-giving-val">%s</span></div></div>`+
			`<p class="footer-giving-note">Please include your name and giving category in the payment description.</p></div>`+"\n",
			Esc(givingAccountName), givingBSB, givingAccountNo)

		fmt.Fprintf(&b, `<div class="footer-col"><div class="footer-col-head">Get in Touch</div><div class="footer-contact-items">`+
			`<div class="footer-contact-item">%s<br><span class="footer-po">%s</span></div>`+
			`<div class="footer-contact-item"><a href="tel:%s">%s</a></div>`+
			`<div class="footer-contact-item"><a href="mailto:%s">%s</a></div>`+
			`<div class="footer-contact-item"><a href="%s">cacv.org.au</a></div></div></div>`+"\n",
			Esc(churchAddress), Esc(churchPOBox), digits(churchPhone), Esc(churchPhone), churchEmail, churchEmail, churchSite)

		b.WriteString(`</div><div class="footer-base"><span>&copy; Christian Alliance Church of Victoria</span><span>C&amp;MA Member Church</span></div></div></footer>`)
		return b.String()
	}

	b.WriteString(`<div class="print-footer">` + "\n")
	fmt.Fprintf(&b, `<div><div class="footer-head">Our Staff</div>Senior Pastor: %s<br>%s &middot; %s<br><br>Asst Pastor: %s<br>%s &middot; %s<br><br>Admin: %s</div>`+"\n",
		Esc(info.SeniorPastorName), Esc(info.SeniorPastorPhone), Esc(info.SeniorPastorEmail),
		Esc(info.AsstPastorName), Esc(info.AsstPastorPhone), Esc(info.AsstPastorEmail),
		Esc(info.AdminEmail))
	fmt.Fprintf(&b, `<div><div class="footer-head">Online Giving</div>Account: %s<br>BSB: %s<br>Account No: %s<br><br><em>Include your name and giving category in the payment description.</em></div>`+"\n",
		Esc(givingAccountName), givingBSB, givingAccountNo)
	fmt.Fprintf(&b, `<div><div class="footer-head">Get in Touch</div>%s<br>%s<br>%s<br>%s<br>www.cacv.org.au</div>`+"\n",
		Esc(churchAddress), Esc(churchPOBox), Esc(churchPhone), churchEmail)
	b.WriteString("</div>")
	return b.String()
}

// adminBanner lists translation failures for the people maintaining the sheet.
func adminBanner(failures []models.TranslationFailure) string {
	if len(failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="admin-banner" role="alert"><strong>Admin notice:</strong> some Chinese text could not be translated and is shown in the original language.<ul>` + "\n")
	for _, f := range failures {
		fmt.Fprintf(&b, "<li><code>%s</code>: %s</li>\n", Esc(f.Field), Esc(f.Reason))
	}
	b.WriteString("</ul></div>")
	return b.String()
}

// liveQRBlock shows the QR code for the online bulletin, or nothing.
func liveQRBlock(b models.Bulletin, mode Mode) string {
	if b.LiveQRSvg == "" {
		return ""
	}
	label := "Scan for the live bulletin"
	if mode == ModeBooklet {
		label = "Scan for links, roster and events"
	}
	return `<div class="live-qr">` + b.LiveQRSvg + `<div class="live-qr-label">` + Esc(label) + `</div></div>`
}
