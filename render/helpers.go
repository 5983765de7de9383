package render

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/phoaar/cacv-bulletin-automation/models"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Esc escapes text for use in element content and double-quoted attributes.
func Esc(s string) string {
	return escaper.Replace(s)
}

// linkRe matches, in priority order, a full http(s) URL, a bare domain
// followed by a path, or an email address.
var (
	linkRe          = regexp.MustCompile(`https?://[^\s]+|[a-zA-Z0-9][a-zA-Z0-9-]*(?:\.[a-zA-Z]{2,})+/[^\s]+|[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	trailingPunctRe = regexp.MustCompile(`[.,!?;:)]+$`)
)

type linkMatch struct {
	start, end int    // span of the matched text, punctuation included
	target     string // matched text without trailing punctuation
	trailing   string
}

func findLinks(text string) []linkMatch {
	var out []linkMatch
	for _, loc := range linkRe.FindAllStringIndex(text, -1) {
		m := text[loc[0]:loc[1]]
		trailing := trailingPunctRe.FindString(m)
		out = append(out, linkMatch{
			start:    loc[0],
			end:      loc[1],
			target:   strings.TrimSuffix(m, trailing),
			trailing: trailing,
		})
	}
	return out
}

func isEmail(s string) bool {
	return strings.Contains(s, "@") && !strings.HasPrefix(s, "http")
}

// AutoLink escapes raw text and turns URLs, bare domains with a path and
// email addresses into anchors. Trailing sentence punctuation stays outside
// the anchor.
func AutoLink(raw string) string {
	var b strings.Builder
	last := 0
	for _, m := range findLinks(raw) {
		b.WriteString(Esc(raw[last:m.start]))
		t := Esc(m.target)
		switch {
		case isEmail(m.target):
			b.WriteString(`<a href="mailto:` + t + `">` + t + `</a>`)
		case strings.HasPrefix(m.target, "http"):
			b.WriteString(`<a href="` + t + `" target="_blank" rel="noopener">` + t + `</a>`)
		default:
			b.WriteString(`<a href="https://` + t + `" target="_blank" rel="noopener">` + t + `</a>`)
		}
		b.WriteString(Esc(m.trailing))
		last = m.end
	}
	b.WriteString(Esc(raw[last:]))
	return b.String()
}

// Links returns every web link AutoLink would create in text, as absolute
// URLs in order of appearance. Email addresses are ignored.
func Links(text string) []string {
	var urls []string
	for _, m := range findLinks(text) {
		switch {
		case isEmail(m.target):
		case strings.HasPrefix(m.target, "http"):
			urls = append(urls, m.target)
		default:
			urls = append(urls, "https://"+m.target)
		}
	}
	return urls
}

// FirstURL returns the first web link in text as an absolute URL, or "".
func FirstURL(text string) string {
	if urls := Links(text); len(urls) > 0 {
		return urls[0]
	}
	return ""
}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// BibleGatewayURL links a scripture reference to the NIV on BibleGateway.
func BibleGatewayURL(reference string) string {
	if reference == "" {
		return ""
	}
	return "https://www.biblegateway.com/passage/?search=" + url.QueryEscape(dashReplacer.Replace(reference)) + "&version=NIV"
}

// YouVersion book codes; version 111 is the NIV.
var youVersionBooks = map[string]string{
	"genesis": "GEN", "exodus": "EXO", "leviticus": "LEV", "numbers": "NUM", "deuteronomy": "DEU",
	"joshua": "JOS", "judges": "JDG", "ruth": "RUT", "1 samuel": "1SA", "2 samuel": "2SA",
	"1 kings": "1KI", "2 kings": "2KI", "1 chronicles": "1CH", "2 chronicles": "2CH",
	"ezra": "EZR", "nehemiah": "NEH", "esther": "EST", "job": "JOB", "psalm": "PSA", "psalms": "PSA",
	"proverbs": "PRO", "ecclesiastes": "ECC", "song of solomon": "SNG", "song of songs": "SNG",
	"isaiah": "ISA", "jeremiah": "JER", "lamentations": "LAM", "ezekiel": "EZK", "daniel": "DAN",
	"hosea": "HOS", "joel": "JOL", "amos": "AMO", "obadiah": "OBA", "jonah": "JON", "micah": "MIC",
	"nahum": "NAM", "habakkuk": "HAB", "zephaniah": "ZEP", "haggai": "HAG", "zechariah": "ZEC", "malachi": "MAL",
	"matthew": "MAT", "mark": "MRK", "luke": "LUK", "john": "JHN", "acts": "ACT",
	"romans": "ROM", "1 corinthians": "1CO", "2 corinthians": "2CO", "galatians": "GAL",
	"ephesians": "EPH", "philippians": "PHP", "colossians": "COL",
	"1 thessalonians": "1TH", "2 thessalonians": "2TH", "1 timothy": "1TI", "2 timothy": "2TI",
	"titus": "TIT", "philemon": "PHM", "hebrews": "HEB", "james": "JAS",
	"1 peter": "1PE", "2 peter": "2PE", "1 john": "1JN", "2 john": "2JN", "3 john": "3JN",
	"jude": "JUD", "revelation": "REV",
}

var referenceRe = regexp.MustCompile(`^(.+?)\s+(\d+)(?::(.+))?$`)

// YouVersionURL links a reference such as "Matthew 3:1-17" to bible.com,
// falling back to a search when the book is not recognised.
func YouVersionURL(reference string) string {
	if reference == "" {
		return ""
	}
	ref := strings.TrimSpace(dashReplacer.Replace(reference))
	search := "https://www.bible.com/search/bible?q=" + url.QueryEscape(ref) + "&version_id=111"

	m := referenceRe.FindStringSubmatch(ref)
	if m == nil {
		return search
	}
	abbr, ok := youVersionBooks[strings.ToLower(strings.TrimSpace(m[1]))]
	if !ok {
		return search
	}
	location := abbr + "." + m[2]
	if verses := strings.Join(strings.Fields(m[3]), ""); verses != "" {
		location += "." + verses
	}
	return "https://www.bible.com/bible/111/" + location + ".NIV"
}

// TeamRole is one filled service role.
type TeamRole struct {
	Label string
	Name  string
}

// TeamRoles lists the service roles that have someone assigned, in display order.
func TeamRoles(s models.ServiceInfo) []TeamRole {
	all := []TeamRole{
		{"Preacher", s.Preacher},
		{"Chairperson", s.Chairperson},
		{"Worship", s.Worship},
		{"Music", s.Music},
		{"PowerPoint", s.PowerPoint},
		{"PA / Sound", s.PASound},
		{"Chief Usher", s.ChiefUsher},
		{"Ushers", s.Usher},
		{"Flowers", s.Flowers},
		{"Morning Tea", s.MorningTea},
	}
	out := all[:0]
	for _, r := range all {
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}
