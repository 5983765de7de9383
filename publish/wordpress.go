// Package publish pushes the web bulletin to a WordPress page.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/vanng822/go-premailer/premailer"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInsecureURL is returned when the site URL is not https.
var ErrInsecureURL = errors.New("WP_URL must use HTTPS")

const (
	pageSlug     = "cacv-english-bulletin"
	pageTemplate = "elementor_canvas"
	churchSite   = "https://cacv.org.au"

	fontsLinks = `<link rel="preconnect" href="https://fonts.googleapis.com"><link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>` +
		`<link href="https://fonts.googleapis.com/css2?family=Instrument+Serif:ital@0;1&family=Instrument+Sans:ital,wght@0,400;0,500;0,600;1,400&display=swap" rel="stylesheet">`

	logoLinkStyle = "display:inline-block; border:none !important; text-decoration:none !important; box-shadow:none !important;"
)

// canvasOverrides stretches the bulletin across Astra/Elementor page chrome.
const canvasOverrides = `
/* WordPress full width */
body, .site, #page, #content, #primary, .site-content, .site-main,
.entry-content, .ast-container, .elementor, .elementor-section, .elementor-container {
  max-width: 100% !important;
  width: 100% !important;
  margin: 0 !important;
  padding: 0 !important;
}
.hero, .sermon-strip, .sticky-nav, footer {
  width: 100% !important;
  max-width: 100% !important;
}
.hero-inner, .sermon-inner, .nav-scroll, .page, .footer-inner {
  margin-left: auto !important;
  margin-right: auto !important;
  max-width: 740px;
}
.order-list li::before, .order-list li::after, .order-row::before, .order-row::after,
li::before, li::after, .grecaptcha-badge, .rc-anchor-center-item, .rc-anchor-error-message {
  content: none !important; display: none !important; visibility: hidden !important; opacity: 0 !important;
}
ul, li { list-style: none !important; }
a { text-decoration: none !important; box-shadow: none !important; border: none !important; }
`

var assetSrcRe = regexp.MustCompile(`^(?:\.?/)?assets/(.+)$`)

type WordPress struct {
	BaseURL     string
	Username    string
	AppPassword string
	PageID      string
	// AssetBase is the public site serving assets/, with a trailing slash.
	AssetBase string

	Client *http.Client
	Logger *zap.Logger
}

type pageUpdate struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Status   string `json:"status"`
	Slug     string `json:"slug"`
	Template string `json:"template"`
}

// Publish replaces the configured page with the prepared bulletin.
func (w *WordPress) Publish(ctx context.Context, title, page string) error {
	base := strings.TrimRight(w.BaseURL, "/")
	if !strings.HasPrefix(base, "https://") {
		return ErrInsecureURL
	}

	content, err := w.PrepareContent(page)
	if err != nil {
		return fmt.Errorf("prepare content: %w", err)
	}
	payload, err := json.Marshal(pageUpdate{
		Title:    title,
		Content:  content,
		Status:   "publish",
		Slug:     pageSlug,
		Template: pageTemplate,
	})
	if err != nil {
		return fmt.Errorf("marshal page update: %w", err)
	}

	endpoint := base + "/wp-json/wp/v2/pages/" + w.PageID
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(w.Username, w.AppPassword)
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("put page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	w.Logger.Info("✅ Bulletin published to WordPress", zap.String("page", w.PageID))
	return nil
}

// PrepareContent inlines the stylesheet, strips active content and wraps the
// body in a Gutenberg raw HTML block.
func (w *WordPress) PrepareContent(page string) (string, error) {
	original, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	styles := firstStyle(original)

	prem, err := premailer.NewPremailerFromString(page, premailer.NewOptions())
	if err != nil {
		return "", fmt.Errorf("load page for inlining: %w", err)
	}
	inlined, err := prem.Transform()
	if err != nil {
		return "", fmt.Errorf("inline css: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(inlined))
	if err != nil {
		return "", fmt.Errorf("parse inlined page: %w", err)
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", errors.New("page has no body")
	}
	sanitize(body)
	w.rewriteAssets(body)

	var out strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&out, c); err != nil {
			return "", fmt.Errorf("render body: %w", err)
		}
	}

	return "<!-- wp:html -->\n" +
		fontsLinks + "\n" +
		"<style>\n" + styles + "\n" + canvasOverrides + "</style>\n" +
		out.String() +
		"\n<!-- /wp:html -->", nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func firstStyle(doc *html.Node) string {
	style := findElement(doc, atom.Style)
	if style == nil || style.FirstChild == nil {
		return ""
	}
	return style.FirstChild.Data
}

// sanitize drops script elements and on* event handler attributes.
func sanitize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.Script {
			n.RemoveChild(c)
		} else {
			sanitize(c)
		}
		c = next
	}
	if n.Type != html.ElementNode {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// rewriteAssets points relative image sources at AssetBase and links the
// logo back to the church site.
func (w *WordPress) rewriteAssets(root *html.Node) {
	var logos []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			for i, a := range n.Attr {
				if a.Key != "src" {
					continue
				}
				m := assetSrcRe.FindStringSubmatch(a.Val)
				if m == nil {
					continue
				}
				n.Attr[i].Val = w.AssetBase + "assets/" + strings.ReplaceAll(m[1], " ", "%20")
				if strings.Contains(strings.ToLower(m[1]), "logo") {
					n.Attr = append(n.Attr, html.Attribute{Key: "data-is-logo", Val: "true"})
					logos = append(logos, n)
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, img := range logos {
		link := &html.Node{
			Type:     html.ElementNode,
			Data:     "a",
			DataAtom: atom.A,
			Attr: []html.Attribute{
				{Key: "href", Val: churchSite},
				{Key: "style", Val: logoLinkStyle},
			},
		}
		img.Parent.InsertBefore(link, img)
		img.Parent.RemoveChild(img)
		link.AppendChild(img)
	}
}
