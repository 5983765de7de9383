package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/render"
)

const (
	linkTimeout      = 5 * time.Second
	maxLinkRedirects = 3
	maxLinkChecks    = 8
)

// NewLinkClient returns an HTTP client that gives up after three redirects.
func NewLinkClient() *http.Client {
	return &http.Client{
		Timeout: linkTimeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > maxLinkRedirects {
				return fmt.Errorf("stopped after %d redirects", maxLinkRedirects)
			}
			return nil
		},
	}
}

// extractURLs returns the distinct links in text, in order.
func extractURLs(text string) []string {
	var urls []string
	seen := map[string]bool{}
	for _, u := range render.Links(text) {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

type linkCheck struct {
	title string
	url   string
	issue string
}

// CheckLinks HEADs every URL mentioned in the announcements and reports the
// broken ones in announcement order.
func CheckLinks(ctx context.Context, client *http.Client, anns []models.Announcement) []string {
	var checks []linkCheck
	for _, a := range anns {
		for _, u := range extractURLs(a.Title + " " + a.Body) {
			checks = append(checks, linkCheck{title: a.Title, url: u})
		}
	}
	if len(checks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLinkChecks)
	for i := range checks {
		g.Go(func() error {
			if reason := probe(gctx, client, checks[i].url); reason != "" {
				checks[i].issue = fmt.Sprintf("Broken link in %q: %s (%s)", checks[i].title, checks[i].url, reason)
			}
			return nil
		})
	}
	_ = g.Wait()

	var issues []string
	for _, c := range checks {
		if c.issue != "" {
			issues = append(issues, c.issue)
		}
	}
	return issues
}

// probe returns "" for a reachable URL, otherwise a short reason.
func probe(ctx context.Context, client *http.Client, url string) string {
	ctx, cancel := context.WithTimeout(ctx, linkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "invalid URL"
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "timed out"
		}
		return shortError(err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return ""
}

func shortError(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}
