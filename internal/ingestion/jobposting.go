package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxPostingBytes bounds the size of a fetched job posting page
const maxPostingBytes = 5 << 20

var blankLines = regexp.MustCompile(`\n{3,}`)

// postingSelectors are tried in order; the first one with text wins
var postingSelectors = []string{
	"[itemprop=description]",
	".job-description",
	"#job-description",
	".description",
	"article",
	"main",
	"body",
}

// FetchJobPosting downloads a job posting page and returns its readable text
func FetchJobPosting(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "resume-reviser/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch job posting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch job posting: status %d", resp.StatusCode)
	}

	return PostingText(io.LimitReader(resp.Body, maxPostingBytes))
}

// PostingText extracts the job description text from an HTML document
func PostingText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse job posting html: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, form, svg").Remove()

	for _, selector := range postingSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := blockText(sel); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("job posting page has no readable text")
}

// blockText renders a selection as lines, one per block-level element
func blockText(sel *goquery.Selection) string {
	sel.Find("br").ReplaceWithHtml("\n")
	sel.Find("p, li, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	sel.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	var lines []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		lines = append(lines, line)
	}

	text := strings.TrimSpace(strings.Join(lines, "\n"))
	return blankLines.ReplaceAllString(text, "\n\n")
}
