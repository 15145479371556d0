// Package crawling scrapes the securities research board: the list page for
// recent report metadata and the view pages for full report text.
package crawling

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/fetch"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// DefaultListURL is the research board list page.
const DefaultListURL = "https://securities.miraeasset.com/bbs/board/message/list.do?categoryId=1521"

// viewURLFmt builds a view URL that bypasses the board's javascript
// navigation. The wide date window keeps old message ids reachable.
const viewURLFmt = "https://securities.miraeasset.com/bbs/board/message/view.do?messageId=%s&messageNumber=%s&categoryId=1521&searchStartYear=2024&searchStartMonth=01&searchStartDay=01&searchEndYear=2026&searchEndMonth=12&searchEndDay=31"

var (
	viewHrefRe    = regexp.MustCompile(`view\('(\d+)','(\d+)'\)`)
	downConfirmRe = regexp.MustCompile(`downConfirm\('(https?://[^']+)`)
	popupOpenRe   = regexp.MustCompile(`Popup\.open\('(https?://[^']+)'`)
)

// Crawler fetches research reports from the board.
type Crawler struct {
	listURL    string
	opts       *fetch.Options
	useBrowser bool
	logger     *zap.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithListURL overrides the board list URL (used by tests).
func WithListURL(url string) Option {
	return func(c *Crawler) { c.listURL = url }
}

// WithBrowserFallback enables headless-browser rendering when the plain HTTP
// response does not contain the board table.
func WithBrowserFallback() Option {
	return func(c *Crawler) { c.useBrowser = true }
}

// WithFetchOptions overrides the HTTP fetch options.
func WithFetchOptions(opts *fetch.Options) Option {
	return func(c *Crawler) { c.opts = opts }
}

// NewCrawler creates a board crawler.
func NewCrawler(logger *zap.Logger, opts ...Option) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Crawler{
		listURL: DefaultListURL,
		opts:    fetch.DefaultOptions(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRecentReports scrapes up to limit reports from the board list page.
// Failures here are fatal for the caller's run; there is no report fallback.
func (c *Crawler) FetchRecentReports(ctx context.Context, limit int) ([]*types.ResearchReport, error) {
	doc, err := fetch.Document(ctx, c.listURL, c.opts)
	if err != nil {
		return nil, &SourceError{URL: c.listURL, Message: "failed to fetch board list", Cause: err}
	}

	reports, err := c.parseList(doc, limit)
	if err != nil && c.useBrowser {
		c.logger.Info("board table missing from plain fetch, retrying with browser",
			zap.String("url", c.listURL))
		html, berr := fetch.BrowserSimple(ctx, c.listURL)
		if berr != nil {
			return nil, &SourceError{URL: c.listURL, Message: "browser fallback failed", Cause: berr}
		}
		doc, derr := goquery.NewDocumentFromReader(strings.NewReader(html))
		if derr != nil {
			return nil, &SourceError{URL: c.listURL, Message: "failed to parse rendered HTML", Cause: derr}
		}
		reports, err = c.parseList(doc, limit)
	}
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// parseList extracts report rows from the second table on the list page.
func (c *Crawler) parseList(doc *goquery.Document, limit int) ([]*types.ResearchReport, error) {
	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, &SourceError{URL: c.listURL, Message: "could not find the report list table on the page"}
	}

	rows := tables.Eq(1).Find("tbody tr")
	reports := make([]*types.ResearchReport, 0, limit)

	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(reports) >= limit {
			return false
		}

		cols := row.Find("td")
		if cols.Length() < 4 {
			return true
		}

		dateStr := strings.TrimSpace(cols.Eq(0).Text())
		reportDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			// Malformed dates must not fail the whole fetch.
			reportDate = time.Now()
		}

		titleLink := cols.Eq(1).Find("a").First()
		if titleLink.Length() == 0 {
			return true
		}

		href := titleLink.AttrOr("href", "")
		var reportID, sourceURL string
		if m := viewHrefRe.FindStringSubmatch(href); m != nil {
			reportID = "mirae_" + m[1]
			sourceURL = fmt.Sprintf(viewURLFmt, m[1], m[2])
		} else {
			reportID = "mirae_unknown_" + dateStr
		}

		var attachments []string
		attachLink := cols.Eq(2).Find("a").First()
		if attachLink.Length() > 0 {
			if m := downConfirmRe.FindStringSubmatch(attachLink.AttrOr("href", "")); m != nil {
				attachments = append(attachments, m[1])
			}
		}

		reports = append(reports, &types.ResearchReport{
			ReportID:       reportID,
			Title:          squashSpaces(titleLink.Text()),
			Date:           reportDate,
			Author:         strings.TrimSpace(cols.Eq(3).Text()),
			ReportType:     "Daily Market / Theme",
			SourceURL:      sourceURL,
			AttachmentURLs: attachments,
		})
		return true
	})

	return reports, nil
}

// FetchReportContents retrieves the full text of a report from its view page
// and sets NormalizedText on the record. It is best-effort: any failure
// leaves the text empty and returns "".
func (c *Crawler) FetchReportContents(ctx context.Context, report *types.ResearchReport) string {
	if report.SourceURL == "" {
		return ""
	}

	doc, err := fetch.Document(ctx, report.SourceURL, c.opts)
	if err != nil {
		c.logger.Warn("failed to fetch report contents",
			zap.String("report_id", report.ReportID), zap.Error(err))
		return ""
	}

	contentDiv := doc.Find("#messageContentsDiv")
	if contentDiv.Length() == 0 {
		return ""
	}

	text := textWithNewlines(contentDiv)
	report.NormalizedText = text

	// The list page does not always expose attachments; the view page opens
	// the PDF through a script popup.
	if len(report.AttachmentURLs) == 0 {
		doc.Find("script").Each(func(i int, script *goquery.Selection) {
			if m := popupOpenRe.FindStringSubmatch(script.Text()); m != nil {
				report.AttachmentURLs = append(report.AttachmentURLs, m[1])
			}
		})
	}

	return text
}

var (
	brTagRe    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndRe = regexp.MustCompile(`(?i)</(p|div|tr|li|h[1-6]|td)>`)
	spaceRunRe = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// textWithNewlines extracts text from a selection, turning block boundaries
// into line breaks and dropping blank lines.
func textWithNewlines(sel *goquery.Selection) string {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}

	html = brTagRe.ReplaceAllString(html, "\n")
	html = blockEndRe.ReplaceAllString(html, "\n$0")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func squashSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(strings.ReplaceAll(s, "\n", " "), " "))
}
