// Package videos pulls recent uploads from the SmartMoney channel through
// its public Atom feed. The channel id is discovered from the handle page on
// first use and cached for the connector's lifetime.
package videos

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/fetch"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// DefaultHandleURL is the channel handle page used for channel id discovery.
const DefaultHandleURL = "https://www.youtube.com/@SmartMoney0"

// DefaultFeedURLFmt is the Atom feed endpoint, keyed by channel id.
const DefaultFeedURLFmt = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

var (
	metaChannelIDRe = regexp.MustCompile(`<meta itemprop="channelId" content="([^"]+)">`)
	jsonChannelIDRe = regexp.MustCompile(`"channelId":"([^"]+)"`)
)

// feed mirrors the subset of the YouTube Atom feed the connector reads.
type feed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []feedEntry `xml:"entry"`
}

type feedEntry struct {
	VideoID   string    `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string    `xml:"title"`
	Published string    `xml:"published"`
	Link      feedLink  `xml:"link"`
	Group     feedGroup `xml:"http://search.yahoo.com/mrss/ group"`
}

type feedLink struct {
	Href string `xml:"href,attr"`
}

type feedGroup struct {
	Description string `xml:"http://search.yahoo.com/mrss/ description"`
}

// Connector fetches recent SmartMoney videos.
type Connector struct {
	handleURL  string
	feedURLFmt string
	opts       *fetch.Options
	logger     *zap.Logger

	mu        sync.Mutex
	channelID string
}

// Option configures a Connector.
type Option func(*Connector)

// WithHandleURL overrides the handle page URL (used by tests).
func WithHandleURL(url string) Option {
	return func(c *Connector) { c.handleURL = url }
}

// WithFeedURLFmt overrides the feed URL format (used by tests).
func WithFeedURLFmt(format string) Option {
	return func(c *Connector) { c.feedURLFmt = format }
}

// NewConnector creates a SmartMoney channel connector.
func NewConnector(logger *zap.Logger, opts ...Option) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Connector{
		handleURL:  DefaultHandleURL,
		feedURLFmt: DefaultFeedURLFmt,
		opts:       fetch.DefaultOptions(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRecentVideos returns up to limit recent videos, newest first as the
// feed orders them. Callers treat failures as "no video this run" rather
// than aborting.
func (c *Connector) FetchRecentVideos(ctx context.Context, limit int) ([]*types.SmartMoneyVideo, error) {
	channelID, err := c.resolveChannelID(ctx)
	if err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(c.feedURLFmt, channelID)
	result, err := fetch.URL(ctx, feedURL, c.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video feed: %w", err)
	}

	var f feed
	if err := xml.Unmarshal(result.Body, &f); err != nil {
		return nil, fmt.Errorf("failed to parse video feed: %w", err)
	}

	videos := make([]*types.SmartMoneyVideo, 0, limit)
	for _, entry := range f.Entries {
		if len(videos) >= limit {
			break
		}

		published, err := time.Parse(time.RFC3339, entry.Published)
		if err != nil {
			published = time.Now()
		}

		videos = append(videos, &types.SmartMoneyVideo{
			VideoID:     entry.VideoID,
			Title:       entry.Title,
			PublishDate: published,
			SourceURL:   entry.Link.Href,
			SeriesName:  classifySeries(entry.Title),
			Description: entry.Group.Description,
		})
	}

	return videos, nil
}

// resolveChannelID discovers the channel id from the handle page once and
// caches it.
func (c *Connector) resolveChannelID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channelID != "" {
		return c.channelID, nil
	}

	result, err := fetch.URL(ctx, c.handleURL, c.opts)
	if err != nil {
		return "", fmt.Errorf("failed to fetch channel handle page: %w", err)
	}

	body := string(result.Body)
	if m := metaChannelIDRe.FindStringSubmatch(body); m != nil {
		c.channelID = m[1]
	} else if m := jsonChannelIDRe.FindStringSubmatch(body); m != nil {
		c.channelID = m[1]
	} else {
		return "", fmt.Errorf("could not find channel id on handle page %s", c.handleURL)
	}

	c.logger.Debug("resolved channel id", zap.String("channel_id", c.channelID))
	return c.channelID, nil
}

// classifySeries derives a series label from title conventions.
func classifySeries(title string) string {
	upper := strings.ToUpper(title)
	switch {
	case strings.Contains(upper, "EP.") || strings.Contains(title, "월스트리트파인더"):
		return "Wall Street Finder"
	case strings.Contains(title, "시황") || strings.Contains(title, "리뷰"):
		return "Daily Market"
	default:
		return "SmartMoney"
	}
}
