// Package scrape collects corpus documents: Discourse forum posts over the
// forum's JSON API and course material from a local repo checkout. Output
// files feed the embedding pipeline.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/joshu/internal/config"
	"github.com/hyperjump/joshu/pkg/utils"
)

// Discourse serves 30 topics per latest.json page; a shorter page is the
// last one.
const topicsPerPage = 30

const postsFileName = "discourse_posts.json"

// Post is one scraped forum post, keyed the way the embedding pipeline and
// the citation metadata expect.
type Post struct {
	TopicID    int64  `json:"topic_id"`
	TopicTitle string `json:"topic_title"`
	Slug       string `json:"slug"`
	PostNumber int64  `json:"post_number"`
	CreatedAt  string `json:"created_at"`
	Content    string `json:"content"`
}

type topicListPage struct {
	TopicList struct {
		Topics []topicSummary `json:"topics"`
	} `json:"topic_list"`
}

type topicSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
}

type topicDetail struct {
	PostStream struct {
		Posts []postEntry `json:"posts"`
	} `json:"post_stream"`
}

type postEntry struct {
	PostNumber int64  `json:"post_number"`
	CreatedAt  string `json:"created_at"`
	Cooked     string `json:"cooked"`
}

// DiscourseScraper pages through a category and collects every post created
// inside a date window.
type DiscourseScraper struct {
	baseURL  string
	category int
	from     time.Time
	to       time.Time
	cookies  []*http.Cookie
	delay    time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewDiscourseScraper builds a scraper from config. The cookie string is
// read from the env var named in cfg.CookieEnv; without it private
// categories respond 403.
func NewDiscourseScraper(cfg *config.ScrapeConfig, logger *zap.Logger) (*DiscourseScraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	from, err := time.Parse("2006-01-02", cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse scrape.from: %w", err)
	}
	to, err := time.Parse("2006-01-02", cfg.To)
	if err != nil {
		return nil, fmt.Errorf("parse scrape.to: %w", err)
	}
	var cookies []*http.Cookie
	if cfg.CookieEnv != "" {
		cookies = parseCookieString(os.Getenv(cfg.CookieEnv))
	}
	if len(cookies) == 0 {
		logger.Warn("no discourse cookies set; private categories will respond 403",
			zap.String("env", cfg.CookieEnv))
	}
	return &DiscourseScraper{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		category: cfg.Category,
		from:     from,
		to:       to,
		cookies:  cookies,
		delay:    time.Duration(cfg.DelaySecs) * time.Second,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}, nil
}

// parseCookieString splits a browser-copied "k=v; k2=v2" header value into
// cookies.
func parseCookieString(s string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}

// Run pages through the category and returns the posts created in
// [from, to]. Pagination stops on an empty page, a short page, or a page
// fetch error; a fetch error on the first page is returned since nothing
// was collected.
func (s *DiscourseScraper) Run(ctx context.Context) ([]Post, error) {
	posts := []Post{}
	for page := 0; ; page++ {
		url := fmt.Sprintf("%s/latest.json?category=%d&page=%d", s.baseURL, s.category, page)
		s.logger.Info("fetching topic page", zap.String("url", url))

		var list topicListPage
		if err := s.getJSON(ctx, url, &list); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("fetch topics: %w", err)
			}
			s.logger.Warn("stopping pagination on fetch error", zap.Int("page", page), zap.Error(err))
			break
		}
		topics := list.TopicList.Topics
		if len(topics) == 0 {
			break
		}

		for _, topic := range topics {
			created, err := time.Parse(time.RFC3339, topic.CreatedAt)
			if err != nil {
				s.logger.Warn("skipping topic with unparseable created_at",
					zap.Int64("topic_id", topic.ID), zap.String("created_at", topic.CreatedAt))
				continue
			}
			if !s.inWindow(created) {
				continue
			}
			topicPosts, err := s.scrapeTopic(ctx, topic)
			if err != nil {
				s.logger.Warn("skipping topic", zap.Int64("topic_id", topic.ID), zap.Error(err))
				continue
			}
			posts = append(posts, topicPosts...)
		}

		if len(topics) < topicsPerPage {
			break
		}
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	s.logger.Info("scrape complete", zap.Int("posts", len(posts)))
	return posts, nil
}

func (s *DiscourseScraper) scrapeTopic(ctx context.Context, topic topicSummary) ([]Post, error) {
	url := fmt.Sprintf("%s/t/%d.json", s.baseURL, topic.ID)
	var detail topicDetail
	if err := s.getJSON(ctx, url, &detail); err != nil {
		return nil, err
	}
	var posts []Post
	for _, p := range detail.PostStream.Posts {
		created, err := time.Parse(time.RFC3339, p.CreatedAt)
		if err != nil {
			s.logger.Warn("skipping post with unparseable created_at",
				zap.Int64("topic_id", topic.ID), zap.Int64("post_number", p.PostNumber))
			continue
		}
		if !s.inWindow(created) {
			continue
		}
		posts = append(posts, Post{
			TopicID:    topic.ID,
			TopicTitle: topic.Title,
			Slug:       topic.Slug,
			PostNumber: p.PostNumber,
			CreatedAt:  p.CreatedAt,
			Content:    p.Cooked,
		})
	}
	return posts, nil
}

// inWindow compares calendar dates, inclusive on both ends.
func (s *DiscourseScraper) inWindow(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(s.from) && !d.After(s.to)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *DiscourseScraper) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("GET %s: status 403 (cookies missing, expired, or not authorized for this category)", url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// SavePosts writes the collected posts as one JSON array in dir and returns
// the written path.
func SavePosts(dir string, posts []Post) (string, error) {
	data, err := utils.MarshalJSONPretty(posts)
	if err != nil {
		return "", fmt.Errorf("marshal posts: %w", err)
	}
	path := filepath.Join(dir, postsFileName)
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
