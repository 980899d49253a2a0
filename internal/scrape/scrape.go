// Package scrape fetches single article pages and extracts byline and
// engagement metadata. Site markup varies across templates, so every field
// is parsed through a chain of fallbacks; a page that defeats all of them
// still yields usable defaults. A scrape never fails from the caller's
// point of view.
package scrape

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/lesleyera/cncreport/internal/authors"
)

// Defaults applied when a page cannot be fetched or parsed. Downstream
// aggregation counts on these being present instead of an error.
const (
	DefaultAuthor      = "관리자"
	DefaultCategory    = "뉴스"
	DefaultSubcategory = "이슈"
	DefaultPublishedAt = "-"
)

// Metadata is what a single article page yields.
type Metadata struct {
	Author      string
	Likes       int
	Comments    int
	Category    string
	Subcategory string
	PublishedAt string
}

// fallback returns the default metadata used for failed scrapes.
func fallback() Metadata {
	return Metadata{
		Author:      DefaultAuthor,
		Likes:       0,
		Comments:    0,
		Category:    DefaultCategory,
		Subcategory: DefaultSubcategory,
		PublishedAt: DefaultPublishedAt,
	}
}

// Cache stores scraped metadata between runs. Implementations decide
// expiry; a miss simply triggers a live fetch.
type Cache interface {
	Get(path string) (Metadata, bool)
	Put(path string, md Metadata) error
}

// Scraper fetches article pages from one site origin.
type Scraper struct {
	origin string
	client *http.Client
	cache  Cache
	log    zerolog.Logger
}

// New creates a scraper for the given site origin. cache may be nil.
func New(origin string, timeout time.Duration, cache Cache, log zerolog.Logger) *Scraper {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &Scraper{
		origin: strings.TrimRight(origin, "/"),
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		log:    log.With().Str("component", "scrape").Logger(),
	}
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Scrape fetches the article page at path and extracts its metadata.
// Failures of any kind return the default metadata, never an error.
func (s *Scraper) Scrape(ctx context.Context, path string) Metadata {
	if s.cache != nil {
		if md, ok := s.cache.Get(path); ok {
			return md
		}
	}

	md, ok := s.fetch(ctx, path)
	if !ok {
		return fallback()
	}

	if s.cache != nil {
		if err := s.cache.Put(path, md); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("caching scrape result failed")
		}
	}
	return md
}

func (s *Scraper) fetch(ctx context.Context, path string) (Metadata, bool) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.origin+path, nil)
	if err != nil {
		return Metadata{}, false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("article fetch failed")
		return Metadata{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("article fetch rejected")
		return Metadata{}, false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Metadata{}, false
	}

	return Parse(doc), true
}

// Parse extracts article metadata from a parsed document. Exported so the
// fallback chain can be exercised against fixture HTML without a server.
func Parse(doc *goquery.Document) Metadata {
	md := fallback()

	author, published := parseAuthorAndDate(doc)
	md.Author = authors.Normalize(author)
	md.PublishedAt = published

	md.Category, md.Subcategory = parseBreadcrumb(doc)
	md.Likes = parseCounter(doc, ".sns-like-count")
	md.Comments = parseCounter(doc, ".comment-count")

	return md
}

// approvalMarker separates the byline (left) from the publish timestamp
// (right) in the article header, e.g. "쿡앤셰프 / 기사승인 : 2026-01-07 09:30".
const approvalMarker = "기사승인"

var (
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	strictDate  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}(:\d{2})?`)
	looseDate   = regexp.MustCompile(`\d{4}[.-]\d{2}[.-]\d{2}(\s+\d{2}:\d{2})?`)
	crumbMarkRe = regexp.MustCompile(`Home\s*[>|]`)
	crumbSepRe  = regexp.MustCompile(`\s*[>|]\s*`)
)

func parseAuthorAndDate(doc *goquery.Document) (author, published string) {
	author = DefaultAuthor
	published = DefaultPublishedAt

	// Priority 1: the view-title detail block.
	var target string
	if dd := doc.Find(".viewTitle dl dd").First(); dd.Length() > 0 {
		target = collapseText(dd.Text())
	}

	// Priority 2: full-document search for the approval marker.
	if !strings.Contains(target, approvalMarker) {
		if node := findTextNode(doc, approvalMarker); node != nil {
			target = collapseText(node.Text())
		}
	}

	if strings.Contains(target, approvalMarker) {
		parts := strings.SplitN(target, approvalMarker, 2)

		if m := strictDate.FindString(parts[1]); m != "" {
			published = m
		}

		left := emailRe.ReplaceAllString(parts[0], "")
		left = strings.ReplaceAll(left, "/", "")
		left = strings.ReplaceAll(left, "|", "")
		left = strings.ReplaceAll(left, "기자", "")
		left = strings.TrimSpace(left)
		if left != "" {
			author = left
		}
	}

	// Date fallback: any loosely-shaped date anywhere on the page.
	if published == DefaultPublishedAt {
		if m := looseDate.FindString(doc.Text()); m != "" {
			published = m
		}
	}

	// Author fallback: dedicated byline selectors, in priority order.
	if author == DefaultAuthor || len([]rune(author)) > 20 {
		for _, sel := range []string{".user-name", ".writer", ".byline"} {
			if tag := doc.Find(sel).First(); tag.Length() > 0 {
				author = strings.TrimSpace(tag.Text())
				break
			}
		}
	}

	return author, published
}

func parseBreadcrumb(doc *goquery.Document) (category, subcategory string) {
	category = DefaultCategory
	subcategory = DefaultSubcategory

	// Priority 1: the navigation link block.
	var navi string
	if elem := doc.Find(".naviLink").First(); elem.Length() > 0 {
		navi = collapseText(elem.Text())
	}

	// Priority 2: a "Home >" text pattern anywhere in the page.
	if !strings.Contains(navi, "Home") {
		if node := findTextNodeRe(doc, crumbMarkRe); node != nil {
			navi = collapseText(node.Text())
		}
	}

	if strings.Contains(navi, "Home") && strings.ContainsAny(navi, ">|") {
		if cat, sub, ok := splitCrumb(navi); ok {
			return orDefault(cat, category), orDefault(sub, subcategory)
		}
		return category, subcategory
	}

	// Generic breadcrumb containers, in priority order.
	for _, sel := range []string{".path", ".location", "#navigation"} {
		if div := doc.Find(sel).First(); div.Length() > 0 {
			if cat, sub, ok := splitCrumb(strings.TrimSpace(div.Text())); ok {
				return orDefault(cat, category), orDefault(sub, subcategory)
			}
			break
		}
	}

	return category, subcategory
}

// splitCrumb splits a breadcrumb string on > and | separators, dropping a
// leading Home segment. ok reports whether any segment survived.
func splitCrumb(text string) (category, subcategory string, ok bool) {
	parts := crumbSepRe.Split(text, -1)
	cleaned := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 && strings.EqualFold(cleaned[0], "home") {
		cleaned = cleaned[1:]
	}
	if len(cleaned) == 0 {
		return "", "", false
	}
	category = cleaned[0]
	if len(cleaned) >= 2 {
		subcategory = cleaned[1]
	}
	return category, subcategory, true
}

func parseCounter(doc *goquery.Document, selector string) int {
	elem := doc.Find(selector).First()
	if elem.Length() == 0 {
		return 0
	}
	text := strings.TrimSpace(strings.ReplaceAll(elem.Text(), ",", ""))
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// findTextNode locates the first text node containing the literal substring
// and returns its selection.
func findTextNode(doc *goquery.Document, substr string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Children().Length() == 0 && strings.Contains(sel.Text(), substr) {
			found = sel
			return false
		}
		return true
	})
	return found
}

func findTextNodeRe(doc *goquery.Document, re *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Children().Length() == 0 && re.MatchString(sel.Text()) {
			found = sel
			return false
		}
		return true
	})
	return found
}

// collapseText mimics a separator-joined, stripped text extraction: runs of
// whitespace become single spaces.
func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
