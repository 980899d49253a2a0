package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lesleyera/cncreport/internal/analytics"
	"github.com/lesleyera/cncreport/internal/pool"
	"github.com/lesleyera/cncreport/internal/scrape"
	"github.com/lesleyera/cncreport/internal/week"
)

// popularPlaceholder is the byline the site puts on its own "popular
// articles" box pages. Rows carrying it are list pages, not articles.
const popularPlaceholder = "인기기사"

// articlePathTokens classify a page path as an article page.
var articlePathTokens = []string{"article", "news", "view", "story"}

var articleMetrics = []string{metPageViews, metActiveUsers, metNewUsers, metEngagement, metBounceRate}

// loadArticles runs the article half of the pipeline: the full path-level
// fetch with its two counts, top-10 selection and referral breakdown, the
// two scrape fan-outs, and the writer/category aggregates.
func (l *Loader) loadArticles(ctx context.Context, b *Bundle, cur week.Range) {
	full := l.fetchArticles(ctx, analytics.Request{
		Start:         cur.StartDate(),
		End:           cur.EndDate(),
		Dimensions:    []string{dimPageTitle, dimPagePath},
		Metrics:       articleMetrics,
		OrderByMetric: metPageViews,
	})

	qualifying := filterArticlePaths(full)
	b.ActiveArticleCount = countDistinctPaths(qualifying)
	b.PublishedArticleCount = len(filterByTokens(full))

	// Top-10 comes from its own tightly limited query so the crawl cost
	// stays bounded regardless of how wide the full fetch is.
	top := l.fetchArticles(ctx, analytics.Request{
		Start:         cur.StartDate(),
		End:           cur.EndDate(),
		Dimensions:    []string{dimPageTitle, dimPagePath},
		Metrics:       articleMetrics,
		OrderByMetric: metPageViews,
		Limit:         100,
	})
	if len(top) > l.topCount {
		top = top[:l.topCount]
	}

	best, breakdown := l.fetchTopSources(ctx, cur, top)

	b.Top10 = l.enrich(ctx, top, l.top10Workers, best)
	b.Top10Sources = breakdown

	b.Articles = l.enrich(ctx, qualifying, l.fullSetWorkers, nil)
	b.Writers = l.aggregateWriters(b.Articles)
	b.WritersReal = rollUpByRealName(b.Writers)
	b.Categories = aggregateCategories(b.Articles, false)
	b.Subcategories = aggregateCategories(b.Articles, true)
}

// fetchArticles runs one path-level query and converts the rows into
// Articles, dropping the site's own brand/navigation pages.
func (l *Loader) fetchArticles(ctx context.Context, req analytics.Request) []Article {
	rows := l.query(ctx, req)

	out := make([]Article, 0, len(rows))
	for _, r := range rows {
		title := r.Dim(dimPageTitle)
		if l.isBrandPage(title) {
			continue
		}
		out = append(out, Article{
			Title:             title,
			Path:              r.Dim(dimPagePath),
			PageViews:         r.Metric(metPageViews).Int(),
			ActiveUsers:       r.Metric(metActiveUsers).Int(),
			NewUsers:          r.Metric(metNewUsers).Int(),
			EngagementSeconds: r.Metric(metEngagement).Float(),
			BounceRate:        r.Metric(metBounceRate).Float(),
		})
	}
	return out
}

// filterByTokens keeps articles whose path contains one of the article
// tokens.
func filterByTokens(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if hasArticleToken(a.Path) {
			out = append(out, a)
		}
	}
	return out
}

// filterArticlePaths applies the token filter, falling back to "any
// non-trivial path" when the site's URL scheme matches no token at all.
func filterArticlePaths(articles []Article) []Article {
	out := filterByTokens(articles)
	if len(out) > 0 {
		return out
	}
	for _, a := range articles {
		if len(a.Path) > 1 {
			out = append(out, a)
		}
	}
	return out
}

func hasArticleToken(path string) bool {
	p := strings.ToLower(path)
	for _, tok := range articlePathTokens {
		if strings.Contains(p, tok) {
			return true
		}
	}
	return false
}

func countDistinctPaths(articles []Article) int {
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		seen[a.Path] = struct{}{}
	}
	return len(seen)
}

// fetchTopSources queries the referral rows for exactly the top article
// paths and derives both views of them: the per-path best single raw
// source for the flat column, and the per-(path, category) sums for the
// stacked chart.
func (l *Loader) fetchTopSources(ctx context.Context, cur week.Range, top []Article) (map[string]string, []SourceRow) {
	if len(top) == 0 {
		return nil, []SourceRow{}
	}

	paths := make([]string, 0, len(top))
	for _, a := range top {
		paths = append(paths, a.Path)
	}

	rows := l.query(ctx, analytics.Request{
		Start:         cur.StartDate(),
		End:           cur.EndDate(),
		Dimensions:    []string{dimPagePath, dimSource},
		Metrics:       []string{metPageViews},
		OrderByMetric: metPageViews,
		Filter:        &analytics.InListFilter{Dimension: dimPagePath, Values: paths},
	})

	type cell struct {
		views     int64
		topDetail string
		topViews  int64
	}
	cells := make(map[string]map[string]*cell, len(paths)) // path -> category -> cell
	pathTotals := make(map[string]int64, len(paths))
	bestRaw := make(map[string]string, len(paths))
	bestViews := make(map[string]int64, len(paths))

	for _, r := range rows {
		path := r.Dim(dimPagePath)
		raw := r.Dim(dimSource)
		views := r.Metric(metPageViews).Int()
		cat := MapSource(raw)

		pathTotals[path] += views

		// Strictly greater keeps the first-seen source on ties, matching
		// the query's own descending order.
		if views > bestViews[path] || bestRaw[path] == "" {
			bestViews[path] = views
			bestRaw[path] = raw
		}

		byCat := cells[path]
		if byCat == nil {
			byCat = make(map[string]*cell)
			cells[path] = byCat
		}
		c := byCat[cat]
		if c == nil {
			c = &cell{}
			byCat[cat] = c
		}
		c.views += views
		if views > c.topViews || c.topDetail == "" {
			c.topViews = views
			c.topDetail = raw
		}
	}

	best := make(map[string]string, len(paths))
	for path, raw := range bestRaw {
		best[path] = displaySource(raw)
	}

	// Emit in request-path order then fixed category order so the output
	// never depends on map iteration.
	out := make([]SourceRow, 0, len(rows))
	for _, path := range paths {
		byCat := cells[path]
		if byCat == nil {
			continue
		}
		total := pathTotals[path]
		for _, cat := range sourceOrder {
			c, ok := byCat[cat]
			if !ok {
				continue
			}
			ratio := 0.0
			if total > 0 {
				ratio = round1(float64(c.views) / float64(total) * 100)
			}
			out = append(out, SourceRow{
				Path:      path,
				Category:  cat,
				Views:     c.views,
				TopDetail: c.topDetail,
				RatioPct:  ratio,
			})
		}
	}
	return best, out
}

// displaySource shows the mapped category, keeping the raw source visible
// when it fell into the catch-all bucket.
func displaySource(raw string) string {
	cat := MapSource(raw)
	if cat == SourceOther {
		return fmt.Sprintf("%s(%s)", SourceOther, raw)
	}
	return cat
}

// enrich scrapes the given articles concurrently, merges the metadata onto
// each row, drops the popular-articles placeholder pages and reassigns
// dense ranks. topReferrers may be nil.
func (l *Loader) enrich(ctx context.Context, articles []Article, workers int, topReferrers map[string]string) []Article {
	metas := pool.Map(articles, workers, func(a Article) scrape.Metadata {
		return l.scraper.Scrape(ctx, a.Path)
	})

	out := make([]Article, 0, len(articles))
	for i, a := range articles {
		m := metas[i]
		if strings.Contains(squash(m.Author), popularPlaceholder) {
			continue
		}
		a.Author = m.Author
		a.Likes = m.Likes
		a.Comments = m.Comments
		a.Category = m.Category
		a.Subcategory = m.Subcategory
		a.PublishedAt = m.PublishedAt

		a.Duration = formatDuration(a.EngagementSeconds)
		a.NewVisitorPct = formatNewVisitorPct(a.NewUsers, a.ActiveUsers)
		if ref, ok := topReferrers[a.Path]; ok {
			a.TopReferrer = ref
		} else {
			a.TopReferrer = "-"
		}

		a.Rank = len(out) + 1
		out = append(out, a)
	}
	return out
}

// aggregateWriters groups the enriched set by pen name in first-seen
// order, resolves real names and ranks by total views with min-style tie
// ranks.
func (l *Loader) aggregateWriters(articles []Article) []WriterRow {
	index := make(map[string]int)
	writers := make([]WriterRow, 0)

	for _, a := range articles {
		i, ok := index[a.Author]
		if !ok {
			i = len(writers)
			index[a.Author] = i
			writers = append(writers, WriterRow{
				PenName:  a.Author,
				RealName: l.resolver.Resolve(a.Author),
			})
		}
		writers[i].Articles++
		writers[i].TotalViews += a.PageViews
		writers[i].Likes += int64(a.Likes)
		writers[i].Comments += int64(a.Comments)
	}

	for i := range writers {
		if writers[i].Articles > 0 {
			writers[i].AvgViews = writers[i].TotalViews / int64(writers[i].Articles)
		}
	}

	sort.SliceStable(writers, func(i, j int) bool {
		return writers[i].TotalViews > writers[j].TotalViews
	})
	for i := range writers {
		if i > 0 && writers[i].TotalViews == writers[i-1].TotalViews {
			writers[i].Rank = writers[i-1].Rank
			continue
		}
		writers[i].Rank = i + 1
	}
	return writers
}

// rollUpByRealName merges the per-pen-name rows of contributors who
// publish under several bylines into one row per person. Pen names are
// joined for display and the ranks reassigned.
func rollUpByRealName(writers []WriterRow) []WriterRow {
	index := make(map[string]int)
	out := make([]WriterRow, 0, len(writers))

	for _, w := range writers {
		i, ok := index[w.RealName]
		if !ok {
			i = len(out)
			index[w.RealName] = i
			out = append(out, WriterRow{RealName: w.RealName})
		}
		if out[i].PenName == "" {
			out[i].PenName = w.PenName
		} else if w.PenName != w.RealName {
			out[i].PenName += ", " + w.PenName
		}
		out[i].Articles += w.Articles
		out[i].TotalViews += w.TotalViews
		out[i].Likes += w.Likes
		out[i].Comments += w.Comments
	}

	for i := range out {
		if out[i].Articles > 0 {
			out[i].AvgViews = out[i].TotalViews / int64(out[i].Articles)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalViews > out[j].TotalViews
	})
	for i := range out {
		if i > 0 && out[i].TotalViews == out[i-1].TotalViews {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// aggregateCategories groups the enriched set by category, or by
// (category, subcategory) when bySub is set, in first-seen order. Share is
// each group's fraction of the article count.
func aggregateCategories(articles []Article, bySub bool) []CategoryRow {
	index := make(map[string]int)
	out := make([]CategoryRow, 0)

	for _, a := range articles {
		key := a.Category
		if bySub {
			key = a.Category + "\x00" + a.Subcategory
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			row := CategoryRow{Category: a.Category}
			if bySub {
				row.Subcategory = a.Subcategory
			}
			out = append(out, row)
		}
		out[i].Articles++
		out[i].TotalViews += a.PageViews
	}

	total := len(articles)
	for i := range out {
		if out[i].Articles > 0 {
			out[i].AvgViews = out[i].TotalViews / int64(out[i].Articles)
		}
		if total > 0 {
			out[i].SharePct = round1(float64(out[i].Articles) / float64(total) * 100)
		}
	}
	return out
}

// formatDuration renders an engagement duration in seconds as "M분 S초".
// Fractional seconds truncate.
func formatDuration(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%d분 %d초", s/60, s%60)
}

// formatNewVisitorPct renders the per-article new-visitor share; a row
// with no visitors reads "0%", never a division artifact.
func formatNewVisitorPct(newUsers, activeUsers int64) string {
	if activeUsers <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(newUsers)/float64(activeUsers)*100)
}
