package report

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lesleyera/cncreport/internal/analytics"
	"github.com/lesleyera/cncreport/internal/authors"
	"github.com/lesleyera/cncreport/internal/config"
	"github.com/lesleyera/cncreport/internal/pool"
	"github.com/lesleyera/cncreport/internal/scrape"
	"github.com/lesleyera/cncreport/internal/week"
)

// GA dimension and metric names used by the pipeline.
const (
	dimDate       = "date"
	dimSource     = "sessionSource"
	dimRegion     = "region"
	dimAgeBracket = "userAgeBracket"
	dimGender     = "userGender"
	dimPageTitle  = "pageTitle"
	dimPagePath   = "pagePath"

	metActiveUsers = "activeUsers"
	metPageViews   = "screenPageViews"
	metNewUsers    = "newUsers"
	metEngagement  = "userEngagementDuration"
	metBounceRate  = "bounceRate"
)

// demographicsWorkers bounds the region/age/gender fan-out: six queries,
// all in flight at once.
const demographicsWorkers = 6

// Scraper is the article scraping collaborator.
type Scraper interface {
	Scrape(ctx context.Context, path string) scrape.Metadata
}

// Loader runs the weekly aggregation pipeline. Every sub-step degrades to
// empty or default values on failure; LoadWeek itself never fails.
type Loader struct {
	client   analytics.Client
	scraper  Scraper
	resolver *authors.Resolver

	brandTerms []string

	trendWeeks     int
	trendWorkers   int
	topCount       int
	top10Workers   int
	fullSetWorkers int

	now func() time.Time
	log zerolog.Logger
}

// NewLoader wires the pipeline's collaborators together.
func NewLoader(client analytics.Client, scraper Scraper, resolver *authors.Resolver, cfg *config.Config, log zerolog.Logger) *Loader {
	terms := make([]string, 0, len(cfg.Site.BrandTerms))
	for _, t := range cfg.Site.BrandTerms {
		terms = append(terms, squash(t))
	}

	return &Loader{
		client:         client,
		scraper:        scraper,
		resolver:       resolver,
		brandTerms:     terms,
		trendWeeks:     defaulted(cfg.Report.TrendWeeks, 12),
		trendWorkers:   defaulted(cfg.Report.TrendWorkers, 10),
		topCount:       defaulted(cfg.Report.TopCount, 10),
		top10Workers:   defaulted(cfg.Scrape.Top10Workers, 10),
		fullSetWorkers: defaulted(cfg.Scrape.FullSetWorkers, 20),
		now:            time.Now,
		log:            log.With().Str("component", "report").Logger(),
	}
}

func defaulted(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Weeks returns the selectable report weeks, most recent first.
func (l *Loader) Weeks() []week.Range {
	return week.ComputeWeeks(l.trendWeeks, l.now())
}

// LoadWeek builds the full report bundle for the week with the given label.
// An empty or unknown label selects the most recent week.
func (l *Loader) LoadWeek(ctx context.Context, label string) *Bundle {
	ranges := l.Weeks()
	cur, matched := week.Find(ranges, label)
	if !matched && label != "" {
		l.log.Warn().Str("label", label).Msg("unknown week label, using most recent week")
	}
	prior := cur.Shifted(-7)

	b := NewBundle(cur.Label, cur.Display())

	l.loadKPIs(ctx, b, cur)
	l.loadDaily(ctx, b, cur)
	l.loadTrend(ctx, b, ranges)
	l.loadTraffic(ctx, b, cur, prior)
	l.loadDemographics(ctx, b, cur, prior)
	l.loadArticles(ctx, b, cur)

	return b
}

// query runs one analytics request, converting any provider failure into an
// empty row set. This is the pipeline's only tolerance point for the
// analytics source; every step goes through it.
func (l *Loader) query(ctx context.Context, req analytics.Request) []analytics.Row {
	rows, err := l.client.Query(ctx, req)
	if err != nil {
		l.log.Warn().Err(err).
			Str("start", req.Start).Str("end", req.End).
			Strs("dimensions", req.Dimensions).
			Msg("analytics query failed, continuing with empty result")
		return nil
	}
	return rows
}

// loadKPIs fetches the whole-period totals and the new-visitor ratio.
func (l *Loader) loadKPIs(ctx context.Context, b *Bundle, cur week.Range) {
	rows := l.query(ctx, analytics.Request{
		Start:   cur.StartDate(),
		End:     cur.EndDate(),
		Metrics: []string{metActiveUsers, metPageViews, metNewUsers},
	})
	if len(rows) == 0 {
		return
	}

	b.UV = rows[0].Metric(metActiveUsers).Int()
	b.PV = rows[0].Metric(metPageViews).Int()
	newUsers := rows[0].Metric(metNewUsers).Int()
	if b.UV > 0 {
		b.NewVisitorRatio = round1(float64(newUsers) / float64(b.UV) * 100)
	}
}

// loadDaily fetches the per-day series, clipped so a partial current week
// never queries beyond today.
func (l *Loader) loadDaily(ctx context.Context, b *Bundle, cur week.Range) {
	end := cur.End
	today := l.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if end.After(today) {
		end = today
	}

	rows := l.query(ctx, analytics.Request{
		Start:      cur.StartDate(),
		End:        end.Format("2006-01-02"),
		Dimensions: []string{dimDate},
		Metrics:    []string{metActiveUsers, metPageViews},
	})

	type day struct {
		raw time.Time
		row DailyRow
	}
	days := make([]day, 0, len(rows))
	for _, r := range rows {
		t, err := parseGADate(r.Dim(dimDate))
		if err != nil {
			continue
		}
		if t.After(end) {
			continue
		}
		days = append(days, day{raw: t, row: DailyRow{
			Date: t.Format("01-02"),
			UV:   r.Metric(metActiveUsers).Int(),
			PV:   r.Metric(metPageViews).Int(),
		}})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].raw.Before(days[j].raw) })
	for _, d := range days {
		b.Daily = append(b.Daily, d.row)
	}
}

// parseGADate accepts the provider's YYYYMMDD date dimension, plus the
// dashed form some fakes use.
func parseGADate(s string) (time.Time, error) {
	if t, err := time.Parse("20060102", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// loadTrend fetches one KPI row per trailing week concurrently, then
// re-imposes chronological order with the year-boundary-aware sort key.
func (l *Loader) loadTrend(ctx context.Context, b *Bundle, ranges []week.Range) {
	results := pool.Map(ranges, l.trendWorkers, func(r week.Range) *TrendRow {
		rows := l.query(ctx, analytics.Request{
			Start:   r.StartDate(),
			End:     r.EndDate(),
			Metrics: []string{metActiveUsers, metPageViews},
		})
		if len(rows) == 0 {
			return nil
		}
		return &TrendRow{
			Week: r.Label,
			UV:   rows[0].Metric(metActiveUsers).Int(),
			PV:   rows[0].Metric(metPageViews).Int(),
		}
	})

	trend := make([]TrendRow, 0, len(results))
	maxWeek := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		trend = append(trend, *r)
		if n := week.Number(r.Week); n > maxWeek {
			maxWeek = n
		}
	}

	sort.SliceStable(trend, func(i, j int) bool {
		return week.SortKey(week.Number(trend[i].Week), maxWeek) <
			week.SortKey(week.Number(trend[j].Week), maxWeek)
	})
	b.WeeklyTrend = trend
}

// loadTraffic fetches referral-source rows for both periods, buckets them
// into categories and derives the search-inflow ratio for the current one.
func (l *Loader) loadTraffic(ctx context.Context, b *Bundle, cur, prior week.Range) {
	b.TrafficCurr = l.fetchTraffic(ctx, cur)
	b.TrafficPrev = l.fetchTraffic(ctx, prior)

	var searchViews, totalViews int64
	for _, row := range b.TrafficCurr {
		totalViews += row.Views
		if searchEngines[row.Source] {
			searchViews += row.Views
		}
	}
	if totalViews > 0 {
		b.SearchInflowRatio = round1(float64(searchViews) / float64(totalViews) * 100)
	}
}

func (l *Loader) fetchTraffic(ctx context.Context, r week.Range) []TrafficRow {
	rows := l.query(ctx, analytics.Request{
		Start:      r.StartDate(),
		End:        r.EndDate(),
		Dimensions: []string{dimSource},
		Metrics:    []string{metPageViews},
	})

	// Relabel only, never drop: the per-category sums stay total-preserving.
	views := make(map[string]int64, len(sourceOrder))
	for _, row := range rows {
		views[MapSource(row.Dim(dimSource))] += row.Metric(metPageViews).Int()
	}

	out := make([]TrafficRow, 0, len(sourceOrder))
	for _, cat := range sourceOrder {
		if v, ok := views[cat]; ok {
			out = append(out, TrafficRow{Source: cat, Views: v})
		}
	}
	return out
}

// demoQuery describes one demographic fan-out query.
type demoQuery struct {
	r     week.Range
	dim   string
	limit int
}

// loadDemographics fetches region, age and gender breakdowns for both
// periods concurrently and normalizes each into display buckets.
func (l *Loader) loadDemographics(ctx context.Context, b *Bundle, cur, prior week.Range) {
	queries := []demoQuery{
		{cur, dimRegion, 50},
		{prior, dimRegion, 50},
		{cur, dimAgeBracket, 0},
		{prior, dimAgeBracket, 0},
		{cur, dimGender, 0},
		{prior, dimGender, 0},
	}

	results := pool.Map(queries, demographicsWorkers, func(q demoQuery) []analytics.Row {
		return l.query(ctx, analytics.Request{
			Start:         q.r.StartDate(),
			End:           q.r.EndDate(),
			Dimensions:    []string{q.dim},
			Metrics:       []string{metActiveUsers},
			OrderByMetric: metActiveUsers,
			Limit:         q.limit,
		})
	})

	b.RegionCurr = normalizeRegion(results[0])
	b.RegionPrev = normalizeRegion(results[1])
	b.AgeCurr = normalizeAge(results[2])
	b.AgePrev = normalizeAge(results[3])
	b.GenderCurr = normalizeGender(results[4])
	b.GenderPrev = normalizeGender(results[5])
}

// normalizeRegion maps region codes to labels and groups; unmapped regions
// collapse into 기타, so no traffic is ever dropped.
func normalizeRegion(rows []analytics.Row) []DemoRow {
	g := newGrouper()
	for _, r := range rows {
		g.add(MapRegion(r.Dim(dimRegion)), r.Metric(metActiveUsers).Int())
	}
	return g.rows()
}

// normalizeAge labels brackets with the 세 suffix and drops the catch-all
// bucket; a period whose rows are all catch-all is repaired to a single
// 기타 row carrying the full total (provider-side redaction).
func normalizeAge(rows []analytics.Row) []DemoRow {
	g := newGrouper()
	var total int64
	for _, r := range rows {
		users := r.Metric(metActiveUsers).Int()
		total += users
		label := MapAgeBracket(r.Dim(dimAgeBracket))
		if label == OtherLabel {
			continue
		}
		g.add(label, users)
	}
	return repairRedacted(g.rows(), total)
}

// normalizeGender keeps only mapped gender values; a period with traffic
// but no surviving rows is repaired to a single 기타 row (the provider
// anonymizes small buckets, which must not read as zero visitors).
func normalizeGender(rows []analytics.Row) []DemoRow {
	g := newGrouper()
	var total int64
	for _, r := range rows {
		users := r.Metric(metActiveUsers).Int()
		total += users
		if label, ok := MapGender(r.Dim(dimGender)); ok {
			g.add(label, users)
		}
	}
	return repairRedacted(g.rows(), total)
}

func repairRedacted(out []DemoRow, total int64) []DemoRow {
	if len(out) == 0 && total > 0 {
		return []DemoRow{{Label: OtherLabel, ActiveUsers: total}}
	}
	return out
}

// grouper sums int64 values by label in first-seen order.
type grouper struct {
	index map[string]int
	out   []DemoRow
}

func newGrouper() *grouper {
	return &grouper{index: make(map[string]int)}
}

func (g *grouper) add(label string, n int64) {
	if i, ok := g.index[label]; ok {
		g.out[i].ActiveUsers += n
		return
	}
	g.index[label] = len(g.out)
	g.out = append(g.out, DemoRow{Label: label, ActiveUsers: n})
}

func (g *grouper) rows() []DemoRow {
	if g.out == nil {
		return []DemoRow{}
	}
	return g.out
}

// squash lowercases and strips spaces for the brand/title comparisons.
func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// isBrandPage reports whether a page title names the site itself rather
// than an article.
func (l *Loader) isBrandPage(title string) bool {
	t := squash(title)
	for _, term := range l.brandTerms {
		if term != "" && strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// round1 rounds to one decimal place. Used for every percentage the bundle
// carries so current/prior comparisons agree on rounding.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
