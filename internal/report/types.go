// Package report builds the weekly report bundle: it orchestrates analytics
// queries and article scrapes for one calendar week and reconciles them into
// the normalized tables every report view consumes.
package report

// Korean column labels and category strings in the row types below are part
// of the contract with the rendering layer and must not change.

// DailyRow is one day of the current week's traffic.
type DailyRow struct {
	Date string `json:"날짜"` // MM-DD
	UV   int64  `json:"UV"`
	PV   int64  `json:"PV"`
}

// TrendRow is one week of the trailing trend series.
type TrendRow struct {
	Week string `json:"주차"`
	UV   int64  `json:"UV"`
	PV   int64  `json:"PV"`
}

// TrafficRow is page views for one referral category.
type TrafficRow struct {
	Source string `json:"유입경로"`
	Views  int64  `json:"조회수"`
}

// DemoRow is active users for one demographic bucket.
type DemoRow struct {
	Label       string `json:"구분"`
	ActiveUsers int64  `json:"activeUsers"`
}

// Article is one analytics row for a page path, enriched with scraped
// metadata and per-row derived display fields.
type Article struct {
	Rank              int     `json:"순위"`
	Title             string  `json:"제목"`
	Path              string  `json:"경로"`
	PageViews         int64   `json:"전체조회수"`
	ActiveUsers       int64   `json:"전체방문자수"`
	NewUsers          int64   `json:"newUsers"`
	EngagementSeconds float64 `json:"평균체류시간"`
	BounceRate        float64 `json:"이탈률"`

	// Scraped enrichment. Defaults apply when the scrape fails.
	Author      string `json:"작성자"`
	Likes       int    `json:"좋아요"`
	Comments    int    `json:"댓글"`
	Category    string `json:"카테고리"`
	Subcategory string `json:"세부카테고리"`
	PublishedAt string `json:"발행일시"`

	// Derived display fields.
	Duration      string `json:"체류시간"`
	NewVisitorPct string `json:"신규방문자비율"`
	TopReferrer   string `json:"유입경로 1순위"`
}

// SourceRow is a per-(article, referral category) page-view aggregate for
// the stacked chart, carrying the single busiest raw source as a
// drill-down label and its share of the article's referral views.
type SourceRow struct {
	Path      string  `json:"pagePath"`
	Category  string  `json:"유입경로"`
	Views     int64   `json:"screenPageViews"`
	TopDetail string  `json:"top_detail"`
	RatioPct  float64 `json:"ratio"`
}

// WriterRow aggregates the enriched article set by pen name, with the real
// name resolved through the identity table.
type WriterRow struct {
	PenName    string `json:"필명"`
	RealName   string `json:"작성자"`
	Articles   int    `json:"기사수"`
	TotalViews int64  `json:"총조회수"`
	Likes      int64  `json:"좋아요"`
	Comments   int64  `json:"댓글"`
	AvgViews   int64  `json:"평균조회수"`
	Rank       int    `json:"순위"`
}

// CategoryRow aggregates the enriched article set by category (or by
// category and subcategory).
type CategoryRow struct {
	Category    string  `json:"카테고리"`
	Subcategory string  `json:"세부카테고리,omitempty"`
	Articles    int     `json:"기사수"`
	TotalViews  int64   `json:"전체조회수"`
	AvgViews    int64   `json:"평균조회수"`
	SharePct    float64 `json:"비중"`
}

// Bundle is the full weekly report: two scalar KPIs, the tabular datasets
// and the derived ratios. Every slice is present (possibly empty, never
// nil) so a degraded week still serializes with all keys.
type Bundle struct {
	WeekLabel string `json:"weekLabel"`
	Period    string `json:"period"` // "YYYY.MM.DD ~ YYYY.MM.DD"

	UV int64 `json:"uv"`
	PV int64 `json:"pv"`

	NewVisitorRatio   float64 `json:"newVisitorRatio"`
	SearchInflowRatio float64 `json:"searchInflowRatio"`

	ActiveArticleCount    int `json:"activeArticleCount"`
	PublishedArticleCount int `json:"publishedArticleCount"`

	Daily       []DailyRow `json:"daily"`
	WeeklyTrend []TrendRow `json:"weeklyTrend"`

	TrafficCurr []TrafficRow `json:"trafficCurr"`
	TrafficPrev []TrafficRow `json:"trafficPrev"`

	RegionCurr []DemoRow `json:"regionCurr"`
	RegionPrev []DemoRow `json:"regionPrev"`
	AgeCurr    []DemoRow `json:"ageCurr"`
	AgePrev    []DemoRow `json:"agePrev"`
	GenderCurr []DemoRow `json:"genderCurr"`
	GenderPrev []DemoRow `json:"genderPrev"`

	Top10        []Article   `json:"top10"`
	Top10Sources []SourceRow `json:"top10Sources"`

	Articles      []Article     `json:"articles"`
	Writers       []WriterRow   `json:"writers"`
	WritersReal   []WriterRow   `json:"writersReal"`
	Categories    []CategoryRow `json:"categories"`
	Subcategories []CategoryRow `json:"subcategories"`
}

// NewBundle returns a bundle with every dataset initialized empty.
func NewBundle(label, period string) *Bundle {
	return &Bundle{
		WeekLabel:     label,
		Period:        period,
		Daily:         []DailyRow{},
		WeeklyTrend:   []TrendRow{},
		TrafficCurr:   []TrafficRow{},
		TrafficPrev:   []TrafficRow{},
		RegionCurr:    []DemoRow{},
		RegionPrev:    []DemoRow{},
		AgeCurr:       []DemoRow{},
		AgePrev:       []DemoRow{},
		GenderCurr:    []DemoRow{},
		GenderPrev:    []DemoRow{},
		Top10:         []Article{},
		Top10Sources:  []SourceRow{},
		Articles:      []Article{},
		Writers:       []WriterRow{},
		WritersReal:   []WriterRow{},
		Categories:    []CategoryRow{},
		Subcategories: []CategoryRow{},
	}
}
