package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const fullArticleHTML = `<html><body>
<div class="viewTitle">
  <dl><dd>허세인 기자 hsein@cooknchefnews.com / 기사승인 : 2026-08-24 09:30:15</dd></dl>
</div>
<div class="naviLink">Home &gt; 푸드이슈 &gt; 외식</div>
<span class="sns-like-count">1,234</span>
<span class="comment-count">7</span>
</body></html>`

func TestParseFullArticle(t *testing.T) {
	md := Parse(parseDoc(t, fullArticleHTML))

	assert.Equal(t, "허세인", md.Author)
	assert.Equal(t, "2026-08-24 09:30:15", md.PublishedAt)
	assert.Equal(t, "푸드이슈", md.Category)
	assert.Equal(t, "외식", md.Subcategory)
	assert.Equal(t, 1234, md.Likes)
	assert.Equal(t, 7, md.Comments)
}

func TestParseMarkerOutsideViewTitle(t *testing.T) {
	// No .viewTitle block: the approval marker is found by full-document
	// text search instead.
	html := `<html><body>
<p>송채연 기자 | 기사승인 : 2026-08-25 14:05</p>
</body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "송채연", md.Author)
	assert.Equal(t, "2026-08-25 14:05", md.PublishedAt)
}

func TestParseLooseDateFallback(t *testing.T) {
	// No approval marker anywhere; a loosely-shaped date still gets picked up.
	html := `<html><body><div>발행 2026.08.23 11:00 어느 기사</div></body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "2026.08.23 11:00", md.PublishedAt)
	assert.Equal(t, DefaultAuthor, md.Author)
}

func TestParseBylineSelectorFallback(t *testing.T) {
	// Author absent from the header text; the dedicated byline selector wins.
	html := `<html><body>
<p>기사승인 : 2026-08-24 09:30</p>
<span class="writer">김세온 기자</span>
</body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "김세온", md.Author)
}

func TestParseBylineSelectorPriority(t *testing.T) {
	html := `<html><body>
<span class="byline">후순위</span>
<span class="user-name">조서율</span>
</body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "조서율", md.Author)
}

func TestParseImplausiblyLongAuthor(t *testing.T) {
	long := strings.Repeat("가", 25)
	html := `<html><body>
<div class="viewTitle"><dl><dd>` + long + ` / 기사승인 : 2026-08-24 09:30</dd></dl></div>
<span class="writer">정서윤</span>
</body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "정서윤", md.Author)
}

func TestParseBreadcrumbTextPattern(t *testing.T) {
	// No .naviLink: the "Home >" text pattern is the second resort.
	html := `<html><body><div>Home &gt; 레시피 | 한식</div></body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "레시피", md.Category)
	assert.Equal(t, "한식", md.Subcategory)
}

func TestParseBreadcrumbGenericSelector(t *testing.T) {
	html := `<html><body><div class="path">홈 &gt; 뉴스브리핑 &gt; 산업</div></body></html>`
	md := Parse(parseDoc(t, html))

	// "홈" is not "Home", so it stays as the first segment.
	assert.Equal(t, "홈", md.Category)
	assert.Equal(t, "뉴스브리핑", md.Subcategory)
}

func TestParseBreadcrumbDropsHome(t *testing.T) {
	html := `<html><body><div class="location">Home &gt; 인터뷰</div></body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, "인터뷰", md.Category)
	assert.Equal(t, DefaultSubcategory, md.Subcategory)
}

func TestParseEmptyPage(t *testing.T) {
	md := Parse(parseDoc(t, `<html><body></body></html>`))

	assert.Equal(t, DefaultAuthor, md.Author)
	assert.Equal(t, DefaultCategory, md.Category)
	assert.Equal(t, DefaultSubcategory, md.Subcategory)
	assert.Equal(t, DefaultPublishedAt, md.PublishedAt)
	assert.Equal(t, 0, md.Likes)
	assert.Equal(t, 0, md.Comments)
}

func TestParseNonNumericCounters(t *testing.T) {
	html := `<html><body>
<span class="sns-like-count">많음</span>
<span class="comment-count"></span>
</body></html>`
	md := Parse(parseDoc(t, html))

	assert.Equal(t, 0, md.Likes)
	assert.Equal(t, 0, md.Comments)
}

func TestScrapeHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second, nil, zerolog.Nop())
	md := s.Scrape(context.Background(), "/news/articleView.html?idxno=1")

	assert.Equal(t, DefaultAuthor, md.Author)
	assert.Equal(t, DefaultPublishedAt, md.PublishedAt)
}

func TestScrapeUnreachableHost(t *testing.T) {
	s := New("http://127.0.0.1:1", 200*time.Millisecond, nil, zerolog.Nop())
	md := s.Scrape(context.Background(), "/news/articleView.html?idxno=1")

	assert.Equal(t, DefaultAuthor, md.Author)
}

// memCache is an in-memory Cache for tests.
type memCache struct {
	entries map[string]Metadata
	puts    int
}

func (m *memCache) Get(path string) (Metadata, bool) {
	md, ok := m.entries[path]
	return md, ok
}

func (m *memCache) Put(path string, md Metadata) error {
	m.entries[path] = md
	m.puts++
	return nil
}

func TestScrapeUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(fullArticleHTML))
	}))
	defer srv.Close()

	cache := &memCache{entries: map[string]Metadata{}}
	s := New(srv.URL, time.Second, cache, zerolog.Nop())

	first := s.Scrape(context.Background(), "/p")
	second := s.Scrape(context.Background(), "/p")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "second scrape should come from cache")
	assert.Equal(t, 1, cache.puts)
}

func TestScrapeSendsBrowserUA(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(fullArticleHTML))
	}))
	defer srv.Close()

	s := New(srv.URL, time.Second, nil, zerolog.Nop())
	s.Scrape(context.Background(), "/p")

	assert.Contains(t, gotUA, "Mozilla/5.0")
}
