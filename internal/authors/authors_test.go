package authors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lesleyera/cncreport/internal/config"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"김철수 기자", "김철수"},     // trailing reporter suffix
		{"김철수기자", "김철수"},      // glued reporter suffix
		{"박영희 전문기자", "박영희"},   // glued senior-reporter suffix
		{"전문 이영희", "이영희"},     // bare title first, name second
		{"편집인 홍길동", "홍길동"},    // editor-in-chief title first
		{"#박민수#", "박민수"},      // hash markers
		{"이수진 외 1명", "이수진"},   // multi-token byline keeps first token
		{"", Unknown},         // empty
		{"   ", Unknown},      // whitespace only
		{"기자", Unknown},       // nothing but a title
		{"조용수", "조용수"},        // already clean
		{"오요리 / 쿡앤셰프", "오요리"}, // separators handled upstream, first token wins
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.raw), "Normalize(%q)", tc.raw)
	}
}

func testMapping() []config.PenName {
	return []config.PenName{
		{Pen: "오요리", Real: "AI협력"},
		{Pen: "제조리", Real: "AI협력"},
		{Pen: "길라떼", Real: "AI협력"},
		{Pen: "허세인", Real: "허선"},
		{Pen: "조용수", Real: "조용수"},
	}
}

func TestResolveMapped(t *testing.T) {
	r := NewResolver(testMapping())

	assert.Equal(t, "AI협력", r.Resolve("오요리"))
	assert.Equal(t, "AI협력", r.Resolve("제조리"))
	assert.Equal(t, "허선", r.Resolve("허세인"))
	assert.Equal(t, "조용수", r.Resolve("조용수"))
}

func TestResolvePassthrough(t *testing.T) {
	r := NewResolver(testMapping())

	// Unmapped pen names come back verbatim, never as Unknown.
	assert.Equal(t, "unknown_pen", r.Resolve("unknown_pen"))
	assert.Equal(t, "관리자", r.Resolve("관리자"))
}

func TestResolverSize(t *testing.T) {
	r := NewResolver(testMapping())
	assert.Equal(t, 5, r.Size())

	empty := NewResolver(nil)
	assert.Equal(t, 0, empty.Size())
	assert.Equal(t, "누구", empty.Resolve("누구"))
}
