package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSource(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"naver", SourceNaver},
		{"m.search.naver.com", SourceNaver},
		{"NAVER", SourceNaver},
		{"daum", SourceDaum},
		{"search.daum.net", SourceDaum},
		{"facebook.com", SourceFacebook},
		{"m.facebook.com", SourceFacebook},
		{"(direct)", SourceDirect},
		{"google", SourceGoogle},
		{"com.google.android.googlequicksearchbox", SourceGoogle},
		{"t.co", SourceOther},
		{"", SourceOther},
		{"newsletter.example", SourceOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapSource(tt.raw), "raw=%q", tt.raw)
	}
}

func TestMapRegion(t *testing.T) {
	assert.Equal(t, "서울", MapRegion("Seoul"))
	assert.Equal(t, "제주", MapRegion("Jeju-do"))
	assert.Equal(t, OtherLabel, MapRegion("California"))
	assert.Equal(t, OtherLabel, MapRegion("(not set)"))
	assert.Equal(t, OtherLabel, MapRegion(""))
}

func TestMapAgeBracket(t *testing.T) {
	assert.Equal(t, "25-34세", MapAgeBracket("25-34"))
	assert.Equal(t, "65+세", MapAgeBracket("65+"))
	assert.Equal(t, "25-34세", MapAgeBracket("25-34세"), "existing suffix kept")
	assert.Equal(t, OtherLabel, MapAgeBracket("unknown"))
}

func TestMapGender(t *testing.T) {
	label, ok := MapGender("male")
	assert.True(t, ok)
	assert.Equal(t, "남성", label)

	label, ok = MapGender("Female")
	assert.True(t, ok)
	assert.Equal(t, "여성", label)

	_, ok = MapGender("unknown")
	assert.False(t, ok)
}

func TestDisplaySource(t *testing.T) {
	assert.Equal(t, SourceNaver, displaySource("m.search.naver.com"))
	assert.Equal(t, "기타(t.co)", displaySource("t.co"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "0분 0초", formatDuration(0))
	assert.Equal(t, "1분 35초", formatDuration(95.7))
	assert.Equal(t, "2분 0초", formatDuration(120))
	assert.Equal(t, "0분 0초", formatDuration(-3))

	assert.Equal(t, "0%", formatNewVisitorPct(5, 0))
	assert.Equal(t, "50.0%", formatNewVisitorPct(10, 20))
	assert.Equal(t, "33.3%", formatNewVisitorPct(1, 3))
}
