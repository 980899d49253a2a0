package report

import "strings"

// Referral categories, in display order. The strings are contract labels.
const (
	SourceNaver    = "네이버"
	SourceDaum     = "다음"
	SourceFacebook = "페이스북"
	SourceDirect   = "직접"
	SourceGoogle   = "구글"
	SourceOther    = "기타"
)

// sourceOrder fixes the emission order of referral categories.
var sourceOrder = []string{SourceNaver, SourceDaum, SourceFacebook, SourceDirect, SourceGoogle, SourceOther}

// searchEngines are the categories counted as search inflow.
var searchEngines = map[string]bool{SourceNaver: true, SourceGoogle: true, SourceDaum: true}

// MapSource buckets a raw session source into a referral category. The
// substring checks run case-insensitively in a fixed priority order; a
// source matching none of them is 기타.
func MapSource(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "naver"):
		return SourceNaver
	case strings.Contains(s, "daum"):
		return SourceDaum
	case strings.Contains(s, "facebook"):
		return SourceFacebook
	case strings.Contains(s, "(direct)"):
		return SourceDirect
	case strings.Contains(s, "google"):
		return SourceGoogle
	default:
		return SourceOther
	}
}

// OtherLabel is the bucket for unset, unknown or unmapped dimension values.
const OtherLabel = "기타"

// regionLabels maps GA region values to the report's Korean labels.
// Unmapped regions fall into 기타.
var regionLabels = map[string]string{
	"Seoul":             "서울",
	"Gyeonggi-do":       "경기",
	"Incheon":           "인천",
	"Busan":             "부산",
	"Daegu":             "대구",
	"Gyeongsangnam-do":  "경남",
	"Gyeongsangbuk-do":  "경북",
	"Chungcheongnam-do": "충남",
	"Chungcheongbuk-do": "충북",
	"Jeollanam-do":      "전남",
	"Jeollabuk-do":      "전북",
	"Gangwon-do":        "강원",
	"Daejeon":           "대전",
	"Gwangju":           "광주",
	"Ulsan":             "울산",
	"Jeju-do":           "제주",
	"Sejong-si":         "세종",
}

// MapRegion converts a GA region value to its display label.
func MapRegion(raw string) string {
	if isUnsetDim(raw) {
		return OtherLabel
	}
	if label, ok := regionLabels[raw]; ok {
		return label
	}
	return OtherLabel
}

// MapAgeBracket converts a GA age bracket to its display label, appending
// 세 unless the value is already suffixed or is the catch-all bucket.
func MapAgeBracket(raw string) string {
	if isUnsetDim(raw) {
		return OtherLabel
	}
	if strings.Contains(raw, "세") {
		return raw
	}
	return raw + "세"
}

// genderLabels maps GA gender values; anything else stays unmapped and is
// dropped (subject to the redaction repair in the pipeline).
var genderLabels = map[string]string{
	"male":   "남성",
	"female": "여성",
}

// MapGender converts a GA gender value. ok reports whether it mapped.
func MapGender(raw string) (string, bool) {
	label, ok := genderLabels[strings.ToLower(raw)]
	return label, ok
}

func isUnsetDim(raw string) bool {
	return raw == "" || raw == "(not set)" || strings.EqualFold(raw, "unknown")
}
