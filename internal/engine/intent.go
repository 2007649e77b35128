package engine

import (
	"regexp"
	"strings"
)

// IntentType is what a free-text utterance asks for when no workflow is in
// progress.
type IntentType int

const (
	// IntentProduct is the fallback: treat the utterance as a product
	// search keyword.
	IntentProduct IntentType = iota
	IntentVoid
	IntentMutasi
	IntentGantiSales
)

// Intent is the result of classifying one utterance. Keyword is only set
// for IntentProduct.
type Intent struct {
	Type    IntentType
	Keyword string
}

// Pattern order matters: the vocabularies overlap, first match wins.
var (
	voidPattern       = regexp.MustCompile(`(?i)void|batal|cancel|hapus`)
	mutasiPattern     = regexp.MustCompile(`(?i)pindah|ganti toko|mutasi|ganti cabang`)
	gantiSalesPattern = regexp.MustCompile(`(?i)ganti sales|ganti creator|ubah sales|revisi user`)
	fillerPattern     = regexp.MustCompile(`(?i)^(tolong carikan|cari|lihat|cek|harga|stock|tampilkan|show)\s+`)
)

// ParseIntent classifies an utterance. It is pure and never fails; the
// worst case falls through to a product query with the utterance itself as
// keyword.
func ParseIntent(text string) Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Intent{Type: IntentProduct, Keyword: ""}
	}
	if voidPattern.MatchString(trimmed) {
		return Intent{Type: IntentVoid}
	}
	if mutasiPattern.MatchString(trimmed) {
		return Intent{Type: IntentMutasi}
	}
	if gantiSalesPattern.MatchString(trimmed) {
		return Intent{Type: IntentGantiSales}
	}
	keyword := strings.TrimSpace(fillerPattern.ReplaceAllString(trimmed, ""))
	if keyword == "" {
		keyword = trimmed
	}
	return Intent{Type: IntentProduct, Keyword: keyword}
}
