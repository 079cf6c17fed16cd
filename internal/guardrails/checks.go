// Package guardrails contains the ordered content checks applied to
// every generation candidate, and the catalog of user-safe fallback
// messages returned when the re-ask budget runs out.
package guardrails

import (
	"fmt"
	"strings"
)

// Check names. Also the keys of the fallback catalog.
const (
	CheckSchema         = "schema-shape"
	CheckMedical        = "not-medical-advice"
	CheckLegalFinancial = "not-legal-financial-advice"
	CheckHarmful        = "not-harmful"
	CheckEmpathy        = "is-empathetic"
	CheckLength         = "not-overly-long"
)

// DefaultMaxWords is the response length ceiling in words.
const DefaultMaxWords = 300

// Metadata carries per-request parameters into checks.
type Metadata struct {
	// MaxWords overrides DefaultMaxWords when positive.
	MaxWords int
}

// Check is one content policy rule. Validate returns nil on pass or a
// human-readable reason on failure; the reason is fed back to the
// model as corrective guidance on retry.
type Check struct {
	Name     string
	Validate func(text string, meta Metadata) error
}

// Phrase lists mirror the product's Turkish content policy. Matching
// is lowercase substring, the same as the policy's reference rules.
var (
	medicalPhrases = []string{
		"tanı koydum", "tedavi edebilirim", "ilaç yazabilirim", "psikiyatriste git",
		"terapiye başla", "depresyonun var", "anksiyeten var", "ilaç almalısın",
		"terapi almalısın", "doktora danış", "uzmanına başvur",
		"teşhis", "reçete", "şifa", "hastalık", "iyileştirme", "ruhsal bozukluk",
	}

	legalFinancialPhrases = []string{
		"avukata danış", "dava aç", "yasal hakların", "hukuki süreç",
		"yatırım yap", "borsa", "kredi çek", "para biriktir", "finansal tavsiye",
	}

	harmfulPhrases = []string{
		"kendine zarar ver", "intihar et", "hiçbir şey düzelmez", "boşuna uğraşma",
		"çözüm yok", "pes et",
	}

	empathyMarkers = []string{
		"anladım", "anlıyorum", "duyguların geçerli", "zor bir durum", "yalnız değilsin",
		"buradayım", "destekleyici",
	}
)

// DefaultChecks returns the ordered check battery. Order matters: the
// first failing check decides the fallback classification. Checks are
// added or removed by editing this list.
func DefaultChecks() []Check {
	return []Check{
		{Name: CheckMedical, Validate: denylist(medicalPhrases, "tıbbi/psikiyatrik tavsiye içeren ifade")},
		{Name: CheckLegalFinancial, Validate: denylist(legalFinancialPhrases, "hukuki/finansal tavsiye içeren ifade")},
		{Name: CheckHarmful, Validate: denylist(harmfulPhrases, "zararlı ifade")},
		{Name: CheckEmpathy, Validate: requireAny(empathyMarkers)},
		{Name: CheckLength, Validate: maxWords},
	}
}

// denylist fails when the text contains any listed phrase.
func denylist(phrases []string, label string) func(string, Metadata) error {
	return func(text string, _ Metadata) error {
		lower := strings.ToLower(text)
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				return fmt.Errorf("yanıt %s barındırıyor: %q", label, phrase)
			}
		}
		return nil
	}
}

// requireAny fails when the text contains none of the listed markers.
func requireAny(markers []string) func(string, Metadata) error {
	return func(text string, _ Metadata) error {
		lower := strings.ToLower(text)
		for _, marker := range markers {
			if strings.Contains(lower, marker) {
				return nil
			}
		}
		return fmt.Errorf("yanıt yeterince empatik veya destekleyici kelimeler içermiyor")
	}
}

// maxWords fails when the word count exceeds the ceiling.
func maxWords(text string, meta Metadata) error {
	limit := meta.MaxWords
	if limit <= 0 {
		limit = DefaultMaxWords
	}
	words := len(strings.Fields(text))
	if words > limit {
		return fmt.Errorf("yanıt çok uzun (%d kelime), maksimum %d kelime olmalı", words, limit)
	}
	return nil
}
