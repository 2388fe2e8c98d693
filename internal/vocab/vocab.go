package vocab

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Vocabulary holds the static string tables normalizers match product text
// against. Tables ship embedded and can be replaced by a versioned file so
// they evolve independently of the matching logic.
type Vocabulary struct {
	HarmfulIngredients  []string `yaml:"harmful_ingredients"`
	CommonAllergens     []string `yaml:"common_allergens"`
	PersonalCareKeyword []string `yaml:"personal_care_keywords"`
}

// Default returns the embedded vocabulary tables.
func Default() (*Vocabulary, error) {
	return parse(defaultsYAML)
}

// Load reads vocabulary tables from path, falling back to the embedded
// defaults when path is empty.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocab: %w", err)
	}
	if len(v.HarmfulIngredients) == 0 || len(v.CommonAllergens) == 0 {
		return nil, fmt.Errorf("vocab: harmful_ingredients and common_allergens must be non-empty")
	}
	return &v, nil
}

// MatchHarmful returns the harmful-ingredient entries that occur in the
// ingredient text, preserving vocabulary casing. Matching is
// case-insensitive substring over accent-folded text.
func (v *Vocabulary) MatchHarmful(ingredientsText string) []string {
	if ingredientsText == "" {
		return nil
	}
	folded := Fold(ingredientsText)
	var matches []string
	for _, harmful := range v.HarmfulIngredients {
		if strings.Contains(folded, Fold(harmful)) {
			matches = append(matches, harmful)
		}
	}
	return matches
}

// MatchAllergens scans free text for common-allergen terms and returns the
// matches with their first letter upper-cased, the display form the
// original catalogs use.
func (v *Vocabulary) MatchAllergens(text string) []string {
	if text == "" {
		return nil
	}
	folded := Fold(text)
	var matches []string
	for _, allergen := range v.CommonAllergens {
		if strings.Contains(folded, Fold(allergen)) {
			matches = append(matches, titleFirst(allergen))
		}
	}
	return matches
}

// IsPersonalCare reports whether a category text names a personal-care
// product rather than a cosmetic one.
func (v *Vocabulary) IsPersonalCare(categories string) bool {
	if categories == "" {
		return false
	}
	folded := Fold(categories)
	for _, kw := range v.PersonalCareKeyword {
		if strings.Contains(folded, Fold(kw)) {
			return true
		}
	}
	return false
}

// Fold lower-cases s and strips combining accent marks so "Azúcar" matches
// "azucar". Catalog ingredient lists mix scripts and diacritics freely.
func Fold(s string) string {
	s = strings.ToLower(s)
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func titleFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
