// Package knowledge holds the static tables the services fall back on:
// search synonyms, the traditional-remedy table, per-language chat profiles,
// image response templates and reference text. The tables ship as embedded
// JSON so they can be edited without touching code.
package knowledge

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

//go:embed data/*.json
var dataFS embed.FS

// Knowledge bundles every static table
type Knowledge struct {
	SearchTerms    *SearchTerms
	Remedies       *RemedyTable
	Languages      *LanguageTable
	ImageTemplates *ImageTemplates
	Reference      *Reference
}

// SynonymEntry lists search synonyms for a condition keyword
type SynonymEntry struct {
	Condition string   `json:"condition"`
	Terms     []string `json:"terms"`
}

// SearchTerms drives search term expansion for drug database queries
type SearchTerms struct {
	Synonyms   []SynonymEntry      `json:"synonyms"`
	Qualifiers map[string][]string `json:"qualifiers"`
}

// QualifiersFor returns the qualifier terms for a medicine kind ("otc" or
// "prescription")
func (s *SearchTerms) QualifiersFor(kind string) []string {
	return append([]string(nil), s.Qualifiers[kind]...)
}

// RemedyGroup is one row of the remedy table
type RemedyGroup struct {
	Condition string                 `json:"condition"`
	Remedies  []entities.RemedyEntry `json:"remedies"`
}

// RemedyTable is the static traditional-remedy table
type RemedyTable struct {
	Entries []RemedyGroup          `json:"entries"`
	Default []entities.RemedyEntry `json:"default"`
}

// Match picks remedies for a condition. An exact key wins, then the first
// key (in table order) contained in the condition or containing it, then the
// default list. The returned slice is a copy.
func (t *RemedyTable) Match(condition string) []entities.RemedyEntry {
	key := strings.ToLower(strings.TrimSpace(condition))
	if key != "" {
		for _, group := range t.Entries {
			if group.Condition == key {
				return copyRemedies(group.Remedies)
			}
		}
		for _, group := range t.Entries {
			if strings.Contains(key, group.Condition) || strings.Contains(group.Condition, key) {
				return copyRemedies(group.Remedies)
			}
		}
	}
	return copyRemedies(t.Default)
}

func copyRemedies(in []entities.RemedyEntry) []entities.RemedyEntry {
	return append(make([]entities.RemedyEntry, 0, len(in)), in...)
}

// LanguageProfile carries everything the chat prompt needs for one language
type LanguageProfile struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Greeting    string `json:"greeting"`
	Instruction string `json:"instruction"`
	ChatApology string `json:"chat_apology,omitempty"`
	// RegisterRule adds a language-specific register requirement to the
	// language rule block, e.g. Hinglish for Hindi.
	RegisterRule string `json:"register_rule,omitempty"`
}

// LanguageTable is the ordered list of supported chat languages
type LanguageTable struct {
	Default   string            `json:"default"`
	Languages []LanguageProfile `json:"languages"`

	byCode map[string]int
}

func (t *LanguageTable) index() {
	t.byCode = make(map[string]int, len(t.Languages))
	for i, l := range t.Languages {
		t.byCode[l.Code] = i
	}
}

// Lookup returns the profile for code
func (t *LanguageTable) Lookup(code string) (LanguageProfile, bool) {
	i, ok := t.byCode[strings.ToLower(code)]
	if !ok {
		return LanguageProfile{}, false
	}
	return t.Languages[i], true
}

// Profile returns the profile for code. Unknown codes get a profile named
// after the upper-cased code that borrows the default language's texts.
func (t *LanguageTable) Profile(code string) LanguageProfile {
	if p, ok := t.Lookup(code); ok {
		return p
	}
	fallback, _ := t.Lookup(t.Default)
	fallback.Code = strings.ToLower(code)
	fallback.Name = strings.ToUpper(code)
	fallback.RegisterRule = ""
	return fallback
}

// Apology returns the canned chat apology for code, in the default language
// when the table has none for it.
func (t *LanguageTable) Apology(code string) string {
	if p, ok := t.Lookup(code); ok && p.ChatApology != "" {
		return p.ChatApology
	}
	p, _ := t.Lookup(t.Default)
	return p.ChatApology
}

// Supported lists every language as code and name, in table order
func (t *LanguageTable) Supported() []entities.Language {
	out := make([]entities.Language, 0, len(t.Languages))
	for _, l := range t.Languages {
		out = append(out, entities.Language{Code: l.Code, Name: l.Name})
	}
	return out
}

// ImageTemplate holds the localized headings of an image analysis reply
type ImageTemplate struct {
	Intro           string `json:"intro"`
	IntroWithQuery  string `json:"intro_with_query"`
	Findings        string `json:"findings"`
	Conditions      string `json:"conditions"`
	Recommendations string `json:"recommendations"`
	Urgent          string `json:"urgent"`
	Consult         string `json:"consult"`
	Fallback        string `json:"fallback"`
}

// IntroFor renders the intro line, mentioning the addressed query if any
func (t ImageTemplate) IntroFor(query string) string {
	if strings.TrimSpace(query) == "" {
		return t.Intro
	}
	return strings.ReplaceAll(t.IntroWithQuery, "{query}", query)
}

// ImageTemplates maps language codes to templates
type ImageTemplates struct {
	Default   string                   `json:"default"`
	Templates map[string]ImageTemplate `json:"templates"`
}

// For returns the template for code, or the default language's template
func (t *ImageTemplates) For(code string) ImageTemplate {
	if tpl, ok := t.Templates[strings.ToLower(code)]; ok {
		return tpl
	}
	return t.Templates[t.Default]
}

// Reference is fixed text served by informational endpoints
type Reference struct {
	Disclaimer            string   `json:"disclaimer"`
	CommonConditions      []string `json:"common_conditions"`
	SupportedImageFormats []string `json:"supported_image_formats"`
}

// IsCommonCondition reports whether name is in the common conditions list
func (r *Reference) IsCommonCondition(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range r.CommonConditions {
		if c == name {
			return true
		}
	}
	return false
}

// Load parses the embedded tables
func Load() (*Knowledge, error) {
	k := &Knowledge{
		SearchTerms:    &SearchTerms{},
		Remedies:       &RemedyTable{},
		Languages:      &LanguageTable{},
		ImageTemplates: &ImageTemplates{},
		Reference:      &Reference{},
	}
	files := map[string]any{
		"search_terms.json":    k.SearchTerms,
		"remedies.json":        k.Remedies,
		"languages.json":       k.Languages,
		"image_templates.json": k.ImageTemplates,
		"reference.json":       k.Reference,
	}
	for name, target := range files {
		data, err := dataFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	k.Languages.index()

	if _, ok := k.Languages.Lookup(k.Languages.Default); !ok {
		return nil, fmt.Errorf("default language %q missing from languages.json", k.Languages.Default)
	}
	if _, ok := k.ImageTemplates.Templates[k.ImageTemplates.Default]; !ok {
		return nil, fmt.Errorf("default image template %q missing", k.ImageTemplates.Default)
	}
	if len(k.Remedies.Default) == 0 {
		return nil, fmt.Errorf("remedies.json has no default remedies")
	}
	return k, nil
}

// MustLoad is Load for program start-up; the tables are compiled in, so a
// failure is a build defect.
func MustLoad() *Knowledge {
	k, err := Load()
	if err != nil {
		panic(err)
	}
	return k
}
