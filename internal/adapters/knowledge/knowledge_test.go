package knowledge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/adapters/knowledge"
)

func load(t *testing.T) *knowledge.Knowledge {
	t.Helper()
	k, err := knowledge.Load()
	require.NoError(t, err)
	return k
}

func names(k *knowledge.Knowledge, condition string) []string {
	var out []string
	for _, r := range k.Remedies.Match(condition) {
		out = append(out, r.Name)
	}
	return out
}

func TestRemedyTable_Match(t *testing.T) {
	k := load(t)

	assert.Equal(t, []string{"Peppermint Oil", "Ginger Tea", "Lavender Oil"}, names(k, "Headache"))
	assert.Equal(t, []string{"Honey and Lemon", "Thyme Tea", "Steam Inhalation"}, names(k, "dry cough"))
	assert.Equal(t, []string{"Ginger Root", "Peppermint Tea", "Chamomile Tea"}, names(k, "upset stomach"))
	// "back pain" contains "pain"
	assert.Equal(t, []string{"Arnica Gel", "Turmeric", "Epsom Salt Bath"}, names(k, "back pain"))
	assert.Equal(t, []string{"Rest and Hydration", "Warm Compress"}, names(k, "eczema"))
	assert.Equal(t, []string{"Rest and Hydration", "Warm Compress"}, names(k, ""))
}

func TestRemedyTable_MatchReturnsCopy(t *testing.T) {
	k := load(t)

	first := k.Remedies.Match("fever")
	first[0].Name = "changed"
	assert.Equal(t, "Willow Bark Tea", k.Remedies.Match("fever")[0].Name)
}

func TestLanguageTable(t *testing.T) {
	k := load(t)

	supported := k.Languages.Supported()
	require.Len(t, supported, 19)
	assert.Equal(t, "en", supported[0].Code)

	hi, ok := k.Languages.Lookup("hi")
	require.True(t, ok)
	assert.Equal(t, "Hindi", hi.Name)
	assert.Contains(t, hi.RegisterRule, "Hinglish")

	ta := k.Languages.Profile("ta")
	assert.Equal(t, "Tamil", ta.Name)
	assert.Empty(t, ta.RegisterRule)

	unknown := k.Languages.Profile("sw")
	assert.Equal(t, "SW", unknown.Name)
	assert.Equal(t, k.Languages.Profile("en").Instruction, unknown.Instruction)
}

func TestLanguageTable_Apology(t *testing.T) {
	k := load(t)

	english := k.Languages.Apology("en")
	assert.True(t, strings.HasPrefix(english, "I apologize"))
	assert.NotEqual(t, english, k.Languages.Apology("es"))
	// Tamil has no canned apology
	assert.Equal(t, english, k.Languages.Apology("ta"))
	assert.Equal(t, english, k.Languages.Apology("xx"))
}

func TestImageTemplates(t *testing.T) {
	k := load(t)

	en := k.ImageTemplates.For("en")
	assert.Equal(t, "Based on my analysis of your image, here's what I found:", en.IntroFor(""))
	assert.Equal(t, "Based on my analysis of your image and your question about a rash, here's what I found:", en.IntroFor("a rash"))

	assert.Equal(t, "Hallazgos visuales:", k.ImageTemplates.For("es").Findings)
	assert.Equal(t, en, k.ImageTemplates.For("de"))
}

func TestReference(t *testing.T) {
	k := load(t)

	assert.NotEmpty(t, k.Reference.Disclaimer)
	assert.True(t, k.Reference.IsCommonCondition(" Headache "))
	assert.False(t, k.Reference.IsCommonCondition("zebra fever"))
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}, k.Reference.SupportedImageFormats)
}

func TestSearchTerms(t *testing.T) {
	k := load(t)

	assert.Len(t, k.SearchTerms.Synonyms, 15)
	assert.Equal(t, []string{"over the counter", "non prescription", "self care"}, k.SearchTerms.QualifiersFor("otc"))
	assert.Equal(t, []string{"prescription", "prescribed", "medical treatment"}, k.SearchTerms.QualifiersFor("prescription"))
}
