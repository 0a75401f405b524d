package together_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/llm"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/together"
	"github.com/zatekoja/medassist/pkg/config"
)

func serve(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer tg-key", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Equal(t, 2048, body.MaxTokens)
		assert.Equal(t, 0.3, body.Temperature)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

func TestAnalyzeSymptoms(t *testing.T) {
	server := serve(t, `{"potential_diagnoses":[{"condition":"Common cold","confidence":75,"severity":"low"}]}`)
	defer server.Close()

	client, err := together.NewClient(&config.TogetherConfig{APIKey: "tg-key", Model: "test-model", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := client.AnalyzeSymptoms(context.Background(), "runny nose")
	require.NoError(t, err)
	assert.Equal(t, "together", result.Provider)
	assert.Equal(t, "Together AI Analysis", result.AnalysisMethod)
	assert.Equal(t, "Common cold", result.PotentialDiagnoses[0].Condition)
}

func TestAnalyzeSymptoms_ProseIsError(t *testing.T) {
	server := serve(t, "Probably a cold.")
	defer server.Close()

	client, err := together.NewClient(&config.TogetherConfig{APIKey: "tg-key", Model: "test-model", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.AnalyzeSymptoms(context.Background(), "runny nose")
	assert.ErrorIs(t, err, llm.ErrNoStructuredOutput)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := together.NewClient(&config.TogetherConfig{Model: "m"})
	assert.Error(t, err)
	_, err = together.NewClient(&config.TogetherConfig{APIKey: "k"})
	assert.Error(t, err)
}
