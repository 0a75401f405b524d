package huggingface_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/huggingface"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/llm"
	"github.com/zatekoja/medassist/pkg/config"
)

func TestAnalyzeSymptoms(t *testing.T) {
	var generated atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/org/model", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))

		var body struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				MaxLength int `json:"max_length"`
			} `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Analyze these symptoms: sore throat", body.Inputs)
		assert.Equal(t, 500, body.Parameters.MaxLength)

		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": generated.Load().(string)}})
	}))
	defer server.Close()

	client, err := huggingface.NewClient(&config.HuggingFaceConfig{APIKey: "hf-key", Model: "org/model", BaseURL: server.URL + "/models"})
	require.NoError(t, err)

	generated.Store("Analyze these symptoms: sore throat. That might be pharyngitis.")
	_, err = client.AnalyzeSymptoms(context.Background(), "sore throat")
	assert.ErrorIs(t, err, llm.ErrNoStructuredOutput)

	generated.Store(`Result: {"potential_diagnoses":[{"condition":"Pharyngitis","confidence":65}]}`)
	result, err := client.AnalyzeSymptoms(context.Background(), "sore throat")
	require.NoError(t, err)
	assert.Equal(t, "huggingface", result.Provider)
	assert.Equal(t, "Pharyngitis", result.PotentialDiagnoses[0].Condition)
}
