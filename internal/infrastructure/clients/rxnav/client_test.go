package rxnav_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/infrastructure/clients/rxnav"
	"github.com/zatekoja/medassist/pkg/config"
)

const drugsJSON = `{"drugGroup":{"name":"warfarin","conceptGroup":[
 {"tty":"BN"},
 {"tty":"SBD","conceptProperties":[{"rxcui":"855332","name":"warfarin sodium 5 MG Oral Tablet [Coumadin]","synonym":"Coumadin 5 MG"}]},
 {"tty":"SCD","concept":[{"rxcui":"855318","name":"warfarin sodium 1 MG Oral Tablet"}]}
]}}`

const interactionJSON = `{"interactionTypeGroup":[{"interactionType":[{"interactionPair":[
 {"interactionConcept":[{"sourceConceptItem":{"name":"aspirin"}}],"severity":"high","description":"Increased bleeding risk."},
 {"interactionConcept":[],"severity":"N/A","description":"Unknown pair."}
]}]}]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /REST/drugs.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("allsrc"))
		if r.URL.Query().Get("name") != "warfarin" {
			_, _ = w.Write([]byte(`{"drugGroup":{"name":null}}`))
			return
		}
		_, _ = w.Write([]byte(drugsJSON))
	})
	mux.HandleFunc("GET /REST/interaction/interaction.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "855332", r.URL.Query().Get("rxcui"))
		_, _ = w.Write([]byte(interactionJSON))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSearchDrugs(t *testing.T) {
	server := newServer(t)
	client := rxnav.NewClient(&config.RxNavConfig{BaseURL: server.URL + "/REST"})

	drugs, err := client.SearchDrugs(context.Background(), "warfarin")
	require.NoError(t, err)
	require.Len(t, drugs, 2)
	assert.Equal(t, "Coumadin 5 MG", drugs[0].BrandName)
	assert.Equal(t, "Unknown", drugs[1].BrandName)
	assert.Equal(t, entities.SourceRxNav, drugs[1].Source)
	assert.Equal(t, entities.MedicineTypePrescription, drugs[1].Type)
	assert.Equal(t, "Prescription medication - use as directed", drugs[0].Warnings)
}

func TestSearchDrugs_NoMatch(t *testing.T) {
	server := newServer(t)
	client := rxnav.NewClient(&config.RxNavConfig{BaseURL: server.URL + "/REST"})

	drugs, err := client.SearchDrugs(context.Background(), "notadrug")
	require.NoError(t, err)
	assert.Empty(t, drugs)
}

func TestInteractions(t *testing.T) {
	server := newServer(t)
	client := rxnav.NewClient(&config.RxNavConfig{BaseURL: server.URL + "/REST"})

	interactions, err := client.Interactions(context.Background(), "warfarin")
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, entities.DrugInteraction{Drug: "aspirin", Severity: "high", Description: "Increased bleeding risk."}, interactions[0])
	assert.Empty(t, interactions[1].Drug)
}

func TestInteractions_UnknownDrug(t *testing.T) {
	server := newServer(t)
	client := rxnav.NewClient(&config.RxNavConfig{BaseURL: server.URL + "/REST"})

	interactions, err := client.Interactions(context.Background(), "notadrug")
	require.NoError(t, err)
	assert.Empty(t, interactions)
}
