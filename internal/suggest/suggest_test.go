package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"agritrade/internal/models"
)

func TestHTTPScorer_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"suggestedCrops": [
			{"name": "Tomato", "suitability": "Highly Suitable", "harvestDays": 90, "expectedYield": "25-30 ton/hectare", "profitMargin": 30},
			{"name": "Onion", "suitability": "Moderately Suitable", "harvestDays": 120, "expectedYield": "15-20 ton/hectare", "profitMargin": 12}
		]}`))
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second)
	crops, err := scorer.Suggest(context.Background(), models.SuggestionRequest{District: "Coimbatore"})

	assert.NoError(t, err)
	assert.Len(t, crops, 2)
	assert.Equal(t, "Tomato", crops[0].Name)
	assert.Equal(t, 90, crops[0].HarvestDays)
	assert.Equal(t, 30.0, crops[0].ProfitMargin)
}

func TestHTTPScorer_Suggest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second)
	_, err := scorer.Suggest(context.Background(), models.SuggestionRequest{})

	assert.True(t, errors.Is(err, models.ErrExternalService))
}

func TestHTTPScorer_Suggest_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second)
	_, err := scorer.Suggest(context.Background(), models.SuggestionRequest{})

	assert.True(t, errors.Is(err, models.ErrExternalService))
}

func TestHTTPScorer_Suggest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 20*time.Millisecond)
	_, err := scorer.Suggest(context.Background(), models.SuggestionRequest{})

	assert.True(t, errors.Is(err, models.ErrExternalService))
}

func TestHTTPScorer_Suggest_Unreachable(t *testing.T) {
	scorer := NewHTTPScorer("http://127.0.0.1:1", time.Second)
	_, err := scorer.Suggest(context.Background(), models.SuggestionRequest{})

	assert.True(t, errors.Is(err, models.ErrExternalService))
}

func TestEnrich(t *testing.T) {
	crops := []models.SuggestedCrop{
		{Name: "Tomato", ProfitMargin: 30},
		{Name: "Dragonfruit", ProfitMargin: 50}, // no price history
	}
	latest := map[string]float64{"Tomato": 85}

	suggestions := Enrich(crops, latest)

	assert.Len(t, suggestions, 2)
	assert.Equal(t, 85.0, suggestions[0].CurrentPrice)
	assert.InDelta(t, 110.5, suggestions[0].PredictedPrice, 0.001)
	assert.Equal(t, 0.0, suggestions[1].CurrentPrice)
	assert.Equal(t, 0.0, suggestions[1].PredictedPrice)
}
