package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
)

// fakeES answers like an Elasticsearch 8 node and records request bodies.
func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, body)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestIndexBooking_PutsDocumentByID(t *testing.T) {
	var gotPath string
	var gotDoc entity.BookingDocument
	es := fakeES(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		gotPath = r.URL.Path
		_ = json.Unmarshal(body, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	doc := entity.BookingDocument{
		ID: "b-1", UserID: "u-1", Kind: entity.KindHotel, Title: "Lake View",
		Status: entity.StatusConfirmed, BookingDate: time.Now().UTC(),
	}
	require.NoError(t, NewBookingIndex(es, "bookings").IndexBooking(context.Background(), doc))
	assert.Equal(t, "/bookings/_doc/b-1", gotPath)
	assert.Equal(t, "u-1", gotDoc.UserID)
	assert.Equal(t, "Lake View", gotDoc.Title)
}

func TestIndexBooking_ErrorStatus(t *testing.T) {
	es := fakeES(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})
	err := NewBookingIndex(es, "bookings").IndexBooking(context.Background(), entity.BookingDocument{ID: "x"})
	assert.Error(t, err)
}

func TestSearchBookings_FiltersByUser(t *testing.T) {
	var query map[string]any
	es := fakeES(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/_search"))
		assert.NoError(t, json.Unmarshal(body, &query))
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"b-1","user_id":"u-1","kind":"taxi","title":"Dehradun to Mussoorie"}}]}}`))
	})

	docs, err := NewBookingIndex(es, "bookings").SearchBookings(context.Background(), "u-1", "mussoorie", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, entity.KindTaxi, docs[0].Kind)

	filter := query["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	term := filter[0].(map[string]any)["term"].(map[string]any)
	assert.Equal(t, "u-1", term["user_id"])
	assert.EqualValues(t, 10, query["size"])
}
