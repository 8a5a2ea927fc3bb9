package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink-geo/internal/model"
)

type stubResolver struct {
	record *model.GeoRecord
	err    error
	got    string
}

func (s *stubResolver) Lookup(ip string) (*model.GeoRecord, error) {
	s.got = ip
	return s.record, s.err
}

func TestLocateDefaultsToUnknown(t *testing.T) {
	loc, record := Locate(NopResolver{}, "10.0.0.1")
	assert.Nil(t, record)
	assert.Equal(t, model.Location{Country: "Unknown", City: "Unknown", Region: "Unknown", Timezone: "Unknown"}, loc)

	loc, record = Locate(&stubResolver{err: errors.New("corrupt db")}, "8.8.8.8")
	assert.Nil(t, record)
	assert.Equal(t, model.UnknownLocationValue(), loc)

	loc, _ = Locate(nil, "8.8.8.8")
	assert.Equal(t, model.UnknownLocationValue(), loc)
}

func TestLocatePartialRecord(t *testing.T) {
	stub := &stubResolver{record: &model.GeoRecord{Country: "US", Timezone: "America/Chicago", LL: [2]float64{37.751, -97.822}}}
	loc, record := Locate(stub, "8.8.8.8")

	require.NotNil(t, record)
	assert.Equal(t, "8.8.8.8", stub.got)
	assert.Equal(t, "US", loc.Country)
	assert.Equal(t, "Unknown", loc.City)
	assert.Equal(t, "Unknown", loc.Region)
	assert.Equal(t, "America/Chicago", loc.Timezone)
}

func TestNewResolverMissingFile(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.IsType(t, NopResolver{}, r)

	assert.IsType(t, NopResolver{}, NewResolver(""))
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "48.8584", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.2945", r.URL.Query().Get("lon"))
		assert.Equal(t, "shortlink-geo-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Tour Eiffel, Paris, France","address":{"road":"Avenue Gustave Eiffel","city":"Paris","country":"France","country_code":"fr"}}`))
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL+"/", "shortlink-geo-test", time.Second)
	addr, err := n.Reverse(context.Background(), 48.8584, 2.2945)
	require.NoError(t, err)
	assert.Equal(t, "Tour Eiffel, Paris, France", addr.DisplayName)
	assert.Equal(t, "Paris", addr.Address["city"])
}

func TestNominatimReverseFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("lat") {
		case "1":
			w.WriteHeader(http.StatusTooManyRequests)
		case "2":
			_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
		default:
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, "", 50*time.Millisecond)

	_, err := n.Reverse(context.Background(), 1, 0)
	assert.Error(t, err)

	_, err = n.Reverse(context.Background(), 2, 0)
	assert.ErrorContains(t, err, "Unable to geocode")

	_, err = n.Reverse(context.Background(), 3, 0)
	assert.Error(t, err)
}
