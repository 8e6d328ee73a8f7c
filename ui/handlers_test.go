package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbridge/internal/dataset"
)

type fakeProvider struct {
	ds  *dataset.Dataset
	err error
}

func (f *fakeProvider) LoadDataset(context.Context) (*dataset.Dataset, error) {
	return f.ds, f.err
}

func (f *fakeProvider) ActiveEnrollments(context.Context) (int, error) {
	return 42, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	ds := dataset.New([]map[string]any{
		{"date_of_activity": "2025-01-10", "program": "School", "books_distributed": 10.0, "total_children": 5.0, "children_0_35_months": 5.0},
		{"date_of_activity": "2025-02-10", "program": "Clinic", "books_distributed": 20.0, "total_children": 10.0, "children_0_35_months": 10.0},
	})
	a, err := NewApp(&fakeProvider{ds: ds})
	require.NoError(t, err)
	return a
}

func get(t *testing.T, a *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	rec := get(t, newTestApp(t), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BookBridge Program Dashboard")
	assert.Contains(t, rec.Body.String(), "30")
}

func TestAboutPage(t *testing.T) {
	rec := get(t, newTestApp(t), "/about")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
}

func TestSummaryEndpoint(t *testing.T) {
	rec := get(t, newTestApp(t), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalRecords int                `json:"total_records"`
		Totals       map[string]float64 `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TotalRecords)
	assert.Equal(t, 30.0, body.Totals["books_distributed"])
	assert.Equal(t, 2.0, body.Totals["avg_books_per_child"])
}

func TestTimeseriesEndpoint(t *testing.T) {
	rec := get(t, newTestApp(t), "/api/timeseries?unit=month&metrics=books_distributed")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Unit    string              `json:"unit"`
		Periods []dataset.PeriodRow `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "month", body.Unit)
	require.Len(t, body.Periods, 2)
	assert.Equal(t, "2025-01", body.Periods[0].Period)
	assert.Equal(t, 10.0, body.Periods[0].Values["books_distributed"])
}

func TestCategoriesEndpoint(t *testing.T) {
	rec := get(t, newTestApp(t), "/api/categories?metrics=books_distributed")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Column string                `json:"column"`
		Groups []dataset.CategoryRow `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "program", body.Column)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "Clinic", body.Groups[0].Category)
}

func TestCompareEndpoint(t *testing.T) {
	t.Run("valid ranges", func(t *testing.T) {
		rec := get(t, newTestApp(t),
			"/api/compare?start1=2025-01-01&end1=2025-01-31&start2=2025-02-01&end2=2025-02-28&metrics=books_distributed")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Rows []dataset.ComparisonRow `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Rows, 1)
		assert.Equal(t, 10.0, body.Rows[0].Period1)
		assert.Equal(t, 20.0, body.Rows[0].Period2)
		assert.Equal(t, 100.0, body.Rows[0].PercentChange)
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		rec := get(t, newTestApp(t), "/api/compare?start1=nonsense")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTrendEndpoint(t *testing.T) {
	rec := get(t, newTestApp(t), "/api/trend?metric=books_distributed&unit=month")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric    string  `json:"metric"`
		Slope     float64 `json:"slope"`
		Direction string  `json:"direction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "books_distributed", body.Metric)
	assert.Equal(t, "up", body.Direction)
	assert.InDelta(t, 10.0, body.Slope, 1e-9)
}

func TestLoadFailureReturns500(t *testing.T) {
	a, err := NewApp(&fakeProvider{err: errors.New("record store down")})
	require.NoError(t, err)
	rec := get(t, a, "/api/summary")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
