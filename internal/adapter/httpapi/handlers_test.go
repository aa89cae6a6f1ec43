package httpapi_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
)

func TestSnapshotEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID          string         `json:"id"`
		Fingerprint string         `json:"fingerprint"`
		Rows        map[string]int `json:"rows"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "test-snapshot", body.ID)
	assert.Equal(t, "fp", body.Fingerprint)
	assert.Equal(t, 2, body.Rows["accidents"])
	assert.Equal(t, 4, body.Rows["notices"])
	assert.Equal(t, 1, body.Rows["weather_months"])
}

func TestAccidentsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/accidents")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count     int                `json:"count"`
		Years     []int              `json:"years"`
		Accidents []dataset.Accident `json:"accidents"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []int{2023, 2024}, body.Years)
	require.Len(t, body.Accidents, 2)
}

func TestAccidentsEndpointFiltersByYear(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/accidents?year=2024")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count     int                `json:"count"`
		Years     []int              `json:"years"`
		Accidents []dataset.Accident `json:"accidents"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Accidents, 1)
	assert.Equal(t, "도동리 123", body.Accidents[0].Raw)
	assert.Equal(t, []int{2023, 2024}, body.Years, "years always cover the whole snapshot")

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/accidents?year=abc").Code)
}

func TestAccidentPhotoEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	// County prefix is stripped by the region variants before matching.
	rec := getWithQuery(t, srv, "/api/v1/accidents/photo", url.Values{"address": {"울릉군 도동리 123"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Address string `json:"address"`
		Photo   string `json:"photo"`
		Tier    string `json:"tier"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "/photos/accidents/도동리 123.jpg", body.Photo)
	assert.Equal(t, "exact", body.Tier)
}

func TestAccidentPhotoEndpointTokenFallback(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := getWithQuery(t, srv, "/api/v1/accidents/photo", url.Values{"address": {"도동리 123 앞 교차로"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tier string `json:"tier"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "token", body.Tier)
}

func TestAccidentPhotoEndpointErrors(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	miss := getWithQuery(t, srv, "/api/v1/accidents/photo", url.Values{"address": {"사동리 999"}})
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/accidents/photo").Code)
}

func TestAccidentResolveEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := getWithQuery(t, srv, "/api/v1/accidents/resolve", url.Values{"address": {"울릉군 남양리 33"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Index    int              `json:"index"`
		Tier     string           `json:"tier"`
		Accident dataset.Accident `json:"accident"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Index)
	assert.Equal(t, "exact", body.Tier)
	assert.Equal(t, "남양리 33", body.Accident.Raw)

	miss := getWithQuery(t, srv, "/api/v1/accidents/resolve", url.Values{"address": {"저동리 7"}})
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/accidents/resolve").Code)
}

func TestMarkerListEndpoints(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	var rockfalls struct {
		Count     int                `json:"count"`
		Rockfalls []dataset.Rockfall `json:"rockfalls"`
	}
	rec := get(t, srv, "/api/v1/rockfalls")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rockfalls)
	assert.Equal(t, 1, rockfalls.Count)
	assert.Equal(t, "낙석 발생 위치 : 남양리 33 낙석", rockfalls.Rockfalls[0].Label)

	var chargers struct {
		Count    int               `json:"count"`
		Chargers []dataset.Charger `json:"chargers"`
	}
	rec = get(t, srv, "/api/v1/chargers")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &chargers)
	assert.Equal(t, 1, chargers.Count)
	assert.Equal(t, "군청 충전소", chargers.Chargers[0].Name)

	var stops struct {
		Count int `json:"count"`
		Stops []struct {
			Name   string   `json:"name"`
			Routes []string `json:"routes"`
		} `json:"stops"`
	}
	rec = get(t, srv, "/api/v1/stops")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &stops)
	assert.Equal(t, 2, stops.Count)
	assert.Equal(t, "도동정류소", stops.Stops[0].Name)
	assert.Equal(t, []string{"도동 순환"}, stops.Stops[0].Routes)
}

func TestBusRoutesEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/bus/routes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count  int `json:"count"`
		Routes []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Points []struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"points"`
		} `json:"routes"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "route-1", body.Routes[0].ID)
	assert.Len(t, body.Routes[0].Points, 3)
}

func TestBusPositionsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/bus/positions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count     int `json:"count"`
		Positions []struct {
			RouteID string  `json:"route_id"`
			Lat     float64 `json:"lat"`
			Index   int     `json:"index"`
		} `json:"positions"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count, "one simulated vehicle per route by default")
	assert.Equal(t, "route-1", body.Positions[0].RouteID)

	rec = get(t, srv, "/api/v1/bus/positions?per_route=3")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, 3, body.Count)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/bus/positions?per_route=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/bus/positions?per_route=21").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/bus/positions?per_route=abc").Code)
}

func TestNoticeSummaryEndpointByYear(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/notices/summary?year=2025")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Scope   map[string]int `json:"scope"`
		Summary notice.Summary `json:"summary"`
		Total   int            `json:"total"`
	}
	decode(t, rec, &body)
	assert.Equal(t, map[string]int{"year": 2025}, body.Scope)
	assert.Equal(t, 1, body.Summary.Cancelled)
	assert.Equal(t, 1, body.Summary.Controlled)
	assert.Equal(t, 0, body.Summary.TimeChanged)
	assert.Equal(t, notice.Breakdown{Vessel: 1}, body.Summary.Arrivals)
	assert.Equal(t, notice.Breakdown{Passenger: 1}, body.Summary.Departures)
	assert.Equal(t, 4, body.Total)
}

func TestNoticeSummaryEndpointDefaultsToClockYear(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/notices/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Scope map[string]int `json:"scope"`
		Total int            `json:"total"`
	}
	decode(t, rec, &body)
	assert.Equal(t, map[string]int{"year": 2025}, body.Scope)
	assert.Equal(t, 4, body.Total)
}

func TestNoticeSummaryEndpointByDays(t *testing.T) {
	notice.SetClock(clockwork.NewFakeClockAt(testNow))
	defer notice.SetClock(nil)

	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/notices/summary?days=30")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Scope map[string]int `json:"scope"`
		Total int            `json:"total"`
	}
	decode(t, rec, &body)
	assert.Equal(t, map[string]int{"days": 30}, body.Scope)
	assert.Equal(t, 4, body.Total)

	// A window too short to reach the fixture days.
	rec = get(t, srv, "/api/v1/notices/summary?days=1")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, 0, body.Total)
}

func TestNoticeSummaryEndpointErrors(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/notices/summary?year=2025&days=7").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/notices/summary?days=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/notices/summary?year=abc").Code)
}

func TestNoticeLatestEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/notices/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year   int `json:"year"`
		Latest *struct {
			Category string `json:"category"`
			Vessel   string `json:"vessel"`
		} `json:"latest"`
		Arrival *struct {
			Vessel string `json:"vessel"`
			When   string `json:"when"`
		} `json:"arrival"`
		Departure *struct {
			Vessel string `json:"vessel"`
			When   string `json:"when"`
		} `json:"departure"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2025, body.Year)

	require.NotNil(t, body.Latest)
	assert.Equal(t, "출항", body.Latest.Category)
	assert.Equal(t, "씨스타1호", body.Latest.Vessel)

	require.NotNil(t, body.Arrival)
	assert.Equal(t, "미래15호", body.Arrival.Vessel)
	assert.Equal(t, "2025-07-15 10:30", body.Arrival.When)

	require.NotNil(t, body.Departure)
	assert.Equal(t, "씨스타1호", body.Departure.Vessel)
	assert.Equal(t, "2025-07-16 14:00", body.Departure.When)
}

func TestNoticeLatestEndpointEmptyYear(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/notices/latest?year=2024")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year      int `json:"year"`
		Latest    any `json:"latest"`
		Arrival   any `json:"arrival"`
		Departure any `json:"departure"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2024, body.Year)
	assert.Nil(t, body.Latest)
	assert.Nil(t, body.Arrival)
	assert.Nil(t, body.Departure)
}

func TestEnforcementEndpointByYear(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/enforcement?year=2023")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year    int     `json:"year"`
		Monthly [12]int `json:"monthly"`
		Total   int     `json:"total"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2023, body.Year)
	assert.Equal(t, 2, body.Monthly[6], "two July records")
	assert.Equal(t, 1, body.Monthly[7])
	assert.Equal(t, 3, body.Total)
}

func TestEnforcementEndpointByMonth(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/enforcement?month=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Month  int            `json:"month"`
		Yearly map[string]int `json:"yearly"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 7, body.Month)
	assert.Equal(t, map[string]int{"2023": 2}, body.Yearly)
}

func TestEnforcementEndpointErrors(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/enforcement?year=2023&month=7").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/enforcement?month=13").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/enforcement?year=abc").Code)
}

func TestPassengersRecentEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/passengers/recent")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Arrive       dataset.RecentStats `json:"arrive"`
		Depart       dataset.RecentStats `json:"depart"`
		WindowDays   int                 `json:"window_days"`
		ArriveWindow dataset.WindowStats `json:"arrive_window"`
		DepartWindow dataset.WindowStats `json:"depart_window"`
	}
	decode(t, rec, &body)

	require.NotNil(t, body.Arrive.Latest)
	assert.Equal(t, 300, body.Arrive.Latest.Passengers)
	assert.Equal(t, 400, body.Arrive.AvgPassengers)
	require.NotNil(t, body.Arrive.AvgVehicles)
	assert.Equal(t, 23, *body.Arrive.AvgVehicles)

	assert.Equal(t, 150, body.Depart.AvgPassengers)
	assert.Nil(t, body.Depart.AvgVehicles)

	assert.Equal(t, 30, body.WindowDays)
	assert.Equal(t, 1200, body.ArriveWindow.Passengers)
	require.NotNil(t, body.ArriveWindow.Vehicles)
	assert.Equal(t, 70, *body.ArriveWindow.Vehicles)
	assert.Equal(t, 300, body.DepartWindow.Passengers)
	assert.Nil(t, body.DepartWindow.Vehicles)
	assert.Equal(t, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC), body.ArriveWindow.End)
}

func TestPassengersRecentEndpointWindowParam(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/passengers/recent?days=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		WindowDays   int                 `json:"window_days"`
		ArriveWindow dataset.WindowStats `json:"arrive_window"`
		DepartWindow dataset.WindowStats `json:"depart_window"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.WindowDays)
	assert.Equal(t, 300, body.ArriveWindow.Passengers, "single-day window keeps only the latest sailing")
	assert.Equal(t, 100, body.DepartWindow.Passengers)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/passengers/recent?days=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/passengers/recent?days=abc").Code)
}

func TestWeatherMonthlyEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/weather/monthly")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count  int                             `json:"count"`
		Months []dataset.WeatherPassengerMonth `json:"months"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 12.5, body.Months[0].RainMM)
	assert.Equal(t, 1200, body.Months[0].Arrivals)
}

func TestNearestEndpoint(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/nearest?lat=37.4801&lon=130.9001")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Kind      string  `json:"kind"`
		Index     int     `json:"index"`
		DistanceM float64 `json:"distance_m"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "accidents", body.Kind)
	assert.Equal(t, 0, body.Index)
	assert.Greater(t, body.DistanceM, 0.0)
	assert.Less(t, body.DistanceM, 100.0)
}

func TestNearestEndpointStops(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	rec := get(t, srv, "/api/v1/nearest?lat=37.5401&lon=130.8701&kind=stops")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Index int `json:"index"`
		Item  struct {
			Name string `json:"name"`
		} `json:"item"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Index)
	assert.Equal(t, "천부정류장", body.Item.Name)
}

func TestNearestEndpointOutsideRadius(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/nearest?lat=37.8&lon=131.5").Code)
}

func TestNearestEndpointErrors(t *testing.T) {
	srv := newTestServer(&fakeStore{snap: testSnapshot()})

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/nearest?lat=37.48").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/nearest?lat=abc&lon=130.9").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/nearest?lat=37.48&lon=130.9&radius=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/nearest?lat=37.48&lon=130.9&kind=hotels").Code)
}
