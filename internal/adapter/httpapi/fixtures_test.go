package httpapi_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ulleunglab/transport-dashboard/internal/adapter/httpapi"
	"github.com/ulleunglab/transport-dashboard/internal/busroute"
	"github.com/ulleunglab/transport-dashboard/internal/dataset"
	"github.com/ulleunglab/transport-dashboard/internal/geo"
	"github.com/ulleunglab/transport-dashboard/internal/notice"
	"github.com/ulleunglab/transport-dashboard/internal/observability"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

// testNow anchors the fake clock inside the fixture year.
var testNow = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	snap     *dataset.Snapshot
	readyErr error
}

func (f *fakeStore) Snapshot() *dataset.Snapshot            { return f.snap }
func (f *fakeStore) CheckReadiness(_ context.Context) error { return f.readyErr }

func intp(v int) *int { return &v }

// testSnapshot builds a snapshot with one or two rows per source, enough
// to exercise every endpoint without touching the filesystem.
func testSnapshot() *dataset.Snapshot {
	accidents := []dataset.Accident{
		{Raw: "도동리 123", Detail: "차대차", Normalized: "도동리 123", Type: "차대차", Year: 2024, Lat: 37.48, Lon: 130.90},
		{Raw: "남양리 33", Detail: "차대사람", Normalized: "남양리 33", Type: "차대사람", Year: 2023, Lat: 37.46, Lon: 130.83},
	}

	photos := textmatch.NewIndex[string]()
	photos.Insert(textmatch.Normalize("도동리 123"), "/photos/accidents/도동리 123.jpg")

	rockPhotos := textmatch.NewIndex[string]()
	rockPhotos.Insert(textmatch.Normalize("남양리 33 낙석"), "/photos/rockfalls/남양리 33 낙석.jpg")

	routes := []busroute.Route{{
		ID:    "route-1",
		Name:  "도동 순환",
		Color: "#ff0000",
		Points: []geo.Point{
			{Lat: 37.48, Lon: 130.90},
			{Lat: 37.49, Lon: 130.91},
			{Lat: 37.50, Lon: 130.92},
		},
	}}

	day := func(d int) time.Time { return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC) }
	at := func(d, h, min int) time.Time { return time.Date(2025, 7, d, h, min, 0, 0, time.UTC) }

	return &dataset.Snapshot{
		ID:          "test-snapshot",
		RefreshedAt: testNow,
		Fingerprint: "fp",
		Accidents:   accidents,
		Chargers: []dataset.Charger{
			{Lat: 37.484, Lon: 130.905, Name: "군청 충전소", Address: "울릉군 도동길 1", SlowChargers: 2},
		},
		Rockfalls: []dataset.Rockfall{
			{Lat: 37.46, Lon: 130.83, Address: "남양리 33 낙석", Label: "낙석 발생 위치 : 남양리 33 낙석"},
		},
		StopInfos: []busroute.StopInfo{
			{Name: "도동정류소", Lat: 37.48, Lon: 130.90, Routes: []string{"도동 순환"}},
			{Name: "천부정류장", Lat: 37.54, Lon: 130.87, Routes: []string{"도동 순환"}},
		},
		Routes: routes,
		Enforcement: []dataset.Enforcement{
			{When: at(14, 10, 30), Year: 2023, Month: 7},
			{When: at(15, 9, 0), Year: 2023, Month: 7},
			{When: at(1, 8, 0), Year: 2023, Month: 8},
			{When: at(5, 8, 0), Year: 2024, Month: 1},
		},
		Weather: []dataset.WeatherPassengerMonth{
			{Month: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), RainMM: 12.5, Arrivals: 1200, Departures: 1100},
		},
		Arrivals: []dataset.PassengerDay{
			{Date: day(14), Passengers: 500, Vehicles: intp(40)},
			{Date: day(15), Passengers: 400, Vehicles: intp(20)},
			{Date: day(16), Passengers: 300, Vehicles: intp(10)},
		},
		Departures: []dataset.PassengerDay{
			{Date: day(15), Passengers: 200},
			{Date: day(16), Passengers: 100},
		},
		Notices: []notice.Message{
			{ReceivedAt: at(14, 8, 30), Text: "[울릉알리미] 기상악화로 씨스타5호 금일 운항이 취소되었습니다."},
			{ReceivedAt: at(15, 7, 0), Text: "[울릉알리미] 풍랑주의보 발효로 전 항로 운항통제 되었습니다."},
			{ReceivedAt: at(15, 9, 0), Text: "[울릉알리미] 미래15호 포항→울릉 10:30 입항 예정입니다."},
			{ReceivedAt: at(16, 12, 0), Text: "[울릉알리미] 씨스타1호 울릉(사동항)→포항(영일만항) 14:00 출항합니다."},
		},
		AccidentIndex:  dataset.IndexAccidents(accidents),
		AccidentPhotos: photos,
		RockfallPhotos: rockPhotos,
	}
}

func newTestAPI(store *fakeStore) *httpapi.API {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	return httpapi.NewAPIWithClock(store, logger, metrics, clockwork.NewFakeClockAt(testNow))
}

// newTestServer builds a server around a canned snapshot with a rate
// limit high enough to stay invisible.
func newTestServer(store *fakeStore) *httpapi.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewServer(":0", newTestAPI(store), logger, 1000, 1000)
}
