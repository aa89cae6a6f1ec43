package dataset

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// Charger is one EV charging station from the county inventory.
type Charger struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`

	Name    string `json:"name" msgpack:"name"`
	Address string `json:"address" msgpack:"address"`
	Detail  string `json:"detail,omitempty" msgpack:"detail"`

	SlowChargers int `json:"slow_chargers" msgpack:"slow_chargers"`
	FastChargers int `json:"fast_chargers" msgpack:"fast_chargers"`

	SlowAvailable string `json:"slow_available,omitempty" msgpack:"slow_available"`
	FastAvailable string `json:"fast_available,omitempty" msgpack:"fast_available"`
	FastType      string `json:"fast_type,omitempty" msgpack:"fast_type"`

	OpenTime   string `json:"open_time,omitempty" msgpack:"open_time"`
	CloseTime  string `json:"close_time,omitempty" msgpack:"close_time"`
	ParkingFee string `json:"parking_fee,omitempty" msgpack:"parking_fee"`
	Operator   string `json:"operator,omitempty" msgpack:"operator"`
	Phone      string `json:"phone,omitempty" msgpack:"phone"`

	// Label is the marker popup text.
	Label string `json:"label" msgpack:"label"`
}

const (
	chargerFallbackName = "충전소"
	chargerFallbackAddr = "주소 미상"
)

// LoadChargers reads the fixed charger inventory file. The display
// address prefers the road address, then the lot address, then the
// location detail.
func (l *Loader) LoadChargers(path string) []Charger {
	tbl, err := readTable(path)
	if err != nil {
		l.log.Warn("charger file unreadable", "file", path, "error", err)
		return nil
	}

	latIdx := tbl.col("위도", "latitude", "Latitude", "lat")
	lonIdx := tbl.col("경도", "longitude", "Longitude", "lon")
	if latIdx < 0 || lonIdx < 0 {
		return nil
	}

	nameIdx := tbl.col("충전소명")
	detailIdx := tbl.col("충전소위치상세")
	roadIdx := tbl.col("소재지도로명주소")
	lotIdx := tbl.col("소재지지번주소")

	var out []Charger
	dropped := 0
	for _, row := range tbl.rows {
		lat, okLat := parseFloat(get(row, latIdx))
		lon, okLon := parseFloat(get(row, lonIdx))
		if !okLat || !okLon {
			dropped++
			continue
		}

		name := get(row, nameIdx)
		detail := get(row, detailIdx)
		address := firstText(get(row, roadIdx), get(row, lotIdx), detail)

		labelName := name
		if labelName == "" {
			labelName = chargerFallbackName
		}
		labelAddr := address
		if labelAddr == "" {
			labelAddr = chargerFallbackAddr
		}

		slow, _ := parseCount(get(row, tbl.col("완속충전기대수")))
		fast, _ := parseCount(get(row, tbl.col("급속충전기대수")))

		out = append(out, Charger{
			Lat:           lat,
			Lon:           lon,
			Name:          labelName,
			Address:       labelAddr,
			Detail:        detail,
			SlowChargers:  slow,
			FastChargers:  fast,
			SlowAvailable: get(row, tbl.col("완속충전가능여부")),
			FastAvailable: get(row, tbl.col("급속충전가능여부")),
			FastType:      get(row, tbl.col("급속충전타입구분")),
			OpenTime:      get(row, tbl.col("이용가능시작시각")),
			CloseTime:     get(row, tbl.col("이용가능종료시각")),
			ParkingFee:    get(row, tbl.col("주차료부과여부")),
			Operator:      get(row, tbl.col("관리업체명")),
			Phone:         normalizePhone(get(row, tbl.col("관리업체전화번호"))),
			Label:         fmt.Sprintf("충전소 : %s<br/>주소 : %s", labelName, labelAddr),
		})
	}

	l.log.Debug("chargers loaded", "file", path, "rows", len(out), "dropped", dropped)
	return out
}

func firstText(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizePhone formats a Korean number nationally (054-790-6642 style).
// Numbers libphonenumber rejects are kept verbatim; the inventory has a
// few entries that are extensions or free-form notes.
func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, "KR")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}
