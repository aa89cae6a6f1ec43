package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
		ok   bool
	}{
		{"weather cancellation", "기상악화로 결항 되었습니다", CategoryCancel, true},
		{"cancel beats arrival keyword", "10:30 입항 결항되었습니다", CategoryCancel, true},
		{"cancel via 취소", "금일 운항 취소 안내", CategoryCancel, true},
		{"control", "기상특보로 운항 통제 중입니다", CategoryControl, true},
		{"control beats departure keyword", "출항 운항통제 안내", CategoryControl, true},
		{"time change beats departure keyword", "출항 시간 변경 안내", CategoryTimeChange, true},
		{"quoted inbound route", "포항 → 울릉 입항 예정시간 10:30, 금광11호", CategoryArrival, true},
		{"quoted inbound with ascii arrow", `"포항" -> 울릉 운항합니다`, CategoryArrival, true},
		{"inbound route beats round trip mention", "울릉 → 포항 출발 후 포항 → 울릉 입항", CategoryArrival, true},
		{"arrival keyword fallback", "씨스타5호 10:30 도착 예정", CategoryArrival, true},
		{"departure keyword fallback", "금광11호 08:00 출항합니다", CategoryDeparture, true},
		{"both direction keywords stay unclassified", "입항 및 출항 일정 안내", "", false},
		{"plain chatter", "오늘 날씨 안내", "", false},
		{"empty text", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRoutePosition(t *testing.T) {
	// The tight quoted inbound pattern must miss for the positional rule to
	// decide, so these use 포항발/울릉발 phrasing.
	t.Run("departure mentioned first wins", func(t *testing.T) {
		got, ok := Classify("울릉발 → 포항 운항 후 포항발 → 울릉")
		require.True(t, ok)
		assert.Equal(t, CategoryDeparture, got)
	})

	t.Run("arrival mentioned first wins", func(t *testing.T) {
		got, ok := Classify("포항발 → 울릉 도착 후 울릉발 → 포항")
		require.True(t, ok)
		assert.Equal(t, CategoryArrival, got)
	})

	t.Run("single outbound pattern", func(t *testing.T) {
		got, ok := Classify("울릉발 → 포항 여객선 안내")
		require.True(t, ok)
		assert.Equal(t, CategoryDeparture, got)
	})
}

func TestRulesOrder(t *testing.T) {
	names := make([]string, 0, len(Rules()))
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"cancel",
		"control",
		"time-change",
		"quoted-inbound-route",
		"route-pattern-position",
		"direction-keywords",
	}, names)
}

func TestSubGroupFor(t *testing.T) {
	tests := []struct {
		name string
		text string
		cat  Category
		want SubGroup
		ok   bool
	}{
		{"freight vessel name", "포항 → 울릉 입항 예정시간 10:30, 금광11호", CategoryArrival, SubGroupVessel, true},
		{"cargo term", "차량 선적 출항합니다", CategoryDeparture, SubGroupVessel, true},
		{"passenger vessel", "씨스타1호 입항", CategoryArrival, SubGroupPassenger, true},
		{"passenger term", "탑승인원 안내 출항", CategoryDeparture, SubGroupPassenger, true},
		{"vessel checked before passenger", "화물 및 여객 안내 입항", CategoryArrival, SubGroupVessel, true},
		{"no keywords", "10:30 입항 예정", CategoryArrival, "", false},
		{"cancel never sub-grouped", "금광11호 결항", CategoryCancel, "", false},
		{"control never sub-grouped", "씨스타1호 운항통제", CategoryControl, "", false},
		{"time change never sub-grouped", "금광11호 시간변경", CategoryTimeChange, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubGroupFor(tt.text, tt.cat)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsShuttle(t *testing.T) {
	assert.True(t, IsShuttle("도동 셔틀버스 운행 안내"))
	assert.False(t, IsShuttle("포항 → 울릉 입항"))
}
