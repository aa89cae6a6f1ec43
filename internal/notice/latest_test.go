package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	t.Run("most recent classified notice wins", func(t *testing.T) {
		msgs := []Message{
			msgAt(t, "2025-07-10 08:00", "결항 안내"),
			msgAt(t, "2025-07-20 10:00", "대저해운 도착시간 10:30"),
			msgAt(t, "2025-07-25 09:00", "오늘의 날씨"),           // unclassified
			msgAt(t, "2025-07-26 09:00", "셔틀버스 결항"),         // shuttle
			msgAt(t, "2024-12-31 09:00", "포항 → 울릉 입항 씨스타1호"), // wrong year
		}

		got, ok := Latest(msgs, 2025)
		require.True(t, ok)
		assert.Equal(t, CategoryArrival, got.Category)
		assert.Equal(t, "대저해운 도착시간", got.Vessel, "longest contained name wins")
		assert.Equal(t, "2025-07-20 10:30 - 대저해운 도착시간", got.Summary)
	})

	t.Run("hour format with 시 separator", func(t *testing.T) {
		msgs := []Message{msgAt(t, "2025-07-14 09:00", "씨스타5호 8시45 입항")}

		got, ok := Latest(msgs, 2025)
		require.True(t, ok)
		assert.Equal(t, "씨스타5호", got.Vessel)
		assert.Equal(t, "2025-07-14 08:45 - 씨스타5호", got.Summary)
	})

	t.Run("receive time when message has none", func(t *testing.T) {
		msgs := []Message{msgAt(t, "2025-07-14 06:20", "결항 안내")}

		got, ok := Latest(msgs, 2025)
		require.True(t, ok)
		assert.Equal(t, CategoryCancel, got.Category)
		assert.Equal(t, "공지", got.Vessel)
		assert.Equal(t, "2025-07-14 06:20 - 공지", got.Summary)
	})

	t.Run("nothing classified", func(t *testing.T) {
		msgs := []Message{
			msgAt(t, "2025-07-14 06:20", "날씨 안내"),
			msgAt(t, "2025-07-15 06:20", "셔틀 결항"),
		}
		_, ok := Latest(msgs, 2025)
		assert.False(t, ok)
	})
}

func TestLatestEvent(t *testing.T) {
	msgs := []Message{
		msgAt(t, "2025-07-01 10:00", "10:00 출항 금광11호"),
		msgAt(t, "2025-07-02 12:00", "여객선 운항합니다"),
		msgAt(t, "2025-07-03 08:00", "포항 → 울릉 08:30 입항 예정"),
	}

	t.Run("latest departure mention", func(t *testing.T) {
		got, ok := LatestEvent(msgs, 2025, CategoryDeparture)
		require.True(t, ok)
		assert.Equal(t, "선박 정보 없음", got.Vessel)
		assert.Equal(t, "2025-07-02 12:00", got.When)
	})

	t.Run("latest arrival mention", func(t *testing.T) {
		got, ok := LatestEvent(msgs, 2025, CategoryArrival)
		require.True(t, ok)
		assert.Equal(t, "2025-07-03 08:30", got.When, "message time beats receive time")
	})

	t.Run("cancelled leg still surfaces as movement mention", func(t *testing.T) {
		cancelled := []Message{msgAt(t, "2025-07-05 07:00", "출항 취소 금광11호")}

		got, ok := LatestEvent(cancelled, 2025, CategoryDeparture)
		require.True(t, ok)
		assert.Equal(t, "금광11호", got.Vessel)
	})

	t.Run("no mention of direction", func(t *testing.T) {
		_, ok := LatestEvent([]Message{msgAt(t, "2025-07-05 07:00", "결항")}, 2025, CategoryArrival)
		assert.False(t, ok)
	})
}
