package notice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Fallback subjects when no operator or vessel name appears in the text.
const (
	fallbackNoticeName = "공지"
	fallbackVesselName = "선박 정보 없음"
)

// namesByLength holds every operator and vessel name, longest first, so
// extraction prefers the most specific name contained in a message
// (씨스타11호 before 씨스타1호).
var namesByLength = sortNamesByLength()

func sortNamesByLength() []string {
	names := make([]string, 0,
		len(VesselOperators)+len(VesselNames)+len(PassengerOperators)+len(PassengerVessels))
	names = append(names, VesselOperators...)
	names = append(names, VesselNames...)
	names = append(names, PassengerOperators...)
	names = append(names, PassengerVessels...)
	sort.SliceStable(names, func(i, j int) bool {
		return utf8.RuneCountInString(names[i]) > utf8.RuneCountInString(names[j])
	})
	return names
}

// LatestNotice is the most recent classified notice of a year.
type LatestNotice struct {
	Category   Category  `json:"category"`
	ReceivedAt time.Time `json:"received_at"`
	Vessel     string    `json:"vessel"`
	Summary    string    `json:"summary"` // "2025-07-14 08:30 - 씨스타5호"
}

// Latest finds the most recent classified, non-shuttle notice in a year.
// Among equal timestamps the earliest message in input order wins.
func Latest(msgs []Message, year int) (LatestNotice, bool) {
	var (
		best     Message
		bestText string
		bestCat  Category
		found    bool
	)
	for _, m := range msgs {
		if m.ReceivedAt.IsZero() || m.ReceivedAt.Year() != year {
			continue
		}
		text := strings.TrimSpace(m.Text)
		if text == "" || IsShuttle(text) {
			continue
		}
		cat, ok := Classify(text)
		if !ok {
			continue
		}
		if !found || m.ReceivedAt.After(best.ReceivedAt) {
			best, bestText, bestCat, found = m, text, cat, true
		}
	}
	if !found {
		return LatestNotice{}, false
	}

	vessel := extractName(bestText, fallbackNoticeName)
	when := noticeTimeText(bestText, best.ReceivedAt)
	return LatestNotice{
		Category:   bestCat,
		ReceivedAt: best.ReceivedAt,
		Vessel:     vessel,
		Summary:    fmt.Sprintf("%s %s - %s", best.ReceivedAt.Format("2006-01-02"), when, vessel),
	}, true
}

// Event is the most recent arrival or departure movement notice.
type Event struct {
	ReceivedAt time.Time `json:"received_at"`
	Vessel     string    `json:"vessel"`
	When       string    `json:"when"` // "2025-07-14 08:30", message time preferred
}

// EventDirection labels a message with the movement direction only:
// quoted inbound route, then arrival keywords, then departure keywords.
// Unlike Classify it ignores cancel/control vocabulary, so a cancellation
// mentioning a leg still surfaces as that leg's latest mention.
func EventDirection(text string) (Category, bool) {
	if quotedInboundPattern.MatchString(text) {
		return CategoryArrival, true
	}
	if containsAny(text, ArrivalKeywords) {
		return CategoryArrival, true
	}
	if containsAny(text, DepartureKeywords) {
		return CategoryDeparture, true
	}
	return "", false
}

// LatestEvent finds the most recent notice in a year mentioning the given
// movement direction (CategoryArrival or CategoryDeparture).
func LatestEvent(msgs []Message, year int, dir Category) (Event, bool) {
	var (
		best     Message
		bestText string
		found    bool
	)
	for _, m := range msgs {
		if m.ReceivedAt.IsZero() || m.ReceivedAt.Year() != year {
			continue
		}
		text := strings.TrimSpace(m.Text)
		if text == "" || IsShuttle(text) {
			continue
		}
		got, ok := EventDirection(text)
		if !ok || got != dir {
			continue
		}
		if !found || m.ReceivedAt.After(best.ReceivedAt) {
			best, bestText, found = m, text, true
		}
	}
	if !found {
		return Event{}, false
	}
	return Event{
		ReceivedAt: best.ReceivedAt,
		Vessel:     extractName(bestText, fallbackVesselName),
		When: strings.TrimSpace(fmt.Sprintf("%s %s",
			best.ReceivedAt.Format("2006-01-02"), noticeTimeText(bestText, best.ReceivedAt))),
	}, true
}

// extractName finds the longest operator or vessel name contained in the
// text.
func extractName(text, fallback string) string {
	for _, n := range namesByLength {
		if strings.Contains(text, n) {
			return n
		}
	}
	return fallback
}

// noticeTimeText pulls an HH:MM time out of the message (formats like
// "10:30" and "10시30"), zero-padding the hour. Falls back to the receive
// timestamp.
func noticeTimeText(text string, at time.Time) string {
	if m := noticeTimePattern.FindStringSubmatch(text); m != nil {
		if h, err := strconv.Atoi(m[1]); err == nil {
			return fmt.Sprintf("%02d:%s", h, m[2])
		}
	}
	if at.IsZero() {
		return ""
	}
	return at.Format("15:04")
}
