package notice

import (
	"strings"
	"time"
)

// Message is one SMS notice from the alert feed.
type Message struct {
	ReceivedAt time.Time `json:"received_at"`
	Text       string    `json:"text"`
}

// Breakdown splits arrival or departure counts by sub-group.
type Breakdown struct {
	Vessel    int `json:"vessel"`
	Passenger int `json:"passenger"`
}

// Total is the sub-grouped notice count.
func (b Breakdown) Total() int { return b.Vessel + b.Passenger }

// Summary holds per-day deduplicated notice counts for a reporting window.
// Arrival and departure counts only include sub-grouped messages.
type Summary struct {
	Cancelled   int       `json:"cancelled"`
	Controlled  int       `json:"controlled"`
	TimeChanged int       `json:"time_changed"`
	Arrivals    Breakdown `json:"arrivals"`
	Departures  Breakdown `json:"departures"`
}

// Total counts every notice event in the summary.
func (s Summary) Total() int {
	return s.Cancelled + s.Controlled + s.TimeChanged + s.Arrivals.Total() + s.Departures.Total()
}

// Summarize aggregates notices received in [from, to], both inclusive.
// Zero bounds yield an empty summary.
func Summarize(msgs []Message, from, to time.Time) Summary {
	if from.IsZero() || to.IsZero() {
		return Summary{}
	}
	return aggregate(msgs, func(m Message) bool {
		return !m.ReceivedAt.Before(from) && !m.ReceivedAt.After(to)
	})
}

// SummarizeDays aggregates a trailing window of whole days ending now,
// according to the package clock.
func SummarizeDays(msgs []Message, days int) Summary {
	if days <= 0 {
		return Summary{}
	}
	now := clock.Now()
	from := now.AddDate(0, 0, -(days - 1))
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	return Summarize(msgs, from, now)
}

// SummarizeYear aggregates one calendar year.
func SummarizeYear(msgs []Message, year int) Summary {
	return aggregate(msgs, func(m Message) bool {
		return m.ReceivedAt.Year() == year
	})
}

type dayCategory struct {
	day string
	cat Category
}

type dayCategoryGroup struct {
	day string
	cat Category
	grp SubGroup
}

func aggregate(msgs []Message, keep func(Message) bool) Summary {
	var sum Summary
	seen := make(map[dayCategory]struct{})
	seenGrouped := make(map[dayCategoryGroup]struct{})

	for _, m := range msgs {
		if m.ReceivedAt.IsZero() || !keep(m) {
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
		day := m.ReceivedAt.Format("2006-01-02")

		if cat == CategoryArrival || cat == CategoryDeparture {
			grp, grouped := SubGroupFor(text, cat)
			if !grouped {
				continue
			}
			key := dayCategoryGroup{day: day, cat: cat, grp: grp}
			if _, dup := seenGrouped[key]; dup {
				continue
			}
			seenGrouped[key] = struct{}{}

			bd := &sum.Arrivals
			if cat == CategoryDeparture {
				bd = &sum.Departures
			}
			if grp == SubGroupVessel {
				bd.Vessel++
			} else {
				bd.Passenger++
			}
			continue
		}

		key := dayCategory{day: day, cat: cat}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		switch cat {
		case CategoryCancel:
			sum.Cancelled++
		case CategoryControl:
			sum.Controlled++
		case CategoryTimeChange:
			sum.TimeChanged++
		}
	}
	return sum
}
