package notice

import (
	"regexp"
	"strings"
)

// Category is a notice classification. Values are the Korean labels the
// dashboard displays, so they serialize directly.
type Category string

const (
	CategoryCancel     Category = "결항"
	CategoryControl    Category = "운항통제"
	CategoryTimeChange Category = "시간변경"
	CategoryArrival    Category = "입항"
	CategoryDeparture  Category = "출항"
)

// SubGroup splits arrival/departure notices by what they count.
type SubGroup string

const (
	SubGroupVessel    SubGroup = "선박"
	SubGroupPassenger SubGroup = "사람"
)

// Rule is one step of the classification cascade.
type Rule struct {
	Name  string
	Match func(text string) (Category, bool)
}

// cascade is the classification order. Earlier rules outrank later ones;
// changing this order changes classifications.
var cascade = []Rule{
	{Name: "cancel", Match: keywordRule(CancelKeywords, CategoryCancel)},
	{Name: "control", Match: keywordRule(ControlKeywords, CategoryControl)},
	{Name: "time-change", Match: keywordRule(TimeChangeKeywords, CategoryTimeChange)},
	{Name: "quoted-inbound-route", Match: quotedInboundRule},
	{Name: "route-pattern-position", Match: routePositionRule},
	{Name: "direction-keywords", Match: directionKeywordRule},
}

// Rules exposes the cascade in evaluation order.
func Rules() []Rule { return cascade }

// Classify assigns at most one category to a message text. Returns false
// for empty text and for text no rule claims.
func Classify(text string) (Category, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, r := range cascade {
		if cat, ok := r.Match(text); ok {
			return cat, true
		}
	}
	return "", false
}

// SubGroupFor classifies the vessel/passenger sub-group of an arrival or
// departure notice. Every other category returns false: cancellations and
// controls never carry a sub-group.
func SubGroupFor(text string, cat Category) (SubGroup, bool) {
	if cat != CategoryArrival && cat != CategoryDeparture {
		return "", false
	}
	if containsAny(text, VesselOperators) || containsAny(text, VesselNames) || containsAny(text, CargoTerms) {
		return SubGroupVessel, true
	}
	if containsAny(text, PassengerOperators) || containsAny(text, PassengerVessels) || containsAny(text, PassengerTerms) {
		return SubGroupPassenger, true
	}
	return "", false
}

// IsShuttle reports whether a message is a shuttle bus notice. Shuttle
// notices are excluded before any classification.
func IsShuttle(text string) bool {
	return strings.Contains(text, shuttleMarker)
}

func keywordRule(keywords []string, cat Category) func(string) (Category, bool) {
	return func(text string) (Category, bool) {
		if containsAny(text, keywords) {
			return cat, true
		}
		return "", false
	}
}

func quotedInboundRule(text string) (Category, bool) {
	if quotedInboundPattern.MatchString(text) {
		return CategoryArrival, true
	}
	return "", false
}

// routePositionRule compares the earliest match position of the arrival and
// departure route patterns. Departure wins only when its match starts
// strictly before arrival's; ties go to arrival. Round-trip notices mention
// both legs and operators lead with the leg the notice is about — an
// observed convention, not a documented rule.
func routePositionRule(text string) (Category, bool) {
	arrivePos := earliestMatch(arrivalRoutePatterns, text)
	departPos := earliestMatch(departureRoutePatterns, text)
	switch {
	case arrivePos >= 0 && departPos >= 0:
		if departPos < arrivePos {
			return CategoryDeparture, true
		}
		return CategoryArrival, true
	case departPos >= 0:
		return CategoryDeparture, true
	case arrivePos >= 0:
		return CategoryArrival, true
	}
	return "", false
}

// directionKeywordRule refuses ambiguous messages: both directions without
// a route pattern means the message stays unclassified.
func directionKeywordRule(text string) (Category, bool) {
	hasArrive := containsAny(text, ArrivalKeywords)
	hasDepart := containsAny(text, DepartureKeywords)
	switch {
	case hasArrive && !hasDepart:
		return CategoryArrival, true
	case hasDepart && !hasArrive:
		return CategoryDeparture, true
	}
	return "", false
}

func earliestMatch(patterns []*regexp.Regexp, text string) int {
	pos := -1
	for _, p := range patterns {
		if loc := p.FindStringIndex(text); loc != nil {
			if pos < 0 || loc[0] < pos {
				pos = loc[0]
			}
		}
	}
	return pos
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
