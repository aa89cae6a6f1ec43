// Package notice classifies municipal alert SMS messages about ferry
// traffic between Pohang and Ulleung island.
//
// # Data Source
//
// Messages come from the 울릉알리미 (Ulleung Alert) SMS archive, exported as
// CSV with a receive timestamp and free text. The texts are written by hand
// by several ferry operators and the county office, with no shared format:
// the same event appears as "포항→울릉 입항 예정", "썬라이즈호 10:30 도착",
// or a full sentence. Shuttle bus notices reuse the same vocabulary and are
// excluded up front by the literal marker 셔틀.
//
// # Categories and Precedence
//
// Each message gets at most one category, decided by an ordered rule
// cascade (see [Rules]):
//
//	결항 (cancel)      > 운항통제 (control) > 시간변경 (time change)
//	> quoted inbound route (포항→울릉, arrow variants ->, →, ➡, >)
//	> route pattern position > direction keywords
//
// Cancel outranks everything because operators routinely write "10:30 출항
// 결항" — a cancellation that mentions the leg it cancels. When both the
// arrival and the departure route pattern match one message (round-trip
// notices), the pattern whose match starts first in the string decides;
// a departure wins only on a strictly earlier position, ties go to
// arrival. This mirrors how operators lead with the leg the notice is
// about, but it is convention observed in the data, not a documented rule.
// The final keyword step refuses to guess: a message containing both
// arrival and departure keywords without any route pattern stays
// unclassified.
//
// # Sub-groups
//
// Arrival and departure notices split into 선박 (vessel: freight operators,
// freight vessel names, cargo terms) and 사람 (passenger: passenger
// operators, passenger vessel names, boarding terms). Vessel keywords are
// checked first; a message hitting neither set is excluded from sub-group
// aggregates. Cancel, control, and time-change notices never carry a
// sub-group.
//
// # Aggregation
//
// Counts model "one notice event per day", not message volume: operators
// resend the same cancellation several times a day. Cancel, control, and
// time-change deduplicate on (day, category); arrival and departure on
// (day, category, sub-group). Arrival and departure totals are the sums of
// their sub-group breakdowns.
package notice
