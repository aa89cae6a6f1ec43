// Package dataset loads the dashboard's CSV sources and assembles them
// into immutable snapshots.
//
// Loaders are deliberately forgiving. Municipal exports change column
// order, encoding, and spelling between years, so every loader follows
// coerce-and-drop: malformed rows are dropped and counted, a missing
// file yields an empty table, and nothing short of an unreadable
// directory surfaces as an error. Each loader documents the minimal
// fields it guarantees on the rows it returns; consumers can rely on
// coordinates being numeric and dates being parsed.
//
// The Store owns the current Snapshot. Refreshes are fingerprint-gated
// stat scans, so polling the sources is cheap, and a rebuilt snapshot is
// swapped in atomically.
package dataset
