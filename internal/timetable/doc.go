// Package timetable turns departure timetable pages into flight entries.
//
// The pipeline stages live here: the Extractor scans a page into candidate rows,
// Policy decides which flight numbers are worth keeping, and the Aggregator merges
// candidates from every page into one deduplicated, sorted flight list.
package timetable
