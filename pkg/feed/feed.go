// Package feed holds the notification list rules shared by the API and its clients:
// how a pushed entry merges into a loaded list and when a read entry stops being shown.
package feed

import (
	"sort"
	"time"
)

// DefaultRetention is how long a read notification stays visible.
const DefaultRetention = 30 * 24 * time.Hour

// Entry is anything that can live in a notification feed.
type Entry interface {
	FeedID() int64
	FeedTime() time.Time
	FeedReadAt() *time.Time
}

// Merge folds incoming into existing. Entries are keyed by FeedID; an incoming entry replaces
// an existing one with the same id. The result is ordered newest first, ties broken by id.
func Merge[T Entry](existing []T, incoming ...T) []T {
	index := make(map[int64]int, len(existing)+len(incoming))
	out := make([]T, 0, len(existing)+len(incoming))
	for _, list := range [][]T{existing, incoming} {
		for _, e := range list {
			if i, ok := index[e.FeedID()]; ok {
				out[i] = e
				continue
			}
			index[e.FeedID()] = len(out)
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].FeedTime(), out[j].FeedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].FeedID() > out[j].FeedID()
	})
	return out
}

// Expired reports whether e was read more than retention before now. Unread entries never expire.
func Expired(e Entry, now time.Time, retention time.Duration) bool {
	readAt := e.FeedReadAt()
	if readAt == nil {
		return false
	}
	return readAt.Before(Cutoff(now, retention))
}

// Cutoff is the oldest read time still visible at now. Stores filter with read_at >= Cutoff.
func Cutoff(now time.Time, retention time.Duration) time.Time {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return now.Add(-retention)
}

// Visible returns the entries of list that have not expired, preserving order.
func Visible[T Entry](list []T, now time.Time, retention time.Duration) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if !Expired(e, now, retention) {
			out = append(out, e)
		}
	}
	return out
}
