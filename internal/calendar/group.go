package calendar

import "time"

// GroupByDate buckets items by calendar day (YYYY-MM-DD). Items keep their input
// order inside a bucket.
func GroupByDate[T any](items []T, dateOf func(T) time.Time) map[string][]T {
	grouped := make(map[string][]T)
	for _, item := range items {
		key := Key(dateOf(item))
		grouped[key] = append(grouped[key], item)
	}
	return grouped
}
