package service

import "time"

// nextTimestampID returns now in milliseconds, bumped past every existing
// id so ids stay unique and increasing even within one millisecond.
func nextTimestampID(now time.Time, existing ...int64) int64 {
	id := now.UnixMilli()
	for _, e := range existing {
		if e >= id {
			id = e + 1
		}
	}
	return id
}

// nextSequentialID returns max(floor, existing...) + 1.
func nextSequentialID(floor int64, existing ...int64) int64 {
	max := floor
	for _, e := range existing {
		if e > max {
			max = e
		}
	}
	return max + 1
}
