package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTimestampID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name     string
		existing []int64
		want     int64
	}{
		{name: "no existing ids", want: 1_700_000_000_000},
		{name: "older ids", existing: []int64{1, 1_600_000_000_000}, want: 1_700_000_000_000},
		{name: "same millisecond", existing: []int64{1_700_000_000_000}, want: 1_700_000_000_001},
		{name: "clock behind", existing: []int64{1_800_000_000_000}, want: 1_800_000_000_001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextTimestampID(now, tt.existing...))
		})
	}
}

func TestNextSequentialID(t *testing.T) {
	assert.Equal(t, int64(1001), nextSequentialID(1000))
	assert.Equal(t, int64(1001), nextSequentialID(1000, 3, 7))
	assert.Equal(t, int64(1043), nextSequentialID(1000, 1042, 1001))
	assert.Equal(t, int64(1), nextSequentialID(0))
}
