package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateRange_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		r       DateRange
		wantErr bool
	}{
		{"open range", DateRange{}, false},
		{"from only", DateRange{From: now.Add(-time.Hour)}, false},
		{"to only", DateRange{To: now}, false},
		{"ordered", DateRange{From: now.Add(-time.Hour), To: now}, false},
		{"inverted", DateRange{From: now, To: now.Add(-time.Hour)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilters)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDateBucketFor(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"yesterday", 24 * time.Hour, BucketLast7Days},
		{"two weeks", 14 * 24 * time.Hour, BucketLast30Days},
		{"two months", 60 * 24 * time.Hour, BucketLast3Months},
		{"last year", 365 * 24 * time.Hour, BucketOlder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateBucketFor(now.Add(-tt.age), now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_TypeWeight_Default(t *testing.T) {
	cfg := Config{TypeWeights: map[ContentType]float64{TypeNote: 0.5}}
	assert.Equal(t, 0.5, cfg.TypeWeight(TypeNote))
	assert.Equal(t, 1.0, cfg.TypeWeight(TypeFile))
}
