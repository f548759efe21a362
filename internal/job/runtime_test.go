package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubarchive/ingestion/internal/models"
)

func TestDescribeWindow_Weekdays(t *testing.T) {
	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4},
		StartHour:  9,
	}
	expr, err := DescribeWindow(cfg)
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * 1,2,3,4,5", expr)
}

func TestDescribeWindow_WeekendsIncludeSunday(t *testing.T) {
	cfg := &models.SchedulerConfig{
		ActiveDays: []int{5, 6},
		StartHour:  12,
	}
	expr, err := DescribeWindow(cfg)
	require.NoError(t, err)
	assert.Equal(t, "0 12 * * 6,0", expr)
}
