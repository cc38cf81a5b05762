package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/worker/stats"
)

func TestChartBuilderBuild(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Hour)
	rows := make([]*types.HourlyStats, 0, 24)

	for i := range 24 {
		rows = append(rows, &types.HourlyStats{
			Timestamp:          now.Add(time.Duration(-i) * time.Hour),
			LocksActive:        int64(3 + i),
			LocksOpened:        int64(i % 4),
			IncidentsCritical:  int64(i % 3),
			IncidentsSensitive: int64(i % 5),
			IncidentsResolved:  int64(i % 2),
			AlertsOpen:         int64(1 + i%6),
			AlertsUnstaffed:    int64(i % 2),
			ConsentsPending:    int64(10 + i),
			UsersWatchlisted:   int64(i),
		})
	}

	incidentChart, caseloadChart, err := stats.NewChartBuilder(rows).Build()
	require.NoError(t, err)

	pngHeader := []byte("\x89PNG")
	assert.True(t, len(incidentChart.Bytes()) > len(pngHeader))
	assert.True(t, len(caseloadChart.Bytes()) > len(pngHeader))
	assert.Equal(t, pngHeader, incidentChart.Bytes()[:len(pngHeader)])
	assert.Equal(t, pngHeader, caseloadChart.Bytes()[:len(pngHeader)])
}

func TestChartBuilderEmptyStats(t *testing.T) {
	t.Parallel()

	incidentChart, caseloadChart, err := stats.NewChartBuilder(nil).Build()
	require.NoError(t, err)
	assert.NotEmpty(t, incidentChart.Bytes())
	assert.NotEmpty(t, caseloadChart.Bytes())
}
