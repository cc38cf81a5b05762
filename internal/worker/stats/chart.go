package stats

import (
	"bytes"
	"fmt"
	"time"

	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart dimensions and styling constants control the visual appearance
// of the statistics charts.
const (
	// hoursToShow is the number of x-axis ticks to show in the chart.
	hoursToShow = 24

	// titleFontSize sets the size of the chart title text.
	titleFontSize = 12.0
	// xAxisFontSize sets the size of x-axis labels.
	xAxisFontSize = 10.0
	// yAxisFontSize sets the size of y-axis labels.
	yAxisFontSize = 12.0
	// xAxisRotation angles x-axis labels to prevent overlap.
	xAxisRotation = 45.0
	// gridLineWidth controls the thickness of grid lines.
	gridLineWidth = 1.0
	// seriesLineWidth controls the thickness of data lines.
	seriesLineWidth = 3.0
	// seriesDotWidth controls the size of data points.
	seriesDotWidth = 4.0
	// paddingTop adds space above the chart.
	paddingTop = 30
	// paddingBottom adds space below the chart.
	paddingBottom = 30
	// paddingLeft adds space to the left of the chart.
	paddingLeft = 20
	// paddingRight adds space to the right of the chart.
	paddingRight = 20
)

// ChartBuilder renders the last day of hourly snapshots as PNG charts.
type ChartBuilder struct {
	stats []*types.HourlyStats
}

// NewChartBuilder loads hourly statistics to create a new chart builder.
func NewChartBuilder(stats []*types.HourlyStats) *ChartBuilder {
	return &ChartBuilder{
		stats: stats,
	}
}

// Build creates the incident flow and caseload charts.
func (b *ChartBuilder) Build() (*bytes.Buffer, *bytes.Buffer, error) {
	incidentBuffer, err := b.buildIncidentChart()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build incident chart: %w", err)
	}

	caseloadBuffer, err := b.buildCaseloadChart()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build caseload chart: %w", err)
	}

	return incidentBuffer, caseloadBuffer, nil
}

// buildIncidentChart charts how many incidents moved through the system
// each hour.
func (b *ChartBuilder) buildIncidentChart() (*bytes.Buffer, error) {
	xValues, criticalSeries, sensitiveSeries, resolvedSeries, unstaffedSeries := b.prepareIncidentSeries()

	graph := &chart.Chart{
		Title:      "Incident Flow (24h)",
		TitleStyle: b.getTitleStyle(),
		Background: b.getBackgroundStyle(),
		XAxis:      b.getXAxis(b.prepareGridLinesAndTicks()),
		YAxis:      b.getYAxis(),
		Series: []chart.Series{
			b.createSeries("Critical", xValues, criticalSeries, chart.ColorRed),
			b.createSeries("Sensitive", xValues, sensitiveSeries, chart.ColorOrange),
			b.createSeries("Resolved", xValues, resolvedSeries, chart.ColorGreen),
			b.createSeries("Unstaffed", xValues, unstaffedSeries, chart.ColorBlue),
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(graph),
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// buildCaseloadChart charts the standing caseload: active locks, open
// alerts, watchlisted users and pending consents.
func (b *ChartBuilder) buildCaseloadChart() (*bytes.Buffer, error) {
	xValues, locksSeries, alertsSeries, watchlistSeries, consentSeries := b.prepareCaseloadSeries()

	graph := &chart.Chart{
		Title:      "Caseload (24h)",
		TitleStyle: b.getTitleStyle(),
		Background: b.getBackgroundStyle(),
		XAxis:      b.getXAxis(b.prepareGridLinesAndTicks()),
		YAxis:      b.getYAxis(),
		Series: []chart.Series{
			b.createSeries("Locks active", xValues, locksSeries, chart.ColorRed),
			b.createSeries("Alerts open", xValues, alertsSeries, chart.ColorOrange),
			b.createSeries("Watchlisted", xValues, watchlistSeries, chart.ColorGreen),
			b.createSeries("Consents pending", xValues, consentSeries, chart.ColorBlue),
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(graph),
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// prepareIncidentSeries extracts per-hour incident counts.
func (b *ChartBuilder) prepareIncidentSeries() ([]float64, []float64, []float64, []float64, []float64) {
	xValues := make([]float64, hoursToShow)
	criticalSeries := make([]float64, hoursToShow)
	sensitiveSeries := make([]float64, hoursToShow)
	resolvedSeries := make([]float64, hoursToShow)
	unstaffedSeries := make([]float64, hoursToShow)

	statsMap := b.statsByHour()
	now := time.Now().UTC().Truncate(time.Hour)

	for i := range hoursToShow {
		xValues[i] = float64(i)
		timestamp := now.Add(time.Duration(-i) * time.Hour)

		if stat, exists := statsMap[timestamp]; exists {
			idx := hoursToShow - 1 - i
			criticalSeries[idx] = float64(stat.IncidentsCritical)
			sensitiveSeries[idx] = float64(stat.IncidentsSensitive)
			resolvedSeries[idx] = float64(stat.IncidentsResolved)
			unstaffedSeries[idx] = float64(stat.AlertsUnstaffed)
		}
	}

	return xValues, criticalSeries, sensitiveSeries, resolvedSeries, unstaffedSeries
}

// prepareCaseloadSeries extracts per-hour standing caseload counts.
func (b *ChartBuilder) prepareCaseloadSeries() ([]float64, []float64, []float64, []float64, []float64) {
	xValues := make([]float64, hoursToShow)
	locksSeries := make([]float64, hoursToShow)
	alertsSeries := make([]float64, hoursToShow)
	watchlistSeries := make([]float64, hoursToShow)
	consentSeries := make([]float64, hoursToShow)

	statsMap := b.statsByHour()
	now := time.Now().UTC().Truncate(time.Hour)

	for i := range hoursToShow {
		xValues[i] = float64(i)
		timestamp := now.Add(time.Duration(-i) * time.Hour)

		if stat, exists := statsMap[timestamp]; exists {
			idx := hoursToShow - 1 - i
			locksSeries[idx] = float64(stat.LocksActive)
			alertsSeries[idx] = float64(stat.AlertsOpen)
			watchlistSeries[idx] = float64(stat.UsersWatchlisted)
			consentSeries[idx] = float64(stat.ConsentsPending)
		}
	}

	return xValues, locksSeries, alertsSeries, watchlistSeries, consentSeries
}

// statsByHour indexes the loaded snapshots by truncated timestamp.
func (b *ChartBuilder) statsByHour() map[time.Time]*types.HourlyStats {
	statsMap := make(map[time.Time]*types.HourlyStats, len(b.stats))
	for _, stat := range b.stats {
		statsMap[stat.Timestamp.Truncate(time.Hour)] = stat
	}

	return statsMap
}

// prepareGridLinesAndTicks creates grid lines and x-axis labels.
func (b *ChartBuilder) prepareGridLinesAndTicks() ([]chart.GridLine, []chart.Tick) {
	gridLines := make([]chart.GridLine, hoursToShow)
	ticks := make([]chart.Tick, hoursToShow)

	for i := range hoursToShow {
		gridLines[i] = chart.GridLine{Value: float64(i)}

		// Format as hours ago
		hoursAgo := hoursToShow - i
		label := fmt.Sprintf("%dh ago", hoursAgo)

		ticks[i] = chart.Tick{
			Value: float64(i),
			Label: label,
		}
	}

	return gridLines, ticks
}

// getTitleStyle returns styling for the chart title.
func (b *ChartBuilder) getTitleStyle() chart.Style {
	return chart.Style{
		FontSize: titleFontSize,
	}
}

// getBackgroundStyle returns styling for the chart background,
// including padding around all edges.
func (b *ChartBuilder) getBackgroundStyle() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    paddingTop,
			Left:   paddingLeft,
			Right:  paddingRight,
			Bottom: paddingBottom,
		},
	}
}

// getXAxis returns configuration for the x-axis.
func (b *ChartBuilder) getXAxis(gridLines []chart.GridLine, ticks []chart.Tick) chart.XAxis {
	return chart.XAxis{
		Style: chart.Style{
			FontSize:            xAxisFontSize,
			TextRotationDegrees: xAxisRotation,
		},
		GridMajorStyle: chart.Style{
			StrokeColor: chart.ColorAlternateGray,
			StrokeWidth: gridLineWidth,
		},
		GridLines:    gridLines,
		Ticks:        ticks,
		TickPosition: chart.TickPositionUnderTick,
	}
}

// getYAxis returns configuration for the y-axis.
func (b *ChartBuilder) getYAxis() chart.YAxis {
	return chart.YAxis{
		Style: chart.Style{
			FontSize:            yAxisFontSize,
			TextRotationDegrees: 0.0,
		},
		GridMajorStyle: chart.Style{
			StrokeColor: chart.ColorAlternateGray,
			StrokeWidth: gridLineWidth,
		},
		ValueFormatter: func(v any) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.0f", f)
			}

			return ""
		},
	}
}

// createSeries builds a line series for the chart.
func (b *ChartBuilder) createSeries(name string, xValues, yValues []float64, color drawing.Color) chart.Series {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: seriesLineWidth,
			DotColor:    color,
			DotWidth:    seriesDotWidth,
		},
	}
}
