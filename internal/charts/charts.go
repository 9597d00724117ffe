// Package charts renders analysis results as interactive HTML charts.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Series colors, p1 first
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "On-curve castability",
		Width:      "1100px",
		Height:     "550px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75"},
	}
}

// Series names.
const (
	SeriesP1 = "Castable with lands in hand (%)"
	SeriesP2 = "Castable on curve (%)"
)

// ErrNoSpells is returned when a result has nothing to plot.
var ErrNoSpells = errors.New("no spells to chart")

// NewCastabilityChart builds a grouped bar chart with one p1 and one p2 bar
// per spell, ordered by mana value.
func NewCastabilityChart(result *curve.Result, config ChartConfig) (*charts.Bar, error) {
	spells := result.Sorted()
	if len(spells) == 0 {
		return nil, ErrNoSpells
	}
	if len(config.Colors) < 2 {
		config.Colors = DefaultChartConfig().Colors
	}

	subtitle := config.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d cards, %d lands, %.2f lands in opening hand on average",
			result.DeckSize, result.LandCount, result.AverageLands)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
			Top:  "bottom",
		}),
		charts.WithColorsOpts(opts.Colors{config.Colors[0], config.Colors[1]}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 35, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "%",
			Min:  0,
			Max:  100,
		}),
	)

	labels := make([]string, len(spells))
	p1 := make([]opts.BarData, len(spells))
	p2 := make([]opts.BarData, len(spells))
	for i, s := range spells {
		labels[i] = fmt.Sprintf("%s (%d)", s.Name, s.ManaValue)
		p1[i] = opts.BarData{Name: s.Name, Value: round2(s.P1)}
		p2[i] = opts.BarData{Name: s.Name, Value: round2(s.P2)}
	}

	bar.SetXAxis(labels).
		AddSeries(SeriesP1, p1).
		AddSeries(SeriesP2, p2).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return bar, nil
}

// RenderCastability writes the castability chart as an HTML page to w.
func RenderCastability(w io.Writer, result *curve.Result, config ChartConfig) error {
	bar, err := NewCastabilityChart(result, config)
	if err != nil {
		return err
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteCastability renders the castability chart to outputPath.
func WriteCastability(result *curve.Result, config ChartConfig, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := RenderCastability(f, result, config); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
