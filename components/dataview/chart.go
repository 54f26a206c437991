package dataview

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// GroupCount is the number of records sharing one value of a field.
type GroupCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupCounts tallies records by field. Missing values are grouped under "".
func GroupCounts(records []Record, field string) []GroupCount {
	counts := map[string]int{}
	for _, r := range records {
		v, _ := r.Field(field)
		counts[formatScalar(v)]++
	}
	out := make([]GroupCount, 0, len(counts))
	for value, n := range counts {
		out = append(out, GroupCount{Value: value, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// SummaryChart renders a bar chart of record counts per field value.
type SummaryChart struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// SummaryChartOption customizes chart rendering.
type SummaryChartOption func(*SummaryChart)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) SummaryChartOption {
	return func(c *SummaryChart) {
		c.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) SummaryChartOption {
	return func(c *SummaryChart) {
		c.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) SummaryChartOption {
	return func(c *SummaryChart) {
		c.assetsHost = host
	}
}

// NewSummaryChart builds a chart renderer with a five minute cache.
func NewSummaryChart(options ...SummaryChartOption) *SummaryChart {
	c := &SummaryChart{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Render returns chart HTML for the counts of field over records.
func (c *SummaryChart) Render(resource ResourceConfig, field string, records []Record) (string, error) {
	if field == "" {
		return "", fmt.Errorf("dataview: chart field is required")
	}
	groups := GroupCounts(records, field)
	render := func() (string, error) {
		return c.renderBar(resource, field, groups)
	}
	if c.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", resource.Code, field, c.theme, contentHash(groups))
	return c.cache.GetOrRender(key, render)
}

func (c *SummaryChart) renderBar(resource ResourceConfig, field string, groups []GroupCount) (string, error) {
	labels := make([]string, len(groups))
	data := make([]opts.BarData, len(groups))
	for i, g := range groups {
		labels[i] = g.Value
		if labels[i] == "" {
			labels[i] = "(none)"
		}
		data[i] = opts.BarData{Value: g.Count}
	}
	initOpts := opts.Initialization{
		Theme:  c.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: resource.Name, Subtitle: "by " + humanize(field)}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries(humanize(field), data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("dataview: render chart: %w", err)
	}
	return buf.String(), nil
}
