package domain

import "github.com/shopspring/decimal"

// ChartKind selects how aggregated data is drawn
type ChartKind string

const (
	ChartKindBar ChartKind = "bar"
	ChartKindPie ChartKind = "pie"
)

// ChartSeries is one coloured series of a bar chart
type ChartSeries struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// ChartBar is one category on the x axis with a value per series key
type ChartBar struct {
	Label  string                     `json:"label"`
	Values map[string]decimal.Decimal `json:"values"`
}

// PieSlice is one slice of a pie chart
type PieSlice struct {
	Name    string          `json:"name"`
	Legend  string          `json:"legend"`
	Color   string          `json:"color"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// Chart is a renderer-neutral chart description
type Chart struct {
	Kind   ChartKind       `json:"kind"`
	Title  string          `json:"title"`
	Series []ChartSeries   `json:"series,omitempty"`
	Bars   []ChartBar      `json:"bars,omitempty"`
	Slices []PieSlice      `json:"slices,omitempty"`
	Total  decimal.Decimal `json:"total"`
}
