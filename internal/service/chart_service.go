package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-dashboard/internal/domain"
	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
)

// Chart colours, in series order
const (
	ColorIncome      = "#22c55e"
	ColorExpense     = "#ef4444"
	ColorDebtPay     = "#facc15"
	ColorDebtReceive = "#3b82f6"
)

// PNG rendering bounds
const (
	DefaultChartWidth  = 800
	DefaultChartHeight = 400
	MaxChartDimension  = 2000
)

// Chart titles
const (
	TitleTopDescriptions = "Top descriptions"
	TitleTypeTotals      = "Totals by type"
	TitleYearly          = "Yearly income vs expense"
)

var descriptionSeries = []domain.ChartSeries{
	{Key: "income", Label: "Income", Color: ColorIncome},
	{Key: "expense", Label: "Expense", Color: ColorExpense},
	{Key: "debt_pay", Label: "Debt Pay", Color: ColorDebtPay},
	{Key: "debt_receive", Label: "Debt Receive", Color: ColorDebtReceive},
}

var yearlySeries = []domain.ChartSeries{
	{Key: "income", Label: "Income", Color: ColorIncome},
	{Key: "expense", Label: "Expense", Color: ColorExpense},
}

// pieLegends shortens slice names for the legend only
var pieLegends = map[string]string{
	"Income":       "Income",
	"Expense":      "Expense",
	"Debt Pay":     "debt pay",
	"Debt Receive": "debt Recv",
}

var hundred = decimal.NewFromInt(100)

// ChartService turns aggregates into chart descriptions and PNG images
type ChartService struct{}

// NewChartService creates a new ChartService
func NewChartService() *ChartService {
	return &ChartService{}
}

// DescriptionChart charts the top descriptions. Compact layouts get a pie of the
// four type totals; wide layouts get one bar group per description.
func (s *ChartService) DescriptionChart(aggs []*domain.DescriptionAggregate, compact bool) *domain.Chart {
	if compact {
		return typeTotalsPie(aggs)
	}

	chart := &domain.Chart{
		Kind:   domain.ChartKindBar,
		Title:  TitleTopDescriptions,
		Series: descriptionSeries,
		Bars:   make([]domain.ChartBar, 0, len(aggs)),
		Total:  decimal.Zero,
	}
	for _, agg := range aggs {
		chart.Bars = append(chart.Bars, domain.ChartBar{
			Label: agg.Description,
			Values: map[string]decimal.Decimal{
				"income":       agg.Income,
				"expense":      agg.Expense,
				"debt_pay":     agg.DebtPay,
				"debt_receive": agg.DebtReceive,
			},
		})
		chart.Total = chart.Total.Add(agg.Total())
	}
	return chart
}

func typeTotalsPie(aggs []*domain.DescriptionAggregate) *domain.Chart {
	var income, expense, debtPay, debtReceive decimal.Decimal
	for _, agg := range aggs {
		income = income.Add(agg.Income)
		expense = expense.Add(agg.Expense)
		debtPay = debtPay.Add(agg.DebtPay)
		debtReceive = debtReceive.Add(agg.DebtReceive)
	}
	values := []decimal.Decimal{income, expense, debtPay, debtReceive}
	total := income.Add(expense).Add(debtPay).Add(debtReceive)

	slices := make([]domain.PieSlice, 0, len(values))
	for i, series := range descriptionSeries {
		percent := decimal.Zero
		if !total.IsZero() {
			percent = values[i].Div(total).Mul(hundred).Round(1)
		}
		slices = append(slices, domain.PieSlice{
			Name:    series.Label,
			Legend:  pieLegends[series.Label],
			Color:   series.Color,
			Value:   values[i],
			Percent: percent,
		})
	}

	return &domain.Chart{
		Kind:   domain.ChartKindPie,
		Title:  TitleTypeTotals,
		Slices: slices,
		Total:  total,
	}
}

// YearlyChart charts income and expense per year. It is always a bar chart.
func (s *ChartService) YearlyChart(years []*domain.YearAggregate) *domain.Chart {
	chart := &domain.Chart{
		Kind:   domain.ChartKindBar,
		Title:  TitleYearly,
		Series: yearlySeries,
		Bars:   make([]domain.ChartBar, 0, len(years)),
		Total:  decimal.Zero,
	}
	for _, y := range years {
		chart.Bars = append(chart.Bars, domain.ChartBar{
			Label: strconv.Itoa(y.Year),
			Values: map[string]decimal.Decimal{
				"income":  y.Income,
				"expense": y.Expense,
			},
		})
		chart.Total = chart.Total.Add(y.Income).Add(y.Expense)
	}
	return chart
}

// RenderPNG draws the chart onto a white canvas and encodes it as PNG.
// Out-of-range dimensions fall back to the defaults.
func (s *ChartService) RenderPNG(chart *domain.Chart, width, height int) ([]byte, error) {
	if width <= 0 || width > MaxChartDimension {
		width = DefaultChartWidth
	}
	if height <= 0 || height > MaxChartDimension {
		height = DefaultChartHeight
	}

	canvas := imaging.New(width, height, color.White)
	switch chart.Kind {
	case domain.ChartKindPie:
		canvas = drawPie(canvas, chart.Slices)
	default:
		canvas = drawBars(canvas, chart.Series, chart.Bars)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	chartMargin  = 20
	legendHeight = 24
	legendSwatch = 12
)

var axisColor = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

func drawBars(canvas *image.NRGBA, series []domain.ChartSeries, bars []domain.ChartBar) *image.NRGBA {
	width := canvas.Bounds().Dx()
	height := canvas.Bounds().Dy()
	plotW := width - 2*chartMargin
	plotH := height - 2*chartMargin - legendHeight
	baseY := chartMargin + legendHeight + plotH

	canvas = drawLegend(canvas, series)
	canvas = imaging.Paste(canvas, imaging.New(plotW, 1, axisColor), image.Pt(chartMargin, baseY))

	if len(bars) == 0 || len(series) == 0 || plotW <= 0 || plotH <= 0 {
		return canvas
	}

	maxValue := 0.0
	for _, bar := range bars {
		for _, sr := range series {
			if v := bar.Values[sr.Key].InexactFloat64(); v > maxValue {
				maxValue = v
			}
		}
	}
	if maxValue <= 0 {
		return canvas
	}

	groupW := plotW / len(bars)
	barW := groupW / (len(series) + 1)
	if barW < 1 {
		barW = 1
	}

	for i, bar := range bars {
		x := chartMargin + i*groupW + barW/2
		for j, sr := range series {
			v := bar.Values[sr.Key].InexactFloat64()
			h := int(math.Round(v / maxValue * float64(plotH)))
			if h <= 0 {
				continue
			}
			block := imaging.New(barW, h, parseHexColor(sr.Color))
			canvas = imaging.Paste(canvas, block, image.Pt(x+j*barW, baseY-h))
		}
	}
	return canvas
}

func drawLegend(canvas *image.NRGBA, series []domain.ChartSeries) *image.NRGBA {
	x := chartMargin
	for _, sr := range series {
		swatch := imaging.New(legendSwatch, legendSwatch, parseHexColor(sr.Color))
		canvas = imaging.Paste(canvas, swatch, image.Pt(x, chartMargin))
		x += legendSwatch * 3
	}
	return canvas
}

// drawPie fills a donut with the slices clockwise from twelve o'clock
func drawPie(canvas *image.NRGBA, slices []domain.PieSlice) *image.NRGBA {
	legend := make([]domain.ChartSeries, 0, len(slices))
	total := 0.0
	for _, sl := range slices {
		legend = append(legend, domain.ChartSeries{Key: sl.Name, Label: sl.Legend, Color: sl.Color})
		total += sl.Value.InexactFloat64()
	}
	canvas = drawLegend(canvas, legend)
	if total <= 0 {
		return canvas
	}

	bounds := canvas.Bounds()
	top := chartMargin + legendHeight
	cx := float64(bounds.Dx()) / 2
	cy := float64(top) + float64(bounds.Dy()-top-chartMargin)/2
	outer := math.Min(float64(bounds.Dx())-2*chartMargin, float64(bounds.Dy()-top-chartMargin)) / 2 * 0.8
	inner := outer * 0.5
	if outer <= 0 {
		return canvas
	}

	// cumulative end angle of each slice, as a fraction of the full turn
	ends := make([]float64, len(slices))
	acc := 0.0
	colors := make([]color.NRGBA, len(slices))
	for i, sl := range slices {
		acc += sl.Value.InexactFloat64() / total
		ends[i] = acc
		colors[i] = parseHexColor(sl.Color)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			r := math.Hypot(dx, dy)
			if r > outer || r < inner {
				continue
			}
			turn := math.Atan2(dx, -dy) / (2 * math.Pi)
			if turn < 0 {
				turn++
			}
			for i, end := range ends {
				if turn < end || i == len(ends)-1 {
					canvas.SetNRGBA(x, y, colors[i])
					break
				}
			}
		}
	}
	return canvas
}

// parseHexColor parses "#rrggbb"; anything else is drawn grey
func parseHexColor(s string) color.NRGBA {
	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
			return color.NRGBA{R: r, G: g, B: b, A: 0xff}
		}
	}
	return color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
}
