package overlay

import "sync"

// chartLabels are the fixed pie segments.
var chartLabels = []string{"Positive", "Neutral", "Negative"}

// Chart is one live chart instance bound to a canvas.
type Chart struct {
	CanvasID string
	Labels   []string
	Values   []float64
}

// Percentages returns each segment's share of the total. A zero-sum dataset
// renders 0% for every segment instead of dividing by zero.
func (c *Chart) Percentages() []float64 {
	var sum float64
	for _, v := range c.Values {
		sum += v
	}
	out := make([]float64, len(c.Values))
	if sum == 0 {
		return out
	}
	for i, v := range c.Values {
		out[i] = v / sum * 100
	}
	return out
}

// ChartRegistry tracks live chart instances per canvas id. Re-rendering onto
// a canvas destroys the previous instance first so repeated renders do not
// leak handles.
type ChartRegistry struct {
	mu     sync.Mutex
	charts map[string]*Chart
}

func NewChartRegistry() *ChartRegistry {
	return &ChartRegistry{charts: map[string]*Chart{}}
}

// Render builds a chart for the canvas from the backend's comments_data
// array. The canonical slicing rule: a 4-element array is
// [total, positive, neutral, negative] and the leading total is dropped; a
// 3-element array is used as-is; anything else falls back to the neutral
// placeholder segments.
func (r *ChartRegistry) Render(canvasID string, data []int) *Chart {
	segments := chartSegments(data)
	values := make([]float64, len(segments))
	for i, v := range segments {
		values[i] = float64(v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.charts, canvasID)
	chart := &Chart{CanvasID: canvasID, Labels: chartLabels, Values: values}
	r.charts[canvasID] = chart
	return chart
}

// Get returns the live chart for a canvas, or nil.
func (r *ChartRegistry) Get(canvasID string) *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.charts[canvasID]
}

// Destroy drops the chart bound to the canvas.
func (r *ChartRegistry) Destroy(canvasID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.charts, canvasID)
}

// DestroyAll drops every live chart.
func (r *ChartRegistry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts = map[string]*Chart{}
}

// Live reports how many chart instances exist.
func (r *ChartRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.charts)
}

func chartSegments(data []int) []int {
	switch len(data) {
	case 4:
		return data[1:]
	case 3:
		return data
	default:
		return []int{100, 0, 0}
	}
}
