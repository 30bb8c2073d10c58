package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
)

var seriesColors = []string{"#f6c177", "#a3d9a5", "#c4b5fd", "#7dd3fc", "#fb7185", "#fbbf24"}

var chartTypes = map[string]bool{"line": true, "bar": true, "pie": true, "doughnut": true, "radar": true, "scatter": true}

const vizTemplates = `
{{define "chartjs"}}<div class="chart-container">
  <div class="chart-title">{{.Title}}</div>
  <canvas id="{{.CanvasID}}" style="max-height:380px;"></canvas>
  {{if .Caption}}<div class="chart-caption">{{.Caption}}</div>{{end}}
</div>
<script>
document.addEventListener('DOMContentLoaded', function () {
  initChart(document.getElementById('{{.CanvasID}}'), {{.Config}});
});
</script>{{end}}
{{define "mermaid"}}<div class="diagram-container">
  <div class="diagram-title">{{.Title}}</div>
  <div class="mermaid">
{{.Code}}
  </div>
  {{if .Caption}}<div class="diagram-caption">{{.Caption}}</div>{{end}}
</div>{{end}}
{{define "comparison"}}<div class="comparison-block">
  <div class="comparison-side left">
    <h4>{{.LeftTitle}}</h4>
    <ul>{{range .LeftPoints}}<li>{{.}}</li>{{end}}</ul>
  </div>
  <div class="comparison-divider">vs</div>
  <div class="comparison-side right">
    <h4>{{.RightTitle}}</h4>
    <ul>{{range .RightPoints}}<li>{{.}}</li>{{end}}</ul>
  </div>
</div>{{end}}
{{define "stats"}}<div class="stats-grid">{{range .}}<div class="stat-card"><span class="stat-value">{{.Value}}</span><div class="stat-label">{{.Label}}</div></div>{{end}}</div>{{end}}
`

var vizTmpl = template.Must(template.New("viz").Parse(vizTemplates))

type chartView struct {
	Title    string
	Caption  string
	CanvasID string
	Config   map[string]any
}

// renderVisualization turns a model-provided visualization into markup. Unknown or
// empty specs render nothing.
func renderVisualization(v *ai.Visualization, index int) (template.HTML, error) {
	if v == nil {
		return "", nil
	}
	var (
		name string
		data any
	)
	switch v.Type {
	case "chartjs":
		cfg, err := chartConfig(v)
		if err != nil {
			return "", err
		}
		name, data = "chartjs", chartView{
			Title:    orDefault(v.Title, "Chart"),
			Caption:  v.Caption,
			CanvasID: fmt.Sprintf("chart-%d", index),
			Config:   cfg,
		}
	case "mermaid":
		if strings.TrimSpace(v.Code) == "" {
			return "", nil
		}
		view := *v
		view.Title = orDefault(v.Title, "Diagram")
		name, data = "mermaid", view
	case "comparison":
		view := *v
		view.LeftTitle = orDefault(v.LeftTitle, "Option A")
		view.RightTitle = orDefault(v.RightTitle, "Option B")
		name, data = "comparison", view
	case "stats":
		if len(v.Stats) == 0 {
			return "", nil
		}
		name, data = "stats", v.Stats
	default:
		return "", nil
	}
	var buf bytes.Buffer
	if err := vizTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s visualization: %w", v.Type, err)
	}
	return template.HTML(buf.String()), nil
}

func chartConfig(v *ai.Visualization) (map[string]any, error) {
	chartType := v.ChartType
	if !chartTypes[chartType] {
		chartType = "bar"
	}
	var labels []any
	if len(v.Labels) > 0 {
		if err := json.Unmarshal(v.Labels, &labels); err != nil {
			return nil, fmt.Errorf("chart labels: %w", err)
		}
	}
	var raw []map[string]any
	if len(v.Datasets) > 0 {
		if err := json.Unmarshal(v.Datasets, &raw); err != nil {
			return nil, fmt.Errorf("chart datasets: %w", err)
		}
	}
	datasets := make([]map[string]any, 0, len(raw))
	for i, ds := range raw {
		color, _ := ds["borderColor"].(string)
		if color == "" {
			color = seriesColors[i%len(seriesColors)]
		}
		bg, _ := ds["backgroundColor"].(string)
		if bg == "" {
			bg = translucent(color)
		}
		label, _ := ds["label"].(string)
		if label == "" {
			label = fmt.Sprintf("Series %d", i+1)
		}
		data := ds["data"]
		if data == nil {
			data = []any{}
		}
		out := map[string]any{"label": label, "data": data, "borderColor": color, "backgroundColor": bg}
		if chartType == "line" {
			out["tension"] = 0.4
			out["fill"] = true
		}
		datasets = append(datasets, out)
	}
	if labels == nil {
		labels = []any{}
	}
	options := map[string]any{
		"plugins": map[string]any{
			"legend":  map[string]any{"position": "bottom"},
			"tooltip": map[string]any{"mode": "index", "intersect": false},
		},
	}
	if chartType == "line" || chartType == "bar" || chartType == "scatter" {
		grid := map[string]any{"color": "rgba(255,255,255,0.05)"}
		options["scales"] = map[string]any{
			"y": map[string]any{"beginAtZero": true, "grid": grid},
			"x": map[string]any{"grid": grid},
		}
	}
	return map[string]any{
		"type":    chartType,
		"data":    map[string]any{"labels": labels, "datasets": datasets},
		"options": options,
	}, nil
}

func translucent(color string) string {
	if strings.HasPrefix(color, "rgb(") {
		return "rgba(" + strings.TrimSuffix(strings.TrimPrefix(color, "rgb("), ")") + ",0.15)"
	}
	if strings.HasPrefix(color, "#") && len(color) == 7 {
		return color + "26"
	}
	return color
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
