package chain_views

import (
	"fmt"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"

	"coopmas/server/fastview"
)

// ValueBars is the bar-chart view: one svg bar per node, its height tracking
// the node's value and its caption the node's criticality.
type ValueBars struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewValueBars builds the view over a Board stream.
func NewValueBars(
	done <-chan struct{},
	boards <-chan Board,
) fastview.ViewComponent {
	vb := &ValueBars{id: "valuebars"}
	vb.updates = channerics.Convert(done, boards, vb.onUpdate)
	return vb
}

// Updates returns the view's element-update channel.
func (vb *ValueBars) Updates() <-chan []fastview.EleUpdate {
	return vb.updates
}

// Parse adds the view's template to the parent and returns its name. The
// template renders the initial board; everything mutable carries an element
// id the updates address.
func (vb *ValueBars) Parse(
	parent *template.Template,
) (name string, err error) {
	name = vb.id
	_, err = parent.Parse(`
	{{ define "` + name + `" }}
	<div>
		<svg width="{{ .Width }}" height="` + fmt.Sprintf("%d", SvgHeight) + `">
			{{ range .Cells }}
			<g>
				<rect id="bar-{{ .Name }}"
					x="{{ .BarX }}" y="{{ .BarY }}"
					width="` + fmt.Sprintf("%d", BarWidth) + `" height="{{ .BarHeight }}"
					fill="steelblue"></rect>
				<text id="barval-{{ .Name }}" x="{{ .LabelX }}" y="{{ .ValueLabelY }}"
					text-anchor="middle">{{ .Value }}</text>
				<text id="barcrit-{{ .Name }}" x="{{ .LabelX }}" y="20"
					text-anchor="middle">{{ printf "%.2f" .Criticality }}</text>
				<text x="{{ .LabelX }}" y="282" text-anchor="middle">{{ .Name }}</text>
			</g>
			{{ end }}
		</svg>
	</div>
	{{ end }}
	`)
	return
}

// onUpdate maps a board to the element updates that reshape the bars.
func (vb *ValueBars) onUpdate(board Board) (updates []fastview.EleUpdate) {
	for _, cell := range board.Cells {
		updates = append(updates,
			fastview.EleUpdate{
				EleId: "bar-" + cell.Name,
				Ops: []fastview.Op{
					{Key: "y", Value: fmt.Sprintf("%d", cell.BarY())},
					{Key: "height", Value: fmt.Sprintf("%d", cell.BarHeight())},
				},
			},
			fastview.EleUpdate{
				EleId: "barval-" + cell.Name,
				Ops: []fastview.Op{
					{Key: "y", Value: fmt.Sprintf("%d", cell.ValueLabelY())},
					{Key: "textContent", Value: fmt.Sprintf("%d", cell.Value)},
				},
			},
			fastview.EleUpdate{
				EleId: "barcrit-" + cell.Name,
				Ops: []fastview.Op{
					{Key: "textContent", Value: fmt.Sprintf("%.2f", cell.Criticality)},
				},
			})
	}
	return
}
