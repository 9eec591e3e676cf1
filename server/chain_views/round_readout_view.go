package chain_views

import (
	"fmt"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"

	"coopmas/server/fastview"
)

// RoundReadout is the one-line status view: the round counter and the worst
// criticality on the board.
type RoundReadout struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewRoundReadout builds the view over a Board stream.
func NewRoundReadout(
	done <-chan struct{},
	boards <-chan Board,
) fastview.ViewComponent {
	rr := &RoundReadout{id: "roundreadout"}
	rr.updates = channerics.Convert(done, boards, rr.onUpdate)
	return rr
}

// Updates returns the view's element-update channel.
func (rr *RoundReadout) Updates() <-chan []fastview.EleUpdate {
	return rr.updates
}

// Parse adds the readout template to the parent and returns its name.
func (rr *RoundReadout) Parse(
	parent *template.Template,
) (name string, err error) {
	name = rr.id
	_, err = parent.Parse(`
	{{ define "` + name + `" }}
	<div>
		<p>round <span id="round">{{ .Round }}</span>,
		max criticality <span id="maxcrit">{{ printf "%.2f" .MaxCriticality }}</span></p>
	</div>
	{{ end }}
	`)
	return
}

func (rr *RoundReadout) onUpdate(board Board) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		{
			EleId: "round",
			Ops: []fastview.Op{
				{Key: "textContent", Value: fmt.Sprintf("%d", board.Round)},
			},
		},
		{
			EleId: "maxcrit",
			Ops: []fastview.Op{
				{Key: "textContent", Value: fmt.Sprintf("%.2f", board.MaxCriticality)},
			},
		},
	}
}
