// Package root_view assembles the chain views into the main page: it owns
// the index template with the websocket bootstrap script and fans the views'
// update channels into the single stream the websocket publisher consumes.
package root_view

import (
	"context"
	"html/template"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"coopmas/server/chain_views"
	"coopmas/server/fastview"
	"coopmas/simulation"
)

// RootView is the container for all view components and their update wiring.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the views over the snapshot stream and wires their
// update channels together.
func NewRootView(
	ctx context.Context,
	snapshots <-chan simulation.Snapshot,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[simulation.Snapshot, chain_views.Board]().
		WithContext(ctx).
		WithModel(snapshots, chain_views.Convert).
		WithView(chain_views.NewValueBars).
		WithView(chain_views.NewRoundReadout).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the aggregated ele-update channel for all views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page template: client websocket bootstrap plus the
// embedded child views, in build order.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	viewTemplates := []string{}
	for _, vc := range rv.views {
		var tname string
		if tname, err = vc.Parse(parent); err != nil {
			return
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += (`{{ template "` + tname + `" . }}`)
	}

	// The bootstrap script applies server-pushed ele-updates in place: find
	// the element, set its attributes or text.
	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("web socket opened")
				};

				ws.onerror = function (event) {
					console.log("web socket error: ", event);
				};

				ws.onmessage = function (event) {
					items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = parent.Parse(indexTemplate)
	return
}

// fanIn merges the views' update channels and batches bursts so redundant
// updates for an element collapse to the latest.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		time.Millisecond*20)
}

// batchify accumulates updates within the rate window, keeping only the
// latest per element id, then emits the batch.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		pending := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				pending[update.EleId] = update
			}

			if time.Since(last) > rate && len(pending) > 0 {
				batch := make([]fastview.EleUpdate, 0, len(pending))
				for _, update := range pending {
					batch = append(batch, update)
				}

				select {
				case output <- batch:
					pending = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}
