// Package fastview pipes a stream of data-model snapshots through a
// view-model conversion and fans the result out to view components, each of
// which emits fine-grained element updates a client can apply in place. The
// package knows nothing about any particular view; it owns the wire model,
// the builder wiring, and the websocket publisher.
package fastview

import (
	"context"
	"errors"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"
)

// EleUpdate addresses one document element and the operations to apply to it.
type EleUpdate struct {
	// EleId is the id by which the client finds the element.
	EleId string
	// Ops are attribute assignments, with 'textContent' reserved for the
	// element's text.
	Ops []Op
}

// Op is one attribute key and the value to set it to.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server-side view: it parses its template into the parent
// (returning the template's name for embedding) and exposes the element
// updates derived from the view-model stream.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (string, error)
}

// ViewBuilderFunc builds a view from a view-model channel and a done channel
// for teardown.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ViewBuilder wires a data-model source through a conversion into one or more
// views sharing the converted stream.
type ViewBuilder[DataModel any, ViewModel any] struct {
	source      <-chan DataModel
	viewModelFn func(DataModel) ViewModel
	builderFns  []ViewBuilderFunc[ViewModel]
	done        <-chan struct{}
}

// NewViewBuilder returns a builder for the given data-model and view-model
// pair.
func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithModel sets the input channel and the data-to-view-model conversion.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = input
	vb.viewModelFn = convert
	return vb
}

// WithView appends a view to build; Build returns views in this order.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	builderFn ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.builderFns = append(vb.builderFns, builderFn)
	return vb
}

// WithContext ties all downstream channels to the context's cancellation.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.done = ctx.Done()
	return vb
}

// ErrNoViews is returned by Build when no view was added.
var ErrNoViews = errors.New("no views to build: WithView must be called")

// ErrNoModel is returned by Build when WithModel was not called.
var ErrNoModel = errors.New("no model specified: WithModel must be called")

// Build converts the source stream, broadcasts it to one channel per view,
// and constructs the views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(vb.builderFns) == 0 {
		return nil, ErrNoViews
	}
	if vb.viewModelFn == nil {
		return nil, ErrNoModel
	}

	vmChan := channerics.Convert(vb.done, vb.source, vb.viewModelFn)
	vmChans := channerics.Broadcast(vb.done, vmChan, len(vb.builderFns))
	for i, build := range vb.builderFns {
		views = append(views, build(vb.done, vmChans[i]))
	}
	return views, nil
}
