package navigator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const tracerName = "github.com/goliatone/go-navigator"

// Status describes the navigation state.
type Status int

const (
	StatusUnmatched Status = iota
	StatusPending
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unmatched"
	}
}

// State is a snapshot of the active navigation.
type State struct {
	Route    *Route
	Location Location
	// Raw is the external location the state was derived from.
	Raw    string
	Status Status
	View   View
	Err    error
}

// Matched reports whether the state has an active route.
func (s State) Matched() bool {
	return s.Route != nil
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithCodec sets the history mode and base prefix.
func WithCodec(codec Codec) Option {
	return func(n *Navigator) {
		n.codec = NewCodec(codec.Mode, codec.Base)
	}
}

func WithLogger(logger Logger) Option {
	return func(n *Navigator) {
		n.logger = DefaultLogger(logger)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(n *Navigator) {
		if tracer != nil {
			n.tracer = tracer
		}
	}
}

// WithNotFoundRedirect replaces unknown locations with the location of the
// named route instead of publishing an unmatched state.
func WithNotFoundRedirect(name string) Option {
	return func(n *Navigator) {
		n.fallback = name
	}
}

// WithDispatcher sets the function used to deliver state updates to
// subscribers, e.g. to hop onto a UI event loop. Updates run inline by default.
func WithDispatcher(dispatch func(func())) Option {
	return func(n *Navigator) {
		if dispatch != nil {
			n.dispatch = dispatch
		}
	}
}

// NavigateOption configures a single Navigate call.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	query   url.Values
	replace bool
}

func WithQuery(query url.Values) NavigateOption {
	return func(o *navigateOptions) {
		o.query = query
	}
}

// WithReplace replaces the current history entry instead of pushing one.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) {
		o.replace = true
	}
}

// Navigator mediates between the history and the active view. It is the
// only writer of the navigation state.
type Navigator struct {
	table    *Table
	history  History
	codec    Codec
	logger   Logger
	tracer   trace.Tracer
	fallback string
	dispatch func(func())

	generation *atomic.Uint64
	loads      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSub     int
	unlisten    func()
}

// NewNavigator creates a navigator over table and history. The default codec
// is hash mode under the root base.
func NewNavigator(table *Table, history History, opts ...Option) *Navigator {
	ctx, cancel := context.WithCancel(context.Background())
	n := &Navigator{
		table:       table,
		history:     history,
		codec:       NewCodec(ModeHash, "/"),
		logger:      DefaultLogger(),
		tracer:      otel.Tracer(tracerName),
		dispatch:    func(fn func()) { fn() },
		generation:  atomic.NewUint64(0),
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[int]func(State)),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Codec returns the codec used to encode locations.
func (n *Navigator) Codec() Codec {
	return n.codec
}

// Start subscribes to history changes and resolves the current location.
func (n *Navigator) Start(ctx context.Context) error {
	if n.table == nil {
		return errors.New("navigator: route table is required")
	}
	if n.history == nil {
		return errors.New("navigator: history is required")
	}
	if n.fallback != "" {
		if _, err := n.table.Named(n.fallback); err != nil {
			return err
		}
	}

	n.mu.Lock()
	if n.unlisten != nil {
		n.mu.Unlock()
		return errors.New("navigator: already started")
	}
	n.unlisten = n.history.Listen(func(location string) {
		n.transition(n.ctx, location)
	})
	n.mu.Unlock()

	n.logger.Debug("navigator started in %s mode under %s", n.codec.Mode, n.codec.base())
	n.transition(ctx, n.history.Location())
	return nil
}

// Resolve decodes an external location and matches it against the table.
func (n *Navigator) Resolve(location string) (*Route, error) {
	loc, ok := n.codec.Decode(location)
	if !ok {
		return nil, newNotFoundError("location", location)
	}
	return n.table.Resolve(loc.Path)
}

// Navigate moves to the route named target, or to the route whose path is
// target when it starts with a slash. The external location is updated
// through the history before the new view is rendered.
func (n *Navigator) Navigate(ctx context.Context, target string, opts ...NavigateOption) error {
	o := navigateOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		route *Route
		err   error
	)
	if strings.HasPrefix(target, "/") {
		route, err = n.table.Resolve(target)
	} else {
		route, err = n.table.Named(target)
	}
	if err != nil {
		return err
	}

	location := n.codec.Encode(Location{Path: route.Path, Query: o.query})

	n.mu.Lock()
	same := n.state.Route == route && n.state.Raw == location
	status := n.state.Status
	n.mu.Unlock()
	if same {
		// a failed load is retried in place, without a new history entry
		if status == StatusFailed {
			n.transition(ctx, location)
		}
		return nil
	}

	if o.replace {
		n.history.Replace(location)
	} else {
		n.history.Push(location)
	}

	n.transition(ctx, location)
	return nil
}

// Back moves one entry back in the history.
func (n *Navigator) Back() {
	n.history.Go(-1)
}

// Forward moves one entry forward in the history.
func (n *Navigator) Forward() {
	n.history.Go(1)
}

// Current returns the active route, or a not found error while unmatched.
func (n *Navigator) Current() (*Route, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state.Route == nil {
		if n.state.Err != nil {
			return nil, n.state.Err
		}
		return nil, newNotFoundError("location", n.state.Raw)
	}
	return n.state.Route, nil
}

// State returns a snapshot of the navigation state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Subscribe registers fn for state updates and returns a function that
// removes it.
func (n *Navigator) Subscribe(fn func(State)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSub
	n.nextSub++
	n.subscribers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

// Wait blocks until in flight view loads have finished.
func (n *Navigator) Wait() {
	n.loads.Wait()
}

// Close stops listening to the history and cancels pending view loads.
func (n *Navigator) Close() {
	n.mu.Lock()
	unlisten := n.unlisten
	n.unlisten = nil
	n.mu.Unlock()

	if unlisten != nil {
		unlisten()
	}
	n.cancel()
	n.loads.Wait()
}

func (n *Navigator) transition(ctx context.Context, raw string) {
	gen := n.generation.Inc()

	loc, ok := n.codec.Decode(raw)
	var (
		route *Route
		err   error
	)
	if ok {
		route, err = n.table.Resolve(loc.Path)
	} else {
		err = newNotFoundError("location", raw)
	}

	if err != nil && n.fallback != "" {
		if fallback, ferr := n.table.Named(n.fallback); ferr == nil {
			n.logger.Info("redirecting unknown location %s to %s", raw, fallback.Name)
			loc = Location{Path: fallback.Path}
			raw = n.codec.Encode(loc)
			n.history.Replace(raw)
			route, err = fallback, nil
		}
	}

	if err != nil {
		n.logger.Debug("no route for location %s", raw)
		n.publish(gen, State{Location: loc, Raw: raw, Status: StatusUnmatched, Err: err})
		return
	}

	state := State{Route: route, Location: loc, Raw: raw}
	if view, ok := route.cachedView(); ok {
		state.Status = StatusReady
		state.View = view
		n.publish(gen, state)
		return
	}

	state.Status = StatusPending
	n.publish(gen, state)

	loadCtx := trace.ContextWithSpan(n.ctx, trace.SpanFromContext(ctx))
	n.loads.Add(1)
	go n.load(loadCtx, gen, state)
}

func (n *Navigator) load(ctx context.Context, gen uint64, state State) {
	defer n.loads.Done()

	route := state.Route
	ctx, span := n.tracer.Start(ctx, "navigator.load_view", trace.WithAttributes(
		attribute.String("route.name", route.Name),
		attribute.String("route.path", route.Path),
	))
	defer span.End()

	view, err := route.Load(ctx)

	if gen != n.generation.Load() {
		span.SetAttributes(attribute.Bool("navigator.stale", true))
		n.logger.Debug("discarding stale view load for %s", route.Name)
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.logger.Error("view load failed for %s: %v", route.Name, err)
		state.Status = StatusFailed
		state.Err = newViewLoadError(route, err)
	} else {
		state.Status = StatusReady
		state.View = view
	}

	n.publish(gen, state)
}

func (n *Navigator) publish(gen uint64, state State) {
	n.mu.Lock()
	if gen != n.generation.Load() {
		n.mu.Unlock()
		return
	}
	n.state = state
	subscribers := make([]func(State), 0, len(n.subscribers))
	for _, fn := range n.subscribers {
		subscribers = append(subscribers, fn)
	}
	n.mu.Unlock()

	n.dispatch(func() {
		for _, fn := range subscribers {
			fn(state)
		}
	})
}
