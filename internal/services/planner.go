package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/metrics"
	"trip-planner-service/internal/ports"

	"github.com/google/uuid"
)

type PlannerConfig struct {
	// Used as given; zero prices every route at 0. The config layer supplies
	// domain.DefaultUnitCostPerKm when unset.
	UnitCostPerKm float64
	// Upper bound for a single route computation. Zero disables the bound.
	RouteTimeout time.Duration
}

// Planner coordinates one itinerary with the geocode and route providers.
//
// Mutations are serialized. ComputeRoute releases the lock while the provider
// call is in flight, so the itinerary stays editable; a response is applied
// only if the itinerary version still matches the snapshot it was requested
// for.
type Planner struct {
	sessionID string
	cfg       PlannerConfig
	geocoder  ports.Geocoder
	router    ports.RouteProvider
	events    ports.EventPublisher
	newID     func() string

	mu        sync.Mutex
	itinerary *Itinerary
	route     *domain.RouteResult
	touched   time.Time
}

func NewPlanner(
	sessionID string,
	cfg PlannerConfig,
	geocoder ports.Geocoder,
	router ports.RouteProvider,
	events ports.EventPublisher,
) *Planner {
	return &Planner{
		sessionID: sessionID,
		cfg:       cfg,
		geocoder:  geocoder,
		router:    router,
		events:    events,
		newID:     func() string { return uuid.NewString() },
		itinerary: NewItinerary(),
		touched:   time.Now(),
	}
}

func (p *Planner) SessionID() string { return p.sessionID }

// LastTouched reports when the session was last read or mutated.
func (p *Planner) LastTouched() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.touched
}

// Search geocodes query without touching the itinerary.
func (p *Planner) Search(ctx context.Context, query string) (domain.Place, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Place{}, errors.New("search: query must be non-empty")
	}

	place, err := p.geocoder.Search(ctx, query)
	if err != nil {
		p.notify(ctx, fmt.Sprintf("Could not find %q", query), err)
		return domain.Place{}, fmt.Errorf("search %q: %w", query, err)
	}
	return place, nil
}

// AddPlace geocodes query and appends the result. A failed lookup leaves the
// itinerary unchanged.
func (p *Planner) AddPlace(ctx context.Context, query string) (domain.Waypoint, error) {
	place, err := p.Search(ctx, query)
	if err != nil {
		return domain.Waypoint{}, err
	}
	return p.Add(ctx, place)
}

// Add appends a resolved place under a freshly generated id.
func (p *Planner) Add(ctx context.Context, place domain.Place) (domain.Waypoint, error) {
	w := domain.NewWaypoint(p.newID(), place)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.itinerary.Add(w); err != nil {
		return domain.Waypoint{}, fmt.Errorf("planner add: %w", err)
	}
	p.mutatedLocked(ctx)
	return w, nil
}

// Remove deletes the waypoint with id. Absent ids are a no-op.
func (p *Planner) Remove(ctx context.Context, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.itinerary.Remove(id) {
		return false
	}
	p.mutatedLocked(ctx)
	return true
}

func (p *Planner) Reorder(ctx context.Context, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.itinerary.Version()
	if err := p.itinerary.Reorder(ids); err != nil {
		return fmt.Errorf("planner reorder: %w", err)
	}
	if p.itinerary.Version() != before {
		p.mutatedLocked(ctx)
	}
	return nil
}

func (p *Planner) SetTime(ctx context.Context, id string, kind domain.TimeKind, at *time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.itinerary.SetTime(id, kind, at); err != nil {
		return fmt.Errorf("planner set time: %w", err)
	}
	p.mutatedLocked(ctx)
	return nil
}

// mutatedLocked drops the route computed for the previous sequence.
// Callers must hold p.mu.
func (p *Planner) mutatedLocked(ctx context.Context) {
	p.route = nil
	p.touched = time.Now()
	p.publish(ctx, ports.Event{
		Kind:      ports.EventItineraryChanged,
		SessionID: p.sessionID,
		Version:   p.itinerary.Version(),
	})
}

// ComputeRoute requests a route for the current waypoint order.
//
// With fewer than two waypoints no provider call is made. If the itinerary
// changes while the request is in flight the response is discarded and
// ErrStaleRoute is returned; the route and view keep reflecting the current
// itinerary.
func (p *Planner) ComputeRoute(ctx context.Context) (*domain.RouteResult, error) {
	p.mu.Lock()
	snap := p.itinerary.Snapshot()
	p.touched = time.Now()
	p.mu.Unlock()

	if len(snap.Points) < 2 {
		return nil, fmt.Errorf("compute route: %w", domain.ErrInsufficientWaypoints)
	}

	if p.cfg.RouteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RouteTimeout)
		defer cancel()
	}

	leg, err := p.router.Route(ctx, snap.Points)
	if err != nil {
		p.notify(ctx, "Could not calculate route", err)
		return nil, fmt.Errorf("compute route: %w", err)
	}

	result := &domain.RouteResult{
		WaypointIDs:            snap.IDs,
		DistanceMeters:         leg.DistanceMeters,
		DurationSeconds:        leg.DurationSeconds,
		TrafficDurationSeconds: leg.TrafficDurationSeconds,
		Polyline:               leg.Polyline,
	}
	result.Cost = domain.EstimateCost(result.DistanceKm(), p.cfg.UnitCostPerKm)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.itinerary.Version() != snap.Version {
		metrics.StaleRoutesDiscarded.Inc()
		slog.InfoContext(ctx, "discarding stale route",
			"session_id", p.sessionID,
			"requested_version", snap.Version,
			"current_version", p.itinerary.Version(),
		)
		return nil, fmt.Errorf("compute route: %w", domain.ErrStaleRoute)
	}

	p.route = result
	p.publish(ctx, ports.Event{
		Kind:      ports.EventRouteComputed,
		SessionID: p.sessionID,
		Version:   snap.Version,
	})

	out := *result
	return &out, nil
}

// State is a consistent read of the session at one version.
type State struct {
	Version   uint64              `json:"version"`
	Waypoints []domain.Waypoint   `json:"waypoints"`
	Route     *domain.RouteResult `json:"route"`
	View      ViewState           `json:"view"`
}

func (p *Planner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.touched = time.Now()
	waypoints := p.itinerary.Waypoints()

	var route *domain.RouteResult
	if p.route != nil {
		r := *p.route
		route = &r
	}

	return State{
		Version:   p.itinerary.Version(),
		Waypoints: waypoints,
		Route:     route,
		View:      Project(waypoints, route),
	}
}

func (p *Planner) Itinerary() []domain.Waypoint { return p.State().Waypoints }

func (p *Planner) Route() *domain.RouteResult { return p.State().Route }

func (p *Planner) View() ViewState { return p.State().View }

// notify surfaces a provider failure to the user-facing notification channel.
func (p *Planner) notify(ctx context.Context, msg string, err error) {
	notifyFailure(ctx, p.events, p.sessionID, msg, err)
}

// notifyFailure publishes a notification for provider failures (not found,
// no route, provider error). Other errors are the caller's to report.
func notifyFailure(ctx context.Context, events ports.EventPublisher, sessionID, msg string, err error) {
	if !errors.Is(err, domain.ErrNotFound) &&
		!errors.Is(err, domain.ErrNoRoute) &&
		!errors.Is(err, domain.ErrProvider) {
		return
	}

	slog.WarnContext(ctx, "provider failure", "session_id", sessionID, "msg", msg, "err", err)
	publish(ctx, events, ports.Event{
		Kind:      ports.EventNotification,
		SessionID: sessionID,
		Message:   msg + ". Please try again.",
	})
}

func (p *Planner) publish(ctx context.Context, e ports.Event) {
	publish(ctx, p.events, e)
}

func publish(ctx context.Context, events ports.EventPublisher, e ports.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "publish event failed", "kind", e.Kind, "session_id", e.SessionID, "err", err)
	}
}
