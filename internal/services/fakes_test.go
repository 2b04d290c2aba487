package services

import (
	"context"
	"errors"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"
)

// In-memory orders and drivers; order states are updated by fakeRouteStore commits.
type fakeDemandRepo struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	drivers map[int64]*domain.Driver
	err     error
}

func newFakeDemandRepo(orders []*domain.Order, drivers []*domain.Driver) *fakeDemandRepo {
	r := &fakeDemandRepo{
		orders:  make(map[int64]*domain.Order, len(orders)),
		drivers: make(map[int64]*domain.Driver, len(drivers)),
	}
	for _, o := range orders {
		if o.State == "" {
			o.State = domain.OrderPending
		}
		r.orders[o.OrderID] = o
	}
	for _, d := range drivers {
		r.drivers[d.DriverID] = d
	}
	return r
}

func (r *fakeDemandRepo) PendingOrdersByIDs(_ context.Context, ids []int64) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok && o.State == domain.OrderPending {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (r *fakeDemandRepo) ActiveDriversByIDs(_ context.Context, ids []int64) ([]*domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Driver, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.drivers[id]; ok && d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (r *fakeDemandRepo) state(id int64) domain.OrderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].State
}

type fakeConfigStore struct {
	values map[string]domain.ConfigValue
	err    error
}

func depotConfig(raw string) *fakeConfigStore {
	return &fakeConfigStore{values: map[string]domain.ConfigValue{
		DepotConfigKey: {Key: DepotConfigKey, Type: domain.ConfigJSONObject, Raw: raw},
	}}
}

func (s *fakeConfigStore) GetConfigValue(_ context.Context, key string) (domain.ConfigValue, error) {
	if s.err != nil {
		return domain.ConfigValue{}, s.err
	}
	cv, ok := s.values[key]
	if !ok {
		return domain.ConfigValue{}, ports.ErrConfigNotFound
	}
	return cv, nil
}

func (s *fakeConfigStore) ListEditableConfig(_ context.Context) ([]domain.ConfigValue, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.ConfigValue, 0, len(s.values))
	for _, cv := range s.values {
		if cv.Editable {
			out = append(out, cv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

type storedRoute struct {
	ID    int64
	Route *domain.Route
	Stops []domain.RouteStop
}

// Transactional fake: writes are staged and only applied on commit.
type fakeRouteStore struct {
	repo      *fakeDemandRepo
	committed []storedRoute
	txCount   int
	failStop  bool
	nextID    int64
}

type fakeRouteTx struct {
	store  *fakeRouteStore
	staged []storedRoute
	marked []int64
}

func (s *fakeRouteStore) WithinTx(ctx context.Context, fn func(tx ports.RouteTx) error) error {
	s.txCount++
	tx := &fakeRouteTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.committed = append(s.committed, tx.staged...)
	if s.repo != nil {
		s.repo.mu.Lock()
		for _, id := range tx.marked {
			s.repo.orders[id].State = domain.OrderInProcess
		}
		s.repo.mu.Unlock()
	}
	return nil
}

func (t *fakeRouteTx) InsertRoute(_ context.Context, route *domain.Route) (int64, error) {
	t.store.nextID++
	t.staged = append(t.staged, storedRoute{ID: t.store.nextID, Route: route})
	return t.store.nextID, nil
}

func (t *fakeRouteTx) InsertStop(_ context.Context, routeID int64, stop domain.RouteStop) error {
	if t.store.failStop {
		return errors.New("insert stop: connection reset")
	}
	for i := range t.staged {
		if t.staged[i].ID == routeID {
			t.staged[i].Stops = append(t.staged[i].Stops, stop)
			return nil
		}
	}
	return errors.New("insert stop: unknown route")
}

func (t *fakeRouteTx) MarkOrdersInProcess(_ context.Context, ids []int64) error {
	t.marked = append(t.marked, ids...)
	return nil
}

type mockSolver struct{ mock.Mock }

func (m *mockSolver) Solve(ctx context.Context, problem *domain.RoutingProblem) ([]domain.SolverRoute, error) {
	args := m.Called(ctx, problem)
	routes, _ := args.Get(0).([]domain.SolverRoute)
	return routes, args.Error(1)
}

type mockEngine struct{ mock.Mock }

func (m *mockEngine) Route(ctx context.Context, path []domain.Coordinates) (*domain.EngineRoute, error) {
	args := m.Called(ctx, path)
	route, _ := args.Get(0).(*domain.EngineRoute)
	return route, args.Error(1)
}

func okEngineRoute() *domain.EngineRoute {
	return &domain.EngineRoute{
		Geometry:        []byte(`{"type":"LineString","coordinates":[[-77.0,-12.0],[-77.1,-12.1]]}`),
		DistanceMeters:  1200,
		DurationSeconds: 240,
		Instructions:    []domain.Instruction{{Maneuver: "depart", Instruction: "Head north"}},
	}
}
