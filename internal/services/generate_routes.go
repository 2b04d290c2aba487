package services

import (
	"context"
	"errors"
	"route-assignment-service/internal/platform/metrics"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GenerateRequest struct {
	OrderIDs  []int64
	DriverIDs []int64
}

// RouteGenerator runs the route generation pipeline:
//
//	gather -> depot/capacity -> claim -> build -> solve -> materialize -> persist -> aggregate
//
// Every whole-request failure is returned as a *PipelineError.
type RouteGenerator struct {
	Demand ports.DemandRepository
	Config ports.ConfigStore
	Solver ports.Solver
	Engine ports.RoutingEngine
	Store  ports.RouteStore
	Claims ports.OrderClaimer
	Log    *zap.Logger
}

func (g *RouteGenerator) logger() *zap.Logger {
	if g.Log != nil {
		return g.Log
	}
	return zap.L()
}

func positiveIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (g *RouteGenerator) Generate(ctx context.Context, req GenerateRequest) (_ *GenerationResult, err error) {
	defer obs.Time(ctx, "routes.Generate")(&err)
	defer func() {
		result := "ok"
		if err != nil {
			result = string(KindOf(err))
			if result == "" {
				result = "internal"
			}
		}
		metrics.GenerationRequests.WithLabelValues(result).Inc()
	}()

	log := g.logger().With(zap.String("req_id", obs.RequestID(ctx)))

	orderIDs := positiveIDs(req.OrderIDs)
	driverIDs := positiveIDs(req.DriverIDs)
	if len(orderIDs) == 0 || len(driverIDs) == 0 {
		return nil, newPipelineError(KindValidation, MsgInvalidRequest, nil)
	}

	demand, err := GatherDemand(ctx, g.Demand, orderIDs, driverIDs)
	if err != nil {
		return nil, newPipelineError(KindGather, MsgGatherFailed, err)
	}
	if len(demand.Orders) == 0 {
		return nil, newPipelineError(KindPrecondition, MsgNoPendingOrders, nil)
	}
	if len(demand.Drivers) == 0 {
		return nil, newPipelineError(KindPrecondition, MsgNoActiveDrivers, nil)
	}

	depot, err := ReadDepot(ctx, g.Config)
	if err != nil {
		return nil, err
	}
	capacity := ReadCapacity(ctx, g.Config, log)

	if g.Claims != nil {
		// Request ids come from clients and may repeat, so each run claims under its own id.
		owner := uuid.NewString()

		claimed := make([]int64, 0, len(demand.Orders))
		for _, o := range demand.Orders {
			claimed = append(claimed, o.OrderID)
		}

		release, err := g.Claims.Claim(ctx, owner, claimed)
		if errors.Is(err, ports.ErrOrdersClaimed) {
			log.Info("orders already claimed", zap.Int64s("order_ids", claimed))
			return nil, newPipelineError(KindConflict, MsgOrdersClaimed, err)
		}
		if err != nil {
			return nil, newPipelineError(KindGather, MsgGatherFailed, err)
		}
		defer release(context.WithoutCancel(ctx))
	}

	problem, table := BuildProblem(depot, demand.Orders, len(demand.Drivers), capacity)

	solved, err := g.Solver.Solve(ctx, problem)
	if err != nil {
		return nil, newPipelineError(KindSolver, MsgSolverFailed, err)
	}

	if extra := len(solved) - len(demand.Drivers); extra > 0 {
		log.Warn("solver returned more routes than drivers, dropping extras",
			zap.Int("routes", len(solved)),
			zap.Int("drivers", len(demand.Drivers)),
		)
		metrics.SolverRoutesDropped.Add(float64(extra))
		solved = solved[:len(demand.Drivers)]
	}

	materializer := NewRouteMaterializer(g.Engine, depot, table, log)
	results := make([]*RouteResult, 0, len(solved))
	for i, nodes := range solved {
		results = append(results, materializer.Materialize(ctx, nodes, demand.Drivers[i]))
	}

	if err := PersistRoutes(ctx, g.Store, results); err != nil {
		return nil, newPipelineError(KindPersistence, MsgPersistenceFailed, err)
	}

	return Aggregate(results), nil
}
