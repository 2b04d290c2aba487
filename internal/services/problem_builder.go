package services

import "route-assignment-service/internal/domain"

// BuildProblem numbers the depot as node 1 and the k-th order as node k+1,
// with demands aligned to the same positions. The returned table is the only
// way back from solver nodes to orders.
func BuildProblem(
	depot domain.Coordinates,
	orders []*domain.Order,
	vehicleCount int,
	capacity int,
) (*domain.RoutingProblem, domain.NodeTable) {
	points := make([]domain.ProblemPoint, 0, 1+len(orders))
	demands := make([]int, 0, 1+len(orders))
	table := make(domain.NodeTable, len(orders))

	points = append(points, domain.ProblemPoint{Node: domain.DepotNode, Coordinates: depot})
	demands = append(demands, 0)

	for i, o := range orders {
		node := domain.DepotNode + i + 1
		points = append(points, domain.ProblemPoint{Node: node, Coordinates: o.Location})
		// Fractional weights are truncated.
		demands = append(demands, int(o.Demand))
		table[node] = o
	}

	problem := &domain.RoutingProblem{
		Points:       points,
		Demands:      demands,
		VehicleCount: vehicleCount,
		Capacity:     capacity,
	}

	return problem, table
}
