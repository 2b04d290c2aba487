package domain

// DepotNode is the solver node that always denotes the depot.
const DepotNode = 1

// One numbered point of a routing problem.
type ProblemPoint struct {
	Node        int
	Coordinates Coordinates
}

// Solver-ready capacitated routing problem.
// Points[0] is the depot; Points and Demands are index-aligned.
type RoutingProblem struct {
	Points       []ProblemPoint
	Demands      []int
	VehicleCount int
	Capacity     int
}

// NodeTable maps solver node numbers (other than the depot) back to orders.
type NodeTable map[int]*Order

// Ordered node sequence for one vehicle as returned by the solver.
type SolverRoute []int

// Real-world driving route returned by the routing engine.
type EngineRoute struct {
	Geometry        []byte
	DistanceMeters  float64
	DurationSeconds float64
	Instructions    []Instruction
}
