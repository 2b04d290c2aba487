package domain

// Lifecycle state of an order as stored in the orders table.
type OrderState string

const (
	OrderPending   OrderState = "Pendiente"
	OrderInProcess OrderState = "En Proceso"
	OrderDelivered OrderState = "Entregado"
	OrderCancelled OrderState = "Cancelado"
)

// Represents a customer order awaiting (or undergoing) delivery.
// Demand is the aggregated weight of its line items (quantity * product weight)
// and is what the vehicle capacity constrains.
type Order struct {
	OrderID           int64
	CustomerFirstName string
	CustomerLastName  string
	DeliveryAddress   string
	Location          Coordinates
	Demand            float64
	State             OrderState
}
