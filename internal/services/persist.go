package services

import (
	"context"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
)

// PersistRoutes writes every successful result, its stops and the order state
// change in one transaction. Nothing is written when no result succeeded.
// Route ids are assigned to results only after the transaction commits.
func PersistRoutes(ctx context.Context, store ports.RouteStore, results []*RouteResult) error {
	pending := make([]*RouteResult, 0, len(results))
	for _, r := range results {
		if r.Status == domain.OutcomeSuccess {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	ids := make([]int64, len(pending))

	err := store.WithinTx(ctx, func(tx ports.RouteTx) error {
		orderIDs := make([]int64, 0, 16)

		for i, r := range pending {
			routeID, err := tx.InsertRoute(ctx, r.Route())
			if err != nil {
				return err
			}
			ids[i] = routeID

			for _, stop := range r.Stops {
				if err := tx.InsertStop(ctx, routeID, stop); err != nil {
					return err
				}
				orderIDs = append(orderIDs, stop.OrderID)
			}
		}

		return tx.MarkOrdersInProcess(ctx, orderIDs)
	})
	if err != nil {
		return fmt.Errorf("persist routes: %w", err)
	}

	for i, r := range pending {
		id := ids[i]
		r.RouteID = &id
	}

	return nil
}
