package ports

import (
	"context"
	"errors"
)

var ErrOrdersClaimed = errors.New("orders are being routed by another request")

// Port: short-lived exclusive claims on order ids across concurrent requests.
type OrderClaimer interface {
	// Claim all ids for owner or none. The returned release func frees them.
	Claim(ctx context.Context, owner string, ids []int64) (release func(context.Context), err error)
}
