package app

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

type invariantRoute struct {
	module string
	route  string
	check  sdk.Invariant
}

// invariantRegistry collects module invariants and runs them after every
// operation
type invariantRegistry struct {
	routes []invariantRoute
}

var _ sdk.InvariantRegistry = (*invariantRegistry)(nil)

// RegisterRoute implements sdk.InvariantRegistry
func (r *invariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r.routes = append(r.routes, invariantRoute{module: moduleName, route: route, check: invar})
}

// Routes returns the registered routes as module/route
func (r *invariantRegistry) Routes() []string {
	names := make([]string, len(r.routes))
	for i, rt := range r.routes {
		names[i] = fmt.Sprintf("%s/%s", rt.module, rt.route)
	}
	return names
}

// Check runs every route and stops at the first broken one
func (r *invariantRegistry) Check(ctx sdk.Context) (string, string, bool) {
	for _, rt := range r.routes {
		if msg, broken := rt.check(ctx); broken {
			return fmt.Sprintf("%s/%s", rt.module, rt.route), msg, true
		}
	}
	return "", "", false
}
