package normalize

// RouteSet is the set of route-stop descriptions for the current period.
// Membership is exact and case-sensitive: a container name differing only in
// case from a route description is not on route.
type RouteSet map[string]struct{}

// NewRouteSet builds the set once per route-table load.
func NewRouteSet(descriptions []string) RouteSet {
	s := make(RouteSet, len(descriptions))
	for _, d := range descriptions {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether the container name appears on the route list.
func (s RouteSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
