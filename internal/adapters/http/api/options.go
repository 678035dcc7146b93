package api

type settings struct {
	noData func(error) bool
}

// Option configures a Server.
type Option func(*settings)

// WithNoDataCheck sets the predicate that maps pipeline errors to
// 503 no_data instead of 500.
func WithNoDataCheck(fn func(error) bool) Option {
	return func(s *settings) {
		if fn != nil {
			s.noData = fn
		}
	}
}
