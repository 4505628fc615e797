// Package loader provides the feature loading system.
//
// Each feature (channels, queue) implements Feature and registers its own
// routes when loaded. The start command registers every feature with a
// Manager and calls LoadAll once the global middleware is in place.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
