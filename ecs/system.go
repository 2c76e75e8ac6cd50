package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// Initializer is implemented by systems that need setup once the scheduler starts.
type Initializer interface {
	Initialize(storage *Storage) error
}

// Terminator is implemented by systems that hold resources to release when the scheduler stops.
type Terminator interface {
	Terminate()
}
