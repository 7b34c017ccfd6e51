package app

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/nbook/pkg/document"
	"tableflip.dev/nbook/pkg/kernel"
)

// Intent is any document or application intent.
type Intent = any

type describer interface {
	Describe() string
}

// Container is the single owner of the document state and the application
// state. Intents are applied one at a time, in the order they arrive.
type Container struct {
	// serial orders intents; mu guards the state and is never held while a
	// session is released.
	serial   sync.Mutex
	mu       sync.Mutex
	doc      document.State
	app      kernel.AppState
	docs     document.Reducer
	kernels  kernel.Reducer
	log      *zap.Logger
	onChange func()
}

// NewContainer returns a container holding an empty document and a
// disconnected session.
func NewContainer(log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{
		app:     kernel.NewAppState(),
		docs:    document.NewReducer(),
		kernels: kernel.NewReducer(log.Named("kernel")),
		log:     log,
	}
}

// WithIDs replaces the generator for new cell ids.
func (c *Container) WithIDs(newID func() string) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs.NewID = newID
	return c
}

// OnChange registers fn to be called after every applied intent. fn runs on
// the dispatching goroutine without the container lock held.
func (c *Container) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Dispatch routes in to the reducer that owns it. Structural errors leave
// the state unchanged and are returned. Unknown intents are ignored.
func (c *Container) Dispatch(in Intent) error {
	c.serial.Lock()
	release := func() {}
	c.mu.Lock()
	log := c.log
	if d, ok := in.(describer); ok {
		log = log.With(zap.String("intent", d.Describe()))
	}
	switch {
	case document.Handles(in):
		next, err := c.docs.Reduce(c.doc, in)
		if err != nil {
			c.mu.Unlock()
			c.serial.Unlock()
			log.Warn("intent rejected", zap.Error(err))
			return err
		}
		c.doc = next
	case kernel.Handles(in):
		c.app, release = c.kernels.Step(c.app, in)
	default:
		c.mu.Unlock()
		c.serial.Unlock()
		log.Debug("ignoring unknown intent", zap.String("type", fmt.Sprintf("%T", in)))
		return nil
	}
	fn := c.onChange
	c.mu.Unlock()
	release()
	c.serial.Unlock()

	log.Debug("intent applied")
	if fn != nil {
		fn()
	}
	return nil
}

// Document returns the current document state snapshot.
func (c *Container) Document() document.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// App returns the current application state snapshot.
func (c *Container) App() kernel.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.app
}
