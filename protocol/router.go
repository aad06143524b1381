package protocol

import (
	"errors"
	"fmt"
)

var ErrNoHandler = errors.New("protocol: no handler")

// Router dispatches messages to one typed handler per command.
type Router struct {
	handlers map[Command]func(Message) error
}

func NewRouter() *Router {
	return &Router{handlers: make(map[Command]func(Message) error)}
}

// Handle registers fn for the command of T, replacing any earlier handler.
func Handle[T Message](r *Router, fn func(T) error) {
	var zero T
	cmd := zero.Command()
	r.handlers[cmd] = func(m Message) error {
		v, ok := m.(T)
		if !ok {
			return fmt.Errorf("protocol: %s payload has type %T", cmd, m)
		}
		return fn(v)
	}
}

// Has reports whether cmd has a handler.
func (r *Router) Has(cmd Command) bool {
	_, ok := r.handlers[cmd]
	return ok
}

func (r *Router) Dispatch(m Message) error {
	if m == nil {
		return ErrMissingCommand
	}
	h, ok := r.handlers[m.Command()]
	if !ok {
		return fmt.Errorf("%w for %s", ErrNoHandler, m.Command())
	}
	return h(m)
}

// DispatchJSON decodes data and dispatches the result.
func (r *Router) DispatchJSON(data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}
	return r.Dispatch(m)
}
