package ebus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var ErrNoListener = errors.New("no listener registered")

type EBus struct {
	listeners map[string][]Listener
	mx        sync.RWMutex
}

func New() *EBus {
	return &EBus{
		listeners: make(map[string][]Listener),
	}
}

func (e *EBus) Subscribe(event any, handler Listener) *EBus {
	e.mx.Lock()
	defer e.mx.Unlock()

	name := nameOf(event)
	e.listeners[name] = append(e.listeners[name], handler)

	return e
}

func (e *EBus) Has(event any) bool {
	e.mx.RLock()
	defer e.mx.RUnlock()

	return len(e.listeners[nameOf(event)]) > 0
}

// Emit calls listeners in subscription order and stops at the first error.
func (e *EBus) Emit(ctx context.Context, event any) error {
	e.mx.RLock()
	handlers := e.listeners[nameOf(event)]
	e.mx.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: type %T", ErrNoListener, event)
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func nameOf(event any) string {
	t := reflect.TypeOf(event)
	return t.PkgPath() + "." + t.Name()
}

func isNoListener(err error) bool {
	return errors.Is(err, ErrNoListener)
}
