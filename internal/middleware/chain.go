package middleware

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoResponse is returned when an invocation ends without any response.
var ErrNoResponse = errors.New("handler produced no response")

// Hook runs one phase of a stage against the exchange.
type Hook func(ctx context.Context, x *Exchange) error

// Stage is a unit of pipeline logic. Any hook may be nil.
type Stage struct {
	Name    string
	Before  Hook
	After   Hook
	OnError Hook
}

// Handler is the business logic wrapped by the pipeline. Its context carries
// the exchange logger, available through zerolog.Ctx.
type Handler func(ctx context.Context, event *Event, hctx map[string]any) (*Response, error)

// Chain runs stages around a handler.
//
// Before hooks run in registration order, then the handler, then after hooks
// in registration order. A failure anywhere records the error, clears the
// in-flight response and runs every onError hook in registration order.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: append([]Stage(nil), stages...)}
}

// Use appends stages.
func (c *Chain) Use(stages ...Stage) *Chain {
	c.stages = append(c.stages, stages...)

	return c
}

// Stages returns a copy of the registered stages.
func (c *Chain) Stages() []Stage {
	return append([]Stage(nil), c.stages...)
}

// Run executes the pipeline.
//
// It returns nil once a response is established (x.Response), the failure
// itself when no onError hook produced a response, the onError hook's error
// when one fails, and ctx.Err() when the context is done at a stage boundary.
// A cancelled invocation never runs onError hooks.
func (c *Chain) Run(ctx context.Context, handler Handler, x *Exchange) error {
	if err := c.phase(ctx, x, func(s Stage) Hook { return s.Before }); err != nil {
		return c.fail(ctx, x, err)
	}

	resp, err := invoke(ctx, handler, x)
	if err == nil && resp == nil {
		err = ErrNoResponse
	}
	if err != nil {
		return c.fail(ctx, x, err)
	}
	x.Response = resp

	if err := c.phase(ctx, x, func(s Stage) Hook { return s.After }); err != nil {
		return c.fail(ctx, x, err)
	}

	if x.Response == nil {
		return ErrNoResponse
	}

	return nil
}

func (c *Chain) phase(ctx context.Context, x *Exchange, pick func(Stage) Hook) error {
	for _, s := range c.stages {
		hook := pick(s)
		if hook == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := hook(ctx, x); err != nil {
			return err
		}
	}

	return nil
}

func (c *Chain) fail(ctx context.Context, x *Exchange, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		x.Response = nil
		return ctxErr
	}

	x.Error = err
	x.Response = nil

	for _, s := range c.stages {
		if s.OnError == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			x.Response = nil
			return ctxErr
		}
		if hookErr := s.OnError(ctx, x); hookErr != nil {
			return errors.Wrapf(hookErr, "%s: onError failed", s.Name)
		}
	}

	if x.Response == nil {
		return x.Error
	}

	return nil
}

func invoke(ctx context.Context, handler Handler, x *Exchange) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = errors.Errorf("handler panic: %v", r)
		}
	}()

	return handler(x.Log().WithContext(ctx), x.Event, x.Context)
}
