package middleware

import "context"

// Normalizer replaces missing path and query parameter maps with empty ones.
func Normalizer() Stage {
	return Stage{
		Name: "http-event-normalizer",
		Before: func(_ context.Context, x *Exchange) error {
			if x.Event.PathParameters == nil {
				x.Event.PathParameters = map[string]string{}
			}
			if x.Event.QueryStringParameters == nil {
				x.Event.QueryStringParameters = map[string]string{}
			}

			return nil
		},
	}
}
