package middleware

import "context"

// SetCookie copies Response.Cookie into a Set-Cookie header.
func SetCookie() Stage {
	return Stage{
		Name: "set-cookie",
		After: func(_ context.Context, x *Exchange) error {
			if x.Response != nil && x.Response.Cookie != "" {
				x.Response.SetHeader("Set-Cookie", x.Response.Cookie)
			}

			return nil
		},
	}
}
