// Package controller wraps the festival API per domain. Reads never fail:
// transport errors are logged and a safe empty value is returned. Mutations
// return the wrapped error so callers can surface a failure state.
package controller

import (
	"context"
)

// Transport is the subset of api.Client the controllers use.
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// unwrapRecord returns the nested user/data object of a response envelope,
// or the response itself.
func unwrapRecord(resp map[string]any) map[string]any {
	for _, key := range []string{"user", "data"} {
		if inner, ok := resp[key].(map[string]any); ok {
			return inner
		}
	}
	return resp
}

// unwrapList accepts either a bare array or a {data: [...]} envelope.
func unwrapList(raw any) []map[string]any {
	if env, ok := raw.(map[string]any); ok {
		raw = env["data"]
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
