package comparison

import "context"

// Hooks carries per-call logging and tracing callbacks. Either may be nil.
type Hooks struct {
	Logf    func(format string, args ...any)
	OnField func(FieldComparison)
}

type hooksKey struct{}

// WithHooks attaches hooks to ctx for Engine.Compare.
func WithHooks(ctx context.Context, h Hooks) context.Context {
	return context.WithValue(ctx, hooksKey{}, h)
}

// HooksFromContext returns the hooks set by WithHooks, or zero Hooks.
func HooksFromContext(ctx context.Context) Hooks {
	if ctx == nil {
		return Hooks{}
	}
	h, _ := ctx.Value(hooksKey{}).(Hooks)
	return h
}

func (h Hooks) logf(format string, args ...any) {
	if h.Logf != nil {
		h.Logf(format, args...)
	}
}

func (h Hooks) field(fc FieldComparison) {
	if h.OnField != nil {
		h.OnField(fc)
	}
}
