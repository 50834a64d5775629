package reconcile

import "context"

type ctxKey int

const (
	passIDKey ctxKey = iota
	triggerKey
)

// Trigger names used for logging and metrics labels
const (
	TriggerActivation     = "activation"
	TriggerCommand        = "command"
	TriggerSettingsChange = "settings_change"
	TriggerSchedule       = "schedule"
	TriggerManual         = "manual"
)

// WithPassID attaches a pass identifier to ctx
func WithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey, id)
}

// PassID returns the pass identifier carried by ctx, or ""
func PassID(ctx context.Context) string {
	id, _ := ctx.Value(passIDKey).(string)
	return id
}

// WithTrigger records what started the pass
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey, trigger)
}

// Trigger returns the trigger carried by ctx, defaulting to TriggerManual
func Trigger(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey).(string); ok && t != "" {
		return t
	}
	return TriggerManual
}
