package metric

import (
	"context"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/events"
)

func EventType(val events.Type) zap.Field {
	return zap.String("event", string(val))
}

func MapID(val string) zap.Field {
	return zap.String("mapId", val)
}

func Reason(val string) zap.Field {
	return zap.String("reason", val)
}

func IsNew(val bool) zap.Field {
	return zap.Bool("isNew", val)
}

// logEvent writes one line per finished load or save
func (m *metric) logEvent(e events.Event, reason string) {
	fields := []zap.Field{EventType(e.Type())}
	switch ev := e.(type) {
	case events.MapLoaded:
		fields = append(fields, MapID(ev.ID))
	case events.MapLoadingFailed:
		fields = append(fields, MapID(ev.ID))
	case events.MapLoadingUnAuthorized:
		fields = append(fields, MapID(ev.ID))
	case events.MapSaved:
		fields = append(fields, MapID(ev.ID), IsNew(ev.IsNew))
	case events.MapSavingFailed, events.MapSavingUnAuthorized:
	default:
		return
	}
	if reason != "" {
		fields = append(fields, Reason(reason))
	}
	m.eventLog.InfoCtx(context.Background(), "", fields...)
}
