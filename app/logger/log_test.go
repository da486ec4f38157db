package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetLevel(t *testing.T) {
	t.Run("exact and glob names", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "mindmup", Level: "debug"},
			{Name: "mindmup*", Level: "info"},
			{Name: "mindmup.storage", Level: "warn"},
			{Name: "*", Level: "fatal"},
		})
		tests := map[string]zap.AtomicLevel{
			"mindmup":         zap.NewAtomicLevelAt(zap.DebugLevel),
			"mindmup.retry":   zap.NewAtomicLevelAt(zap.InfoLevel),
			"mindmup.storage": zap.NewAtomicLevelAt(zap.InfoLevel),
			"random":          zap.NewAtomicLevelAt(zap.FatalLevel),
		}
		for name, want := range tests {
			assert.Equal(t, want.Level(), getLevel(name).Level(), name)
		}
	})
	t.Run("catch-all first", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "*", Level: "ERROR"},
			{Name: "mindmup", Level: "info"},
		})
		assert.Equal(t, zap.ErrorLevel, getLevel("mindmup").Level())
		assert.Equal(t, zap.ErrorLevel, getLevel("other").Level())
	})
	t.Run("invalid levels are skipped", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "*", Level: "invalid"},
			{Name: "mindmup", Level: "info"},
		})
		assert.Equal(t, zap.InfoLevel, getLevel("mindmup").Level())
		assert.Equal(t, logger.Level(), getLevel("mindmup.sub").Level())
	})
}

func TestLevelsFromStr(t *testing.T) {
	levels := LevelsFromStr("mindmup.retry=DEBUG; mindmup.storage*=WARN;ERROR;bad=nope")
	assert.Equal(t, []NamedLevel{
		{Name: "mindmup.retry", Level: "DEBUG"},
		{Name: "mindmup.storage*", Level: "WARN"},
		{Name: "*", Level: "ERROR"},
	}, levels)
}

func TestCtxWithFields(t *testing.T) {
	ctx := CtxWithFields(context.Background(), zap.String("mapId", "foo"))
	ctx = CtxWithFields(ctx, zap.String("op", "load"))
	fields := CtxGetFields(ctx)
	if assert.Len(t, fields, 2) {
		assert.Equal(t, "mapId", fields[0].Key)
		assert.Equal(t, "op", fields[1].Key)
	}
	assert.Empty(t, CtxGetFields(context.Background()))
}

func TestNewNamed(t *testing.T) {
	l1 := NewNamed("mindmup.test")
	l2 := NewNamed("mindmup.test")
	assert.Same(t, l1.Logger, l2.Logger)
}
