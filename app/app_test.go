package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppServiceRegistry(t *testing.T) {
	app := new(App)
	t.Run("Register", func(t *testing.T) {
		app.Register(newTestService(testTypeRunnable, "c1", nil, nil))
		app.Register(newTestService(testTypeRunnable, "r1", nil, nil))
		app.Register(newTestService(testTypeComponent, "s1", nil, nil))
		assert.Panics(t, func() { app.Register(newTestService(testTypeComponent, "s1", nil, nil)) })
	})
	t.Run("Component", func(t *testing.T) {
		assert.Nil(t, app.Component("not-registered"))
		for _, name := range []string{"c1", "r1", "s1"} {
			s := app.Component(name)
			assert.NotNil(t, s, name)
			assert.Equal(t, name, s.Name())
		}
	})
	t.Run("MustComponent", func(t *testing.T) {
		for _, name := range []string{"c1", "r1", "s1"} {
			assert.NotPanics(t, func() { app.MustComponent(name) }, name)
		}
		assert.Panics(t, func() { app.MustComponent("not-registered") })
	})
	t.Run("MustComponent generic", func(t *testing.T) {
		r := MustComponent[ComponentRunnable](app)
		assert.Equal(t, "c1", r.Name())
		assert.Panics(t, func() { MustComponent[fmt.Stringer](app) })
	})
	t.Run("ComponentNames", func(t *testing.T) {
		names := app.ComponentNames()
		assert.Equal(t, names, []string{"c1", "r1", "s1"})
	})
}

func TestApp_IterateComponents(t *testing.T) {
	app := new(App)

	app.Register(newTestService(testTypeRunnable, "c1", nil, nil))
	app.Register(newTestService(testTypeRunnable, "r1", nil, nil))
	app.Register(newTestService(testTypeComponent, "s1", nil, nil))

	var got []string
	app.IterateComponents(func(s Component) {
		got = append(got, s.Name())
	})

	assert.Equal(t, []string{"c1", "r1", "s1"}, got)
}

func TestAppStart(t *testing.T) {
	t.Run("SuccessStartStop", func(t *testing.T) {
		app := new(App)
		seq := new(testSeq)
		services := [...]iTestService{
			newTestService(testTypeRunnable, "c1", nil, seq),
			newTestService(testTypeRunnable, "r1", nil, seq),
			newTestService(testTypeComponent, "s1", nil, seq),
			newTestService(testTypeRunnable, "c2", nil, seq),
		}
		for _, s := range services {
			app.Register(s)
		}
		ctx := context.Background()
		require.NoError(t, app.Start(ctx))
		require.NoError(t, app.Close(ctx))

		var actual []testIds
		for _, s := range services {
			actual = append(actual, s.Ids())
		}

		expected := []testIds{
			{1, 5, 10},
			{2, 6, 9},
			{3, 0, 0},
			{4, 7, 8},
		}

		assert.Equal(t, expected, actual)
	})

	t.Run("InitError", func(t *testing.T) {
		app := new(App)
		seq := new(testSeq)
		expectedErr := fmt.Errorf("testError")
		services := [...]iTestService{
			newTestService(testTypeRunnable, "c1", nil, seq),
			newTestService(testTypeRunnable, "c2", expectedErr, seq),
		}
		for _, s := range services {
			app.Register(s)
		}

		err := app.Start(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)

		var actual []testIds
		for _, s := range services {
			actual = append(actual, s.Ids())
		}

		expected := []testIds{
			{1, 0, 4},
			{2, 0, 3},
		}
		assert.Equal(t, expected, actual)
	})
}

func TestAppStartStat(t *testing.T) {
	app := new(App)
	seq := new(testSeq)
	app.Register(newTestService(testTypeRunnable, "r1", nil, seq)).
		Register(newTestService(testTypeComponent, "s1", nil, seq))
	require.NoError(t, app.Start(context.Background()))
	stat := app.StartStat()
	assert.Contains(t, stat.SpentMsPerComp, "r1")
	assert.NotContains(t, stat.SpentMsPerComp, "s1")
	require.NoError(t, app.Close(context.Background()))
}

func TestAppClose(t *testing.T) {
	t.Run("close errors are joined", func(t *testing.T) {
		app := new(App)
		seq := new(testSeq)
		errA, errB := errors.New("a failed"), errors.New("b failed")
		app.Register(newTestService(testTypeRunnable, "a", nil, seq)).
			Register(newTestService(testTypeRunnable, "b", nil, seq))
		require.NoError(t, app.Start(context.Background()))
		app.Component("a").(*testRunnable).err = errA
		app.Component("b").(*testRunnable).err = errB

		err := app.Close(context.Background())
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
		assert.Contains(t, err.Error(), "component 'b' close error")
	})
	t.Run("timeout", func(t *testing.T) {
		defer func(d time.Duration) {
			closeTimeout = d
		}(closeTimeout)
		closeTimeout = 20 * time.Millisecond

		app := new(App)
		blocking := &blockingRunnable{
			testRunnable: testRunnable{testComponent: testComponent{name: "blocking"}},
			release:      make(chan struct{}),
		}
		defer close(blocking.release)
		app.Register(blocking)
		require.NoError(t, app.Start(context.Background()))
		assert.ErrorIs(t, app.Close(context.Background()), ErrCloseTimeout)
	})
}

const (
	testTypeComponent int = iota
	testTypeRunnable
)

func newTestService(componentType int, name string, err error, seq *testSeq) (s iTestService) {
	ts := testComponent{name: name, err: err, seq: seq}
	switch componentType {
	case testTypeComponent:
		return &ts
	case testTypeRunnable:
		return &testRunnable{testComponent: ts}
	}
	return nil
}

type iTestService interface {
	Component
	Ids() (ids testIds)
}

type testIds struct {
	initId  int64
	runId   int64
	closeId int64
}

type testComponent struct {
	name string
	err  error
	seq  *testSeq
	ids  testIds
}

func (t *testComponent) Init(a *App) error {
	t.ids.initId = t.seq.New()
	return t.err
}

func (t *testComponent) Name() string { return t.name }

func (t *testComponent) Ids() testIds {
	return t.ids
}

type testRunnable struct {
	testComponent
}

func (t *testRunnable) Run(ctx context.Context) error {
	t.ids.runId = t.seq.New()
	return t.err
}

func (t *testRunnable) Close(ctx context.Context) error {
	t.ids.closeId = t.seq.New()
	return t.err
}

type testSeq struct {
	seq int64
}

func (ts *testSeq) New() int64 {
	if ts == nil {
		return 0
	}
	return atomic.AddInt64(&ts.seq, 1)
}

type blockingRunnable struct {
	testRunnable
	release chan struct{}
}

func (b *blockingRunnable) Close(ctx context.Context) error {
	<-b.release
	return nil
}
