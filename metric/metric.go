// Package metric exposes prometheus metrics of the map repository.
package metric

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/events"
	"github.com/jljohnson/mindmup/maprepository"
	"github.com/jljohnson/mindmup/storageadapter"
)

const CName = "mindmup.metric"

const namespace = "mindmup"

var log = logger.NewNamed(CName)

type configSource interface {
	GetMetric() config.Metric
}

func New() Metric {
	return new(metric)
}

type Metric interface {
	Registry() *prometheus.Registry
	// Addr returns the listening address of the /metrics endpoint, empty when it is disabled
	Addr() string
	app.ComponentRunnable
}

type metric struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	failures *prometheus.CounterVec
	eventLog logger.CtxLogger
	config   config.Metric
	server   *http.Server
	addr     string
}

func (m *metric) Init(a *app.App) (err error) {
	m.registry = prometheus.NewRegistry()
	if cs, ok := a.Component(config.CName).(configSource); ok {
		m.config = cs.GetMetric()
	}
	m.eventLog = logger.NewNamed("mindmup.eventlog")
	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "events_total",
		Help:      "Map lifecycle events by type.",
	}, []string{"type"})
	m.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "failures_total",
		Help:      "Failed loads and saves by reason.",
	}, []string{"type", "reason"})
	for _, c := range []prometheus.Collector{
		m.events,
		m.failures,
		newVersionsCollector(a),
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
	} {
		if err = m.registry.Register(c); err != nil {
			return err
		}
	}
	if repo, ok := a.Component(maprepository.CName).(maprepository.MapRepository); ok {
		for _, t := range events.Types {
			repo.AddEventListener(t, m.observe)
		}
	}
	return nil
}

func (m *metric) Name() string {
	return CName
}

func (m *metric) Run(ctx context.Context) (err error) {
	if m.config.Addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", m.config.Addr)
	if err != nil {
		return err
	}
	m.addr = ln.Addr().String()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", m.addr))
	return nil
}

func (m *metric) Registry() *prometheus.Registry {
	return m.registry
}

func (m *metric) Addr() string {
	return m.addr
}

func (m *metric) observe(e events.Event) {
	m.events.WithLabelValues(string(e.Type())).Inc()
	reason := failureReason(e)
	if reason != "" {
		m.failures.WithLabelValues(string(e.Type()), reasonLabel(reason)).Inc()
	}
	m.logEvent(e, reason)
}

// labelReasons bounds the reason label, anything else is counted as a storage error
var labelReasons = map[string]struct{}{
	storageadapter.ReasonNetworkError:    {},
	storageadapter.ReasonNoAccessAllowed: {},
	storageadapter.ReasonNotFound:        {},
	storageadapter.ReasonFormatError:     {},
	storageadapter.ReasonStorageError:    {},
}

func reasonLabel(reason string) string {
	if _, ok := labelReasons[reason]; ok {
		return reason
	}
	return storageadapter.ReasonStorageError
}

func failureReason(e events.Event) string {
	switch ev := e.(type) {
	case events.MapLoadingFailed:
		return ev.Reason
	case events.MapLoadingUnAuthorized:
		return ev.Reason
	case events.MapSavingFailed:
		return ev.Reason
	case events.MapSavingUnAuthorized:
		return ev.Reason
	}
	return ""
}

func (m *metric) Close(ctx context.Context) (err error) {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
