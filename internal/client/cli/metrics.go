package cli

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const metricsPrefix = "iamclient_"

func (a *App) metricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return r
}

func (a *App) startMetricsServer(ctx context.Context) {
	a.metricsSrv = &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           a.metricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := a.metricsSrv

	go func() {
		a.log.Info(ctx, "serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error(ctx, "metrics server stopped", "error", err)
		}
	}()
}

// Stats prints the client's own metrics: refresh cycles, queued requests and
// replays.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}

	printed := 0
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricsPrefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			a.printf("%s%s %g\n", mf.GetName(), labelString(m), metricValue(mf.GetType(), m))
			printed++
		}
	}
	if printed == 0 {
		a.println("No activity yet.")
	}
	return nil
}

func labelString(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		pairs = append(pairs, l.GetName()+"=\""+l.GetValue()+"\"")
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	}
	return 0
}
