package prometheus

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	leaseauth "github.com/MrEthical07/leaseauth"
	"github.com/MrEthical07/leaseauth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() leaseauth.MetricsSnapshot
	AuditDropped() uint64
	AuditDelivered() uint64
}

type counterDesc struct {
	id   leaseauth.MetricID
	desc *prom.Desc
}

type histogramDesc struct {
	id   leaseauth.MetricID
	desc *prom.Desc
}

// PrometheusExporter is a [prom.Collector] over an engine's metrics snapshot.
// Every scrape reads a fresh snapshot; nothing is cached.
type PrometheusExporter struct {
	source         metricsSource
	counters       []counterDesc
	histograms     []histogramDesc
	auditDropped   *prom.Desc
	auditDelivered *prom.Desc
	registry       *prom.Registry
}

// NewPrometheusExporter creates an exporter that reads from engine.
func NewPrometheusExporter(engine *leaseauth.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates an exporter from any snapshot source.
// The exporter registers itself in a private registry served by [PrometheusExporter.Handler].
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	p := &PrometheusExporter{
		source:         source,
		counters:       make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:     make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped:   prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
		auditDelivered: prom.NewDesc(internaldefs.AuditDeliveredName, internaldefs.AuditDeliveredHelp, nil, nil),
		registry:       prom.NewRegistry(),
	}
	for _, def := range internaldefs.CounterDefs {
		p.counters = append(p.counters, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		p.histograms = append(p.histograms, histogramDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	p.registry.MustRegister(p)
	return p
}

// Describe implements [prom.Collector].
func (p *PrometheusExporter) Describe(ch chan<- *prom.Desc) {
	for _, c := range p.counters {
		ch <- c.desc
	}
	for _, h := range p.histograms {
		ch <- h.desc
	}
	ch <- p.auditDropped
	ch <- p.auditDelivered
}

// Collect implements [prom.Collector]. A disabled metrics source yields no samples.
func (p *PrometheusExporter) Collect(ch chan<- prom.Metric) {
	if p == nil || p.source == nil {
		return
	}
	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	delivered := p.source.AuditDelivered()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 && delivered == 0 {
		return
	}

	for _, c := range p.counters {
		ch <- prom.MustNewConstMetric(c.desc, prom.CounterValue, float64(snapshot.Counters[c.id]))
	}
	for _, h := range p.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, le := range internaldefs.HistogramUpperBounds {
			buckets[le] = cumulative[i]
		}
		// The engine keeps no latency sum.
		ch <- prom.MustNewConstHistogram(h.desc, cumulative[len(cumulative)-1], 0, buckets)
	}
	ch <- prom.MustNewConstMetric(p.auditDropped, prom.CounterValue, float64(dropped))
	ch <- prom.MustNewConstMetric(p.auditDelivered, prom.CounterValue, float64(delivered))
}

// Registry returns the private registry the exporter is registered in.
func (p *PrometheusExporter) Registry() *prom.Registry {
	return p.registry
}

// Handler serves the exporter's registry in the Prometheus exposition format.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
