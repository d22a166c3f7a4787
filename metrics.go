package xlist

import "github.com/prometheus/client_golang/prometheus"

// RegistryCollector exports the bookkeeping of every list in a
// Registry. Register it once per registry:
//
//	prometheus.MustRegister(xlist.NewRegistryCollector(xlist.DefaultRegistry))
type RegistryCollector struct {
	reg *Registry

	size     *prometheus.Desc
	capacity *prometheus.Desc
	cursors  *prometheus.Desc
	version  *prometheus.Desc
}

func NewRegistryCollector(reg *Registry) *RegistryCollector {
	return &RegistryCollector{
		reg: reg,

		size: prometheus.NewDesc(
			"xlist_size",
			"Number of elements in the list",
			[]string{"list"}, nil,
		),
		capacity: prometheus.NewDesc(
			"xlist_capacity",
			"Number of allocated element slots in the list",
			[]string{"list"}, nil,
		),
		cursors: prometheus.NewDesc(
			"xlist_cursors",
			"Number of live cursors attached to the list",
			[]string{"list"}, nil,
		),
		version: prometheus.NewDesc(
			"xlist_version_total",
			"Structural changes applied to the list",
			[]string{"list"}, nil,
		),
	}
}

func (rc *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rc.size
	ch <- rc.capacity
	ch <- rc.cursors
	ch <- rc.version
}

func (rc *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	rc.reg.Range(func(name string, s Stats) bool {
		ch <- prometheus.MustNewConstMetric(
			rc.size, prometheus.GaugeValue, float64(s.Size), name)
		ch <- prometheus.MustNewConstMetric(
			rc.capacity, prometheus.GaugeValue, float64(s.Capacity), name)
		ch <- prometheus.MustNewConstMetric(
			rc.cursors, prometheus.GaugeValue, float64(s.Cursors), name)
		ch <- prometheus.MustNewConstMetric(
			rc.version, prometheus.CounterValue, float64(s.Version), name)
		return true
	})
}
