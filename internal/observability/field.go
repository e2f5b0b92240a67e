package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FieldMetrics counts restoration work as it is recorded.
type FieldMetrics struct {
	visitsLogged   *prometheus.CounterVec
	metricValues   *prometheus.CounterVec
	tasksCompleted prometheus.Counter
	stageChanges   *prometheus.CounterVec
	photosStored   prometheus.Counter
	dashboardCache *prometheus.CounterVec
}

// NewFieldMetrics creates and registers the field-work metrics
func NewFieldMetrics(registry *prometheus.Registry) (*FieldMetrics, error) {
	m := &FieldMetrics{
		visitsLogged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "river_visits_logged_total",
				Help: "Visit logs recorded, by whether they were planned",
			},
			[]string{"kind"}, // planned, unplanned
		),
		metricValues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "river_metric_value_total",
				Help: "Sum of recorded metric values by type",
			},
			[]string{"metric_type"},
		),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "river_tasks_completed_total",
			Help: "Tasks marked complete",
		}),
		stageChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "river_section_stage_changes_total",
				Help: "Section stage transitions by new stage",
			},
			[]string{"stage"},
		),
		photosStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "river_photos_stored_total",
			Help: "Photo blobs written to storage",
		}),
		dashboardCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "river_dashboard_cache_total",
				Help: "Dashboard cache lookups by result",
			},
			[]string{"result"}, // hit, miss
		),
	}
	err := register(registry,
		m.visitsLogged,
		m.metricValues,
		m.tasksCompleted,
		m.stageChanges,
		m.photosStored,
		m.dashboardCache,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordVisit counts a stored visit and the values it carried.
func (m *FieldMetrics) RecordVisit(planned bool, values map[string]int64) {
	if m == nil {
		return
	}
	kind := "unplanned"
	if planned {
		kind = "planned"
	}
	m.visitsLogged.WithLabelValues(kind).Inc()
	for metricType, v := range values {
		m.metricValues.WithLabelValues(metricType).Add(float64(v))
	}
}

func (m *FieldMetrics) RecordTaskCompleted() {
	if m == nil {
		return
	}
	m.tasksCompleted.Inc()
}

func (m *FieldMetrics) RecordStageChange(stage string) {
	if m == nil {
		return
	}
	m.stageChanges.WithLabelValues(stage).Inc()
}

func (m *FieldMetrics) RecordPhotoStored() {
	if m == nil {
		return
	}
	m.photosStored.Inc()
}

func (m *FieldMetrics) RecordDashboardCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.dashboardCache.WithLabelValues(result).Inc()
}
