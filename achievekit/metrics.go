package achievekit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	achievementsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_achievements_completed_total",
		Help: "Achievements completed, by module",
	}, []string{"module"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_events_published_total",
		Help: "Events published on the achievement bus",
	}, []string{"event"})

	eventHandlerPanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_event_handler_panics_total",
		Help: "Event handlers that panicked during dispatch",
	}, []string{"event"})

	saveDataUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_savedata_uploads_total",
		Help: "Save data uploads by trigger and status",
	}, []string{"trigger", "status"})

	saveDataUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gagforge_savedata_upload_duration_seconds",
		Help:    "Time to snapshot, compress and upload save data",
		Buckets: prometheus.DefBuckets,
	})

	saveDataLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_savedata_loads_total",
		Help: "Save data loads on connection by result",
	}, []string{"result"})

	completedCountPushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gagforge_completed_count_pushes_total",
		Help: "Completed-count profile pushes by status",
	}, []string{"status"})
)
