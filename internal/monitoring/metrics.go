package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total orders created, by outcome",
		},
		[]string{"outcome"},
	)

	capacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capacity_rejections_total",
			Help: "Order attempts rejected because a ticket type was sold out",
		},
	)

	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Processed payment confirmation events, by resolution",
		},
		[]string{"resolution"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued",
		},
	)

	ordersExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_expired_total",
			Help: "Pending orders expired by the reaper",
		},
	)

	notificationJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_jobs_total",
			Help: "Notification job dispatch attempts, by result",
		},
		[]string{"result"},
	)
)

// Recorder exposes the counters to the usecase layer without leaking
// prometheus types into it.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OrderCreated(outcome string) {
	ordersCreated.WithLabelValues(outcome).Inc()
}

func (r *Recorder) CapacityRejected() {
	capacityRejections.Inc()
}

func (r *Recorder) Reconciled(resolution string) {
	reconciliations.WithLabelValues(resolution).Inc()
}

func (r *Recorder) TicketsIssued(n int) {
	ticketsIssued.Add(float64(n))
}

func (r *Recorder) OrdersExpired(n int) {
	ordersExpired.Add(float64(n))
}

func (r *Recorder) NotificationDispatched(result string) {
	notificationJobs.WithLabelValues(result).Inc()
}
