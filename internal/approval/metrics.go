package approval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: поданные заявки по типам
	ProposalsTotal *prometheus.CounterVec

	// Решения чекеров (approved/rejected) по типам заявок
	DecisionsTotal *prometheus.CounterVec

	// Saturation: текущая глубина очереди pending
	PendingActions prometheus.Gauge

	// Errors: отказы применения эффекта (заявка осталась pending)
	EffectFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		ProposalsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "portal_action_proposals_total",
			Help: "Total number of proposed maker-checker actions.",
		}, []string{"type"}),

		DecisionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "portal_action_decisions_total",
			Help: "Total number of recorded decisions by result.",
		}, []string{"result", "type"}),

		PendingActions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "portal_pending_actions",
			Help: "Current number of actions awaiting a decision.",
		}),

		EffectFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "portal_effect_failures_total",
			Help: "Approvals that failed during effect application.",
		}),
	}
}
