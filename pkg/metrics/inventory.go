package metrics

import (
	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics tracks stock movements.
type InventoryMetrics struct {
	purchases  prometheus.Counter
	rejections *prometheus.CounterVec
	restocked  prometheus.Counter
}

// NewInventoryMetrics registers the inventory counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	purchases := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweets_purchases_total",
		Help: "Successful single-unit purchases.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweets_purchase_rejections_total",
		Help: "Purchases refused, partitioned by reason.",
	}, []string{"reason"})
	restocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweets_restocked_units_total",
		Help: "Units added to stock by restock operations.",
	})
	reg.MustRegister(purchases, rejections, restocked)
	return &InventoryMetrics{
		purchases:  purchases,
		rejections: rejections,
		restocked:  restocked,
	}
}

func (m *InventoryMetrics) IncPurchase() {
	if m == nil || m.purchases == nil {
		return
	}
	m.purchases.Inc()
}

func (m *InventoryMetrics) IncPurchaseRejection(reason enums.PurchaseRejection) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason.String())).Inc()
}

func (m *InventoryMetrics) AddRestocked(units int) {
	if m == nil || m.restocked == nil || units <= 0 {
		return
	}
	m.restocked.Add(float64(units))
}
