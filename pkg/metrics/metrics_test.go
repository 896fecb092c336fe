package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("GET", "/api/sweets", 200, 120*time.Millisecond)
	m.ObserveRequest("GET", "/api/sweets", 200, 80*time.Millisecond)
	m.ObserveRequest("POST", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"method": "GET", "route": "/api/sweets", "status": "200"}); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}

	if _, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); err != nil {
		t.Fatalf("expected empty route to be labelled unknown: %v", err)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", map[string]string{"method": "GET", "route": "/api/sweets"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got < 0.19 || got > 0.21 {
		t.Fatalf("expected duration sum ~0.2, got %f", got)
	}
}

func TestInventoryMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)
	m.IncPurchase()
	m.IncPurchase()
	m.IncPurchaseRejection(enums.PurchaseRejectionOutOfStock)
	m.IncPurchaseRejection(enums.PurchaseRejectionNotFound)
	m.IncPurchaseRejection(enums.PurchaseRejectionOutOfStock)
	m.AddRestocked(3)
	m.AddRestocked(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"sweets_purchases_total", nil, 2},
		{"sweets_purchase_rejections_total", map[string]string{"reason": "out_of_stock"}, 2},
		{"sweets_purchase_rejections_total", map[string]string{"reason": "not_found"}, 1},
		{"sweets_restocked_units_total", nil, 3},
	}
	for _, c := range checks {
		got, err := fetchCounterValue(mfs, c.name, c.labels)
		if err != nil {
			t.Fatalf("fetch %s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s%v: expected %f, got %f", c.name, c.labels, c.want, got)
		}
	}
}

func TestNilRecordersAreNoOps(t *testing.T) {
	var inv *InventoryMetrics
	inv.IncPurchase()
	inv.IncPurchaseRejection(enums.PurchaseRejectionNotFound)
	inv.AddRestocked(1)
	NewInventoryMetrics(nil).IncPurchase()

	var httpMetrics *HTTPMetrics
	httpMetrics.ObserveRequest("GET", "/", 200, time.Second)
	NewHTTPMetrics(nil).ObserveRequest("GET", "/", 200, time.Second)
}

func TestNewRegistryIncludesRuntimeCollectors(t *testing.T) {
	mfs, err := NewRegistry().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if findMetricFamily(mfs, "go_goroutines") == nil {
		t.Fatal("expected go_goroutines from the go collector")
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
