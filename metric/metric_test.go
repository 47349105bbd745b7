package metric_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"task_api/metric"
)

func TestRequestCounter(t *testing.T) {
	metric.IncrementRequestCounter("/tasks/{id}", http.MethodPut, http.StatusNotFound)
	metric.IncrementRequestCounter("/tasks/{id}", http.MethodPut, http.StatusNotFound)

	var buf bytes.Buffer
	metric.WriteMetrics(&buf, false)

	expected := `http_requests_total{handler="/tasks/{id}",method="PUT",status_code="404"} 2`
	if !strings.Contains(buf.String(), expected) {
		t.Errorf("Expected metric %q not found in output:\n%s", expected, buf.String())
	}
}

func TestRecordStoreOperation(t *testing.T) {
	metric.RecordStoreOperation("metric_test_update", "not_found", time.Now().Add(-25*time.Millisecond))

	var buf bytes.Buffer
	metric.WriteMetrics(&buf, false)
	output := buf.String()

	expectedMetrics := []string{
		`task_store_operations_total{op="metric_test_update",status="not_found"} 1`,
		`task_store_operation_duration_seconds_count{op="metric_test_update"} 1`,
		`task_store_operation_duration_seconds_bucket{op="metric_test_update",vmrange=`,
	}

	for _, expected := range expectedMetrics {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected metric %q not found in output:\n%s", expected, output)
		}
	}
}
