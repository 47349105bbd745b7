package metric

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

const (
	requestsTotalName      = "http_requests_total"
	storeOperationsName    = "task_store_operations_total"
	storeOperationDuration = "task_store_operation_duration_seconds"
)

// IncrementRequestCounter counts one served request in the default set.
func IncrementRequestCounter(handlerPath, method string, statusCode int) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`%s{handler=%q,method=%q,status_code="%d"}`, requestsTotalName, handlerPath, method, statusCode)).Inc()
}

// RecordStoreOperation records the outcome and latency of one repository
// call. Status is "ok", "not_found" or "error".
func RecordStoreOperation(op, status string, started time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`%s{op=%q,status=%q}`, storeOperationsName, op, status)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`%s{op=%q}`, storeOperationDuration, op)).UpdateDuration(started)
}

// WriteMetrics writes the application metrics in Prometheus format to the given writer.
func WriteMetrics(w io.Writer, exposeProcessMetrics bool) {
	metrics.WritePrometheus(w, exposeProcessMetrics)
}
