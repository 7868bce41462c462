package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(storeBackend string) {
	for _, op := range []string{"append", "remove", "replace", "clear", "set_duration", "restore"} {
		CatalogMutationsTotal.WithLabelValues(op, "success")
		CatalogMutationsTotal.WithLabelValues(op, "error")
	}

	for _, op := range []string{"load", "save"} {
		StoreOperationsTotal.WithLabelValues(storeBackend, op, "success")
		StoreOperationsTotal.WithLabelValues(storeBackend, op, "error")
		StoreOperationDuration.WithLabelValues(storeBackend, op)
	}

	for _, ev := range []string{"load_entry", "load_first", "natural_end", "entry_removed", "sequence_replaced", "clear"} {
		SessionTransitionsTotal.WithLabelValues(ev, "active")
		SessionTransitionsTotal.WithLabelValues(ev, "empty")
	}

	for _, status := range []string{"success", "error", "timeout", "cache_hit"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, kind := range []string{"thumbnail", "probe"} {
		TasksDiscardedTotal.WithLabelValues(kind)
	}

	for _, status := range []string{"accepted", "unsupported_type", "too_large", "error"} {
		UploadsTotal.WithLabelValues(status)
	}

	for _, ev := range []string{"naturalEnd", "metadataLoaded", "select", "transport", "unknown"} {
		SurfaceEventsTotal.WithLabelValues(ev)
	}

	SessionActiveIndex.Set(-1)
}
