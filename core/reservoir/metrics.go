package reservoir

// MetricsReporter defines the interface for reporting sampling metrics
type MetricsReporter interface {
	// ReportReservoirSize reports the current size of the sample
	ReportReservoirSize(size int)

	// ReportSeenItems reports the running count of items seen
	ReportSeenItems(count int64)

	// ReportSampledItems reports items that entered the sample
	ReportSampledItems(count int)

	// ReportDiscardedItems reports items rejected during replacement
	ReportDiscardedItems(count int)

	// ReportWindowRollovers reports completed window rollovers
	ReportWindowRollovers(count int)
}
