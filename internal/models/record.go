package models

// DriveRecord is a single drive-day observation assembled from the daily
// CSV snapshots. Raw counters absent from the source data load as zero;
// records are never dropped for missing attributes.
type DriveRecord struct {
	SerialNumber  string
	Model         string
	CapacityBytes int64
	Failed        bool

	ReallocatedSectors   float64
	PowerOnHours         float64
	UncorrectableErrors  float64
	Temperature          float64
	PendingSectors       float64
	OfflineUncorrectable float64
}
