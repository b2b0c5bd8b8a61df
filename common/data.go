package common

import "time"

// SyncRunEntry - Result of one reconciliation run.
type SyncRunEntry struct {
	Time        time.Time
	Duration    time.Duration
	Success     bool
	RecordCount int
	DryRun      bool
}

// SyncRecordEntry - Result of reconciling one device record.
type SyncRecordEntry struct {
	Time           time.Time
	Hostname       string
	Role           string
	MemberCount    int
	InterfaceCount int
	AddressCount   int
	Success        bool
}
