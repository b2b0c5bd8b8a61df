package common

// Global non-constant variables go here.

// GlobalConfig - Global singleton.
var GlobalConfig = Config{
	NetBoxTimeoutSeconds: 30.0,
	InputPath:            "devices.yaml",
	SyncIntervalSeconds:  0,
	HTTPEndpoint:         ":8080",
	InfluxDBBucket:       "nbsync",
}
