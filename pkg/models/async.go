package models

// DetailStatus is the lifecycle of a lazily loaded job detail
type DetailStatus string

const (
	DetailStatusIdle    DetailStatus = "IDLE"
	DetailStatusLoading DetailStatus = "LOADING"
	DetailStatusReady   DetailStatus = "READY"
	DetailStatusFailure DetailStatus = "FAILURE"
)
