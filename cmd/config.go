package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// WorkerConcurrency is the number of assignment worker goroutines.
	WorkerConcurrency int

	// ScanCronSpec is the reconciliation scanner schedule with
	// seconds resolution, e.g. "*/10 * * * * *".
	ScanCronSpec string

	// ConstraintsCacheTTL bounds how stale the cached dispatch
	// constraints may be before a reload.
	ConstraintsCacheTTL time.Duration
}
