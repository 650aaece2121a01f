package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "RidePulse"
	AppVersion  = "1.0.0"
	ServiceName = "ridepulse"

	// Dataset
	DefaultDatasetPath   = "data/ncr_ride_bookings.csv"
	DefaultWatchInterval = 30 * time.Second

	// Analysis defaults
	DefaultAlpha         = 0.10 // 90% confidence level
	DefaultHistogramBins = 30
	DefaultSampleRows    = 100
	DefaultTopN          = 10
	MaxSampleRows        = 5000

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 60 * time.Second

	// Logging
	DefaultLogFile = "logs/ridepulse.log"
)
