// Package config provides centralized configuration management for RidePulse.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default values (Default)
//  2. An optional YAML file (config.yaml, configs/config.yaml or RIDE_CONFIG_FILE)
//  3. Environment variables
//
// # Environment Variables
//
// All environment variables are namespaced with RIDE_ and follow the struct
// nesting of Config:
//
//	RIDE_SERVER_PORT=8080
//	RIDE_DATASET_FILE=data/ncr_ride_bookings.csv
//	RIDE_DATASET_WATCH_INTERVAL=30s
//	RIDE_ANALYSIS_ALPHA=0.10
//	RIDE_LOGGING_LEVEL=debug
//
// # Example YAML
//
//	server:
//	  port: 9090
//	dataset:
//	  path: /srv/data/ncr_ride_bookings.csv
//	analysis:
//	  histogram_bins: 40
//
// Relative dataset paths are resolved by ResolvePath against the working
// directory and then the executable directory.
package config
