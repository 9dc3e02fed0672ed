// Package config provides configuration structures and utilities for lanscan.
// It defines the main configuration options for subnet scanning, the portal
// HTTP server, the console inventory collector, and report generation
// preferences.
package config
