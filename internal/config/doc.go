// Package config provides configuration types for the botlink bridge.
package config
