package config

import "time"

// BackendConfig describes how to reach the remote showcase REST backend.
type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendURL() string {
	return GetEnv(backendURLVar, "http://localhost:8080/api/v1")
}

func (Backend) GetBackendTimeout() time.Duration {
	seconds := GetEnv("BACKEND_TIMEOUT_SECONDS", "")
	if d, err := time.ParseDuration(seconds + "s"); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}
