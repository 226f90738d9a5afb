package logging

import "go.uber.org/zap"

// New creates a sugared logger for one component of the service. It follows
// whatever global logger config.New installed.
func New(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}
