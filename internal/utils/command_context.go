package utils

import "context"

type commandContextKey struct {
	name string
}

var configurationSourceContextKey = &commandContextKey{name: "configurationSource"}

// CommandContextAccessor stores and reads ghflow values carried by a command's context.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationSource records where the active configuration was loaded from:
// a file path or the embedded defaults marker.
func (accessor CommandContextAccessor) WithConfigurationSource(parentContext context.Context, configurationSource string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationSourceContextKey, configurationSource)
}

// ConfigurationSource returns the recorded configuration source, if any.
func (accessor CommandContextAccessor) ConfigurationSource(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationSource, available := executionContext.Value(configurationSourceContextKey).(string)
	return configurationSource, available && len(configurationSource) > 0
}
