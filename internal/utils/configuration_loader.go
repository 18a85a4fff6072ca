package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant             = "."
	configurationKeyDelimiterConstant              = "::"
	environmentKeySeparatorNewConstant             = "_"
	listValueSeparatorConstant                     = ","
	configurationReadErrorTemplateConstant         = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant    = "failed to parse configuration: %w"
	embeddedConfigurationReadErrorTemplateConstant = "failed to read embedded configuration: %w"
	embeddedConfigurationSourceLabelConstant       = "embedded"
)

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
//
// Resolution order is an explicit file path, then the first configuration file
// found in the search paths, then the embedded configuration. A configuration
// file that is found replaces the embedded configuration entirely; environment
// variables override individual keys of whichever document was selected.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
	// UsedEmbeddedConfiguration reports whether the packaged default document was selected.
	UsedEmbeddedConfiguration bool
}

// Source describes where the configuration was loaded from.
func (loadedConfiguration LoadedConfiguration) Source() string {
	if len(loadedConfiguration.ConfigFileUsed) > 0 {
		return loadedConfiguration.ConfigFileUsed
	}
	if loadedConfiguration.UsedEmbeddedConfiguration {
		return embeddedConfigurationSourceLabelConstant
	}
	return ""
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, 0, len(searchPaths))
	for _, searchPath := range searchPaths {
		if len(strings.TrimSpace(searchPath)) == 0 {
			continue
		}
		duplicatedSearchPaths = append(duplicatedSearchPaths, searchPath)
	}

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(configurationKeyDelimiterConstant, environmentKeySeparatorNewConstant, environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores the packaged configuration used when no configuration file is found.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
//
// Default keys use dots between sections. Map keys inside the documents may themselves
// contain dots, such as a label named v1.0, and are decoded unsplit.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.NewWithOptions(viper.KeyDelimiter(configurationKeyDelimiterConstant))
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(strings.ReplaceAll(defaultKey, environmentKeySeparatorOldConstant, configurationKeyDelimiterConstant), defaultValue)
	}

	trimmedConfigurationFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedConfigurationFilePath) > 0 {
		viperInstance.SetConfigFile(trimmedConfigurationFilePath)
	}

	loadedConfiguration := LoadedConfiguration{}

	readError := viperInstance.ReadInConfig()
	switch {
	case readError == nil:
		loadedConfiguration.ConfigFileUsed = viperInstance.ConfigFileUsed()
	case len(trimmedConfigurationFilePath) == 0 && isConfigurationNotFound(readError):
		embeddedUsed, embeddedError := loader.readEmbeddedConfiguration(viperInstance)
		if embeddedError != nil {
			return LoadedConfiguration{}, embeddedError
		}
		loadedConfiguration.UsedEmbeddedConfiguration = embeddedUsed
	default:
		return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
	))

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook)
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return loadedConfiguration, nil
}

func (loader *ConfigurationLoader) readEmbeddedConfiguration(viperInstance *viper.Viper) (bool, error) {
	if len(loader.embeddedConfiguration) == 0 {
		return false, nil
	}

	configurationType := loader.configurationType
	if len(loader.embeddedConfigurationType) > 0 {
		configurationType = loader.embeddedConfigurationType
	}

	viperInstance.SetConfigType(configurationType)
	if readError := viperInstance.ReadConfig(bytes.NewReader(loader.embeddedConfiguration)); readError != nil {
		return false, fmt.Errorf(embeddedConfigurationReadErrorTemplateConstant, readError)
	}
	return true, nil
}

func isConfigurationNotFound(readError error) bool {
	var notFoundError viper.ConfigFileNotFoundError
	return errors.As(readError, &notFoundError)
}
