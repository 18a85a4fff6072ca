// Package config defines the ghflow configuration document and its defaults.
package config
