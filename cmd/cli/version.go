package cli

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	versionCommandUseConstant              = "version"
	versionCommandShortDescriptionConstant = "Print the ghflow version"
	versionOutputTemplateConstant          = "ghflow version: %s\n"
	developmentVersionConstant             = "dev"
	develBuildVersionConstant              = "(devel)"
)

// Version is stamped at build time with -ldflags "-X github.com/temirov/ghflow/cmd/cli.Version=...".
var Version = developmentVersionConstant

// VersionResolver returns the version string to print.
type VersionResolver func(executionContext context.Context) string

type versionCommandBuilder struct {
	VersionResolver VersionResolver
}

// Build constructs the version command.
func (builder *versionCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolver := builder.VersionResolver
			if resolver == nil {
				resolver = resolveVersion
			}
			fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, resolver(command.Context()))
			return nil
		},
	}, nil
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	if application.versionResolver == nil {
		return resolveVersion(executionContext)
	}
	return application.versionResolver(executionContext)
}

// resolveVersion prefers the stamped version, then the module version recorded by go install.
func resolveVersion(context.Context) string {
	if Version != developmentVersionConstant {
		return Version
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return Version
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return Version
	}
	return moduleVersion
}
