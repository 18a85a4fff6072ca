package commits

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghflow/internal/filesystem"
)

const (
	preCommitHookNameConstant           = "pre-commit"
	commitMessageHookNameConstant       = "commit-msg"
	hookMarkerConstant                  = "# installed by ghflow"
	preCommitHookScriptConstant         = "#!/bin/sh\n" + hookMarkerConstant + "\nexec ghflow commit --check\n"
	commitMessageHookScriptConstant     = "#!/bin/sh\n" + hookMarkerConstant + "\nexec ghflow commit --check-message \"$1\"\n"
	hookInstalledTemplateConstant       = "Installed %s hook at %s\n"
	hookSkippedTemplateConstant         = "Skipped %s hook: %s exists and was not installed by ghflow (use --force to overwrite)\n"
	hooksDirectoryErrorTemplateConstant = "unable to resolve hooks directory: %w"
	hookDirectoryCreateTemplateConstant = "unable to create hooks directory %s: %w"
	hookInspectErrorTemplateConstant    = "unable to inspect hook %s: %w"
	hookWriteErrorTemplateConstant      = "unable to write hook %s: %w"
	hookInstalledLogMessageConstant     = "hook installed"
	logFieldHookConstant                = "hook"
	logFieldPathConstant                = "path"
	hooksDirectoryPermissionsConstant   = fs.FileMode(0o755)
	hookFilePermissionsConstant         = fs.FileMode(0o755)
)

type hookDefinition struct {
	name   string
	script string
}

var managedHooks = []hookDefinition{
	{name: preCommitHookNameConstant, script: preCommitHookScriptConstant},
	{name: commitMessageHookNameConstant, script: commitMessageHookScriptConstant},
}

// HookInstallResult lists the hooks written and the hooks left untouched.
type HookInstallResult struct {
	Installed []string
	Skipped   []string
}

// InstallHooks writes the pre-commit and commit-msg hooks. Existing hooks that were not
// written by ghflow are kept unless force is set.
func (service *Service) InstallHooks(executionContext context.Context, force bool) (HookInstallResult, error) {
	hooksDirectory, directoryError := service.dependencies.Repository.HooksDirectory(executionContext)
	if directoryError != nil {
		return HookInstallResult{}, fmt.Errorf(hooksDirectoryErrorTemplateConstant, directoryError)
	}
	if mkdirError := service.fileSystem.MkdirAll(hooksDirectory, hooksDirectoryPermissionsConstant); mkdirError != nil {
		return HookInstallResult{}, fmt.Errorf(hookDirectoryCreateTemplateConstant, hooksDirectory, mkdirError)
	}

	var result HookInstallResult
	for _, hook := range managedHooks {
		hookPath := filepath.Join(hooksDirectory, hook.name)

		replaceable, inspectError := service.isReplaceable(hookPath, force)
		if inspectError != nil {
			return result, fmt.Errorf(hookInspectErrorTemplateConstant, hookPath, inspectError)
		}
		if !replaceable {
			fmt.Fprintf(service.output, hookSkippedTemplateConstant, hook.name, hookPath)
			result.Skipped = append(result.Skipped, hook.name)
			continue
		}

		if writeError := service.fileSystem.WriteFile(hookPath, []byte(hook.script), hookFilePermissionsConstant); writeError != nil {
			return result, fmt.Errorf(hookWriteErrorTemplateConstant, hookPath, writeError)
		}
		fmt.Fprintf(service.output, hookInstalledTemplateConstant, hook.name, hookPath)
		service.logger.Info(hookInstalledLogMessageConstant, zap.String(logFieldHookConstant, hook.name), zap.String(logFieldPathConstant, hookPath))
		result.Installed = append(result.Installed, hook.name)
	}
	return result, nil
}

func (service *Service) isReplaceable(hookPath string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	exists, existsError := filesystem.Exists(service.fileSystem, hookPath)
	if existsError != nil {
		return false, existsError
	}
	if !exists {
		return true, nil
	}
	content, readError := service.fileSystem.ReadFile(hookPath)
	if readError != nil {
		return false, readError
	}
	return strings.Contains(string(content), hookMarkerConstant), nil
}
