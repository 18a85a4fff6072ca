package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	dotEnvFileNameConstant              = ".env"
	tokenNotFoundMessageConstant        = "GitHub token not found: export GITHUB_TOKEN or run gh auth login"
	dotEnvReadErrorTemplateConstant     = "unable to read %s: %w"
	tokenSourceLogMessageConstant       = "resolved GitHub token"
	cliTokenFailureLogMessageConstant   = "gh auth token unavailable"
	logFieldTokenSourceConstant         = "token_source"
	logFieldDotEnvPathConstant          = "dotenv_path"
	tokenSourceEnvironmentLabelConstant = "environment"
	tokenSourceGitHubCLILabelConstant   = "gh"
)

// Environment variables consulted for a token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenVariableNames = []string{EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken}

// ErrTokenNotFound indicates that no GitHub token could be resolved from any source.
var ErrTokenNotFound = errors.New(tokenNotFoundMessageConstant)

// CLITokenSource reads the credential cached by the GitHub CLI.
type CLITokenSource interface {
	AuthToken(executionContext context.Context) (string, error)
}

// TokenResolver resolves a GitHub token from a .env file, the process
// environment, and finally the GitHub CLI credential store.
type TokenResolver struct {
	WorkingDirectory string
	CLITokenSource   CLITokenSource
	Logger           *zap.Logger
}

// Resolve returns the first available token.
func (resolver TokenResolver) Resolve(executionContext context.Context) (string, error) {
	logger := resolver.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dotEnvironment, dotEnvironmentPath, dotEnvironmentError := resolver.readDotEnvironment()
	if dotEnvironmentError != nil {
		return "", dotEnvironmentError
	}

	dotEnvironmentLookup := func(variableName string) (string, bool) {
		value, exists := dotEnvironment[variableName]
		return value, exists
	}
	for _, lookup := range []func(string) (string, bool){dotEnvironmentLookup, os.LookupEnv} {
		token, found := firstToken(lookup)
		if !found {
			continue
		}
		logger.Debug(tokenSourceLogMessageConstant, zap.String(logFieldTokenSourceConstant, tokenSourceEnvironmentLabelConstant), zap.String(logFieldDotEnvPathConstant, dotEnvironmentPath))
		return token, nil
	}

	if resolver.CLITokenSource == nil {
		return "", ErrTokenNotFound
	}

	token, tokenError := resolver.CLITokenSource.AuthToken(executionContext)
	if tokenError != nil {
		logger.Debug(cliTokenFailureLogMessageConstant, zap.Error(tokenError))
		return "", ErrTokenNotFound
	}

	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return "", ErrTokenNotFound
	}

	logger.Debug(tokenSourceLogMessageConstant, zap.String(logFieldTokenSourceConstant, tokenSourceGitHubCLILabelConstant))
	return trimmedToken, nil
}

func (resolver TokenResolver) readDotEnvironment() (map[string]string, string, error) {
	dotEnvironmentPath := filepath.Join(resolver.WorkingDirectory, dotEnvFileNameConstant)
	if _, statError := os.Stat(dotEnvironmentPath); statError != nil {
		return nil, "", nil
	}

	dotEnvironment, readError := godotenv.Read(dotEnvironmentPath)
	if readError != nil {
		return nil, "", fmt.Errorf(dotEnvReadErrorTemplateConstant, dotEnvironmentPath, readError)
	}
	return dotEnvironment, dotEnvironmentPath, nil
}

func firstToken(lookup func(variableName string) (string, bool)) (string, bool) {
	for _, variableName := range tokenVariableNames {
		value, exists := lookup(variableName)
		if trimmedValue := strings.TrimSpace(value); exists && len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}
	return "", false
}
