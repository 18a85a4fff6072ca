package githubcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/ghflow/internal/execshell"
)

const (
	apiSubcommandConstant                   = "api"
	graphQLEndpointConstant                 = "graphql"
	inputFlagConstant                       = "--input"
	stdinReferenceConstant                  = "-"
	repoSubcommandConstant                  = "repo"
	createSubcommandConstant                = "create"
	authSubcommandConstant                  = "auth"
	tokenSubcommandConstant                 = "token"
	sourceFlagTemplateConstant              = "--source=%s"
	remoteFlagTemplateConstant              = "--remote=%s"
	visibilityFlagTemplateConstant          = "--%s"
	defaultSourceDirectoryConstant          = "."
	defaultRemoteNameConstant               = "origin"
	githubTokenEnvironmentVariableConstant  = "GH_TOKEN"
	documentFieldNameConstant               = "document"
	repositoryNameFieldNameConstant         = "repository_name"
	visibilityFieldNameConstant             = "visibility"
	requiredValueMessageConstant            = "value required"
	unsupportedVisibilityMessageConstant    = "must be public, private, or internal"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	graphQLResponseErrorTemplateConstant    = "GraphQL error: %s"
	missingDataErrorTemplateConstant        = "GraphQL response missing data: %s"
	executeGraphQLOperationNameConstant     = OperationName("ExecuteGraphQL")
	createRepositoryOperationNameConstant   = OperationName("CreateRepository")
	authTokenOperationNameConstant          = OperationName("AuthToken")
	jsonNullLiteralConstant                 = "null"
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryVisibility enumerates visibilities accepted by gh repo create.
type RepositoryVisibility string

// Repository visibility enumerations.
const (
	RepositoryVisibilityPublic   RepositoryVisibility = RepositoryVisibility("public")
	RepositoryVisibilityPrivate  RepositoryVisibility = RepositoryVisibility("private")
	RepositoryVisibilityInternal RepositoryVisibility = RepositoryVisibility("internal")
)

// RepositoryCreateOptions configures CreateRepository.
type RepositoryCreateOptions struct {
	Name             string
	Visibility       RepositoryVisibility
	SourceDirectory  string
	RemoteName       string
	WorkingDirectory string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
	token    string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates the request body could not be serialized.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// GraphQLResponseError reports a response envelope carrying a top-level errors array.
type GraphQLResponseError struct {
	Errors json.RawMessage
}

// Error includes the serialized error list.
func (responseError GraphQLResponseError) Error() string {
	return fmt.Sprintf(graphQLResponseErrorTemplateConstant, compactJSON(responseError.Errors))
}

// MissingDataError reports a response envelope without a data payload.
type MissingDataError struct {
	Response json.RawMessage
}

// Error includes the serialized response.
func (missingDataError MissingDataError) Error() string {
	return fmt.Sprintf(missingDataErrorTemplateConstant, compactJSON(missingDataError.Response))
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// NewClient constructs a GitHub CLI client. A non-empty token is exported to gh as GH_TOKEN.
func NewClient(executor GitHubCommandExecutor, token ...string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	client := &Client{executor: executor}
	for _, candidate := range token {
		if trimmedToken := strings.TrimSpace(candidate); len(trimmedToken) > 0 {
			client.token = trimmedToken
			break
		}
	}
	return client, nil
}

// WithToken returns a copy of the client exporting the provided token to gh.
func (client *Client) WithToken(token string) *Client {
	return &Client{executor: client.executor, token: strings.TrimSpace(token)}
}

// ExecuteGraphQL sends a GraphQL document through gh api graphql and returns the data payload.
func (client *Client) ExecuteGraphQL(executionContext context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	if len(strings.TrimSpace(document)) == 0 {
		return nil, InvalidInputError{FieldName: documentFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if variables == nil {
		variables = map[string]any{}
	}

	requestPayload, encodingError := json.Marshal(graphQLRequest{Query: document, Variables: variables})
	if encodingError != nil {
		return nil, PayloadEncodingError{Operation: executeGraphQLOperationNameConstant, Cause: encodingError}
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:            []string{apiSubcommandConstant, graphQLEndpointConstant, inputFlagConstant, stdinReferenceConstant},
		EnvironmentVariables: client.environment(),
		StandardInput:        requestPayload,
	})
	if executionError != nil {
		return nil, OperationError{Operation: executeGraphQLOperationNameConstant, Cause: executionError}
	}

	var envelope graphQLEnvelope
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &envelope); decodingError != nil {
		return nil, ResponseDecodingError{Operation: executeGraphQLOperationNameConstant, Cause: decodingError}
	}

	if isPresent(envelope.Errors) {
		return nil, GraphQLResponseError{Errors: envelope.Errors}
	}

	if !isPresent(envelope.Data) {
		return nil, MissingDataError{Response: json.RawMessage(executionResult.StandardOutput)}
	}

	return envelope.Data, nil
}

// CreateRepository creates a GitHub repository from the local working tree via gh repo create.
func (client *Client) CreateRepository(executionContext context.Context, options RepositoryCreateOptions) error {
	trimmedName := strings.TrimSpace(options.Name)
	if len(trimmedName) == 0 {
		return InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	visibility := options.Visibility
	if len(visibility) == 0 {
		visibility = RepositoryVisibilityPrivate
	}
	switch visibility {
	case RepositoryVisibilityPublic, RepositoryVisibilityPrivate, RepositoryVisibilityInternal:
	default:
		return InvalidInputError{FieldName: visibilityFieldNameConstant, Message: unsupportedVisibilityMessageConstant}
	}

	sourceDirectory := strings.TrimSpace(options.SourceDirectory)
	if len(sourceDirectory) == 0 {
		sourceDirectory = defaultSourceDirectoryConstant
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			createSubcommandConstant,
			trimmedName,
			fmt.Sprintf(visibilityFlagTemplateConstant, visibility),
			fmt.Sprintf(sourceFlagTemplateConstant, sourceDirectory),
			fmt.Sprintf(remoteFlagTemplateConstant, remoteName),
		},
		WorkingDirectory:     options.WorkingDirectory,
		EnvironmentVariables: client.environment(),
	})
	if executionError != nil {
		return OperationError{Operation: createRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// AuthToken returns the credential cached by gh auth login.
func (client *Client) AuthToken(executionContext context.Context) (string, error) {
	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{authSubcommandConstant, tokenSubcommandConstant},
	})
	if executionError != nil {
		return "", OperationError{Operation: authTokenOperationNameConstant, Cause: executionError}
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (client *Client) environment() map[string]string {
	if len(client.token) == 0 {
		return nil
	}
	return map[string]string{githubTokenEnvironmentVariableConstant: client.token}
}

func isPresent(rawMessage json.RawMessage) bool {
	trimmedMessage := bytes.TrimSpace(rawMessage)
	return len(trimmedMessage) > 0 && string(trimmedMessage) != jsonNullLiteralConstant
}

func compactJSON(rawMessage json.RawMessage) string {
	var compactBuffer bytes.Buffer
	if compactError := json.Compact(&compactBuffer, rawMessage); compactError != nil {
		return strings.TrimSpace(string(rawMessage))
	}
	return compactBuffer.String()
}
