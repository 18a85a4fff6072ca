package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	scpHostDelimiterConstant             = ":"
	scpUserDelimiterConstant             = "@"
	pathSeparatorConstant                = "/"
	gitSuffixConstant                    = ".git"
	sshSchemeConstant                    = "ssh"
	httpsSchemeConstant                  = "https"
	httpSchemeConstant                   = "http"
	schemeDelimiterConstant              = "://"
	remoteURLParseErrorTemplateConstant  = "%s: %s"
	invalidRemoteURLMessageConstant      = "invalid remote url"
	unsupportedSchemeMessageConstant     = "unsupported remote scheme"
	missingRepositoryPathMessageConstant = "remote must name owner/repository"
	requiredValueMessageConstant         = "value required"
	fullNameTemplateConstant             = "%s/%s"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL holds the host and owner/repository pair a git remote points at.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// FullName returns the owner/repository pair used by GitHub APIs.
func (remote RemoteURL) FullName() string {
	return fmt.Sprintf(fullNameTemplateConstant, remote.Owner, remote.Repository)
}

// ParseRemoteURL accepts scp-like SSH remotes (git@host:owner/repo.git) and
// ssh://, https:// or http:// URLs whose path is exactly owner/repository.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if !strings.Contains(trimmedRemote, schemeDelimiterConstant) {
		return parseSCPRemote(trimmedRemote)
	}

	parsedURL, parseError := url.Parse(trimmedRemote)
	if parseError != nil || len(parsedURL.Hostname()) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	var protocol RemoteProtocol
	switch strings.ToLower(parsedURL.Scheme) {
	case sshSchemeConstant:
		protocol = RemoteProtocolSSH
	case httpsSchemeConstant, httpSchemeConstant:
		protocol = RemoteProtocolHTTPS
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: unsupportedSchemeMessageConstant}
	}

	owner, repository, pathError := splitRepositoryPath(remote, parsedURL.Path)
	if pathError != nil {
		return RemoteURL{}, pathError
	}
	return RemoteURL{Protocol: protocol, Host: parsedURL.Hostname(), Owner: owner, Repository: repository}, nil
}

func parseSCPRemote(remote string) (RemoteURL, error) {
	hostAndPath := remote
	if userIndex := strings.Index(remote, scpUserDelimiterConstant); userIndex >= 0 {
		hostAndPath = remote[userIndex+1:]
	}

	host, path, found := strings.Cut(hostAndPath, scpHostDelimiterConstant)
	if !found || len(host) == 0 || host == hostAndPath {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, pathError := splitRepositoryPath(remote, path)
	if pathError != nil {
		return RemoteURL{}, pathError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func splitRepositoryPath(remote string, path string) (string, string, error) {
	trimmedPath := strings.Trim(path, pathSeparatorConstant)
	trimmedPath = strings.TrimSuffix(trimmedPath, gitSuffixConstant)

	owner, repository, found := strings.Cut(trimmedPath, pathSeparatorConstant)
	if !found || len(owner) == 0 || len(repository) == 0 || strings.Contains(repository, pathSeparatorConstant) {
		return "", "", RemoteURLParseError{Input: remote, Message: missingRepositoryPathMessageConstant}
	}
	return owner, repository, nil
}
