package gitrepo

import (
	"fmt"
	"strings"
)

const (
	gitSuffixConstant              = ".git"
	remoteURLErrorTemplateConstant = "%s: %s"
	unknownProtocolMessageConstant = "unsupported remote protocol"
	missingHostMessageConstant     = "remote host required"
	sshRemoteTemplateConstant      = "git@%s:%s"
	httpsRemoteTemplateConstant    = "https://%s/%s"
)

// DefaultRemoteHost is the host used for destination remotes when none is configured.
const DefaultRemoteHost = "github.com"

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Repository OwnerRepository
}

// RemoteURLError indicates a remote URL could not be formatted.
type RemoteURLError struct {
	Input   string
	Message string
}

// Error describes the failure.
func (remoteError RemoteURLError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, remoteError.Input, remoteError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// FormatRemoteURL renders git@host:owner/repo.git for ssh and https://host/owner/repo.git for https.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	host := strings.TrimSpace(remote.Host)
	if len(host) == 0 {
		return "", RemoteURLError{Input: remote.Repository.String(), Message: missingHostMessageConstant}
	}
	if len(remote.Repository.Owner) == 0 || len(remote.Repository.Repository) == 0 {
		return "", RemoteURLError{Input: remote.Repository.String(), Message: requiredValueMessageConstant}
	}

	repositoryPath := remote.Repository.String() + gitSuffixConstant
	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRemoteTemplateConstant, host, repositoryPath), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRemoteTemplateConstant, host, repositoryPath), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
