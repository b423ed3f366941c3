package cherrypick

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/cherrypick/internal/gitrepo"
)

const (
	identityTemplateConstant               = "%s <%s>"
	invalidIdentityTemplateConstant        = "The format of '%s' is not a valid email address with display name"
	configurationErrorTemplateConstant     = "invalid %s: %s"
	shortSHALengthConstant                 = 8
	defaultRemoteNameConstant              = "cherrypick"
	defaultWorkingDirectoryConstant        = "."
	requiredValueMessageConstant           = "value required"
	targetBranchFieldNameConstant          = "branch"
	destinationRepositoryFieldNameConstant = "cherry-pick-repo"
	commitSHAFieldNameConstant             = "sha"
	committerFieldNameConstant             = "committer"
	authorFieldNameConstant                = "author"
	remoteURLFieldNameConstant             = "remote url"
	remoteNameFieldNameConstant            = "remote name"
	whitespaceMessageConstant              = "must not contain whitespace"
)

var displayNameEmailPattern = regexp.MustCompile(`^([^<]+)\s*<([^>]+)>$`)

// Identity is a git display name and email pair.
type Identity struct {
	Name  string
	Email string
}

// String renders the identity as "Name <email>".
func (identity Identity) String() string {
	return fmt.Sprintf(identityTemplateConstant, identity.Name, identity.Email)
}

// IsZero reports whether neither part is set.
func (identity Identity) IsZero() bool {
	return len(identity.Name) == 0 && len(identity.Email) == 0
}

// ParseIdentity parses "Display Name <email@address>".
func ParseIdentity(value string) (Identity, error) {
	trimmedValue := strings.TrimSpace(value)
	matches := displayNameEmailPattern.FindStringSubmatch(trimmedValue)
	if matches == nil {
		return Identity{}, fmt.Errorf(invalidIdentityTemplateConstant, value)
	}
	name := strings.TrimSpace(matches[1])
	email := strings.TrimSpace(matches[2])
	if len(name) == 0 || len(email) == 0 {
		return Identity{}, fmt.Errorf(invalidIdentityTemplateConstant, value)
	}
	return Identity{Name: name, Email: email}, nil
}

// TriggeringPullRequest holds the metadata of the merged pull request being cherry-picked.
// Title and Body are nil when the triggering event carried none.
type TriggeringPullRequest struct {
	Title  *string
	Body   *string
	Labels []string
}

// RunConfiguration is the immutable snapshot of a single cherry-pick run.
type RunConfiguration struct {
	Token                 string
	Committer             Identity
	Author                Identity
	TargetBranch          string
	Labels                []string
	ExcludeLabels         []string
	Assignees             []string
	Reviewers             []string
	TeamReviewers         []string
	TitlePrefix           string
	DestinationRepository gitrepo.OwnerRepository
	SourceRepository      gitrepo.OwnerRepository
	CommitSHA             string
	WorkingDirectory      string
	RemoteName            string
	RemoteURL             string
	TriggeringPullRequest TriggeringPullRequest
}

// ConfigurationError reports an invalid run parameter detected before any git command runs.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error describes the invalid parameter.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Field, configurationError.Message)
}

// Validate checks the parameters the git steps depend on.
func (configuration RunConfiguration) Validate() error {
	if len(strings.TrimSpace(configuration.TargetBranch)) == 0 {
		return ConfigurationError{Field: targetBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if strings.ContainsAny(configuration.TargetBranch, " \t\n") {
		return ConfigurationError{Field: targetBranchFieldNameConstant, Message: whitespaceMessageConstant}
	}
	if len(configuration.DestinationRepository.Owner) == 0 || len(configuration.DestinationRepository.Repository) == 0 {
		return ConfigurationError{Field: destinationRepositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(configuration.CommitSHA)) == 0 {
		return ConfigurationError{Field: commitSHAFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(configuration.Committer.Name) == 0 || len(configuration.Committer.Email) == 0 {
		return ConfigurationError{Field: committerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(configuration.Author.Name) == 0 || len(configuration.Author.Email) == 0 {
		return ConfigurationError{Field: authorFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(configuration.RemoteURL)) == 0 {
		return ConfigurationError{Field: remoteURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if strings.ContainsAny(configuration.RemoteName, " \t\n") {
		return ConfigurationError{Field: remoteNameFieldNameConstant, Message: whitespaceMessageConstant}
	}
	return nil
}

// ShortSHA returns the first eight characters of the triggering commit.
func (configuration RunConfiguration) ShortSHA() string {
	trimmedSHA := strings.TrimSpace(configuration.CommitSHA)
	if len(trimmedSHA) <= shortSHALengthConstant {
		return trimmedSHA
	}
	return trimmedSHA[:shortSHALengthConstant]
}

func (configuration RunConfiguration) remoteName() string {
	trimmedName := strings.TrimSpace(configuration.RemoteName)
	if len(trimmedName) == 0 {
		return defaultRemoteNameConstant
	}
	return trimmedName
}

func (configuration RunConfiguration) workingDirectory() string {
	trimmedDirectory := strings.TrimSpace(configuration.WorkingDirectory)
	if len(trimmedDirectory) == 0 {
		return defaultWorkingDirectoryConstant
	}
	return trimmedDirectory
}
