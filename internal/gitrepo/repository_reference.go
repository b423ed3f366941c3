package gitrepo

import (
	"fmt"
	"strings"
)

const (
	repositoryReferenceSeparatorConstant     = "/"
	repositoryReferenceTemplateConstant      = "%s/%s"
	repositoryReferenceErrorTemplateConstant = "invalid repository reference %q: %s"
	requiredValueMessageConstant             = "value required"
	separatorCountMessageConstant            = "expected exactly one '/' between owner and repository"
	emptySegmentMessageConstant              = "owner and repository must both be non-empty"
)

// OwnerRepository identifies a hosted repository as owner/repository.
type OwnerRepository struct {
	Owner      string
	Repository string
}

// String renders the reference as owner/repository.
func (reference OwnerRepository) String() string {
	return fmt.Sprintf(repositoryReferenceTemplateConstant, reference.Owner, reference.Repository)
}

// IsZero reports whether the reference is unset.
func (reference OwnerRepository) IsZero() bool {
	return len(reference.Owner) == 0 && len(reference.Repository) == 0
}

// RepositoryReferenceError reports a malformed owner/repository value.
type RepositoryReferenceError struct {
	Input   string
	Message string
}

// Error describes the malformed reference.
func (referenceError RepositoryReferenceError) Error() string {
	return fmt.Sprintf(repositoryReferenceErrorTemplateConstant, referenceError.Input, referenceError.Message)
}

// ParseOwnerRepository parses owner/repository. The value must contain exactly one separator
// and both segments must be non-empty after trimming.
func ParseOwnerRepository(value string) (OwnerRepository, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return OwnerRepository{}, RepositoryReferenceError{Input: value, Message: requiredValueMessageConstant}
	}
	if strings.Count(trimmedValue, repositoryReferenceSeparatorConstant) != 1 {
		return OwnerRepository{}, RepositoryReferenceError{Input: value, Message: separatorCountMessageConstant}
	}

	segments := strings.SplitN(trimmedValue, repositoryReferenceSeparatorConstant, 2)
	owner := strings.TrimSpace(segments[0])
	repository := strings.TrimSpace(segments[1])
	if len(owner) == 0 || len(repository) == 0 {
		return OwnerRepository{}, RepositoryReferenceError{Input: value, Message: emptySegmentMessageConstant}
	}

	return OwnerRepository{Owner: owner, Repository: repository}, nil
}
