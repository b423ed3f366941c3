package cherrypick

import (
	"fmt"

	"github.com/google/uuid"
)

const workingBranchNameTemplateConstant = "cherry-pick_%s_%s_%s"

// BranchIdentifierGenerator produces the unique suffix of a working branch name.
type BranchIdentifierGenerator func() string

// RandomBranchIdentifier returns a random UUID.
func RandomBranchIdentifier() string {
	return uuid.NewString()
}

// NewWorkingBranchName builds cherry-pick_<targetBranch>_<sha8>_<identifier>. A nil generator uses RandomBranchIdentifier.
func NewWorkingBranchName(configuration RunConfiguration, generator BranchIdentifierGenerator) string {
	if generator == nil {
		generator = RandomBranchIdentifier
	}
	return fmt.Sprintf(workingBranchNameTemplateConstant, configuration.TargetBranch, configuration.ShortSHA(), generator())
}
