package cherrypick

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewWorkingBranchName(t *testing.T) {
	configuration := testRunConfiguration()

	branchName := NewWorkingBranchName(configuration, func() string { return "fixed" })
	require.Equal(t, "cherry-pick_release-1.2_01234567_fixed", branchName)
}

func TestNewWorkingBranchNameDefaultsToRandomIdentifier(t *testing.T) {
	configuration := testRunConfiguration()

	firstName := NewWorkingBranchName(configuration, nil)
	secondName := NewWorkingBranchName(configuration, nil)
	require.NotEqual(t, firstName, secondName)

	prefix := "cherry-pick_release-1.2_01234567_"
	require.True(t, strings.HasPrefix(firstName, prefix))
	_, parseError := uuid.Parse(strings.TrimPrefix(firstName, prefix))
	require.NoError(t, parseError)
}
