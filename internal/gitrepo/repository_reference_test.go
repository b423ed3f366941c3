package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cherrypick/internal/gitrepo"
)

func TestParseOwnerRepository(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expected      gitrepo.OwnerRepository
		expectFailure bool
	}{
		{name: "valid", input: "fork-owner/service", expected: gitrepo.OwnerRepository{Owner: "fork-owner", Repository: "service"}},
		{name: "trimmed", input: "  octo/repo ", expected: gitrepo.OwnerRepository{Owner: "octo", Repository: "repo"}},
		{name: "empty", input: "", expectFailure: true},
		{name: "missing_separator", input: "service", expectFailure: true},
		{name: "too_many_separators", input: "octo/repo/extra", expectFailure: true},
		{name: "empty_owner", input: "/repo", expectFailure: true},
		{name: "empty_repository", input: "octo/", expectFailure: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			reference, parseError := gitrepo.ParseOwnerRepository(testCase.input)
			if testCase.expectFailure {
				var referenceError gitrepo.RepositoryReferenceError
				require.ErrorAs(testInstance, parseError, &referenceError)
				require.True(testInstance, reference.IsZero())
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, reference)
			require.Equal(testInstance, testCase.expected.Owner+"/"+testCase.expected.Repository, reference.String())
		})
	}
}
