package cherrypick

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/cherrypick/internal/execshell"
	"github.com/temirov/cherrypick/internal/gitrepo"
)

const (
	integrationGitExecutableNameConstant        = "git"
	integrationOriginDirectoryNameConstant      = "origin.git"
	integrationDestinationDirectoryNameConstant = "destination.git"
	integrationSeedDirectoryNameConstant        = "seed"
	integrationCloneDirectoryNameConstant       = "clone"
	integrationMainBranchNameConstant           = "main"
	integrationTargetBranchNameConstant         = "release-1.2"
	integrationReadmeFileNameConstant           = "README.md"
	integrationFixFileNameConstant              = "fix.txt"
	integrationSeedUserNameConstant             = "Integration Tester"
	integrationSeedUserEmailConstant            = "tester@example.com"
	integrationOriginalAuthorConstant           = "Jane Doe <jane@example.com>"
	integrationExpectedCommitterConstant        = "octocat <noreply@github.com>"
	integrationCommandTimeoutConstant           = 30 * time.Second
)

type delegatingGitExecutor struct {
	delegate GitExecutor
	recorded []execshell.CommandDetails
}

func (executor *delegatingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	return executor.delegate.ExecuteGit(executionContext, details)
}

func (executor *delegatingGitExecutor) argumentsFor(subcommand string) []string {
	for _, details := range executor.recorded {
		if len(details.Arguments) > 0 && details.Arguments[0] == subcommand {
			return details.Arguments
		}
	}
	return nil
}

func TestExecuteAgainstRealRepositories(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(integrationGitExecutableNameConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	temporaryRoot := testInstance.TempDir()
	originPath := filepath.Join(temporaryRoot, integrationOriginDirectoryNameConstant)
	destinationPath := filepath.Join(temporaryRoot, integrationDestinationDirectoryNameConstant)
	seedPath := filepath.Join(temporaryRoot, integrationSeedDirectoryNameConstant)
	clonePath := filepath.Join(temporaryRoot, integrationCloneDirectoryNameConstant)

	runIntegrationGit(testInstance, temporaryRoot, "init", "--bare", "--initial-branch="+integrationMainBranchNameConstant, originPath)
	runIntegrationGit(testInstance, temporaryRoot, "init", "--bare", "--initial-branch="+integrationMainBranchNameConstant, destinationPath)
	runIntegrationGit(testInstance, temporaryRoot, "init", "--initial-branch="+integrationMainBranchNameConstant, seedPath)
	runIntegrationGit(testInstance, seedPath, "config", "user.name", integrationSeedUserNameConstant)
	runIntegrationGit(testInstance, seedPath, "config", "user.email", integrationSeedUserEmailConstant)

	writeIntegrationFile(testInstance, filepath.Join(seedPath, integrationReadmeFileNameConstant), "widgets\n")
	runIntegrationGit(testInstance, seedPath, "add", integrationReadmeFileNameConstant)
	runIntegrationGit(testInstance, seedPath, "commit", "-m", "Initial commit")
	runIntegrationGit(testInstance, seedPath, "branch", integrationTargetBranchNameConstant)

	writeIntegrationFile(testInstance, filepath.Join(seedPath, integrationFixFileNameConstant), "fixed\n")
	runIntegrationGit(testInstance, seedPath, "add", integrationFixFileNameConstant)
	runIntegrationGit(testInstance, seedPath, "commit", "-m", "Fix bug", "--author="+integrationOriginalAuthorConstant)
	commitSHA := strings.TrimSpace(runIntegrationGit(testInstance, seedPath, "rev-parse", "HEAD"))

	runIntegrationGit(testInstance, seedPath, "push", originPath, integrationMainBranchNameConstant, integrationTargetBranchNameConstant)
	runIntegrationGit(testInstance, seedPath, "push", destinationPath, integrationMainBranchNameConstant)
	targetTipSHA := strings.TrimSpace(runIntegrationGit(testInstance, seedPath, "rev-parse", integrationTargetBranchNameConstant))

	runIntegrationGit(testInstance, temporaryRoot, "clone", originPath, clonePath)

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	executor := &delegatingGitExecutor{delegate: shellExecutor}
	publisher := &recordingPublisher{}
	orchestrator, orchestratorError := NewOrchestrator(Dependencies{GitExecutor: executor, Publisher: publisher})
	require.NoError(testInstance, orchestratorError)

	configuration := RunConfiguration{
		Committer:             Identity{Name: "GitHub", Email: "noreply@github.com"},
		Author:                Identity{Name: "octocat", Email: "octocat@users.noreply.github.com"},
		TargetBranch:          integrationTargetBranchNameConstant,
		DestinationRepository: gitrepo.OwnerRepository{Owner: "acme-forks", Repository: "widgets"},
		SourceRepository:      gitrepo.OwnerRepository{Owner: "acme", Repository: "widgets"},
		CommitSHA:             commitSHA,
		WorkingDirectory:      clonePath,
		RemoteURL:             destinationPath,
	}

	executionContext, cancelFunction := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancelFunction()
	result, executeError := orchestrator.Execute(executionContext, configuration)
	require.NoError(testInstance, executeError)
	require.Equal(testInstance, integrationOriginalAuthorConstant, result.OriginalAuthor)

	branchName := result.BranchName
	require.True(testInstance, strings.HasPrefix(branchName, "cherry-pick_"+integrationTargetBranchNameConstant+"_"+commitSHA[:shortSHALengthConstant]+"_"), branchName)
	require.Equal(testInstance, []string{"checkout", "-b", branchName, "origin/" + integrationTargetBranchNameConstant}, executor.argumentsFor("checkout"))
	require.Equal(testInstance, []string{"push", "-u", defaultRemoteNameConstant, branchName}, executor.argumentsFor("push"))
	require.Equal(testInstance, []string{branchName}, publisher.branchNames)

	pushedHeads := runIntegrationGit(testInstance, temporaryRoot, "--git-dir", destinationPath, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	require.Contains(testInstance, strings.Fields(pushedHeads), branchName)

	tipAuthor := runIntegrationGit(testInstance, temporaryRoot, "--git-dir", destinationPath, "log", "-1", "--format=%an <%ae>", branchName)
	require.Equal(testInstance, integrationOriginalAuthorConstant, strings.TrimSpace(tipAuthor))

	tipCommitter := runIntegrationGit(testInstance, temporaryRoot, "--git-dir", destinationPath, "log", "-1", "--format=%cn <%ce>", branchName)
	require.Equal(testInstance, integrationExpectedCommitterConstant, strings.TrimSpace(tipCommitter))

	tipParent := runIntegrationGit(testInstance, temporaryRoot, "--git-dir", destinationPath, "rev-parse", branchName+"^")
	require.Equal(testInstance, targetTipSHA, strings.TrimSpace(tipParent))

	tipFiles := runIntegrationGit(testInstance, temporaryRoot, "--git-dir", destinationPath, "ls-tree", "--name-only", branchName)
	require.ElementsMatch(testInstance, []string{integrationReadmeFileNameConstant, integrationFixFileNameConstant}, strings.Fields(tipFiles))

	localName := runIntegrationGit(testInstance, clonePath, "config", "--local", "user.name")
	require.Equal(testInstance, "octocat", strings.TrimSpace(localName))
	localEmail := runIntegrationGit(testInstance, clonePath, "config", "--local", "user.email")
	require.Equal(testInstance, "noreply@github.com", strings.TrimSpace(localEmail))
}

func writeIntegrationFile(testInstance *testing.T, filePath string, contents string) {
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), 0o644))
}

func runIntegrationGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()
	executionContext, cancelFunction := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, integrationGitExecutableNameConstant, arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var standardErrorBuffer bytes.Buffer
	command.Stderr = &standardErrorBuffer

	outputBytes, commandError := command.Output()
	require.NoError(testInstance, commandError, standardErrorBuffer.String())
	return string(outputBytes)
}
