package util

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitInfo contains git repository information
type GitInfo struct {
	HeadCommitSHA string
	HeadCommitMsg string
	Branch        string
	ModifiedFiles map[string]bool // Relative paths changed compared to HEAD
	IsGitRepo     bool
}

func git(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// GetGitInfo retrieves git information for a repository path. A directory
// outside any work tree yields IsGitRepo false and no error.
func GetGitInfo(ctx context.Context, repoPath string) (*GitInfo, error) {
	info := &GitInfo{
		ModifiedFiles: make(map[string]bool),
	}

	if _, err := git(ctx, repoPath, "rev-parse", "--git-dir"); err != nil {
		return info, nil
	}
	info.IsGitRepo = true

	var err error
	if info.HeadCommitSHA, err = git(ctx, repoPath, "rev-parse", "HEAD"); err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit SHA: %w", err)
	}
	if info.HeadCommitMsg, err = git(ctx, repoPath, "log", "-1", "--pretty=%s"); err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit message: %w", err)
	}
	if info.Branch, err = git(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD"); err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	// modified, added and deleted files in the working directory and index
	output, err := git(ctx, repoPath, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to get modified files: %w", err)
	}
	for _, file := range strings.Split(output, "\n") {
		if file != "" {
			info.ModifiedFiles[filepath.ToSlash(file)] = true
		}
	}

	return info, nil
}

// IsFileModified reports whether relPath differs from HEAD. Outside a git
// repository every file counts as modified.
func IsFileModified(gitInfo *GitInfo, relPath string) bool {
	if gitInfo == nil || !gitInfo.IsGitRepo {
		return true
	}
	return gitInfo.ModifiedFiles[filepath.ToSlash(relPath)]
}

// CalculateFileSHA256 calculates the SHA256 hash of file content
func CalculateFileSHA256(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
