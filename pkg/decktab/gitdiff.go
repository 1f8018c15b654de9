package decktab

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DiffCommits produces an HTML diff report between two git refs.
//
// The changed Excel files between the refs are checked out into two detached
// temporary worktrees, both are extracted, and a report is generated from
// the resulting snapshots. Worktrees and the temporary directory are removed
// on every exit path, success or failure.
func DiffCommits(repoRoot, baseRef, headRef, output string, limitRows int, opts Options) error {
	root, err := filepath.Abs(repoRoot)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, root)
	}

	changed, err := changedExcelFiles(root, baseRef, headRef)
	if err != nil {
		return err
	}
	log := opts.logger()
	if len(changed) == 0 {
		log.Info("no Excel files changed between refs", "base", baseRef, "head", headRef)
	}

	tmpDir, err := os.MkdirTemp("", "decktab-diff-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	baseDir := filepath.Join(tmpDir, "base")
	headDir := filepath.Join(tmpDir, "head")

	if err := runGit(root, "worktree", "add", "--detach", "--force", baseDir, baseRef); err != nil {
		return fmt.Errorf("checking out %s: %w", baseRef, err)
	}
	defer removeWorktree(root, baseDir)

	if err := runGit(root, "worktree", "add", "--detach", "--force", headDir, headRef); err != nil {
		return fmt.Errorf("checking out %s: %w", headRef, err)
	}
	defer removeWorktree(root, headDir)

	extractOpts := opts
	extractOpts.Files = changed
	extractOpts.PriorIndex = nil // worktrees are fresh checkouts

	if _, err := Extract(baseDir, extractOpts); err != nil {
		return fmt.Errorf("extracting %s: %w", baseRef, err)
	}
	if _, err := Extract(headDir, extractOpts); err != nil {
		return fmt.Errorf("extracting %s: %w", headRef, err)
	}

	outputPath := output
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(root, outputPath)
	}
	return Report(baseDir, headDir, outputPath, limitRows, opts)
}

// changedExcelFiles lists the Excel files that differ between two refs,
// relative to the repository root.
func changedExcelFiles(root, baseRef, headRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", baseRef, headRef)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only %s %s: %w", baseRef, headRef, err)
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isExcelFile(line) {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

func runGit(root string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// removeWorktree unregisters a temporary worktree; failures are ignored
// because the backing directory is deleted with the temp dir anyway.
func removeWorktree(root, dir string) {
	_ = runGit(root, "worktree", "remove", "--force", dir)
	_ = runGit(root, "worktree", "prune")
}
