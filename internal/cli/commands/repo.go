package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forduniver/wald/internal/cli/ui"
	"github.com/forduniver/wald/internal/core/config"
	"github.com/forduniver/wald/internal/core/gitdriver"
	"github.com/forduniver/wald/internal/core/manifest"
	"github.com/forduniver/wald/internal/core/repoid"
	"github.com/forduniver/wald/internal/core/walderr"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the registry of upstream repos",
}

var (
	repoAddLFS      string
	repoAddDepth    string
	repoAddFilter   string
	repoAddAlias    []string
	repoAddUpstream string
)

var repoAddCmd = &cobra.Command{
	Use:   "add <repo-id> <url>",
	Short: "Clone url as a bare repo and register it under repo-id",
	Args:  cobra.ExactArgs(2),
	RunE:  runRepoAdd,
}

var repoRemoveCmd = &cobra.Command{
	Use:   "remove <repo-id>",
	Short: "Unregister a repo (the bare repo on disk is left untouched)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoRemove,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered repos",
	Args:  cobra.NoArgs,
	RunE:  runRepoList,
}

var (
	repoFetchPrune bool
	repoFetchFull  bool
)

var repoFetchCmd = &cobra.Command{
	Use:   "fetch [repo-id]",
	Short: "Fetch one registered repo, or every registered repo if none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepoFetch,
}

var repoGCCmd = &cobra.Command{
	Use:   "gc [repo-id]",
	Short: "Run git housekeeping on one registered repo, or every registered repo if none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepoGC,
}

func init() {
	repoAddCmd.Flags().StringVar(&repoAddLFS, "lfs", "", "LFS label: none, minimal, full (default from workspace config)")
	repoAddCmd.Flags().StringVar(&repoAddDepth, "depth", "", "Clone depth: positive integer or \"full\" (default from workspace config)")
	repoAddCmd.Flags().StringVar(&repoAddFilter, "filter", "blob-none", "Partial-clone filter: none, blob-none, tree-zero")
	repoAddCmd.Flags().StringSliceVar(&repoAddAlias, "alias", nil, "Short alias(es) for this repo, unique workspace-wide")
	repoAddCmd.Flags().StringVar(&repoAddUpstream, "upstream", "", "Repo-id this entry is a fork of")
	repoFetchCmd.Flags().BoolVar(&repoFetchPrune, "prune", false, "Prune stale remote-tracking refs")
	repoFetchCmd.Flags().BoolVar(&repoFetchFull, "full", false, "Promote a partial clone to full history, clearing its promisor config")

	repoCmd.AddCommand(repoAddCmd, repoRemoveCmd, repoListCmd, repoFetchCmd, repoGCCmd)
}

func runRepoAdd(cmd *cobra.Command, args []string) error {
	identifier, url := args[0], args[1]
	ctx := context.Background()

	id, err := repoid.Parse(identifier)
	if err != nil {
		return wrapExit(err)
	}

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}

	cfgMgr := config.NewManager()
	cfg, err := cfgMgr.Load(ctx, filepath.Join(root, ".wald", config.FileName))
	if err != nil {
		return wrapExit(err)
	}

	lfsValue := repoAddLFS
	if lfsValue == "" {
		lfsValue = cfg.DefaultLFS
	}
	lfs, err := parseLFS(lfsValue)
	if err != nil {
		return wrapExit(err)
	}

	depthValue := repoAddDepth
	if depthValue == "" {
		depthValue = cfg.DefaultDepth
	}
	depth, err := parseDepth(depthValue)
	if err != nil {
		return wrapExit(err)
	}

	filter, err := parseFilter(repoAddFilter)
	if err != nil {
		return wrapExit(err)
	}

	co := newCollaborators()

	ws, err := co.store.LoadWorkspace(ctx, root)
	if err != nil {
		return wrapExit(err)
	}
	if _, ok := ws.Repos[id.String()]; ok {
		return wrapExit(fmt.Errorf("%w: %s", walderr.ErrRepoAlreadyRegistered, id.String()))
	}
	for _, alias := range repoAddAlias {
		if err := ws.ValidateAliasUnique(alias, id.String()); err != nil {
			return wrapExit(err)
		}
	}

	barePath := repoid.BarePath(root, id)
	if _, err := os.Stat(barePath); err == nil {
		return wrapExit(fmt.Errorf("%w: %s", walderr.ErrContainerAlreadyExists, barePath))
	}
	if err := os.MkdirAll(filepath.Dir(barePath), 0o755); err != nil {
		return wrapExit(fmt.Errorf("%w: %s", walderr.ErrManifestWriteFailed, err))
	}

	cloneDepth := 0
	if depth != "full" {
		if n, convErr := strconv.Atoi(depth); convErr == nil {
			cloneDepth = n
		}
	}
	opts := gitdriver.CloneOptions{Filter: string(filter), Depth: cloneDepth}
	if err := co.driver.CloneBare(ctx, url, barePath, opts); err != nil {
		_ = os.RemoveAll(barePath)
		return wrapExit(err)
	}

	entry := manifest.RepoEntry{
		LFS:      lfs,
		Depth:    depth,
		Filter:   filter,
		Aliases:  repoAddAlias,
		Upstream: repoAddUpstream,
	}
	err = co.store.UpdateWorkspace(ctx, root, func(ws *manifest.Workspace) error {
		ws.Repos[id.String()] = entry
		return nil
	})
	if err != nil {
		return wrapExit(err)
	}

	ui.Success("Registered %s", id.String())
	return nil
}

func runRepoRemove(cmd *cobra.Command, args []string) error {
	identifier := args[0]
	ctx := context.Background()

	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()

	ws, err := co.store.LoadWorkspace(ctx, root)
	if err != nil {
		return wrapExit(err)
	}
	id, err := repoid.Resolve(identifier, ws)
	if err != nil {
		return wrapExit(fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, identifier))
	}
	if _, ok := ws.Repos[id.String()]; !ok {
		return wrapExit(fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, id.String()))
	}

	err = co.store.UpdateWorkspace(ctx, root, func(ws *manifest.Workspace) error {
		delete(ws.Repos, id.String())
		return nil
	})
	if err != nil {
		return wrapExit(err)
	}

	ui.Success("Unregistered %s (bare repo left on disk)", id.String())
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ws, err := co.store.LoadWorkspace(context.Background(), root)
	if err != nil {
		return wrapExit(err)
	}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(ws.Repos)
	}
	ui.PrintRepoList(ws.Repos)
	return nil
}

func runRepoFetch(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ctx := context.Background()

	ws, err := co.store.LoadWorkspace(ctx, root)
	if err != nil {
		return wrapExit(err)
	}

	ids, err := reposToActOn(args, ws)
	if err != nil {
		return wrapExit(err)
	}

	for _, id := range ids {
		barePath := repoid.BarePath(root, id)
		if repoFetchFull {
			if err := co.driver.ConvertToFull(ctx, barePath); err != nil {
				return wrapExit(err)
			}
			ui.Success("Converted %s to a full clone", id.String())
			continue
		}
		if err := co.driver.Fetch(ctx, barePath, repoFetchPrune); err != nil {
			return wrapExit(err)
		}
		ui.Success("Fetched %s", id.String())
	}
	return nil
}

func runRepoGC(cmd *cobra.Command, args []string) error {
	root, err := findWorkspaceRoot()
	if err != nil {
		return wrapExit(err)
	}
	co := newCollaborators()
	ctx := context.Background()

	ws, err := co.store.LoadWorkspace(ctx, root)
	if err != nil {
		return wrapExit(err)
	}

	ids, err := reposToActOn(args, ws)
	if err != nil {
		return wrapExit(err)
	}

	for _, id := range ids {
		barePath := repoid.BarePath(root, id)
		if err := co.driver.GC(ctx, barePath); err != nil {
			return wrapExit(err)
		}
		ui.Success("Collected garbage in %s", id.String())
	}
	return nil
}

// reposToActOn resolves args to a list of repo-ids: either the single
// identifier given, or every registered repo if args is empty.
func reposToActOn(args []string, ws *manifest.Workspace) ([]repoid.ID, error) {
	if len(args) == 1 {
		id, err := repoid.Resolve(args[0], ws)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", walderr.ErrRepoNotRegistered, args[0])
		}
		return []repoid.ID{id}, nil
	}
	if len(ws.Repos) == 0 {
		return nil, walderr.ErrNoRepositoriesToActOn
	}
	ids := make([]repoid.ID, 0, len(ws.Repos))
	for idStr := range ws.Repos {
		id, err := repoid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
