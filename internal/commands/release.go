package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/release-tools/internal/config"
	"github.com/user/release-tools/pkg/github"
	"github.com/user/release-tools/pkg/gitrepo"
	"github.com/user/release-tools/pkg/manifest"
	"github.com/user/release-tools/pkg/release"
	"github.com/user/release-tools/pkg/version"
)

func newReleaseCommand() *cobra.Command {
	var (
		configFile  string
		releaseType string
		draft       bool
		dryRun      bool
		ci          bool
	)

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Compute, tag and publish the next release",
		Long: `Inspect the commits since the last tag, derive the next semantic
version, bump the workspace manifests, tag the repository and publish a
GitHub release with generated notes.

Example:
  reltools release --type minor
  reltools release --dry-run
  reltools release --ci`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context(), configFile, releaseType, draft, dryRun, ci)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultFile, "Path to the release configuration file")
	cmd.Flags().StringVarP(&releaseType, "type", "t", "", "Release type: major, minor, patch or prerelease")
	cmd.Flags().BoolVar(&draft, "draft", false, "Publish the GitHub release as a draft")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and print the release without writing anything")
	cmd.Flags().BoolVar(&ci, "ci", false, "Non-interactive mode; missing --type is inferred from commits")

	return cmd
}

func runRelease(ctx context.Context, configFile, releaseType string, draft, dryRun, ci bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := release.Options{Draft: draft, DryRun: dryRun}
	if releaseType != "" {
		parsed, err := version.ParseReleaseType(releaseType)
		if err != nil {
			return err
		}
		opts.Type = parsed
	} else if cfg.Release.Strategy == "manual" && !ci {
		return fmt.Errorf("release strategy is manual: pass --type, or use --ci to infer the bump from commits")
	}

	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("authentication: %w (set GITHUB_TOKEN or add it to a .env file)", err)
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	repo, err := gitrepo.Open(root)
	if err != nil {
		return err
	}

	var bumper release.ManifestBumper = manifest.NodeBumper{}
	if cfg.Project.Environment == "python" {
		bumper = manifest.PythonBumper{}
	}

	orchestrator := release.New(release.Config{
		Environment:          release.Environment(cfg.Project.Environment),
		Workspaces:           cfg.Project.Workspaces,
		Version:              cfg.Project.Version,
		Strategy:             release.VersioningStrategy(cfg.Release.VersioningStrategy),
		PreReleaseIdentifier: cfg.Release.PreReleaseIdentifier,
	}, repo, github.NewClient(token), bumper, root)

	results, err := orchestrator.Run(ctx, opts)
	if err != nil {
		var relErr *release.Error
		if errors.As(err, &relErr) && len(relErr.Hints) > 0 {
			fmt.Fprintf(os.Stderr, "To fix this:\n%s", relErr.Remediation())
		}
		return err
	}

	for _, result := range results {
		if result.DryRun {
			fmt.Printf("Dry run: would release %s\n\n%s\n", result.TagName, result.ReleaseNotes)
			continue
		}
		fmt.Printf("Released %s\n", result.TagName)
	}

	return nil
}
