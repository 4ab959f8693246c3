package actions

import (
	"encoding/json"
	"fmt"
	"strings"

	"vaultsync.dev/vaultsync/internal/engine"
	"vaultsync.dev/vaultsync/internal/runtime"
	"vaultsync.dev/vaultsync/internal/tui"
	"vaultsync.dev/vaultsync/internal/vault"
)

// InfoOptions contains options for the info command
type InfoOptions struct {
	JSON bool
}

type infoReport struct {
	Vault       vault.Summary
	Environment engine.EnvironmentInfo
	Status      engine.RepoStatus
	Remotes     []remoteReport
}

type remoteReport struct {
	Name       string
	URL        string
	AuthMethod string
}

// InfoAction prints the git environment, the vault and its repository state
func InfoAction(ctx *runtime.Context, opts InfoOptions) error {
	info, err := ctx.Engine.GetInfo(ctx, ctx.VaultPath)
	if err != nil {
		return err
	}
	summary, err := vault.Describe(ctx.VaultPath)
	if err != nil {
		return fmt.Errorf("failed to inspect vault: %w", err)
	}

	report := infoReport{
		Vault:       summary,
		Environment: info.Environment,
		Status:      info.Status,
		Remotes:     make([]remoteReport, 0, len(info.Remotes)),
	}
	for _, r := range info.Remotes {
		report.Remotes = append(report.Remotes, remoteReport{Name: r.Name, URL: r.URL, AuthMethod: r.AuthMethod.String()})
	}

	if opts.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		ctx.Splog.Page(string(data) + "\n")
		return nil
	}

	printInfo(ctx.Splog, report)
	return nil
}

func printInfo(splog *tui.Splog, r infoReport) {
	splog.Info(tui.Bold("Environment"))
	if r.Environment.ToolInstalled {
		splog.Info("  git %s (%s)", r.Environment.ToolVersion, r.Environment.ToolPath)
	} else {
		splog.Info("  git %s", tui.ColorRed("not installed"))
	}
	splog.Info("  backend: %s", r.Environment.Backend)

	splog.Newline()
	splog.Info(tui.Bold("Vault"))
	splog.Info("  %s (%s)", r.Vault.Name, r.Vault.Path)
	splog.Info("  notes: %d", r.Vault.MarkdownFiles)
	splog.Info("  .gitignore: %s", yesNo(r.Vault.HasGitignore))
	splog.Info("  obsidian-git settings: %s", yesNo(r.Vault.HasPluginConfig))

	splog.Newline()
	splog.Info(tui.Bold("Repository"))
	if !r.Status.IsGitRepo {
		splog.Info("  %s", tui.ColorYellow("not initialized"))
		return
	}
	splog.Page(indent(r.Status.String()) + "\n")

	splog.Newline()
	splog.Info(tui.Bold("Remotes"))
	if len(r.Remotes) == 0 {
		splog.Info("  %s", tui.ColorDim("none"))
	}
	for _, remote := range r.Remotes {
		splog.Info("  %s  %s %s", remote.Name, remote.URL, tui.ColorDim("("+remote.AuthMethod+")"))
	}
}

func yesNo(b bool) string {
	if b {
		return tui.ColorGreen("yes")
	}
	return tui.ColorDim("no")
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
