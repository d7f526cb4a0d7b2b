package pkgmgr

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devutils/internal/shell"
	"devutils/internal/shell/shelltest"
)

func TestAptUsesSudoWhenRequired(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder()

	require.NoError(t, NewApt(rec, true).Install(ctx, "vim", "git"))
	require.NoError(t, NewApt(rec, false).Update(ctx))
	require.NoError(t, NewApt(rec, false).InstallDeb(ctx, "etcher.deb"))

	assert.Equal(t, []string{
		"sudo apt-get install -y vim git",
		"apt-get update",
		"apt-get install -y ./etcher.deb",
	}, rec.Commands())
}

func TestAptInstallFailure(t *testing.T) {
	rec := shelltest.NewRecorder().On("apt-get install -y nope", shell.Result{Code: 100, Stderr: "E: Unable to locate package nope"})
	err := NewApt(rec, false).Install(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate package")
}

func TestBrewQueries(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder("brew").
		On("brew list --formula vim", shell.Result{}).
		On("brew list --cask vlc", shell.Result{Code: 1})

	b := NewBrew(rec)
	assert.True(t, b.IsInstalled(ctx, "vim"))
	assert.False(t, b.IsCaskInstalled(ctx, "vlc"))

	require.NoError(t, b.Tap(ctx, "hashicorp/tap"))
	require.NoError(t, b.InstallCask(ctx, "docker"))
	assert.Contains(t, rec.Commands(), "brew install --cask docker")
}

func TestBrewNotInstalled(t *testing.T) {
	rec := shelltest.NewRecorder()
	assert.False(t, NewBrew(rec).IsInstalled(context.Background(), "vim"))
	assert.Empty(t, rec.Calls())
}

func TestDnfAndYum(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder()

	require.NoError(t, NewDnf(rec, "dnf", false).AddRepo(ctx, "https://example.com/x.repo"))
	require.NoError(t, NewDnf(rec, "yum", true).Install(ctx, "git"))
	require.NoError(t, NewDnf(rec, "yum", false).AddRepo(ctx, "https://example.com/x.repo"))

	assert.Equal(t, []string{
		"dnf config-manager --add-repo https://example.com/x.repo",
		"sudo yum install -y git",
		"yum-config-manager --add-repo https://example.com/x.repo",
	}, rec.Commands())
}

func TestWindowsInstallFallsBackToChoco(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder("winget", "choco").
		On("winget install --id VideoLAN.VLC -e --silent --accept-package-agreements --accept-source-agreements", shell.Result{Code: 1})

	require.NoError(t, WindowsInstall(ctx, rec, "VideoLAN.VLC", "vlc"))
	assert.Equal(t, "choco install vlc -y", rec.Commands()[1])
}

func TestWindowsInstallNoManager(t *testing.T) {
	err := WindowsInstall(context.Background(), shelltest.NewRecorder(), "Git.Git", "git")
	require.Error(t, err)
}

func TestChocoIsInstalledParsesLimitOutput(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder("choco").
		On("choco list --local-only --exact git --limit-output", shell.Result{Stdout: "git|2.43.0\n"})
	assert.True(t, NewChoco(rec).IsInstalled(ctx, "git"))
	assert.False(t, NewChoco(rec).IsInstalled(ctx, "vim"))
}

func TestSystemdEnableNow(t *testing.T) {
	rec := shelltest.NewRecorder("systemctl")
	s := NewSystemd(rec, true)
	require.True(t, s.Available())
	require.NoError(t, s.EnableNow(context.Background(), "docker"))
	assert.Equal(t, []string{"sudo systemctl enable --now docker"}, rec.Commands())
}

func TestQueriesBypassDryRun(t *testing.T) {
	ctx := context.Background()
	rec := shelltest.NewRecorder("systemctl").
		On("dpkg -s vim", shell.Result{Code: 1}).
		On("systemctl is-active --quiet docker", shell.Result{Code: 3})
	var printed bytes.Buffer
	dry := shell.DryRun{Next: rec, Out: &printed}

	assert.False(t, NewApt(dry, true).IsInstalled(ctx, "vim"))
	assert.False(t, NewSystemd(dry, true).IsActive(ctx, "docker"))
	require.NoError(t, NewApt(dry, true).Install(ctx, "vim"))

	assert.Equal(t, []string{"dpkg -s vim", "systemctl is-active --quiet docker"}, rec.Commands())
	assert.Equal(t, "[dry-run] sudo apt-get install -y vim\n", printed.String())
}
