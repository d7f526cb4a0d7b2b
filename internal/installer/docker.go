package installer

import (
	"context"
	"fmt"

	"devutils/internal/logger"
	"devutils/internal/platform"
)

const dockerAptSource = "/etc/apt/sources.list.d/docker.list"

var dockerPackages = []string{
	"docker-ce", "docker-ce-cli", "containerd.io", "docker-buildx-plugin", "docker-compose-plugin",
}

// Docker installs Docker Engine on Linux and Docker Desktop elsewhere.
var Docker = &Installer{
	Name:        "docker",
	Description: "Container runtime and CLI",
	Binary:      "docker",
	Check:       caskOrBinary("docker", "docker", "Docker.DockerDesktop", "docker-desktop"),
	Steps: platform.Table[Step]{
		platform.MacOS:   brewCask("docker"),
		platform.Debian:  dockerDebian,
		platform.RHEL:    dockerRHEL,
		platform.Windows: windowsPackage("Docker.DockerDesktop", "docker-desktop"),
	},
}

func dockerDebian(ctx context.Context, env *Env) error {
	if !env.fileExists(dockerAptSource) {
		if err := addDockerAptRepo(ctx, env); err != nil {
			return err
		}
	}
	apt := env.apt()
	if err := apt.Update(ctx); err != nil {
		return err
	}
	return apt.Install(ctx, dockerPackages...)
}

// addDockerAptRepo registers download.docker.com as an apt source, signed by
// Docker's published key.
func addDockerAptRepo(ctx context.Context, env *Env) error {
	logger.Info("[INFO] Adding Docker apt repository...\n")
	distro := "debian"
	switch env.Platform.Type {
	case platform.Ubuntu, platform.WSL:
		distro = "ubuntu"
	case platform.Raspbian:
		distro = "raspbian"
	}
	base := "https://download.docker.com/linux/" + distro

	apt := env.apt()
	if err := apt.Update(ctx); err != nil {
		return err
	}
	if err := apt.Install(ctx, "ca-certificates", "curl"); err != nil {
		return err
	}

	keyCmd := fmt.Sprintf("install -m 0755 -d /etc/apt/keyrings && curl -fsSL %s/gpg -o /etc/apt/keyrings/docker.asc && chmod a+r /etc/apt/keyrings/docker.asc", base)
	if err := env.privileged(ctx, "sh", "-c", keyCmd).Err("fetching Docker GPG key"); err != nil {
		return err
	}

	listCmd := fmt.Sprintf(`echo "deb [arch=$(dpkg --print-architecture) signed-by=/etc/apt/keyrings/docker.asc] %s $(. /etc/os-release && echo "$VERSION_CODENAME") stable" > %s`, base, dockerAptSource)
	return env.privileged(ctx, "sh", "-c", listCmd).Err("writing " + dockerAptSource)
}

func dockerRHEL(ctx context.Context, env *Env) error {
	repo := "https://download.docker.com/linux/centos/docker-ce.repo"
	if env.Platform.Type == platform.Fedora {
		repo = "https://download.docker.com/linux/fedora/docker-ce.repo"
	}

	dnf := env.dnf()
	if err := dnf.Install(ctx, "dnf-plugins-core"); err != nil {
		return err
	}
	if err := dnf.AddRepo(ctx, repo); err != nil {
		return err
	}
	if err := dnf.Install(ctx, dockerPackages...); err != nil {
		return err
	}

	if sd := env.systemd(); sd.Available() {
		if sd.IsActive(ctx, "docker") {
			logger.Info("[INFO] docker service is already running\n")
			return nil
		}
		return sd.EnableNow(ctx, "docker")
	}
	logger.Warn("[WARN] systemctl not found; start the docker daemon manually\n")
	return nil
}
