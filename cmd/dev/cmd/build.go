package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

const (
	binary    = "dist/cm1106"
	mainPkg   = "./cmd/cm1106"
	builderIm = "gophertribe/gobuild:1.25-bookworm"
)

// BuildCmd builds the cm1106 cli. Native builds run go build directly,
// cross builds (e.g. linux/arm64 for a NanoPi) re-run this tool in docker.
func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build cm1106 cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetOS, _ := cmd.Flags().GetString("os")
			targetArch, _ := cmd.Flags().GetString("arch")
			version, _ := cmd.Flags().GetString("version")
			crossOS, _ := cmd.Flags().GetString("cross-os")
			crossArch, _ := cmd.Flags().GetString("cross-arch")

			if targetOS != runtime.GOOS || targetArch != runtime.GOARCH {
				noCache, err := cmd.Flags().GetBool("no-cache")
				if err != nil {
					return fmt.Errorf("could not get no-cache flag: %w", err)
				}
				return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", targetOS, targetArch),
					[]string{"build", "--version", version, "--cross-os", targetOS, "--cross-arch", targetArch},
					build.DockerBuildOpts{
						NoCache: noCache,
						Image:   builderIm,
					})
			}
			if crossOS != "" && crossArch != "" {
				targetOS, targetArch = crossOS, crossArch
			}
			// hid and periph host drivers need cgo
			return build.GoBuild(binary, mainPkg, build.GoBuildOpts{
				Version:       version,
				InjectVersion: true,
				ConfigPackage: "main",
				EnableCgo:     true,
				Arch:          targetArch,
				OS:            targetOS,
			})
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not use cache when building the app")
	cmd.Flags().String("version", "latest", "version of the cli")
	cmd.Flags().String("os", runtime.GOOS, "os to build for")
	cmd.Flags().String("arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().String("cross-os", "", "os to cross-compile for")
	cmd.Flags().String("cross-arch", "", "arch to cross-compile for")
	return cmd
}
