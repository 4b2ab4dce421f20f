package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
)

// InstallCommand installs packages appended as arguments.
type InstallCommand []string

func (Module) InstallCommand(
	loader configs.Loader,
	interpreter Interpreter,
) InstallCommand {
	if command := configs.First[[]string](loader, "install_command"); len(command) > 0 {
		return command
	}
	return append(
		slices.Clone(InstallCommand(interpreter)),
		"-m", "pip", "install", "--quiet",
	)
}

// InstallDependency installs packages into the interpreter environment and
// returns a human readable outcome.
type InstallDependency func(ctx context.Context, packages []string) string

func (Module) InstallDependency(
	command InstallCommand,
	timeouts Timeouts,
	logger logs.Logger,
) InstallDependency {
	return func(ctx context.Context, packages []string) string {
		if len(packages) == 0 {
			return "Error: No packages specified"
		}
		for _, pkg := range packages {
			if pkg == "" || strings.HasPrefix(pkg, "-") {
				return fmt.Sprintf("Error: Invalid package name: %q", pkg)
			}
		}
		list := strings.Join(packages, ", ")

		timeout := timeouts.Of(InstallDependencyName)
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.InfoContext(ctx, "install packages", "packages", list)

		args := append(slices.Clone(command[1:]), packages...)
		cmd := exec.CommandContext(ctx, command[0], args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		err := cmd.Run()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg := "Package installation timed out after " + describeDuration(timeout)
			logger.WarnContext(ctx, msg)
			return msg
		}
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				logger.ErrorContext(ctx, "install packages", "error", err)
				return fmt.Sprintf("Error installing packages: %v", err)
			}
			msg := "Failed to install packages. Error: " + stderr.String()
			logger.WarnContext(ctx, "install packages failed", "stderr", stderr.String())
			return msg
		}

		logger.InfoContext(ctx, "packages installed", "packages", list)
		return "Successfully installed: " + list
	}
}

func installDependencyCapability(install InstallDependency, timeouts Timeouts) Capability {
	return Capability{
		Decl:    installDependencyDecl,
		Timeout: timeouts.Of(InstallDependencyName),
		Func: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			var packages []string
			list, _ := args["packages"].([]any)
			for _, item := range list {
				if s, ok := item.(string); ok {
					packages = append(packages, s)
				}
			}
			return map[string]any{
				"message": install(ctx, packages),
			}, nil
		},
	}
}
