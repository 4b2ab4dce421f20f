package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/logs"
)

// Interpreter runs a source file when its path is appended.
type Interpreter []string

func (Module) Interpreter(
	loader configs.Loader,
) Interpreter {
	if command := configs.First[[]string](loader, "interpreter"); len(command) > 0 {
		return command
	}
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return Interpreter{path}
		}
	}
	return Interpreter{"python3"}
}

type CodeResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (c CodeResult) Map() map[string]any {
	return map[string]any{
		"stdout":    c.Stdout,
		"stderr":    c.Stderr,
		"exit_code": c.ExitCode,
	}
}

// ExecuteCode runs code in a child process from the working directory. The
// code is written to a temporary file removed afterwards.
type ExecuteCode func(ctx context.Context, code string) CodeResult

func (Module) ExecuteCode(
	interpreter Interpreter,
	timeouts Timeouts,
	logger logs.Logger,
) ExecuteCode {
	return func(ctx context.Context, code string) CodeResult {
		timeout := timeouts.Of(ExecuteCodeName)
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.InfoContext(ctx, "execute code", "length", len(code))

		failed := func(err error) CodeResult {
			logger.ErrorContext(ctx, "execute code", "error", err)
			return CodeResult{
				Stderr:   fmt.Sprintf("Error executing code: %v", err),
				ExitCode: -1,
			}
		}

		f, err := os.CreateTemp("", "quizrun-*.py")
		if err != nil {
			return failed(err)
		}
		defer os.Remove(f.Name())
		if _, err := f.WriteString(code); err != nil {
			f.Close()
			return failed(err)
		}
		if err := f.Close(); err != nil {
			return failed(err)
		}

		args := append(slices.Clone(interpreter[1:]), f.Name())
		cmd := exec.CommandContext(ctx, interpreter[0], args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second
		err = cmd.Run()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg := "Code execution timed out after " + describeDuration(timeout)
			logger.WarnContext(ctx, msg)
			return CodeResult{
				Stderr:   msg,
				ExitCode: -1,
			}
		}

		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return failed(err)
			}
			exitCode = exitErr.ExitCode()
		}
		if exitCode == 0 {
			logger.InfoContext(ctx, "code executed", "stdout", truncate(stdout.String(), 500))
		} else {
			logger.WarnContext(ctx, "code failed",
				"exit_code", exitCode,
				"stderr", truncate(stderr.String(), 500),
			)
		}
		return CodeResult{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func executeCodeCapability(execute ExecuteCode, timeouts Timeouts) Capability {
	return Capability{
		Decl:    executeCodeDecl,
		Timeout: timeouts.Of(ExecuteCodeName),
		Func: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			code, _ := args["code"].(string)
			return execute(ctx, code).Map(), nil
		},
	}
}
