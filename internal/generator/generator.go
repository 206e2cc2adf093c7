// Package generator runs the external data generator and stages its output
// as the local input file.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"sheetclean/internal/config"
	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/files"
)

// ErrGeneratorFailed is returned when the generator exits with a non-zero code
var ErrGeneratorFailed = errors.New("generator exited with non-zero status")

// maxLoggedOutput bounds how much generator output is copied into logs
const maxLoggedOutput = 4096

// Generator produces a fresh input file before a run
type Generator struct {
	cfg    config.GeneratorConfig
	input  string
	runner Runner
	files  *files.Manager
	logger *slog.Logger
}

// New creates a generator that stages its output at inputPath
func New(cfg config.GeneratorConfig, inputPath string, runner Runner, fm *files.Manager, logger *slog.Logger) *Generator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	return &Generator{
		cfg:    cfg,
		input:  inputPath,
		runner: runner,
		files:  fm,
		logger: logger,
	}
}

// Command returns the invocation for the configured student number
func (g *Generator) Command() Command {
	return Command{
		Name: g.cfg.Command,
		Args: []string{g.cfg.Script, "-s", strconv.Itoa(g.cfg.StudentNumber)},
		Dir:  g.cfg.Dir,
	}
}

// OutputPath is where the generator writes its file
func (g *Generator) OutputPath() string {
	return filepath.Join(g.cfg.Dir, g.cfg.OutputFile())
}

// Generate runs the generator and copies its output to the input path
func (g *Generator) Generate(ctx context.Context) error {
	cmd := g.Command()
	g.logger.InfoContext(ctx, "Running data generator",
		slog.String("command", cmd.String()),
		slog.String("dir", cmd.Dir))

	result, err := g.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		g.logger.ErrorContext(ctx, "Data generator failed",
			slog.Int("exit_code", result.ExitCode),
			slog.String("output", truncate(result.Output)))
		return apperrors.NewProcessError("data generator failed",
			fmt.Errorf("%w: exit code %d", ErrGeneratorFailed, result.ExitCode)).
			WithContext("command", cmd.String()).
			WithContext("exit_code", result.ExitCode).
			WithContext("output", truncate(result.Output))
	}

	src := g.OutputPath()
	if filepath.Clean(src) == filepath.Clean(g.input) {
		g.logger.InfoContext(ctx, "Generator wrote input file in place", slog.String("path", src))
		return nil
	}
	if !g.files.FileExists(src) {
		return apperrors.NewProcessError("data generator produced no output file", nil).
			WithContext("path", src)
	}
	if err := g.files.CopyFile(src, g.input); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "Generated data staged",
		slog.String("src", src),
		slog.String("dst", g.input))
	return nil
}

func truncate(output []byte) string {
	if len(output) <= maxLoggedOutput {
		return string(output)
	}
	return string(output[:maxLoggedOutput]) + "..."
}
