package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/UnknownOlympus/meteo/internal/coordinates"
	"github.com/UnknownOlympus/meteo/internal/models"
)

// DefaultCommand asks Windows location services for the position through a PowerShell script.
var DefaultCommand = []string{"powershell.exe", "./get_loc.ps1"}

// errEmptyCommand is returned when the command source has nothing to run.
var errEmptyCommand = errors.New("location command is empty")

// CommandSource runs an external positioning tool and parses its standard output.
// The tool must print "<longitude>\r<latitude>".
type CommandSource struct {
	args    []string     // Command name followed by its arguments
	rounded bool         // Round coordinates to one decimal place
	log     *slog.Logger // Logger for logging operations
}

// NewCommandSource creates a source running args[0] with args[1:].
func NewCommandSource(args []string, rounded bool, log *slog.Logger) *CommandSource {
	return &CommandSource{args: args, rounded: rounded, log: log}
}

// Locate runs the command once. A non-zero exit status or anything written to
// standard error means the position is unavailable.
func (cs *CommandSource) Locate(ctx context.Context) (models.Coordinates, error) {
	if len(cs.args) == 0 {
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, errEmptyCommand)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cs.args[0], cs.args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cs.log.DebugContext(ctx, "Running location command", "command", cs.args)

	if err := cmd.Run(); err != nil {
		cs.log.ErrorContext(ctx, "Location command failed", "error", err, "stderr", stderr.String())
		return models.Coordinates{}, fmt.Errorf("%w: location command failed: %w", ErrLocationUnavailable, err)
	}
	if stderr.Len() > 0 {
		cs.log.ErrorContext(ctx, "Location command reported an error", "stderr", stderr.String())
		return models.Coordinates{}, fmt.Errorf("%w: location command wrote to stderr", ErrLocationUnavailable)
	}

	cs.log.DebugContext(ctx, "Location command output", "stdout", stdout.String())

	return coordinates.Parse(stdout.Bytes(), cs.rounded)
}
