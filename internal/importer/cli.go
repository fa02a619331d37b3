package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"fragranceetl/internal/config"
)

// CLI executes batch files through an external database tool:
//
//	<command...> <database> [--local] --file=<path>
//	<command...> <database> [--local] --command=<query>
type CLI struct {
	Command     []string
	Database    string
	Local       bool
	LocalFlag   string
	FileFlag    string
	CommandFlag string
	WorkDir     string

	// Env is appended to the inherited environment.
	Env []string

	// WaitDelay bounds how long Wait blocks on the tool's output pipes after
	// the process is killed. Defaults to 2s.
	WaitDelay time.Duration
}

// NewCLI builds a CLI executor from the import section, applying defaults.
func NewCLI(im config.Import) *CLI {
	c := &CLI{
		Command:     im.Command,
		Database:    im.Database,
		Local:       im.Local,
		LocalFlag:   im.LocalFlag,
		FileFlag:    im.FileFlag,
		CommandFlag: im.CommandFlag,
		WorkDir:     im.WorkDir,
	}
	if len(c.Command) == 0 {
		c.Command = config.DefaultCommand
	}
	return c
}

// Args returns the argv for one invocation with the given flag=value pair.
func (c *CLI) Args(flag, value string) []string {
	args := append([]string{}, c.Command...)
	if c.Database != "" {
		args = append(args, c.Database)
	}
	if c.Local {
		args = append(args, orDefault(c.LocalFlag, "--local"))
	}
	return append(args, flag+"="+value)
}

// Execute runs the tool on one batch file. A non-zero exit is an *ExitError
// carrying the captured stderr; an expired ctx deadline is ErrTimeout.
func (c *CLI) Execute(ctx context.Context, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	_, err := c.run(ctx, c.Args(orDefault(c.FileFlag, "--file"), path))
	return err
}

// Verify runs query through the tool and returns its raw stdout.
func (c *CLI) Verify(ctx context.Context, query string) (string, error) {
	return c.run(ctx, c.Args(orDefault(c.CommandFlag, "--command"), query))
}

func (c *CLI) run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", fmt.Errorf("cli: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.WorkDir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	killProcessGroup(cmd)
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 2 * time.Second
	}

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout.String(), fmt.Errorf("%s: %w", filepath.Base(argv[0]), ErrTimeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), ctxErr
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return stdout.String(), &ExitError{Code: ee.ExitCode(), Stderr: stderr.String()}
	}
	return stdout.String(), fmt.Errorf("cli: run %s: %w", argv[0], err)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
