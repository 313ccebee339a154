package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// DefaultCLIBinary is the near-cli executable looked up in PATH.
const DefaultCLIBinary = "near"

// CommandRunner runs an external command and returns what it wrote to stdout and stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}

// CommandError is returned when near-cli exits with an error. Its message is what the command
// wrote to stderr.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}

	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CLIClient submits calls through near-cli.
type CLIClient struct {
	Binary    string
	NetworkID string
	NodeURL   string
	Runner    CommandRunner
	Logger    logger.Logger
}

var _ near.Client = (*CLIClient)(nil)

// Call runs `near call <receiver> <method> <args> --accountId <signer> --gas <gas>`.
func (c *CLIClient) Call(ctx context.Context, req near.CallRequest) (json.RawMessage, error) {
	args := []string{
		"call",
		req.Receiver,
		req.Method,
		string(near.ArgsOrEmpty(req.Args)),
		"--accountId", req.Signer,
		"--gas", req.EffectiveGas().String(),
	}
	if deposit := req.EffectiveDeposit(); !deposit.IsZero() {
		args = append(args, "--depositYocto", deposit.String())
	}

	return c.run(ctx, args)
}

// View runs `near view <receiver> <method> <args>`.
func (c *CLIClient) View(ctx context.Context, req near.ViewRequest) (json.RawMessage, error) {
	return c.run(ctx, []string{
		"view",
		req.Receiver,
		req.Method,
		string(near.ArgsOrEmpty(req.Args)),
	})
}

func (c *CLIClient) run(ctx context.Context, args []string) (json.RawMessage, error) {
	if c.NetworkID != "" {
		args = append(args, "--networkId", c.NetworkID)
	}
	if c.NodeURL != "" {
		args = append(args, "--nodeUrl", c.NodeURL)
	}

	binary := c.Binary
	if binary == "" {
		binary = DefaultCLIBinary
	}
	command := binary + " " + strings.Join(args, " ")

	lggr := c.Logger
	if lggr == nil {
		lggr = logger.Nop()
	}
	lggr.Debugw("Running near-cli", "command", command)

	stdout, stderr, err := c.Runner.Run(ctx, binary, args...)
	if err != nil {
		lggr.Debugw("near-cli failed",
			"error", err,
			"stdout", string(stdout),
			"stderr", string(stderr))

		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}

		return nil, &CommandError{
			Command: command,
			Stderr:  strings.TrimSpace(string(stderr)),
			Err:     err,
		}
	}

	out, err := parseCLIOutput(stdout)
	if err != nil {
		lggr.Debugw("near-cli output not understood", "error", err, "stdout", string(stdout))
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	return out, nil
}
