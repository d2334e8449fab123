// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package demo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/faultline-project/faultline/cmd/faultline/cli"
)

type demoParams struct {
	Bin     string        `json:"-" flag:"bin" desc:"path to the faultline-demo binary (default: next to faultline, then $PATH)"`
	Slot    int           `json:"-" flag:"slot" desc:"sensor slot to read; the array has three" default:"4"`
	Timeout time.Duration `json:"-" flag:"timeout" desc:"how long to wait for the program to fault" default:"10s"`
}

// DemoCommand returns the "demo" command.
func DemoCommand() *cli.Command {
	var params demoParams
	return &cli.Command{
		Name:    "demo",
		Summary: "Run the out-of-bounds crash scenario end to end",
		Description: `Launch the faultline-demo program, which reads a sensor slot from a
three element array through the checked subscript. The default slot
is one past the end, so the bound handler takes over: the program's
narration arrives on stdout and the handler's diagnostic line on
stderr, both relayed here. The parked process is killed once the
diagnostic has been read.

Pass a slot inside the array to watch the same program complete
normally.`,
		Usage: "faultline demo [flags]",
		Examples: []cli.Example{
			{Description: "Crash on the default out-of-range slot", Command: "faultline demo"},
			{Description: "Read a valid slot instead", Command: "faultline demo --slot 1"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("demo", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("demo takes no arguments\n\nUsage: faultline demo [flags]")
			}
			return runDemo(ctx, os.Stdout, logger, &params)
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, logger *slog.Logger, params *demoParams) error {
	binary := params.Bin
	if binary == "" {
		located, err := locateDemoBinary()
		if err != nil {
			return err
		}
		binary = located
	}

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, strconv.Itoa(params.Slot))
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return cli.Internal("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return cli.Internal("stderr pipe: %w", err)
	}
	logger.Debug("launching demo program", "binary", binary, "slot", params.Slot)
	if err := cmd.Start(); err != nil {
		return cli.Internal("starting %s: %w", binary, err)
	}

	narration := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(stdoutPipe)
		narration <- data
	}()

	lines := make(chan string, 1)
	readErrs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(stderrPipe).ReadString('\n')
		if err != nil {
			readErrs <- err
			return
		}
		lines <- line
	}()

	select {
	case line := <-lines:
		// The handler has written its diagnostic and parked the
		// program; nothing more will happen until it is killed.
		cmd.Process.Kill()
		cmd.Wait()
		out.Write(<-narration)
		fmt.Fprint(out, line)
		fmt.Fprint(out, "\nThe bound handler wrote the diagnostic and parked the program;\nthe parked process was killed after the line was read.\n")
		return nil
	case err := <-readErrs:
		if !errors.Is(err, io.EOF) {
			cmd.Process.Kill()
			cmd.Wait()
			return cli.Internal("reading demo stderr: %w", err)
		}
		// Stderr closed with no diagnostic: the program finished on
		// its own.
		if waitErr := cmd.Wait(); waitErr != nil {
			out.Write(<-narration)
			return cli.Internal("demo program failed: %w", waitErr)
		}
		out.Write(<-narration)
		fmt.Fprintf(out, "\nSlot %d is inside the array; the program completed without\nfaulting. Run again without --slot for the crash path.\n", params.Slot)
		return nil
	case <-ctx.Done():
		cmd.Process.Kill()
		cmd.Wait()
		return cli.Transient("demo program produced no diagnostic within %s", params.Timeout).
			WithHint("A faultline-demo built with -tags faultdemo_halt is silent; that build parks without output.")
	}
}

// locateDemoBinary looks for faultline-demo next to the running
// executable first, then on $PATH.
func locateDemoBinary() (string, error) {
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), "faultline-demo")
		if info, err := os.Stat(sibling); err == nil && info.Mode().IsRegular() && info.Mode()&0o111 != 0 {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("faultline-demo")
	if err != nil {
		return "", cli.NotFound("faultline-demo binary not found").
			WithHint("Build it with 'go build ./cmd/faultline-demo' and place it next to faultline or on $PATH.")
	}
	return path, nil
}
