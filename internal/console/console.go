// Package console provides the interactive sfd shell and the renderers the
// CLI shares with it.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/Sazadakthar786/Software-failure-detection/internal/app"
	"github.com/Sazadakthar786/Software-failure-detection/internal/storage"
)

// errExit signals the loop to stop
var errExit = errors.New("exit")

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

type command struct {
	usage   string
	desc    string
	handler CommandHandler
}

// Console is the interactive shell
type Console struct {
	app      *app.App
	out      io.Writer
	in       io.ReadCloser
	ctx      context.Context
	commands map[string]*command
	order    []string
}

// Config holds console configuration
type Config struct {
	App *app.App
	// In and Out default to the process stdin and stdout
	In  io.ReadCloser
	Out io.Writer
}

// New creates a new console
func New(cfg *Config) (*Console, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	c := &Console{
		app:      cfg.App,
		in:       cfg.In,
		out:      cfg.Out,
		ctx:      context.Background(),
		commands: make(map[string]*command),
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	c.registerCommands()
	return c, nil
}

func (c *Console) register(name, usage, desc string, h CommandHandler, aliases ...string) {
	cmd := &command{usage: usage, desc: desc, handler: h}
	c.commands[name] = cmd
	c.order = append(c.order, name)
	for _, a := range aliases {
		c.commands[a] = cmd
	}
}

func (c *Console) registerCommands() {
	c.register("detect", "detect [cpu memory]", "Classify a reading (live when values are omitted)", c.cmdDetect)
	c.register("recover", "recover", "Run a recovery cycle from the latest sample", c.cmdRecover)
	c.register("train", "train [episodes]", "Train the policy and save the model", c.cmdTrain)
	c.register("simulate", "simulate", "Record a synthetic failure", c.cmdSimulate, "simulate-failure")
	c.register("summary", "summary", "Show recovery statistics", c.cmdSummary)
	c.register("metrics", "metrics [n]", "Show recent metric samples", c.cmdMetrics)
	c.register("actions", "actions [n]", "Show recent recovery actions", c.cmdActions)
	c.register("history", "history", "Show recovery cycles run in this session", c.cmdHistory)
	c.register("status", "status", "Show policy and detector state", c.cmdStatus)
	c.register("help", "help, ?", "Show this help message", c.cmdHelp, "?")
	c.register("exit", "exit, quit", "Exit the console", c.cmdExit, "quit")
}

// Run starts the read-eval-print loop
func (c *Console) Run(ctx context.Context) error {
	c.ctx = ctx

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            color.New(color.FgCyan).Sprint("sfd> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      c.completer(),
		Stdin:             c.in,
		Stdout:            c.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	c.printWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		if err := c.Execute(line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(c.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// Execute runs a single line of input
func (c *Console) Execute(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, ok := c.commands[parts[0]]
	if !ok {
		fmt.Fprintf(c.out, "%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), parts[0])
		return nil
	}
	return cmd.handler(parts[1:])
}

func (c *Console) completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(c.order))
	for _, name := range c.order {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (c *Console) printWelcome() {
	fmt.Fprintf(c.out, "\n%s\n", cyan("sfd console"))
	fmt.Fprintf(c.out, "Policy: %s\n", c.app.Engine.PolicyName())
	fmt.Fprintln(c.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(c.out)
}

func parseCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number, got %q", args[0])
	}
	return n, nil
}

func (c *Console) cmdDetect(args []string) error {
	var cpu, memory *float64
	switch len(args) {
	case 0:
	case 2:
		values := make([]float64, 2)
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", a, err)
			}
			values[i] = v
		}
		cpu, memory = &values[0], &values[1]
	default:
		return fmt.Errorf("usage: detect [cpu memory]")
	}

	detection, err := c.app.Detect(c.ctx, cpu, memory)
	if err != nil {
		return err
	}
	RenderDetection(c.out, detection)
	return nil
}

func (c *Console) cmdRecover(args []string) error {
	result, err := c.app.Recover(c.ctx)
	if result != nil {
		RenderRecovery(c.out, result)
	}
	return err
}

func (c *Console) cmdTrain(args []string) error {
	episodes, err := parseCount(args, c.app.Config.Training.Episodes)
	if err != nil {
		return err
	}
	report, err := c.app.Train(c.ctx, episodes)
	if report != nil {
		RenderTraining(c.out, report)
	}
	return err
}

func (c *Console) cmdSimulate(args []string) error {
	sample, err := c.app.SimulateFailure(c.ctx)
	if err != nil {
		return err
	}
	RenderSample(c.out, sample)
	return nil
}

func (c *Console) cmdSummary(args []string) error {
	summary, err := c.app.Store.GetSummary(c.ctx)
	if err != nil {
		return fmt.Errorf("failed to get summary: %w", err)
	}
	RenderSummary(c.out, summary)
	return nil
}

func (c *Console) cmdMetrics(args []string) error {
	limit, err := parseCount(args, storage.RecentLimit)
	if err != nil {
		return err
	}
	samples, err := c.app.Store.RecentMetrics(c.ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get metrics: %w", err)
	}
	RenderMetrics(c.out, samples)
	return nil
}

func (c *Console) cmdActions(args []string) error {
	limit, err := parseCount(args, storage.RecentLimit)
	if err != nil {
		return err
	}
	records, err := c.app.Store.RecentActions(c.ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get actions: %w", err)
	}
	RenderActions(c.out, records)
	return nil
}

func (c *Console) cmdHistory(args []string) error {
	RenderHistory(c.out, c.app.Watchdog.GetRecoveryHistory())
	return nil
}

func (c *Console) cmdStatus(args []string) error {
	engine := c.app.Engine
	th := c.app.Detector.Thresholds()

	fmt.Fprintf(c.out, "\n%s\n\n", cyan("Status"))
	fmt.Fprintf(c.out, "  Policy:     %s (%s)\n", engine.PolicyName(), engine.Reason())
	if err := engine.LoadError(); err != nil {
		fmt.Fprintf(c.out, "  %s %v\n", yellow("Model error:"), err)
	}
	mode := "static"
	if th.Adaptive {
		mode = "adaptive"
	}
	fmt.Fprintf(c.out, "  Detector:   %s, %d samples (failed at cpu >= %.2f or memory >= %.2f)\n", mode, th.Samples, th.CPU, th.Memory)
	fmt.Fprintf(c.out, "  Recoveries: %d this session\n\n", len(c.app.Watchdog.GetRecoveryHistory()))
	return nil
}

func (c *Console) cmdHelp(args []string) error {
	fmt.Fprintf(c.out, "\n%s\n\n", cyan("Available Commands:"))
	for _, name := range c.order {
		cmd := c.commands[name]
		fmt.Fprintf(c.out, "  %-18s %s\n", green(cmd.usage), cmd.desc)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Console) cmdExit(args []string) error {
	fmt.Fprintf(c.out, "\n%s Goodbye!\n", green("✓"))
	return errExit
}
