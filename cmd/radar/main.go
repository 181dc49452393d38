package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/perfradar/radar/internal/checklist"
	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	"github.com/perfradar/radar/internal/detect"
	"github.com/perfradar/radar/internal/forensic"
	"github.com/perfradar/radar/internal/indexing"
	"github.com/perfradar/radar/internal/investigate"
	"github.com/perfradar/radar/internal/jdk"
	"github.com/perfradar/radar/internal/mcp"
	"github.com/perfradar/radar/internal/report"
	"github.com/perfradar/radar/internal/version"
)

// loadConfigWithOverrides loads .radar.kdl (when present) and applies
// CLI flag overrides on top.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadKDL(absRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Project.Root = absRoot

	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Performance.MaxGoroutines = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "radar",
		Usage:                  "Java performance anti-pattern radar and log forensics",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root to analyze",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "additional exclusion globs",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker goroutine count",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write diagnostics to a debug log file",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				if path, err := debug.InitDebugLogFile(); err == nil {
					fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
				}
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			scanCommand(),
			logCommand(),
			investigateCommand(),
			checklistCommand(),
			antipatternsCommand(),
			serveCommand(),
			jdkCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "scan a Java project for performance anti-patterns",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "one line per finding"},
			&cli.BoolFlag{Name: "json", Usage: "JSON output"},
			&cli.BoolFlag{Name: "watch", Usage: "rescan on file changes"},
			&cli.IntFlag{Name: "max-p1", Usage: "cap on P1 findings"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			if maxP1 := c.Int("max-p1"); maxP1 > 0 {
				cfg.Scan.MaxP1Findings = maxP1
			}

			ctx := signalContext()
			scanner := detect.NewScanner(cfg)

			runOnce := func() error {
				result, err := scanner.ScanProject(ctx)
				if err != nil {
					return err
				}
				if c.Bool("json") {
					text, err := report.RenderJSON(result)
					if err != nil {
						return err
					}
					fmt.Println(text)
					return nil
				}
				fmt.Print(report.RenderScan(result, c.Bool("compact")))
				return nil
			}

			if err := runOnce(); err != nil {
				return err
			}
			if !c.Bool("watch") {
				return nil
			}

			debounce := time.Duration(cfg.Performance.DebounceMs) * time.Millisecond
			watcher, err := indexing.NewWatcher(cfg.Project.Root, debounce, func() {
				if err := runOnce(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			})
			if err != nil {
				return err
			}
			defer watcher.Close()
			watcher.Prime(scanner.Index())
			watcher.Run(ctx)
			return nil
		},
	}
}

func logCommand() *cli.Command {
	return &cli.Command{
		Name:      "log",
		Usage:     "forensic analysis of a log file",
		ArgsUsage: "<logfile>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-lines", Usage: "line cap override"},
			&cli.BoolFlag{Name: "json", Usage: "JSON output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: radar log <logfile>")
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			analyzer := forensic.NewAnalyzer(cfg.Forensic)
			result, err := analyzer.Analyze(c.Args().First(), c.Int("max-lines"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				text, err := report.RenderJSON(result)
				if err != nil {
					return err
				}
				fmt.Println(text)
				return nil
			}
			fmt.Print(report.RenderLog(result))
			return nil
		},
	}
}

func investigateCommand() *cli.Command {
	return &cli.Command{
		Name:  "investigate",
		Usage: "correlate scan findings with log evidence and symptoms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "evidence", Aliases: []string{"e"}, Usage: "log file to analyze"},
			&cli.StringSliceFlag{Name: "symptom", Aliases: []string{"s"}, Usage: "observed symptom label"},
			&cli.StringFlag{Name: "pid", Usage: "live JVM PID to sample"},
			&cli.BoolFlag{Name: "json", Usage: "JSON output"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			result, err := investigate.Run(signalContext(), cfg, investigate.Request{
				Evidence: c.String("evidence"),
				Symptoms: c.StringSlice("symptom"),
				PID:      c.String("pid"),
			})
			if err != nil {
				return err
			}
			if c.Bool("json") {
				text, err := report.RenderJSON(result)
				if err != nil {
					return err
				}
				fmt.Println(text)
				return nil
			}
			fmt.Print(report.RenderInvestigation(result))
			return nil
		},
	}
}

func checklistCommand() *cli.Command {
	return &cli.Command{
		Name:      "checklist",
		Usage:     "diagnostic checklist for a symptom",
		ArgsUsage: "<symptom>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "priority", Usage: "filter to P0 or P1"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: radar checklist <symptom> (known: %s)",
					strings.Join(checklist.KnownSymptoms(), ", "))
			}
			sections, err := checklist.ForSymptom(c.Args().First(), c.String("priority"))
			if err != nil {
				return err
			}
			fmt.Print(report.RenderChecklist(sections))
			return nil
		},
	}
}

func antipatternsCommand() *cli.Command {
	return &cli.Command{
		Name:  "antipatterns",
		Usage: "print the full anti-pattern knowledge base",
		Action: func(c *cli.Context) error {
			fmt.Print(report.RenderChecklist(checklist.AllSections()))
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			debug.SetMCPMode(true)
			return mcp.NewServer(cfg).Start(signalContext())
		},
	}
}

func jdkCommand() *cli.Command {
	return &cli.Command{
		Name:  "jdk",
		Usage: "JDK diagnostic tool wrappers",
		Subcommands: []*cli.Command{
			{
				Name:      "threads",
				Usage:     "thread dump with state summary",
				ArgsUsage: "<pid>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: radar jdk threads <pid>")
					}
					dump, summary, err := jdk.ThreadDump(signalContext(), c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(summary.Summarize())
					fmt.Println(dump)
					return nil
				},
			},
			{
				Name:      "heap",
				Usage:     "live heap histogram",
				ArgsUsage: "<pid>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: radar jdk heap <pid>")
					}
					out, err := jdk.HeapHistogram(signalContext(), c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:      "bytecode",
				Usage:     "disassemble a compiled class",
				ArgsUsage: "<class>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "classpath", Aliases: []string{"cp"}},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: radar jdk bytecode <class>")
					}
					out, err := jdk.Bytecode(signalContext(), c.String("classpath"), c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
		},
	}
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}
