package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/core"
	"github.com/vovakirdan/solar-scene/internal/host"
	"github.com/vovakirdan/solar-scene/internal/logging"
	"github.com/vovakirdan/solar-scene/internal/registry"
	"github.com/vovakirdan/solar-scene/internal/resource"
	"github.com/vovakirdan/solar-scene/internal/world"
)

var flagExecScene string

var execCmd = &cobra.Command{
	Use:   "exec <script>",
	Short: "Apply a command script to a fresh scene",
	Long: `Runs every line of the script through the command interpreter against
a freshly built scene, then prints the resulting objects and points.
Use - to read the script from stdin. A line starting with X stops the script.

Examples:
  solar exec demo.txt
  solar exec --scene empty demo.txt
  cat demo.txt | solar exec -`,
	Args: cobra.ExactArgs(1),
	Run:  runExec,
}

func init() {
	execCmd.Flags().StringVar(&flagExecScene, "scene", "empty", "Scene preset to start from")
}

func runExec(cmd *cobra.Command, args []string) {
	cfg, logger, closer := mustSetup(cmd)
	defer closer.Close()

	if !registry.Exists(flagExecScene) {
		fmt.Fprintf(os.Stderr, "Error: unknown scene %q\n", flagExecScene)
		fmt.Fprintln(os.Stderr, "Run 'solar scenes' to see available presets.")
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	sc, err := registry.Build(flagExecScene, cfg.Scene)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w := world.New(sc, resource.NewCache(cfg.Scene.Resources), logging.Component(logger, "world"))

	failed, err := execScript(cmd.Context(), cfg, w, in, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printTables(os.Stdout, w)

	if failed > 0 {
		os.Exit(1)
	}
}

// execScript submits every line to a host running over w and reports each
// result. Returns the number of failed commands.
func execScript(ctx context.Context, cfg config.Config, w *world.World, r io.Reader, out io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	h := host.New(host.Config{TickRate: cfg.Host.TickRate, HistorySize: cfg.Host.HistorySize}, w, nil)
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, nil) }()
	defer func() {
		cancel()
		<-done
	}()

	failed := 0
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "X") {
			break
		}

		res, err := h.Submit(ctx, host.OriginExec, line)
		if err != nil {
			return failed, err
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "%4d  err  %s: %v\n", lineNo, line, res.Err)
			continue
		}
		fmt.Fprintf(out, "%4d  ok   %s\n", lineNo, line)
	}
	return failed, scanner.Err()
}

func printTables(out io.Writer, w *world.World) {
	objects := w.Objects()
	points := w.Points()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Points (%d):\n", len(points))
	for _, p := range points {
		fmt.Fprintf(out, "  %-16s  %s\n", p.Name, formatVec(p.Position))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Objects (%d):\n", len(objects))
	for _, o := range objects {
		fmt.Fprintf(out, "  %-16s  %-28s  %-20s  %s\n", o.Name, formatVec(o.Position), o.Model, o.Material)
	}
}

func formatVec(v core.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
