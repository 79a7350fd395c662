package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/leengari/localtable/internal/config"
	"github.com/leengari/localtable/internal/engine"
)

// Shell runs table commands against one table
type Shell struct {
	tbl      *engine.Table
	out      io.Writer
	logger   *slog.Logger
	pageSize int
}

func New(tbl *engine.Table, out io.Writer, pageSize int) *Shell {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Shell{tbl: tbl, out: out, logger: tbl.Logger(), pageSize: pageSize}
}

// Start reads commands with line editing, history and tab completion until
// quit or end of input
func (s *Shell) Start(cfg config.ShellConfig) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(cfg.HistoryFile)
			if err != nil {
				s.logger.Warn("history not saved", "file", cfg.HistoryFile, "error", err)
				return
			}
			line.WriteHistory(f)
			f.Close()
		}()
	}

	fmt.Fprintf(s.out, "localtable: %s (%d records)\n", s.tbl.Name(), s.tbl.Reccount())
	fmt.Fprintln(s.out, "Type 'help' for commands, 'quit' or Ctrl+D to leave.")

	for {
		input, err := line.Prompt(cfg.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return
			}
			fmt.Fprintf(s.out, "Error reading input: %v\n", err)
			continue
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		if s.Exec(input) {
			return
		}
	}
}

// Exec runs one command line and reports whether the shell should stop
func (s *Shell) Exec(input string) bool {
	name, args := splitCommand(input)
	if name == "quit" || name == "exit" {
		return true
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Error: unknown command %q (try 'help')\n", name)
		return false
	}

	before := s.tbl.Err()
	if err := cmd.run(s, args); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	if err := s.tbl.Err(); err != nil && err != before {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func splitCommand(input string) (string, string) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "?") {
		return "?", strings.TrimSpace(input[1:])
	}
	name, args, _ := strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// complete offers command names first, then field names
func (s *Shell) complete(line string) []string {
	head := line
	word := line
	if i := strings.LastIndexAny(line, " (,"); i >= 0 {
		head, word = line[:i+1], line[i+1:]
	} else {
		head = ""
	}

	var candidates []string
	if head == "" {
		for name := range commands {
			candidates = append(candidates, name)
		}
	} else {
		for _, f := range s.tbl.Structdef() {
			candidates = append(candidates, f.Name)
		}
	}
	sort.Strings(candidates)

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, strings.ToLower(word)) {
			out = append(out, head+c)
		}
	}
	return out
}
