package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/SomaCube/internal/app"
	"github.com/piwi3910/SomaCube/internal/engine"
	"github.com/piwi3910/SomaCube/internal/model"
)

// keyAliases maps words typed at the prompt to controller key names.
var keyAliases = map[string]string{
	"left":  app.KeyLeft,
	"right": app.KeyRight,
	"up":    app.KeyUp,
	"down":  app.KeyDown,
	"del":   app.KeyDelete,
}

type command struct {
	usage string
	args  int
	run   func(ctx context.Context, args []string) error
}

// shell is the line-oriented front end of the controller.
type shell struct {
	ctrl     *app.Controller
	out      io.Writer
	commands map[string]command

	// Last generated set, kept for "solve".
	rules string
	dims  model.Dimensions
	quit  bool
}

func newShell(ctrl *app.Controller, out io.Writer) *shell {
	s := &shell{ctrl: ctrl, out: out}
	s.commands = map[string]command{
		"load":      {"load <figure>", 1, s.load},
		"shapes":    {"shapes", 0, s.shapes},
		"grid":      {"grid <x> <y> <z>", 3, s.grid},
		"select":    {"select <piece>", 1, s.selectPiece},
		"key":       {"key <left|right|up|down|z|x|r|f|v|del>", 1, s.key},
		"check":     {"check", 0, s.check},
		"reset":     {"reset", 0, s.reset},
		"gen":       {"gen <rules-file> <x> <y> <z>", 4, s.generate},
		"solve":     {"solve", 0, s.solve},
		"polycubes": {"polycubes <size>", 1, s.polycubes},
		"undo":      {"undo", 0, func(context.Context, []string) error { s.ctrl.Undo(); return nil }},
		"redo":      {"redo", 0, func(context.Context, []string) error { s.ctrl.Redo(); return nil }},
		"save":      {"save <file>", 1, func(_ context.Context, a []string) error { return s.ctrl.SaveSession(a[0]) }},
		"open":      {"open <file>", 1, func(ctx context.Context, a []string) error { return s.ctrl.LoadSession(ctx, a[0]) }},
		"import":    {"import <file.csv|.xlsx|.dxf>", 1, func(_ context.Context, a []string) error { s.ctrl.Import(a[0]); return nil }},
		"export":    {"export <file.pdf|.xlsx>", 1, func(_ context.Context, a []string) error { return s.ctrl.Export(a[0]) }},
		"labels":    {"labels <file.pdf>", 1, func(_ context.Context, a []string) error { return s.ctrl.ExportLabels(a[0]) }},
		"figure":    {"figure <id>", 1, func(_ context.Context, a []string) error { return s.ctrl.SaveFigure(a[0]) }},
		"backup":    {"backup <file>", 1, func(_ context.Context, a []string) error { return s.ctrl.Backup(a[0]) }},
		"restore":   {"restore <file>", 1, func(ctx context.Context, a []string) error { return s.ctrl.RestoreBackup(ctx, a[0]) }},
		"show":      {"show", 0, s.show},
		"solutions": {"solutions", 0, s.solutions},
		"help":      {"help", 0, s.help},
		"quit":      {"quit", 0, func(context.Context, []string) error { s.quit = true; return nil }},
	}
	return s
}

// run reads commands from in until EOF or quit.
func (s *shell) run(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	s.prompt()
	for !s.quit && sc.Scan() {
		s.exec(ctx, sc.Text())
		if !s.quit {
			s.prompt()
		}
	}
}

func (s *shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

func (s *shell) exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]

	// A bare bound key acts on the selected piece.
	if len(args) == 0 {
		if key, ok := keyName(name); ok {
			if !s.ctrl.HandleKey(key) {
				fmt.Fprintln(s.out, "No piece selected")
			}
			return
		}
	}

	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command %q, try help\n", name)
		return
	}
	if len(args) != cmd.args {
		fmt.Fprintln(s.out, "usage:", cmd.usage)
		return
	}
	if err := cmd.run(ctx, args); err != nil {
		fmt.Fprintln(s.out, "error:", err)
	}
}

func keyName(word string) (string, bool) {
	if alias, ok := keyAliases[word]; ok {
		return alias, true
	}
	if app.KeyBound(word) {
		return word, true
	}
	return "", false
}

func (s *shell) load(ctx context.Context, args []string) error {
	if s.ctrl.LoadShape(ctx, args[0]) {
		s.printBoard()
	}
	return nil
}

func (s *shell) shapes(ctx context.Context, _ []string) error {
	ids := s.ctrl.ListShapes(ctx)
	if len(ids) == 0 {
		fmt.Fprintln(s.out, "No figures available")
		return nil
	}
	fmt.Fprintln(s.out, strings.Join(ids, "\n"))
	return nil
}

func (s *shell) grid(_ context.Context, args []string) error {
	if s.ctrl.ApplyGridSize(args[0], args[1], args[2]) {
		s.printBoard()
	}
	return nil
}

func (s *shell) selectPiece(_ context.Context, args []string) error {
	if s.ctrl.SelectPiece(args[0]) {
		s.printBoard()
	}
	return nil
}

func (s *shell) key(_ context.Context, args []string) error {
	key, ok := keyName(args[0])
	if !ok {
		return fmt.Errorf("unknown key %q", args[0])
	}
	if !s.ctrl.HandleKey(key) {
		fmt.Fprintln(s.out, "No piece selected")
		return nil
	}
	s.printBoard()
	return nil
}

func (s *shell) check(ctx context.Context, _ []string) error {
	s.ctrl.CheckSolution(ctx)
	if c := s.ctrl.Counts(); c.Total > 0 {
		fmt.Fprintf(s.out, "Solutions found: %d / %d\n", c.Current, c.Total)
	}
	return nil
}

func (s *shell) reset(ctx context.Context, _ []string) error {
	if s.ctrl.Reset(ctx) {
		s.printBoard()
	}
	return nil
}

func (s *shell) generate(ctx context.Context, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading rules: %w", err)
	}
	dims, err := app.ParseDimensions(args[1], args[2], args[3])
	if err != nil {
		return err
	}
	if !s.ctrl.Generate(ctx, string(data), dims) {
		return nil
	}
	s.rules, s.dims = string(data), dims
	for _, p := range s.ctrl.Session().PieceSet().Pieces() {
		fmt.Fprintf(s.out, "  %-6s %s\n", p.ID, p.Name)
	}
	return nil
}

func (s *shell) solve(ctx context.Context, _ []string) error {
	solution, ok := s.ctrl.SolveGenerated(ctx, s.rules, s.dims)
	if ok {
		fmt.Fprint(s.out, solution)
	}
	return nil
}

// polycubes lists the distinct free polycubes of one size.
func (s *shell) polycubes(_ context.Context, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > 6 {
		return fmt.Errorf("size must be between 1 and 6")
	}
	shapes := engine.GeneratePolycubes(n)
	fmt.Fprintf(s.out, "%d distinct polycubes of size %d\n", len(shapes), n)
	for _, shape := range shapes {
		fmt.Fprintln(s.out, " ", engine.CanonicalKey(shape))
	}
	return nil
}

func (s *shell) show(context.Context, []string) error {
	s.printBoard()
	return nil
}

func (s *shell) solutions(ctx context.Context, _ []string) error {
	entries, err := s.ctrl.Solutions(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No solutions recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(s.out, "%s  %s\n%s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Message, e.GridState)
	}
	return nil
}

func (s *shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(s.out, " ", s.commands[name].usage)
	}
	return nil
}

// printBoard prints the grid text with the shape and selection.
func (s *shell) printBoard() {
	title := s.ctrl.ShapeID()
	if title == "" {
		title = "custom grid"
	}
	fmt.Fprintf(s.out, "[%s %s]", title, s.ctrl.Session().Grid().Dimensions())
	if sel, ok := s.ctrl.Session().Selected(); ok {
		fmt.Fprintf(s.out, " selected %s", sel)
	}
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, s.ctrl.Render())
}
