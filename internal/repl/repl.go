// Package repl is an interactive task board driven by slash commands.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ytakahashi/task-manager/internal/render"
	"github.com/ytakahashi/task-manager/internal/tracker"
)

// REPL provides an interactive loop over a Tracker.
type REPL struct {
	Tracker *tracker.Tracker
	In      io.Reader
	Out     io.Writer
	// CallTimeout bounds each remote call; zero means no bound.
	CallTimeout time.Duration
}

// New constructs a REPL instance.
func New(t *tracker.Tracker, in io.Reader, out io.Writer) *REPL {
	return &REPL{Tracker: t, In: in, Out: out, CallTimeout: 15 * time.Second}
}

// Run loads the board, then reads commands until /exit or end of input.
// A failed first load is only logged and the board starts empty. Plain lines
// typed while the composer is open fill the title, then the description.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.Out, "Welcome To Your Task Manager")
	loadCtx, cancel := r.callContext(ctx)
	_ = r.Tracker.Load(loadCtx)
	cancel()
	render.Tasks(r.Out, r.Tracker.Tasks())
	fmt.Fprintln(r.Out, "Type /help for commands.")

	scanner := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if r.handleCommand(ctx, line) {
				return nil
			}
			continue
		}
		r.typeDraft(ctx, line)
	}
	return scanner.Err()
}

func (r *REPL) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.TrimPrefix(fields[0], "/")
	args := strings.TrimSpace(strings.TrimPrefix(line, "/"+cmd))

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		help(r.Out)
	case "list":
		render.Tasks(r.Out, r.Tracker.Tasks())
	case "reload":
		r.reload(ctx)
	case "new":
		r.Tracker.OpenComposer()
		render.Info(r.Out, "composer open: type a title, then a description, then /submit")
	case "title":
		r.Tracker.OpenComposer()
		r.Tracker.SetDraftTitle(args)
		render.Composer(r.Out, r.Tracker.Composer())
	case "desc":
		r.Tracker.OpenComposer()
		r.Tracker.SetDraftDescription(args)
		render.Composer(r.Out, r.Tracker.Composer())
	case "draft":
		render.Composer(r.Out, r.Tracker.Composer())
	case "cancel":
		r.Tracker.CloseComposer()
		render.Info(r.Out, "composer closed")
	case "submit":
		r.submit(ctx)
	case "toggle":
		id, ok := r.parseID(args)
		if !ok {
			return false
		}
		r.withTimeout(ctx, func(ctx context.Context) error {
			return r.Tracker.ToggleActive(ctx, id)
		})
		render.Tasks(r.Out, r.Tracker.Tasks())
	case "delete":
		id, ok := r.parseID(args)
		if !ok {
			return false
		}
		r.withTimeout(ctx, func(ctx context.Context) error {
			return r.Tracker.Delete(ctx, id)
		})
		render.Tasks(r.Out, r.Tracker.Tasks())
	default:
		render.Info(r.Out, "unknown command, type /help")
	}
	return false
}

// typeDraft fills the first empty draft field of the open composer.
func (r *REPL) typeDraft(ctx context.Context, line string) {
	c := r.Tracker.Composer()
	if !c.Open {
		render.Info(r.Out, "type /new to add a task")
		return
	}
	switch {
	case strings.TrimSpace(c.Title) == "":
		r.Tracker.SetDraftTitle(line)
	case strings.TrimSpace(c.Description) == "":
		r.Tracker.SetDraftDescription(line)
	default:
		r.Tracker.SetDraftDescription(c.Description + "\n" + line)
	}
	render.Composer(r.Out, r.Tracker.Composer())
}

func (r *REPL) submit(ctx context.Context) {
	var created bool
	r.withTimeout(ctx, func(ctx context.Context) error {
		task, err := r.Tracker.Submit(ctx)
		if err == nil {
			created = true
			render.Task(r.Out, task)
		}
		return err
	})
	if !created {
		render.Composer(r.Out, r.Tracker.Composer())
	}
}

func (r *REPL) reload(ctx context.Context) {
	r.withTimeout(ctx, r.Tracker.Load)
	render.Tasks(r.Out, r.Tracker.Tasks())
}

func (r *REPL) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.CallTimeout > 0 {
		return context.WithTimeout(ctx, r.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *REPL) withTimeout(ctx context.Context, fn func(context.Context) error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()
	if err := fn(ctx); err != nil && !errors.Is(err, tracker.ErrValidation) {
		render.Error(r.Out, err)
	}
}

func (r *REPL) parseID(args string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		render.Error(r.Out, fmt.Errorf("invalid task id %q", args))
		return 0, false
	}
	return id, true
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  /help              Show commands")
	fmt.Fprintln(out, "  /exit | /quit      Exit")
	fmt.Fprintln(out, "  /list              Show tasks")
	fmt.Fprintln(out, "  /reload            Fetch tasks from the API")
	fmt.Fprintln(out, "  /new               Open the composer")
	fmt.Fprintln(out, "  /title <text>      Set the draft title")
	fmt.Fprintln(out, "  /desc <text>       Set the draft description")
	fmt.Fprintln(out, "  /draft             Show the draft")
	fmt.Fprintln(out, "  /submit            Create a task from the draft")
	fmt.Fprintln(out, "  /cancel            Close the composer")
	fmt.Fprintln(out, "  /toggle <id>       Toggle completed")
	fmt.Fprintln(out, "  /delete <id>       Delete a task")
}
