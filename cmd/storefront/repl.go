package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/storefront"
)

const helpText = `commands:
  open <id>              load a product page
  retry                  reload after a failed load
  login <user> <pass>    log in
  logout                 log out
  write                  open the review form
  rate <0-5>             set the star rating
  text <review>          set the review text
  submit                 submit the review
  cancel                 close the review form
  help                   show this help
  quit                   exit
`

type repl struct {
	session *storefront.Session
	in      io.Reader
	out     io.Writer
}

func newREPL(session *storefront.Session, in io.Reader, out io.Writer) *repl {
	return &repl{session: session, in: in, out: out}
}

func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	r.prompt()
	for scanner.Scan() {
		if quit := r.handle(ctx, scanner.Text()); quit {
			return nil
		}
		r.prompt()
	}
	return scanner.Err()
}

func (r *repl) prompt() {
	fmt.Fprint(r.out, "> ")
}

func (r *repl) render() {
	if err := storefront.Render(r.out, r.session.State()); err != nil {
		fmt.Fprintf(r.out, "render: %v\n", err)
	}
}

func (r *repl) open(ctx context.Context, id int64) {
	<-r.session.Open(ctx, id)
	r.render()
}

// handle runs one command line and reports whether to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(r.out, helpText)
		return false
	case "open":
		id, err := parseProductID(rest)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		r.open(ctx, id)
		return false
	case "retry":
		if done := r.session.Retry(ctx); done != nil {
			<-done
		}
	case "login":
		user, pass, ok := strings.Cut(rest, " ")
		if !ok {
			fmt.Fprintln(r.out, "usage: login <user> <pass>")
			return false
		}
		_ = r.session.Login(ctx, user, strings.TrimSpace(pass))
	case "logout":
		r.session.Logout()
	case "write":
		r.session.OpenForm()
	case "cancel":
		r.session.CancelForm()
	case "rate":
		n, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintln(r.out, "usage: rate <0-5>")
			return false
		}
		r.session.SetRating(n)
	case "text":
		r.session.EditContent(rest)
	case "submit":
		if err := r.session.Submit(ctx); errors.Is(err, storefront.ErrNotComposing) {
			fmt.Fprintln(r.out, "open the review form first with 'write'")
			return false
		}
	default:
		fmt.Fprintf(r.out, "unknown command %q, type 'help'\n", cmd)
		return false
	}

	r.render()
	return false
}
