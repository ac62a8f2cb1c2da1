package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/taskmaster/internal/convert"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/model"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
	// stream commands run until interrupted and get no timeout
	stream bool
}

var commands = map[string]command{
	"register": {usage: "-u <username> -e <email> -p <password> [-first F] [-last L]", run: cmdRegister},
	"login":    {usage: "-e <email> -p <password>", run: cmdLogin},
	"logout":   {usage: "", run: cmdLogout},
	"whoami":   {usage: "(cached current user)", run: cmdWhoami},
	"list":     {usage: "[-page N] [-size N]", run: cmdList},
	"get":      {usage: "-id <task id>", run: cmdGet},
	"add":      {usage: "-title T [-desc D] [-due DATE] [-priority P] [-category C]", run: cmdAdd},
	"edit":     {usage: "-id <task id> [-title T] [-desc D] [-due DATE] [-priority P] [-status S] [-category C]", run: cmdEdit},
	"done":     {usage: "-id <task id>            (toggle completion)", run: cmdDone},
	"rm":       {usage: "-id <task id>", run: cmdRm},
	"filter":   {usage: "-status S | -category C | -priority P", run: cmdFilter},
	"search":   {usage: "<query>", run: cmdSearch},
	"range":    {usage: "-from DATE -to DATE", run: cmdRange},
	"stats":    {usage: "", run: cmdStats},
	"cached":   {usage: "(tasks in the local store)", run: cmdCached},
	"watch":    {usage: "(stream local store changes until interrupted)", run: cmdWatch, stream: true},
	"passwd":   {usage: "-old <password> -new <password>", run: cmdPasswd},
	"forgot":   {usage: "-e <email>", run: cmdForgot},
	"reset":    {usage: "-token T -new <password>", run: cmdReset},
	"verify":   {usage: "-token T", run: cmdVerify},
	"profile":  {usage: "[-username U] [-email E] [-first F] [-last L] [-picture URL] | -delete", run: cmdProfile},
	"projects": {usage: "[list | get -id ID | add -name N [-desc D] | edit -id ID -name N [-desc D] | rm -id ID]", run: cmdProjects},
	"version":  {usage: ""},
}

func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.err)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// missing reports a required flag the user left out.
func missing(a *app, what string) error {
	fmt.Fprintf(a.err, "need %s\n", what)
	return errUsage
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// parseDate accepts RFC 3339 or a bare local date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func (a *app) printTask(t model.Task)     { a.printJSON(convert.ToAPITask(t)) }
func (a *app) printTasks(ts []model.Task) { a.printJSON(convert.ToAPITasks(ts)) }

func (a *app) say(msg string) func(struct{}) {
	return func(struct{}) { fmt.Fprintln(a.out, msg) }
}

// ---- auth ----

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "register")
	u := fs.String("u", "", "username")
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *u == "" || *e == "" || *p == "" {
		return missing(a, "-u, -e and -p")
	}
	res := a.authUC.Register(ctx, model.Registration{Username: *u, Email: *e, Password: *p, FirstName: *first, LastName: *last})
	return report(res, func(u model.User) { fmt.Fprintln(a.out, u.UserID) })
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "login")
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *e == "" || *p == "" {
		return missing(a, "-e and -p")
	}
	return report(a.authUC.Login(ctx, *e, *p), func(u model.User) {
		fmt.Fprintf(a.out, "logged in as %s\n", u.Username)
	})
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	return report(a.authUC.Logout(ctx), a.say("logged out"))
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	return report(a.authUC.GetCurrentUser(ctx), func(u model.User) { a.printJSON(convert.ToAPIUser(u)) })
}

func cmdPasswd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "passwd")
	old := fs.String("old", "", "current password")
	next := fs.String("new", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *old == "" || *next == "" {
		return missing(a, "-old and -new")
	}
	return report(a.authUC.ChangePassword(ctx, *old, *next), a.say("password changed"))
}

func cmdForgot(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "forgot")
	e := fs.String("e", "", "email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *e == "" {
		return missing(a, "-e")
	}
	return report(a.authUC.ForgotPassword(ctx, *e), a.say("if the account exists, a reset token has been sent"))
}

func cmdReset(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "reset")
	tok := fs.String("token", "", "reset token")
	next := fs.String("new", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *tok == "" || *next == "" {
		return missing(a, "-token and -new")
	}
	return report(a.authUC.ResetPassword(ctx, *tok, *next), a.say("password reset"))
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "verify")
	tok := fs.String("token", "", "verification token")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *tok == "" {
		return missing(a, "-token")
	}
	return report(a.authUC.VerifyEmail(ctx, *tok), a.say("email verified"))
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "profile")
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	picture := fs.String("picture", "", "profile picture URL")
	del := fs.Bool("delete", false, "delete the account")
	if err := parse(fs, args); err != nil {
		return err
	}
	printUser := func(u model.User) { a.printJSON(convert.ToAPIUser(u)) }

	if *del {
		return report(a.users.DeleteAccount(ctx), a.say("account deleted"))
	}
	set := setFlags(fs)
	if len(set) == 0 {
		return report(a.users.GetProfile(ctx), printUser)
	}
	var upd model.ProfileUpdate
	if set["username"] {
		upd.Username = username
	}
	if set["email"] {
		upd.Email = email
	}
	if set["first"] {
		upd.FirstName = first
	}
	if set["last"] {
		upd.LastName = last
	}
	if set["picture"] {
		upd.ProfilePictureURL = picture
	}
	return report(a.users.UpdateProfile(ctx, upd), printUser)
}

// ---- tasks ----

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "list")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	return report(a.tasks.GetTasks(ctx, *page, *size), func(p model.Page[model.Task]) {
		a.printTasks(p.Items)
		fmt.Fprintf(a.err, "page %d/%d, %d tasks\n", p.Page, p.TotalPages, p.TotalItems)
	})
}

func taskIDFlag(a *app, name string, args []string) (int64, error) {
	fs := newFlags(a, name)
	id := fs.Int64("id", 0, "task id")
	if err := parse(fs, args); err != nil {
		return 0, err
	}
	if *id <= 0 {
		return 0, missing(a, "-id")
	}
	return *id, nil
}

func cmdGet(ctx context.Context, a *app, args []string) error {
	id, err := taskIDFlag(a, "get", args)
	if err != nil {
		return err
	}
	return report(a.tasks.GetTaskByID(ctx, id), a.printTask)
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "add")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "due date")
	priority := fs.String("priority", "", "LOW, MEDIUM, HIGH or URGENT")
	category := fs.String("category", "", "PERSONAL, WORK, HEALTH, EDUCATION, FINANCE or OTHER")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *title == "" {
		return missing(a, "-title")
	}
	t := model.Task{Title: *title, Description: *desc}
	if *due != "" {
		d, err := parseDate(*due)
		if err != nil {
			return err
		}
		t.DueDate = &d
	}
	if *priority != "" {
		p, valid := model.ParsePriority(*priority)
		if !valid {
			return fmt.Errorf("invalid priority %q", *priority)
		}
		t.Priority = p
	}
	if *category != "" {
		c, valid := model.ParseCategory(*category)
		if !valid {
			return fmt.Errorf("invalid category %q", *category)
		}
		t.Category = c
	}
	return report(a.tasks.CreateTask(ctx, t), a.printTask)
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "edit")
	id := fs.Int64("id", 0, "task id")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "due date")
	priority := fs.String("priority", "", "priority")
	status := fs.String("status", "", "PENDING, IN_PROGRESS, COMPLETED or CANCELLED")
	category := fs.String("category", "", "category")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return missing(a, "-id")
	}

	set := setFlags(fs)
	var p model.TaskPatch
	if set["title"] {
		p.Title = title
	}
	if set["desc"] {
		p.Description = desc
	}
	if set["due"] {
		d, err := parseDate(*due)
		if err != nil {
			return err
		}
		p.DueDate = &d
	}
	if set["priority"] {
		v, valid := model.ParsePriority(*priority)
		if !valid {
			return fmt.Errorf("invalid priority %q", *priority)
		}
		p.Priority = &v
	}
	if set["status"] {
		v, valid := model.ParseStatus(*status)
		if !valid {
			return fmt.Errorf("invalid status %q", *status)
		}
		p.Status = &v
	}
	if set["category"] {
		v, valid := model.ParseCategory(*category)
		if !valid {
			return fmt.Errorf("invalid category %q", *category)
		}
		p.Category = &v
	}
	if p.IsEmpty() {
		return missing(a, "at least one field to change")
	}
	return report(a.tasks.PatchTask(ctx, *id, p), a.printTask)
}

func cmdDone(ctx context.Context, a *app, args []string) error {
	id, err := taskIDFlag(a, "done", args)
	if err != nil {
		return err
	}
	var cur model.Task
	if err := report(a.tasks.GetTaskByID(ctx, id), func(t model.Task) { cur = t }); err != nil {
		return err
	}
	return report(a.tasks.ToggleCompletion(ctx, cur), a.printTask)
}

func cmdRm(ctx context.Context, a *app, args []string) error {
	id, err := taskIDFlag(a, "rm", args)
	if err != nil {
		return err
	}
	return report(a.tasks.DeleteTask(ctx, id), a.say("deleted"))
}

func cmdFilter(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "filter")
	status := fs.String("status", "", "status")
	category := fs.String("category", "", "category")
	priority := fs.String("priority", "", "priority")
	if err := parse(fs, args); err != nil {
		return err
	}
	if len(setFlags(fs)) != 1 {
		return missing(a, "exactly one of -status, -category, -priority")
	}
	switch {
	case *status != "":
		v, _ := model.ParseStatus(*status)
		return report(a.tasks.GetTasksByStatus(ctx, v), a.printTasks)
	case *category != "":
		v, _ := model.ParseCategory(*category)
		return report(a.tasks.GetTasksByCategory(ctx, v), a.printTasks)
	default:
		v, _ := model.ParsePriority(*priority)
		return report(a.tasks.GetTasksByPriority(ctx, v), a.printTasks)
	}
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	q := strings.TrimSpace(strings.Join(args, " "))
	if q == "" {
		return missing(a, "a query")
	}
	return report(a.tasks.SearchTasks(ctx, q), a.printTasks)
}

func cmdRange(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "range")
	from := fs.String("from", "", "start date")
	to := fs.String("to", "", "end date")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return missing(a, "-from and -to")
	}
	start, err := parseDate(*from)
	if err != nil {
		return err
	}
	end, err := parseDate(*to)
	if err != nil {
		return err
	}
	return report(a.tasks.GetTasksByDateRange(ctx, start, end), a.printTasks)
}

func cmdStats(ctx context.Context, a *app, _ []string) error {
	return report(a.tasks.GetTaskStatistics(ctx), func(s model.TaskStatistics) {
		a.printJSON(convert.ToAPIStatistics(s))
	})
}

// ---- local store ----

func cmdCached(ctx context.Context, a *app, _ []string) error {
	sctx, err := a.sessionCtx(ctx)
	if err != nil {
		return err
	}
	sctx, cancel := context.WithCancel(sctx)
	defer cancel()
	for r := range a.tasks.ObserveTasks(sctx) {
		if r.IsLoading() {
			continue
		}
		return report(r, a.printTasks)
	}
	return ctx.Err()
}

func cmdWatch(ctx context.Context, a *app, _ []string) error {
	sctx, err := a.sessionCtx(ctx)
	if err != nil {
		return err
	}
	for r := range a.tasks.ObserveTasks(sctx) {
		r.Match(
			func() { fmt.Fprintln(a.err, "loading...") },
			a.printTasks,
			func(e *errs.Error) { fmt.Fprintln(a.err, e.Message) },
		)
	}
	return nil
}

// ---- projects ----

func cmdProjects(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	fs := newFlags(a, "projects "+sub)
	id := fs.String("id", "", "project id")
	name := fs.String("name", "", "project name")
	desc := fs.String("desc", "", "description")
	if err := parse(fs, args); err != nil {
		return err
	}
	printProject := func(p model.Project) { a.printJSON(convert.ToAPIProject(p)) }

	switch sub {
	case "list":
		return report(a.projects.GetProjects(ctx), func(ps []model.Project) {
			out := make([]any, 0, len(ps))
			for _, p := range ps {
				out = append(out, convert.ToAPIProject(p))
			}
			a.printJSON(out)
		})
	case "get":
		if *id == "" {
			return missing(a, "-id")
		}
		return report(a.projects.GetProject(ctx, *id), printProject)
	case "add":
		if *name == "" {
			return missing(a, "-name")
		}
		return report(a.projects.CreateProject(ctx, model.Project{Name: *name, Description: *desc}), printProject)
	case "edit":
		if *id == "" || *name == "" {
			return missing(a, "-id and -name")
		}
		return report(a.projects.UpdateProject(ctx, model.Project{ProjectID: *id, Name: *name, Description: *desc}), printProject)
	case "rm":
		if *id == "" {
			return missing(a, "-id")
		}
		return report(a.projects.DeleteProject(ctx, *id), a.say("deleted"))
	default:
		fmt.Fprintf(a.err, "unknown projects subcommand %q\n", sub)
		return errUsage
	}
}
