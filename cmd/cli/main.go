// Command tm is a CLI client for the task service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/config"
	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/migrate"
	"github.com/and161185/taskmaster/internal/remote"
	"github.com/and161185/taskmaster/internal/repository"
	"github.com/and161185/taskmaster/internal/repository/postgres"
	"github.com/and161185/taskmaster/internal/repository/sqlite"
	"github.com/and161185/taskmaster/internal/result"
	"github.com/and161185/taskmaster/internal/service"
	"github.com/and161185/taskmaster/internal/session"
	"github.com/and161185/taskmaster/internal/usecase"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// errUsage marks bad command arguments; the FlagSet has already printed details.
var errUsage = errors.New("usage")

// app holds everything a command needs.
type app struct {
	out io.Writer
	err io.Writer
	log *zap.Logger

	tokens   session.TokenStore
	auth     *service.AuthServiceImpl
	taskSvc  *service.TaskServiceImpl
	userSvc  *service.UserServiceImpl
	authUC   usecase.AuthUseCases
	tasks    usecase.TaskUseCases
	users    usecase.UserUseCases
	projects usecase.ProjectUseCases

	closeStore func()
}

// newApp wires the API client, the local store and the services.
func newApp(ctx context.Context, cfg config.CLI, stdout, stderr io.Writer) (*app, error) {
	log := zap.NewNop()
	if cfg.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}

	tokens := session.NewFileTokenStore(cfg.ConfigDir)
	client, err := remote.New(cfg.APIURL,
		remote.WithTokenSource(tokens),
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	var (
		taskStore  repository.TaskStore
		userStore  repository.UserStore
		closeStore func()
	)
	if cfg.DSN != "" {
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		taskStore, userStore, closeStore = postgres.NewTaskStore(db), postgres.NewUserStore(db), db.Close
	} else {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		taskStore, userStore = sqlite.NewTaskStore(db), sqlite.NewUserStore(db)
		closeStore = func() { _ = sqlite.Close(db) }
	}
	log.Debug("local store ready", zap.Bool("postgres", cfg.DSN != ""), zap.String("api", cfg.APIURL))

	a := &app{
		out:        stdout,
		err:        stderr,
		log:        log,
		tokens:     tokens,
		auth:       service.NewAuthService(client, userStore, tokens, log),
		taskSvc:    service.NewTaskService(client, taskStore, log),
		userSvc:    service.NewUserService(client, userStore, tokens, log),
		closeStore: closeStore,
	}
	a.authUC = usecase.AuthUseCases{Auth: a.auth}
	a.tasks = usecase.TaskUseCases{Tasks: a.taskSvc}
	a.users = usecase.UserUseCases{Users: a.userSvc}
	a.projects = usecase.ProjectUseCases{Projects: service.NewProjectService(client)}
	return a, nil
}

// close waits for detached writes before releasing the store.
func (a *app) close() {
	a.taskSvc.Wait()
	a.auth.Wait()
	a.userSvc.Wait()
	a.closeStore()
	_ = a.log.Sync()
}

// sessionCtx returns ctx carrying the signed-in user, as required for cache reads.
func (a *app) sessionCtx(ctx context.Context) (context.Context, error) {
	return a.auth.Session(ctx)
}

// refreshIfExpired trades the refresh token for a new access token once the old one has expired.
func (a *app) refreshIfExpired(ctx context.Context) {
	if a.tokens.AccessToken() != "" || a.tokens.RefreshToken() == "" {
		return
	}
	res := a.authUC.RefreshToken(ctx)
	if !res.IsSuccess() {
		a.log.Debug("token refresh failed", zap.String("reason", res.Message()))
	}
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// report consumes r: the value goes to onSuccess, an error becomes the command error.
func report[T any](r result.Result[T], onSuccess func(T)) error {
	var err error
	r.Match(
		func() { err = errors.New("no result") },
		onSuccess,
		func(e *errs.Error) { err = e },
	)
	return err
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `tm CLI
Usage:
  tm [-api URL] [-dsn DSN | -db PATH] [-timeout D] [-v] <cmd> [args]

Commands:
`)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-9s %s\n", n, commands[n].usage)
	}
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, getenv config.Getenv, stdout, stderr io.Writer) int {
	cfg, err := config.ParseCLI(args, getenv, stderr)
	if err != nil {
		return 2
	}
	if len(cfg.Args) == 0 {
		usage(stderr)
		return 2
	}
	name, rest := cfg.Args[0], cfg.Args[1:]
	if name == "version" {
		fmt.Fprintf(stdout, "tm %s (%s)\n", version, buildDate)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr)
		return 2
	}

	a, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.close()

	if !cmd.stream {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	a.refreshIfExpired(ctx)

	if err := cmd.run(ctx, a, rest); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// main dispatches subcommands until interrupted.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
