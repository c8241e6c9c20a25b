// Package app wires configuration, the local store, the remote backend and
// the services together, and dispatches the maintenance subcommands.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/finanse/internal/auth"
	"github.com/dmitrijs2005/finanse/internal/config"
	"github.com/dmitrijs2005/finanse/internal/local/localdb"
	"github.com/dmitrijs2005/finanse/internal/logging"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
	"github.com/dmitrijs2005/finanse/internal/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  *localdb.Repositories
	store  remote.Store

	transactionService *services.TransactionService
	categoryService    *services.CategoryService
	userService        *services.UserService
	statsService       *services.StatsService
	sessionService     *services.SessionService
	templateService    *services.TemplateService
	sweeper            *services.Sweeper
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	repos, err := localdb.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("local db init error: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("remote store init error: %w", err)
	}

	return &App{
		config: cfg,
		logger: logger,
		repos:  repos,
		store:  store,

		transactionService: services.NewTransactionService(repos.Transactions, store, logger),
		categoryService:    services.NewCategoryService(repos.Categories, store, logger),
		userService:        services.NewUserService(repos.Users, store, logger),
		statsService:       services.NewStatsService(repos.Users, repos.Transactions, repos.Categories, logger),
		sessionService:     services.NewSessionService(repos.Metadata, []byte(cfg.SecretKey), cfg.SessionTokenValidityDuration),
		templateService:    services.NewTemplateService(repos.Templates, store, logger),
		sweeper:            services.NewSweeper(repos.Transactions, repos.Metadata, store, logger),
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (remote.Store, error) {
	switch cfg.RemoteBackend {
	case config.RemoteS3:
		return remote.NewS3Store(ctx, remote.S3Config{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			UsePathStyle: true,
		})
	case config.RemotePostgres:
		store, err := remote.NewPostgresStore(cfg.RemoteDSN)
		if err != nil {
			return nil, err
		}
		if err := store.Bootstrap(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.RemoteNone:
		return remote.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
}

func (app *App) Close() error {
	return app.repos.Close()
}

// Run dispatches one subcommand.
func (app *App) Run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.initSignalHandler(cancel)

	if len(args) == 0 {
		return fmt.Errorf("usage: finanse <sweep|stats|seed|pin|block|unblock|login|logout|add|tips|view> [flags]")
	}

	switch args[0] {
	case "sweep":
		return app.runSweep(ctx)
	case "add":
		return app.runAdd(ctx, args[1:])
	case "stats":
		return app.runStats(ctx)
	case "seed":
		return app.runSeed(ctx)
	case "pin":
		return app.runPin(ctx, args[1:])
	case "block":
		return app.runSetBlocked(ctx, args[1:], true)
	case "unblock":
		return app.runSetBlocked(ctx, args[1:], false)
	case "tips":
		return app.runTips(ctx)
	case "view":
		return app.runView(ctx, args[1:])
	case "login":
		return app.runLogin(ctx, args[1:])
	case "logout":
		return app.sessionService.End(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runAdd records a transaction for the logged-in user:
// finanse add <amount> <INCOME|EXPENSE> [description].
func (app *App) runAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: finanse add <amount> <INCOME|EXPENSE> [description]")
	}

	p, err := app.sessionService.Current(ctx)
	if err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad amount %q: %w", args[0], err)
	}

	tt := models.TransactionType(strings.ToUpper(args[1]))
	if tt != models.TransactionTypeIncome && tt != models.TransactionTypeExpense {
		return fmt.Errorf("bad type %q", args[1])
	}

	t := &models.Transaction{
		Amount:      amount,
		Type:        tt,
		Date:        timeNow(),
		Description: strings.Join(args[2:], " "),
	}

	outcome, err := app.transactionService.Create(ctx, p, t)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "transaction recorded",
		"transaction_id", t.Id, "outcome", outcome.String())
	return nil
}

func (app *App) runSweep(ctx context.Context) error {
	res, err := app.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sweep: propagated=%d deferred=%d\n", res.Propagated, res.Deferred)
	return nil
}

func (app *App) runStats(ctx context.Context) error {
	snap, err := app.statsService.Collect(ctx, timeNow())
	if err != nil {
		return err
	}

	fmt.Printf("total users:                  %d\n", snap.TotalUsers)
	fmt.Printf("active users:                 %d\n", snap.ActiveUsers)
	fmt.Printf("transactions this week:       %d\n", snap.TransactionsThisWeek)
	fmt.Printf("users with >5 transactions:   %d\n", snap.UsersWithMoreThanFiveTx)
	fmt.Printf("most popular category:        %s\n", snap.MostPopularCategory)
	fmt.Printf("avg transactions per user:    %.2f\n", snap.AverageTransactionsPerUser)
	return nil
}

// runTips lists the most viewed financial templates.
func (app *App) runTips(ctx context.Context) error {
	list, err := app.templateService.GetPopular(ctx)
	if err != nil {
		return err
	}
	for _, t := range list {
		fmt.Printf("%s  [%s]  %s (views: %d)\n", t.Id, t.Category, t.Title, t.Views)
	}
	return nil
}

// runView prints one template and records the view: finanse view <id>.
func (app *App) runView(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: finanse view <template-id>")
	}

	t, err := app.repos.Templates.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n\n%s\n", t.Title, t.Content)

	outcome, err := app.templateService.RecordView(ctx, t.Id)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "template viewed",
		"template_id", t.Id, "outcome", outcome.String())
	return nil
}

func (app *App) runSeed(ctx context.Context) error {
	return app.categoryService.SeedDefaults(ctx)
}

// runPin sets the local device PIN for a user: finanse pin <user-id>.
// The maintenance CLI acts as an admin principal; the PIN itself never
// leaves the local store.
func (app *App) runPin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: finanse pin <user-id>")
	}
	userID := args[0]

	pin, err := GetPin(os.Stdout)
	if err != nil {
		return err
	}

	if err := app.userService.SetPin(ctx, userID, string(pin)); err != nil {
		return err
	}
	app.logger.Info(ctx, "pin updated", "user_id", userID)
	return nil
}

// runLogin verifies the user's PIN and starts a local session.
func (app *App) runLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: finanse login <user-id>")
	}
	userID := args[0]

	u, err := app.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	pin, err := GetPin(os.Stdout)
	if err != nil {
		return err
	}

	ok, err := app.userService.VerifyPin(ctx, userID, string(pin))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wrong pin")
	}

	if err := app.sessionService.Start(ctx, auth.Principal{UserID: u.Id, Role: u.Role}); err != nil {
		return err
	}
	app.logger.Info(ctx, "session started", "user_id", userID)
	return nil
}

func (app *App) runSetBlocked(ctx context.Context, args []string, blocked bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: finanse block|unblock <user-id>")
	}
	userID := args[0]

	outcome, err := app.userService.SetBlocked(ctx, AdminPrincipal(), userID, blocked)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "user block state changed",
		"user_id", userID, "blocked", blocked, "outcome", outcome.String())
	return nil
}

// AdminPrincipal is the principal the maintenance CLI acts as.
func AdminPrincipal() auth.Principal {
	return auth.Principal{UserID: "local-admin", Role: models.UserRoleAdmin}
}
