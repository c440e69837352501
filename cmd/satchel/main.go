package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mberthou/satchel/internal/adapt"
	"github.com/mberthou/satchel/internal/config"
	"github.com/mberthou/satchel/internal/domain"
	"github.com/mberthou/satchel/internal/log"
	"github.com/mberthou/satchel/internal/portal"
	"github.com/mberthou/satchel/internal/query"
	"github.com/mberthou/satchel/internal/store"
	"github.com/mberthou/satchel/internal/sync"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		force       bool
		resource    string
		search      string
		watch       time.Duration
		logout      bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&force, "force", false, "bypass cache validity and refresh from the portal")
	flag.StringVar(&resource, "resource", "all", "resource to sync: absences, grades, planning or all")
	flag.StringVar(&search, "search", "", "fuzzy search across synchronized data")
	flag.DurationVar(&watch, "watch", 0, "keep running and re-sync at this interval")
	flag.BoolVar(&logout, "logout", false, "clear credentials and cached data")
	flag.Parse()

	if showVersion {
		fmt.Printf("satchel %s\n", Version)
		return
	}

	if err := run(force, resource, search, watch, logout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(force bool, resource, search string, watch time.Duration, logout bool) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.Null()
	}
	slog.SetDefault(logger)

	logger.Info("starting satchel", "version", Version)

	if logout {
		if err := config.ClearServerConfig(); err != nil {
			return err
		}
		if err := config.ClearCache(); err != nil {
			return err
		}
		fmt.Println("✓ Credentials and cache cleared.")
		return nil
	}

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	client := portal.NewClient(cfg.Server.URL, cfg.Server.Token, cfg.Server.RefreshToken, logger)

	st, err := store.New(cfg.Cache.Dir, store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	app := newApp(cfg, client, st, logger)

	if search != "" {
		// Serve the lookup from cache, refreshing only when stale.
		app.syncAll(context.Background(), resource, false)
		return app.runSearch(search)
	}

	app.syncAll(context.Background(), resource, force)
	app.printSummary()

	if watch > 0 {
		ticker := time.NewTicker(watch)
		defer ticker.Stop()
		fmt.Println(dimStyle.Render(fmt.Sprintf("watching, re-sync every %s (Ctrl-C to quit)", watch)))
		for range ticker.C {
			app.syncAll(context.Background(), resource, false)
		}
	}

	logger.Info("shutting down")
	return nil
}

// app wires one syncer per resource to the shared client and store.
type app struct {
	cfg      *config.Config
	client   *portal.Client
	logger   *slog.Logger
	absences *sync.Syncer[domain.Absence]
	grades   *sync.Syncer[domain.Grade]
	planning *sync.Syncer[domain.CourseEvent]
}

func newApp(cfg *config.Config, client *portal.Client, st *store.SnapshotStore, logger *slog.Logger) *app {
	// The console is the change notification sink.
	notifier := domain.NotifierFunc(func(resource domain.ResourceKey, changes []domain.Change) {
		fmt.Print(renderChanges(resource, changes))
	})

	return &app{
		cfg:    cfg,
		client: client,
		logger: logger,
		absences: sync.New(
			sync.AbsencesDescriptor(client, cfg.Sync.AbsencesTTL),
			st, client, notifier,
			sync.WithLogger[domain.Absence](logger),
			sync.WithDebounce[domain.Absence](cfg.Sync.Debounce)),
		grades: sync.New(
			sync.GradesDescriptor(client, cfg.Sync.GradesTTL),
			st, client, notifier,
			sync.WithLogger[domain.Grade](logger),
			sync.WithDebounce[domain.Grade](cfg.Sync.Debounce)),
		planning: sync.New(
			sync.PlanningDescriptor(client, cfg.Sync.PlanningTTL, time.Now),
			st, client, notifier,
			sync.WithLogger[domain.CourseEvent](logger),
			sync.WithDebounce[domain.CourseEvent](cfg.Sync.Debounce)),
	}
}

// syncAll refreshes the selected resources. Resources are independent;
// a failure on one does not stop the others.
func (a *app) syncAll(ctx context.Context, resource string, force bool) {
	if resource == "all" || resource == "absences" {
		a.reportSyncError("absences", a.syncWithAuthRetry(ctx, func() error {
			_, err := a.absences.Sync(ctx, force)
			return err
		}))
	}
	if resource == "all" || resource == "grades" {
		a.reportSyncError("grades", a.syncWithAuthRetry(ctx, func() error {
			_, err := a.grades.Sync(ctx, force)
			return err
		}))
	}
	if resource == "all" || resource == "planning" {
		a.reportSyncError("planning", a.syncWithAuthRetry(ctx, func() error {
			_, err := a.planning.Sync(ctx, force)
			return err
		}))
	}
}

// syncWithAuthRetry refreshes the token once when the portal rejects
// it, then retries the sync.
func (a *app) syncWithAuthRetry(ctx context.Context, doSync func() error) error {
	err := doSync()
	if err == nil || !errors.Is(err, domain.ErrAuthFailed) {
		return err
	}

	a.logger.Info("token rejected, refreshing credentials")
	if refreshErr := a.client.Refresh(ctx); refreshErr != nil {
		return err
	}
	if saveErr := config.SaveTokens(a.client.Token(), a.client.RefreshToken()); saveErr != nil {
		a.logger.Warn("failed to persist refreshed token", "error", saveErr)
	}
	return doSync()
}

func (a *app) reportSyncError(resource string, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		fmt.Println(warnStyle.Render(resource + ": non authentifié, lancez satchel pour vous connecter"))
	default:
		fmt.Println(warnStyle.Render(fmt.Sprintf("%s: synchronisation impossible (%v)", resource, err)))
	}
}

func (a *app) printSummary() {
	now := time.Now()

	absSnap := a.absences.Current()
	fmt.Println()
	fmt.Print(renderAbsences(adapt.Absences(absSnap.Records), query.Absences(absSnap.Records)))

	gradeSnap := a.grades.Current()
	views := adapt.Grades(gradeSnap.Records)
	fmt.Println()
	fmt.Print(renderGrades(views, query.Grades(views)))

	planSnap := a.planning.Current()
	fmt.Println()
	fmt.Print(renderPlanning(planSnap.Records, now))
	fmt.Println()
}

// runSearch builds a fuzzy index over all synchronized views and
// prints the ranked matches.
func (a *app) runSearch(text string) error {
	var entries []query.Entry

	for _, v := range adapt.Absences(a.absences.Current().Records) {
		entries = append(entries, query.Entry{
			Key:  fmt.Sprintf("absence %d", v.ID),
			Text: fmt.Sprintf("%s %s %s %s", v.Course, v.Teachers, v.Room, v.Date),
		})
	}
	for _, v := range adapt.Grades(a.grades.Current().Records) {
		entries = append(entries, query.Entry{
			Key:  fmt.Sprintf("note %d", v.ID),
			Text: fmt.Sprintf("%s %s %s", v.Course, v.Kind, v.Date),
		})
	}
	for _, v := range adapt.Events(a.planning.Current().Records) {
		entries = append(entries, query.Entry{
			Key:  "cours " + v.UID,
			Text: fmt.Sprintf("%s %s %s %s", v.Title, v.Instructors, v.Room, v.Date),
		})
	}

	matches := query.NewIndex(entries).Find(text)
	if len(matches) == 0 {
		fmt.Println(dimStyle.Render("Aucun résultat pour « " + text + " »"))
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d résultat(s)", len(matches))))
	for _, m := range matches {
		fmt.Printf("  %s  %s\n", sectionStyle.Render(m.Key), m.Text)
	}
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Satchel!")
	fmt.Println()

	// Loop until we get a valid portal URL
	var portalURL string
	for {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter your portal URL (e.g., https://portal.example.edu/api): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		portalURL = strings.TrimSpace(input)

		if portalURL == "" {
			fmt.Println("Portal URL cannot be empty. Please try again.")
			continue
		}
		break
	}

	client := portal.NewClient(portalURL, "", "", logger)
	creds, err := portal.NewAuthFlow(client, logger).Run(context.Background())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg.Server.URL = portalURL
	cfg.Server.Token = creds.Token
	cfg.Server.RefreshToken = creds.RefreshToken

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run satchel again to synchronize your data.")

	return nil
}
