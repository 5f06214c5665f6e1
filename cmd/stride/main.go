package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ldi/stride/internal/db"
	"github.com/ldi/stride/internal/mcp"
	"github.com/ldi/stride/internal/ui"
	"github.com/ldi/stride/pkg/models"
)

var (
	dataDir string
	verbose bool
)

func main() {
	flag.StringVar(&dataDir, "data-dir", "", "Path to the data directory (default .stride)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	dataDir = resolveDataDir(dataDir)

	var command string
	var args []string

	if flag.NArg() == 0 {
		selected, err := ui.RunMenu()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		if selected == "" {
			os.Exit(0)
		}
		command = selected
		args = []string{}
	} else {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	var err error
	switch command {
	case "init":
		err = runInit(args)
	case "mcp":
		err = runMCP(args)
	case "staff":
		err = runStaff(args)
	case "project":
		err = runProject(args)
	case "task":
		err = runTask(args)
	case "report":
		err = runReport(args)
	case "progress":
		err = runProgress(args)
	case "status":
		err = runStatus(args)
	case "export":
		err = runExport(args)
	case "import":
		err = runImport(args)
	case "activity":
		err = runActivity(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dbFile() string {
	return filepath.Join(dataDir, "stride.db")
}

// openDatabase opens and initializes the store, wiring auto-export when the
// config asks for it.
func openDatabase(ctx context.Context) (*db.DB, *Config, error) {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.Open(dbFile())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	if cfg.AutoExport {
		database.EnableAutoExport(cfg.exportPath(dataDir))
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "using database %s\n", dbFile())
	}
	return database, cfg, nil
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	strideDir := dataDir
	if !filepath.IsAbs(strideDir) && targetDir != "." {
		strideDir = filepath.Join(targetDir, strideDir)
	}

	if err := os.MkdirAll(strideDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	fmt.Printf("✓ Created %s/ directory\n", strideDir)

	gitignorePath := filepath.Join(strideDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("stride.db*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Printf("✓ Created %s/.gitignore\n", strideDir)

	if err := writeDefaultConfig(strideDir); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s/config.json\n", strideDir)

	cfg, err := loadConfig(strideDir)
	if err != nil {
		return err
	}

	database, err := db.Open(filepath.Join(strideDir, "stride.db"))
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Printf("✓ Initialized database at %s\n", filepath.Join(strideDir, "stride.db"))

	// An existing export directory means there is data to restore.
	exportDir := cfg.exportPath(strideDir)
	if _, err := os.Stat(filepath.Join(exportDir, "staff.csv")); err == nil {
		if err := database.ImportCSV(ctx, exportDir); err != nil {
			return fmt.Errorf("failed to import CSV data: %w", err)
		}
		fmt.Printf("✓ Imported records from %s\n", exportDir)
	}

	fmt.Println("✓ Stride initialized successfully")
	return nil
}

func runMCP(args []string) error {
	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s := mcp.NewServer(database)
	return mcp.Serve(s)
}

func runStatus(args []string) error {
	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	staff, err := database.ListStaff(ctx)
	if err != nil {
		return err
	}
	projects, err := database.ListProjects(ctx)
	if err != nil {
		return err
	}
	tasks, err := database.ListTasks(ctx, "", nil, "")
	if err != nil {
		return err
	}

	fmt.Println("Stride Workspace Status")
	fmt.Println("=======================")
	fmt.Printf("Staff:           %d\n", len(staff))
	fmt.Printf("Projects:        %d\n", len(projects))
	fmt.Printf("Total Tasks:     %d\n", len(tasks))

	projectCounts := make(map[models.ProjectStatus]int)
	for _, p := range projects {
		projectCounts[p.Status]++
	}

	fmt.Println("\nProject Breakdown:")
	for _, s := range models.ProjectStatuses {
		fmt.Printf("  %-12s %d\n", s+":", projectCounts[s])
	}

	taskCounts := make(map[models.TaskStatus]int)
	for _, t := range tasks {
		taskCounts[t.Status]++
	}

	fmt.Println("\nTask Breakdown:")
	for _, s := range models.TaskStatuses {
		fmt.Printf("  %-12s %d\n", s+":", taskCounts[s])
	}

	overdue, err := database.OverdueTasks(ctx, "", models.DateOnly(time.Now().UTC()))
	if err != nil {
		return err
	}
	if len(overdue) > 0 {
		fmt.Println("\nOverdue Tasks:")
		for i, t := range overdue {
			if i >= 5 {
				break
			}
			fmt.Printf("  - %s %s (deadline: %s)\n", t.ID, t.Name, models.FormatInputDate(t.Deadline))
		}
	}

	return nil
}

func runExport(args []string) error {
	exportFlags := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := exportFlags.String("dir", "", "Export directory (default <data-dir>/export)")
	if err := exportFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, cfg, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	target := *dir
	if target == "" {
		target = cfg.exportPath(dataDir)
	}

	if err := database.ExportCSV(ctx, target); err != nil {
		return err
	}
	fmt.Printf("✓ Exported records to %s\n", target)
	return nil
}

func runImport(args []string) error {
	importFlags := flag.NewFlagSet("import", flag.ContinueOnError)
	dir := importFlags.String("dir", "", "Import directory (default <data-dir>/export)")
	if err := importFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, cfg, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	source := *dir
	if source == "" {
		source = cfg.exportPath(dataDir)
	}

	if err := database.ImportCSV(ctx, source); err != nil {
		return err
	}
	fmt.Printf("✓ Imported records from %s\n", source)
	return nil
}

func runActivity(args []string) error {
	activityFlags := flag.NewFlagSet("activity", flag.ContinueOnError)
	limit := activityFlags.Int("limit", 20, "Number of entries to show")
	follow := activityFlags.Bool("follow", false, "Keep the log open and refresh it live")
	if err := activityFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if *follow {
		return ui.FollowActivity(func() ([]*models.Activity, error) {
			return database.ListActivity(ctx, *limit)
		}, 2*time.Second)
	}

	entries, err := database.ListActivity(ctx, *limit)
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %-10s %-20s %-10s %s\n", "WHEN", "ENTITY", "ID", "ACTION", "DETAILS")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, e := range entries {
		fmt.Printf("%-20s %-10s %-20s %-10s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Entity, e.EntityID, e.Action, e.Details)
	}
	return nil
}
