package cli

import (
	"github.com/google/uuid"

	captureCommands "github.com/jharden/divflow/internal/capture/application/commands"
	captureQueries "github.com/jharden/divflow/internal/capture/application/queries"
	reviewQueries "github.com/jharden/divflow/internal/review/application/queries"
	reviewCache "github.com/jharden/divflow/internal/review/cache"
)

// App holds the CLI application dependencies.
type App struct {
	// Capture command handlers
	CaptureItemHandler    *captureCommands.CaptureItemHandler
	ConfirmItemHandler    *captureCommands.ConfirmItemHandler
	ReclassifyItemHandler *captureCommands.ReclassifyItemHandler

	// Capture query handlers
	ListItemsHandler *captureQueries.ListItemsHandler
	GetItemHandler   *captureQueries.GetItemHandler

	// Review
	ReviewQueueHandler *reviewQueries.ReviewQueueHandler
	ReviewQueueCache   reviewCache.ReviewQueueCache

	// CurrentUserID is the active user for all commands.
	CurrentUserID uuid.UUID

	// ReviewLimit is the configured default queue size.
	ReviewLimit int
}

var cliApp *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	cliApp = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return cliApp
}
