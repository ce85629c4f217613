package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"quickshelf/internal/application"
	"quickshelf/internal/domain"
	"quickshelf/internal/ports"
)

var watchDryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Organize continuously as files land on the desktop",
	Long: `Watch the desktop folder and run the organizer after new files
arrive. Events are debounced so a burst of downloads is handled as a
single run. Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		svc := GetService()
		cfg := GetConfig()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(svc.Root()); err != nil {
			return fmt.Errorf("watch %s: %w", svc.Root(), err)
		}

		fmt.Printf("watching %s\n", svc.Root())
		if watchDryRun {
			fmt.Println("dry-run enabled, nothing will be moved")
		}
		fmt.Println("press Ctrl+C to stop")

		debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nstopping")
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				name := filepath.Base(event.Name)
				if strings.HasPrefix(name, ".") && !cfg.Organizer.IncludeHidden {
					continue
				}
				timer.Reset(debounce)
			case <-timer.C:
				runWatchPass(ctx, svc)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "print planned moves without applying them")
	rootCmd.AddCommand(watchCmd)
}

func runWatchPass(ctx context.Context, svc ports.OrganizerService) {
	if watchDryRun {
		plan, err := svc.Preview(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "preview failed: %v\n", err)
			return
		}
		for _, action := range plan.Actions {
			if action.Status == domain.StatusPlanned {
				fmt.Printf("[dry-run] %s -> %s\n", action.Source, action.Destination)
			}
		}
		return
	}

	run, err := svc.Organize(ctx)
	if err != nil {
		// Another process beat us to the lock; its run covers these files.
		if errors.Is(err, application.ErrRunInProgress) {
			return
		}
		fmt.Fprintf(os.Stderr, "organize failed: %v\n", err)
		if run == nil {
			return
		}
	}
	if run.Succeeded() > 0 || run.Failed() > 0 {
		fmt.Printf("%s organized %d files", time.Now().Format("15:04:05"), run.Succeeded())
		if failed := run.Failed(); failed > 0 {
			fmt.Printf(", %d failed", failed)
		}
		fmt.Println()
	}
}
