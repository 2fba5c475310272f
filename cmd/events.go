package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/textage/internal/telemetry"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "View the JSONL run event log",
	Long: `Reads and formats the events file written by sync runs.

With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	follow, _ := cmd.Flags().GetBool("follow")

	a, err := loadApp()
	if err != nil {
		return err
	}
	path := a.cfg.EventsFile

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	lr := &lineReader{r: bufio.NewReader(f)}
	if err := lr.drain(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("events: read %s: %w", path, err)
	}

	if !follow {
		lr.flush(cmd.OutOrStdout())
		return nil
	}
	return tailFollow(cmd.OutOrStdout(), lr, path)
}

// lineReader prints complete lines and holds back a trailing partial line
// until the rest of it arrives.
type lineReader struct {
	r       *bufio.Reader
	partial string
}

func (lr *lineReader) drain(w io.Writer) error {
	for {
		chunk, err := lr.r.ReadString('\n')
		if err == io.EOF {
			lr.partial += chunk
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(lr.partial + chunk)
		lr.partial = ""
		if line != "" {
			fmt.Fprintln(w, telemetry.Format(line))
		}
	}
}

func (lr *lineReader) flush(w io.Writer) {
	if line := strings.TrimSpace(lr.partial); line != "" {
		fmt.Fprintln(w, telemetry.Format(line))
	}
	lr.partial = ""
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(w io.Writer, lr *lineReader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := lr.drain(w); err != nil {
				return fmt.Errorf("events: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		}
	}
}
