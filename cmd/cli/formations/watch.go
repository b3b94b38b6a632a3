package formations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/kreyolab/formations/cmd/cli/config"
	"github.com/kreyolab/formations/internal/countdown"
	"github.com/kreyolab/formations/internal/models"
)

// watchFormationCmd runs a live countdown toward a formation's scheduled
// publication. With --auto-publish it triggers the publish sweep the moment
// the countdown reaches zero, like a viewer watching the page go live.
func watchFormationCmd() *cobra.Command {
	var autoPublish bool

	cmd := &cobra.Command{
		Use:   "watch [id]",
		Short: "Watch the countdown to a formation's publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/formations/" + args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("formation not found (status %d)", resp.StatusCode)
			}

			var f models.Formation
			if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
				return err
			}
			if f.Status != models.StatusScheduled || f.ScheduledPublishAt == nil {
				fmt.Printf("Formation %d is %s; no scheduled publication.\n", f.ID, f.Status)
				return nil
			}

			triggered := make(chan struct{})
			var onReady func(time.Time)
			if autoPublish {
				onReady = func(time.Time) {
					defer close(triggered)
					if err := triggerPublish(); err != nil {
						fmt.Println("\nauto-publish failed:", err)
						return
					}
					fmt.Println("\nPublish sweep triggered.")
				}
			}

			w := countdown.NewWatcher(clockwork.NewRealClock(), f.ScheduledPublishAt, f.ScheduledTimezone, autoPublish, onReady)
			w.Start(context.Background())
			defer w.Stop()

			fmt.Printf("Watching formation %d (%s), publishes at %s\n", f.ID, f.Title, scheduledDisplay(f))
			for {
				snap := w.Snapshot()
				fmt.Printf("\r%s   ", snap.Countdown)
				if snap.Ready {
					fmt.Println()
					break
				}
				time.Sleep(250 * time.Millisecond)
			}

			if autoPublish {
				select {
				case <-triggered:
				case <-time.After(10 * time.Second):
					fmt.Println("timed out waiting for auto-publish")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoPublish, "auto-publish", false, "run the publish sweep when the countdown reaches zero")
	return cmd
}

// triggerPublish forces a sweep through POST /publish-due.
func triggerPublish() error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	req, err := http.NewRequest("POST", config.APIURL()+"/publish-due", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
