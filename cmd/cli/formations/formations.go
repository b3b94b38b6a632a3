package formations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kreyolab/formations/cmd/cli/config"
	"github.com/kreyolab/formations/cmd/cli/output"
	"github.com/kreyolab/formations/internal/models"
	"github.com/kreyolab/formations/internal/timezone"
)

// InitFormations registers the formations command group on the root command.
func InitFormations(rootCmd *cobra.Command) {
	formationsCmd := &cobra.Command{
		Use:   "formations",
		Short: "Manage formations and their publication schedule",
	}

	formationsCmd.AddCommand(
		listFormationsCmd(),
		scheduleFormationCmd(),
		unscheduleFormationCmd(),
		rescheduleFormationCmd(),
		watchFormationCmd(),
	)

	rootCmd.AddCommand(formationsCmd)
}

// ==========================
// LIST
// ==========================
func listFormationsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List formations",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := http.Get(config.APIURL() + "/formations")
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var list []models.Formation
			if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
				fmt.Println("failed to decode response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(list))
			for _, f := range list {
				rows = append(rows, []interface{}{
					f.ID, f.Title, f.Status, scheduledDisplay(f),
				})
			}
			output.RenderTable([]string{"ID", "Title", "Status", "Scheduled"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// scheduledDisplay renders the publish instant as a wall-clock time in the
// formation's own timezone, the way editors entered it.
func scheduledDisplay(f models.Formation) string {
	if f.ScheduledPublishAt == nil {
		return "-"
	}
	utc := f.ScheduledPublishAt.UTC().Format(time.RFC3339)
	display := timezone.FormatForDisplay(utc, f.ScheduledTimezone, false)
	if display == "" {
		return utc
	}
	return fmt.Sprintf("%s (%s)", display, f.ScheduledTimezone)
}

// ==========================
// SCHEDULE
// ==========================
func scheduleFormationCmd() *cobra.Command {
	var localDatetime string
	var tz string

	cmd := &cobra.Command{
		Use:   "schedule [id]",
		Short: "Schedule a formation for publication",
		Long:  "Schedule a formation to publish at a local wall-clock time (yyyy-mm-ddThh:mm) in an IANA timezone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"local_datetime": localDatetime,
				"timezone":       tz,
			}
			var f models.Formation
			if err := postAuthenticated("/formations/"+args[0]+"/schedule", payload, &f); err != nil {
				return err
			}
			fmt.Printf("Formation %d scheduled: %s\n", f.ID, scheduledDisplay(f))
			return nil
		},
	}

	cmd.Flags().StringVar(&localDatetime, "at", "", "local wall-clock time, yyyy-mm-ddThh:mm")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone the time is expressed in")
	cmd.MarkFlagRequired("at")

	return cmd
}

// ==========================
// UNSCHEDULE
// ==========================
func unscheduleFormationCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "unschedule [id]",
		Short: "Cancel a formation's scheduled publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"status": status}
			var f models.Formation
			if err := postAuthenticated("/formations/"+args[0]+"/unschedule", payload, &f); err != nil {
				return err
			}
			fmt.Printf("Formation %d is now %s\n", f.ID, f.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "draft", "status to fall back to (draft, published, archived)")
	return cmd
}

// ==========================
// RESCHEDULE
// ==========================
func rescheduleFormationCmd() *cobra.Command {
	var minutes int
	var tz string

	cmd := &cobra.Command{
		Use:   "reschedule [id]",
		Short: "Push a formation's publication a few minutes into the future",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"minutes": minutes}
			if tz != "" {
				payload["timezone"] = tz
			}
			var out struct {
				ID                 int    `json:"id"`
				Title              string `json:"title"`
				ScheduledPublishAt string `json:"scheduled_publish_at"`
			}
			if err := postAuthenticated("/reschedule/"+args[0], payload, &out); err != nil {
				return err
			}
			fmt.Printf("Formation %d rescheduled to %s\n", out.ID, out.ScheduledPublishAt)
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 2, "minutes from now")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone to record for display")
	return cmd
}

// postAuthenticated sends a JSON POST with the locally stored token.
func postAuthenticated(path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}
	return nil
}
