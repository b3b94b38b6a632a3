package publish

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kreyolab/formations/cmd/cli/config"
)

// InitPublish registers the publish-due command on the root command.
func InitPublish(rootCmd *cobra.Command) {
	rootCmd.AddCommand(publishDueCmd())
}

// publishDueCmd forces a publication sweep instead of waiting for the next
// cron tick.
func publishDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-due",
		Short: "Publish every formation whose scheduled time has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Println(string(body))
			return nil
		},
	}
}
