package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/api"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon and pipeline stage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			bind := strings.TrimSpace(cfg.Paths.APIBind)
			if bind == "" {
				return fmt.Errorf("api_bind is not configured")
			}
			url := "http://" + bind + "/health"

			client := &http.Client{Timeout: 5 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("reach daemon at %s: %w (is koanalysisd running?)", bind, err)
			}
			defer resp.Body.Close()

			var health api.HealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon: %s\n", health.Status)

			if len(health.Stages) > 0 {
				rows := make([][]string, 0, len(health.Stages))
				for _, stage := range health.Stages {
					rows = append(rows, []string{stage.Name, yesNo(stage.Ready), stage.Detail})
				}
				printRows(out, []string{"Stage", "Ready", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
			}

			if len(health.Queue) > 0 {
				statuses := make([]string, 0, len(health.Queue))
				for status := range health.Queue {
					statuses = append(statuses, status)
				}
				sort.Strings(statuses)
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{status, strconv.Itoa(health.Queue[status])})
				}
				printRows(out, []string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			}
			return nil
		},
	}
}
