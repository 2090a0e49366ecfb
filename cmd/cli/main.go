package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chronos-erp/flowledger/internal/adapter/http/dto"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowledger-cli",
		Short: "FlowLedger CLI tool",
		Long:  `A command line interface for interacting with the FlowLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FlowLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(ingestCmd(), jobsCmd(), accountsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func ingestCmd() *cobra.Command {
	var (
		mission  string
		sourceID string
		currency string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Run a migration job from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := readGrid(args[0])
			if err != nil {
				return err
			}

			job, err := runIngestion(dto.IngestionRequest{
				Mission:  mission,
				SourceID: sourceID,
				Currency: currency,
				Grid:     grid,
				Force:    force,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Job %s finished: %s\n", job.ID, job.Status)
			fmt.Printf("  processed: %d  skipped: %d  errored: %d  committed: %d\n",
				job.Processed, job.Skipped, job.Errored, job.Committed)
			for _, w := range job.Warnings {
				fmt.Printf("  warning row %d [%s]: %s (%q)\n", w.Row, w.Field, w.Reason, w.Value)
			}
			if job.Error != "" {
				fmt.Printf("  error: %s\n", job.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mission, "mission", "", "Mission: bank_ledger, sales, clients or inventory")
	cmd.Flags().StringVar(&sourceID, "source", "", "Source identifier (bank_ledger: the target account id)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency for monetary fields")
	cmd.Flags().BoolVar(&force, "force", false, "Clear the target collection before loading")
	cmd.MarkFlagRequired("mission")
	cmd.MarkFlagRequired("source")

	return cmd
}

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs [id]",
		Short: "Show migration job summaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/ingestions"
			if len(args) == 1 {
				path += "/" + args[0]
			}
			return getAndPrint(path)
		},
	}
	return cmd
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return getAndPrint("/api/v1/accounts")
			},
		},
		seedCmd(),
	)
	return cmd
}

// defaultAccounts are the pools the settlement engine expects. Seeding
// is idempotent: accounts that already exist are reported and skipped.
var defaultAccounts = []string{
	"boveda_monte",
	"utilidades",
	"flete_sur",
	"flete_norte",
	"casa_principal",
}

func seedCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default pool accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			for _, name := range defaultAccounts {
				body, _ := json.Marshal(dto.CreateAccountRequest{
					ID:             name,
					Name:           name,
					Currency:       currency,
					OpeningBalance: decimal.Zero,
				})

				resp, err := client.Post(baseURL+"/api/v1/accounts", "application/json", bytes.NewReader(body))
				if err != nil {
					return err
				}
				resp.Body.Close()

				switch resp.StatusCode {
				case http.StatusCreated:
					fmt.Printf("created %s\n", name)
				case http.StatusConflict:
					fmt.Printf("exists  %s\n", name)
				default:
					return fmt.Errorf("create %s: unexpected status %d", name, resp.StatusCode)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency for the seeded accounts")
	return cmd
}

// readGrid loads a CSV export as a raw grid. Rows keep their ragged
// widths; the server-side parser pads short rows.
func readGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return grid, nil
}

func runIngestion(req dto.IngestionRequest) (*dto.JobResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/ingestions", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("ingestion failed (status %d): %s", resp.StatusCode, string(body))
	}

	job := &dto.JobResponse{}
	if err := json.Unmarshal(body, job); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return job, nil
}

func getAndPrint(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
