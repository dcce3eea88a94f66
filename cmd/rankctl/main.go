// Package main implements the rankctl CLI for manual operations against
// the rankd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolsignal/rankd/internal/ranking"
)

var (
	// serverURL is the base URL for the rankd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rankctl",
	Short: "CLI for rankd command-search operations",
	Long: `rankctl is a command-line interface for the rankd HTTP server.
It runs command searches, fetches on-demand explanations, and checks
server health.`,
	Version: version,
}

var (
	searchStates    []string
	searchLimit     int
	searchThreshold float64
	attachmentPath  string
	showTrace       bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9040", "rankd server URL")
	searchCmd.Flags().StringSliceVar(&searchStates, "states", nil, "restrict results to these state codes")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum ranked districts to return")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "confidence threshold")
	searchCmd.Flags().StringVar(&attachmentPath, "attachment", "", "file with grant text to scan for criteria")
	searchCmd.Flags().BoolVar(&showTrace, "trace", false, "print the reasoning trace")
	explainCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "confidence threshold")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(healthCmd)
}

// searchCmd runs a command search
var searchCmd = &cobra.Command{
	Use:   "search <prompt>",
	Short: "Run a command search against rankd",
	Long: `Run a free-text command search and print the ranked districts.

Examples:
  # Search for leads
  rankctl search "next hottest uncontacted leads in TX"

  # Grant matching with an attachment and a trace
  rankctl search --attachment rfp.txt --trace "grants-ready districts"

  # Restrict to states and cap the result count
  rankctl search --states TX,OK --limit 10 "high readiness districts"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// explainCmd fetches an on-demand explanation
var explainCmd = &cobra.Command{
	Use:   "explain <district-id>",
	Short: "Fetch the full rationale for one district",
	Long: `Recompute and print the standalone explanation for a district.
Used to expand results that carried a placeholder rationale.

Examples:
  rankctl explain tx-0481
  rankctl explain --threshold 0.8 tx-0481`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check rankd server health",
	RunE:  runHealth,
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	req := ranking.SearchRequest{
		Prompt:              args[0],
		ConfidenceThreshold: searchThreshold,
	}
	if len(searchStates) > 0 || searchLimit > 0 {
		req.LeadFilters = &ranking.LeadFilters{
			States: searchStates,
			Limit:  searchLimit,
		}
	}
	if attachmentPath != "" {
		text, err := os.ReadFile(attachmentPath)
		if err != nil {
			return fmt.Errorf("failed to read attachment %s: %w", attachmentPath, err)
		}
		req.Attachment = &ranking.Attachment{Text: string(text)}
	}

	var resp ranking.SearchResponse
	if err := postJSON("/api/v1/search", req, &resp); err != nil {
		return err
	}

	fmt.Printf("Intent: %s\n", resp.Intent)
	fmt.Printf("%s\n\n", resp.Explanation)
	for i, d := range resp.Districts {
		fmt.Printf("%2d. %s (%s) composite=%.2f confidence=%.2f [%s]\n",
			i+1, displayName(d), d.State, d.Composite, d.Explanation.Confidence, d.Explanation.Band)
		if d.Explanation.Summary != "" {
			fmt.Printf("    %s\n", d.Explanation.Summary)
		}
	}
	if len(resp.Insights) > 0 {
		fmt.Println("\nTop states:")
		for _, ins := range resp.Insights {
			fmt.Printf("  %s: %d districts, avg composite %.2f\n", ins.State, ins.DistrictCount, ins.AvgComposite)
		}
	}
	if showTrace {
		fmt.Println("\nReasoning:")
		for _, step := range resp.Reasoning.Steps {
			fmt.Printf("  - %s\n", step)
		}
	}
	return nil
}

func displayName(d ranking.RankedResult) string {
	if d.Name != "" {
		return d.Name
	}
	return d.DistrictID
}

func runExplain(cmd *cobra.Command, args []string) error {
	body := map[string]float64{}
	if searchThreshold > 0 {
		body["confidence_threshold"] = searchThreshold
	}

	var exp ranking.Explanation
	path := fmt.Sprintf("/api/v1/districts/%s/explanation", args[0])
	if err := postJSON(path, body, &exp); err != nil {
		return err
	}

	fmt.Printf("Confidence: %.2f [%s]\n", exp.Confidence, exp.Band)
	fmt.Printf("%s\n", exp.Summary)
	for _, sig := range exp.TopSignals {
		fmt.Printf("  %-20s %-10s %.2f %s\n", sig.Signal, sig.Category, sig.Weight, sig.Reason)
	}
	for _, damp := range exp.Dampeners {
		fmt.Printf("  dampener: %s (%s) %s\n", damp.Signal, damp.Impact, damp.Reason)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", healthResp.Status)
	fmt.Printf("Server URL: %s\n", serverURL)
	return nil
}

// postJSON sends a JSON POST to the rankd server and decodes the
// response into out.
func postJSON(path string, body, out any) error {
	reqJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := serverURL + path
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
