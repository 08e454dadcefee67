package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teachkit/packgen/internal/eval"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pipeline"
	"github.com/teachkit/packgen/internal/roster"
	"github.com/teachkit/packgen/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate teaching packs once and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.Mode)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		lessonPath, _ := cmd.Flags().GetString("lesson")
		sum, err := lesson.Load(lessonPath)
		if err != nil {
			return fmt.Errorf("load lesson summary: %w", err)
		}

		var students []roster.StudentRecord
		if rosterPath, _ := cmd.Flags().GetString("roster"); rosterPath != "" {
			students, err = loadRoster(rosterPath)
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}
		}

		var truth *eval.GroundTruth
		if truthPath, _ := cmd.Flags().GetString("truth"); truthPath != "" {
			truth, err = loadGroundTruth(truthPath)
			if err != nil {
				return fmt.Errorf("load ground truth: %w", err)
			}
		}

		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath, err = resolveDBPath(cmd)
			if err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		provider, err := llm.NewProviderFromEnv(ctx, st.AuditSink())
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		jobs := job.NewStore(cfg.JobStore(), log, st.JobRepo())
		orch := pipeline.New(provider, jobs, cfg.Pipeline(), log)

		groups, _ := cmd.Flags().GetInt("groups")
		j, err := orch.Run(ctx, pipeline.Request{
			Lesson:     sum,
			Students:   students,
			GroupCount: groups,
			Truth:      truth,
		})
		if err != nil {
			return fmt.Errorf("run pipeline: %w", err)
		}
		if j.Status == job.StatusFailed {
			return fmt.Errorf("generation failed: %s", j.Error)
		}

		out, err := json.MarshalIndent(j, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%s)\n", outPath, j.Status)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

// loadRoster picks the parser by file extension.
func loadRoster(path string) ([]roster.StudentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return roster.ParseCSV(bytes.NewReader(data))
	}
	return roster.ParseJSON(data)
}

func loadGroundTruth(path string) (*eval.GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var truth eval.GroundTruth
	if err := json.Unmarshal(data, &truth); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if truth.Empty() {
		return nil, fmt.Errorf("%s names no concepts, skills or answers", path)
	}
	return &truth, nil
}

func init() {
	runCmd.Flags().String("lesson", "", "Path to lesson summary JSON (required)")
	runCmd.Flags().String("roster", "", "Path to student roster (JSON or CSV)")
	runCmd.Flags().String("truth", "", "Path to ground truth JSON for evaluation")
	runCmd.Flags().Int("groups", 0, "Number of groups (default from config)")
	runCmd.Flags().String("out", "", "Write the result to a file instead of stdout")
	_ = runCmd.MarkFlagRequired("lesson")
}
