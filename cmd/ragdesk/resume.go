package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func resumeCmd() *cobra.Command {
	var job string
	var jobFile string

	cmd := &cobra.Command{
		Use:   "resume [file]",
		Short: "Analyze a resume against a job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := job
			if jobFile != "" {
				data, err := os.ReadFile(jobFile)
				if err != nil {
					return fmt.Errorf("failed to read job description: %v", err)
				}
				description = string(data)
			}
			if strings.TrimSpace(description) == "" {
				return fmt.Errorf("a job description is required; use --job or --job-file")
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			spinner := getSpinner(" Analyzing resume...")
			analysis, err := orch.AnalyzeResume(cmd.Context(), args[0], description)
			spinner.Finish()
			fmt.Print("\n")
			if err != nil {
				return err
			}

			header := color.New(color.FgCyan, color.Bold).PrintfFunc()

			header("Overall score: %d/100\n", analysis.OverallScore)
			fmt.Printf("%s\n", analysis.Summary)

			if len(analysis.MatchedSkills) > 0 {
				header("\nMatched skills\n")
				for _, s := range analysis.MatchedSkills {
					fmt.Printf("  + %s (%d%%)\n", s.Skill, s.Confidence)
				}
			}
			if len(analysis.MissingSkills) > 0 {
				header("\nMissing skills\n")
				for _, s := range analysis.MissingSkills {
					fmt.Printf("  - %s (%s)\n", s.Skill, s.Importance)
				}
			}
			printStrings(header, "Strengths", analysis.Strengths)
			printStrings(header, "Weaknesses", analysis.Weaknesses)
			printStrings(header, "Recommendations", analysis.Recommendations)

			header("\nATS scores\n")
			fmt.Printf("  keyword match: %d\n  format:        %d\n  readability:   %d\n",
				analysis.ATS.KeywordMatch, analysis.ATS.FormatScore, analysis.ATS.Readability)
			return nil
		},
	}

	cmd.Flags().StringVar(&job, "job", "", "job description text")
	cmd.Flags().StringVar(&jobFile, "job-file", "", "file containing the job description")
	return cmd
}

func printStrings(header func(format string, a ...interface{}), title string, items []string) {
	if len(items) == 0 {
		return
	}
	header("\n%s\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
