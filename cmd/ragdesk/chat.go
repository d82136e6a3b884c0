package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragdesk/internal/models"
	"ragdesk/pkg/chat"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question-and-answer session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return runChat(cmd.Context(), app)
		},
	}
}

func runChat(ctx context.Context, app *app) error {
	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	var spinnerMu sync.Mutex
	var spinner *progressbar.ProgressBar

	orch, err := app.orchestrator(
		func(status string) {
			spinnerMu.Lock()
			if spinner != nil {
				spinner.Describe(color.CyanString(" " + status))
			}
			spinnerMu.Unlock()
		},
		func() bool {
			userPrompt("No documents selected. Search ALL documents? [y/N]: ")
			if !scanner.Scan() {
				return false
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			return answer == "y" || answer == "yes"
		},
	)
	if err != nil {
		return err
	}

	docs := orch.RefreshDocuments(ctx)
	color.Cyan("\nChat with your documents (%d available, type 'help' for commands)", len(docs))
	printSelection(app)

	var lastAnswerID int64

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		case strings.EqualFold(line, "help"):
			printChatHelp()
			continue
		case strings.EqualFold(line, "docs"):
			printDocuments(app.state.Documents(), app.state.Selected())
			continue
		case strings.EqualFold(line, "clear"):
			app.state.ClearConversation()
			color.Yellow("Conversation cleared")
			continue
		case line == "+" || line == "-":
			if lastAnswerID == 0 {
				color.Red("No answer to rate yet")
				continue
			}
			kind := models.FeedbackPositive
			if line == "-" {
				kind = models.FeedbackNegative
			}
			if err := orch.SubmitFeedback(ctx, lastAnswerID, kind, ""); err != nil {
				color.Red("%v", err)
			} else {
				color.Yellow("Feedback recorded")
			}
			continue
		case strings.HasPrefix(strings.ToLower(line), "select "):
			arg := strings.TrimSpace(line[len("select "):])
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				color.Red("Not a document id: %s", arg)
				continue
			}
			app.state.ToggleSelected(id)
			printSelection(app)
			continue
		}

		spinnerMu.Lock()
		spinner = getSpinner(" Searching your documents...")
		spinnerMu.Unlock()

		turn, err := orch.Submit(ctx, line)

		spinnerMu.Lock()
		spinner.Finish()
		spinner = nil
		spinnerMu.Unlock()

		if err != nil {
			if errors.Is(err, chat.ErrDeclined) {
				color.Yellow("Query cancelled")
				continue
			}
			color.Red("%v", err)
			continue
		}

		fmt.Print("\n")
		if turn.IsError {
			color.Red("Assistant: %s", turn.Text)
			continue
		}

		assistantPrompt("Assistant: ")
		fmt.Printf("%s\n", turn.Text)
		printAnswerMeta(turn)
		lastAnswerID = turn.ID
	}

	return nil
}

func printAnswerMeta(turn *models.Turn) {
	meta := color.New(color.Faint).PrintfFunc()
	meta("  %d sources | %.0f%% confidence | %dms\n",
		turn.SourceCount, turn.Confidence*100, turn.LatencyMs)
	for i, c := range turn.Citations {
		if i == 3 {
			meta("  ... and %d more\n", len(turn.Citations)-3)
			break
		}
		meta("  [%d] %s\n", i+1, c.Preview)
	}
}

func printChatHelp() {
	fmt.Println("  docs          list documents and selection")
	fmt.Println("  select <id>   toggle a document in the query scope")
	fmt.Println("  + / -         rate the last answer")
	fmt.Println("  clear         clear the conversation")
	fmt.Println("  exit          leave the chat")
}

func printSelection(app *app) {
	selected := app.state.Selected()
	if len(selected) == 0 {
		color.Yellow("Scope: all documents")
		return
	}
	color.Yellow("Scope: %d selected document(s)", len(selected))
}

func printDocuments(docs []models.DocumentRef, selected []int64) {
	if len(docs) == 0 {
		color.Yellow("No documents uploaded yet")
		return
	}
	isSelected := make(map[int64]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}
	for _, d := range docs {
		marker := " "
		if isSelected[d.ID] {
			marker = "*"
		}
		fmt.Printf("  %s %4d  %-40s %s  %d chunks\n",
			marker, d.ID, d.Filename, d.CreatedAt.Format("2006-01-02 15:04"), d.ChunkCount)
	}
}
