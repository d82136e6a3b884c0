package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ragdesk/internal/models"
)

func notificationsCmd() *cobra.Command {
	var clear bool
	var markRead int64

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show recorded operation outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if clear {
				app.state.ClearNotifications()
				color.Yellow("Notifications cleared")
				return nil
			}
			if markRead != 0 {
				app.state.MarkNotificationRead(markRead)
			}

			notifications := app.state.Notifications()
			if len(notifications) == 0 {
				color.Yellow("No notifications")
				return nil
			}
			for _, n := range notifications {
				marker := "●"
				if n.Read {
					marker = " "
				}
				kind := notifyColor(n.Kind)
				fmt.Printf("%s %s %s  %s: %s\n",
					marker, n.CreatedAt.Format("15:04:05"), kind, n.Title, n.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "discard all notifications")
	cmd.Flags().Int64Var(&markRead, "read", 0, "mark a notification read by id")
	return cmd
}

func notifyColor(kind string) string {
	switch kind {
	case models.NotifySuccess:
		return color.GreenString("%-7s", kind)
	case models.NotifyError:
		return color.RedString("%-7s", kind)
	case models.NotifyWarning:
		return color.YellowString("%-7s", kind)
	default:
		return fmt.Sprintf("%-7s", kind)
	}
}

func historyCmd() *cobra.Command {
	var clear bool
	var feedbackID int64
	var feedbackKind string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the persisted conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if clear {
				app.state.ClearConversation()
				color.Yellow("Conversation cleared")
				return nil
			}

			if feedbackID != 0 {
				if feedbackKind != models.FeedbackPositive && feedbackKind != models.FeedbackNegative {
					return fmt.Errorf("feedback must be %q or %q", models.FeedbackPositive, models.FeedbackNegative)
				}
				orch, err := app.orchestrator(nil, nil)
				if err != nil {
					return err
				}
				if err := orch.SubmitFeedback(cmd.Context(), feedbackID, feedbackKind, ""); err != nil {
					return err
				}
				color.Yellow("Feedback recorded")
				return nil
			}

			turns := app.state.Conversation()
			if len(turns) == 0 {
				color.Yellow("No conversation yet")
				return nil
			}
			for _, t := range turns {
				printTurn(t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "discard the conversation")
	cmd.Flags().Int64Var(&feedbackID, "feedback", 0, "turn id to rate")
	cmd.Flags().StringVar(&feedbackKind, "kind", models.FeedbackPositive, "feedback kind (positive or negative)")
	return cmd
}

func printTurn(t models.Turn) {
	timestamp := t.CreatedAt.Format("2006-01-02 15:04")
	switch {
	case t.Role == models.RoleUser:
		color.Green("[%s] You (#%d)", timestamp, t.ID)
	case t.IsError:
		color.Red("[%s] Assistant (#%d, failed)", timestamp, t.ID)
	default:
		color.Cyan("[%s] Assistant (#%d)", timestamp, t.ID)
	}
	fmt.Printf("  %s\n", t.Text)
	if t.Role == models.RoleAI && !t.IsError {
		meta := color.New(color.Faint).PrintfFunc()
		meta("  %d sources | %.0f%% confidence | %dms", t.SourceCount, t.Confidence*100, t.LatencyMs)
		if t.Feedback != nil {
			meta(" | rated %s", t.Feedback.Kind)
		}
		meta("\n")
	}
}
