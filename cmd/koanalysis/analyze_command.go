package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services/s3"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var questionNum int
	var gender string

	cmd := &cobra.Command{
		Use:   "analyze <s3-url-or-object-key>",
		Short: "Enqueue a recorded answer for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectKey, err := resolveObjectKey(args[0])
			if err != nil {
				return err
			}

			user := strings.TrimSpace(userID)
			question := questionNum
			if user == "" || question == 0 {
				if keyUser, keyQuestion, ok := s3.ExtractUserInfo(objectKey); ok {
					if user == "" {
						user = keyUser
					}
					if question == 0 {
						question = keyQuestion
					}
				}
			}
			if user == "" || question == 0 {
				return errors.New("user and question could not be derived from the object key; pass --user and --question")
			}

			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.NewAnalysis(cmd.Context(), objectKey, user, question, gender)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued item %d (user %s, question %d, status %s)\n",
					item.ID, item.UserID, item.QuestionNum, item.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User identifier (derived from the object key when omitted)")
	cmd.Flags().IntVarP(&questionNum, "question", "q", 0, "Question number (derived from the object key when omitted)")
	cmd.Flags().StringVarP(&gender, "gender", "g", "", "Speaker gender hint for acoustic scoring")

	return cmd
}

func resolveObjectKey(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("object key is required")
	}
	if strings.HasPrefix(trimmed, "s3://") {
		_, key, err := s3.ParseURL(trimmed)
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return trimmed, nil
}
