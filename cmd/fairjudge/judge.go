package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/fairjudge/internal/backend"
	"github.com/ekisa-team/fairjudge/internal/service"
)

var (
	judgeBackend string
	judgeModel   string
	judgeJSON    bool
)

var judgeCmd = &cobra.Command{
	Use:   "judge <file|->",
	Short: "Judge the bias of an article read from a file or stdin",
	Long: `Judge runs the article past the liberal, conservative and neutral agents
and prints each agent's bias score and summary. Use "-" to read the article
from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		article, err := readArticle(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Error("Failed to shut down backends", "error", err)
			}
		}()

		req := service.JudgeRequest{Article: article, Model: judgeModel}
		if judgeBackend != "" {
			kind, err := backend.ParseKind(judgeBackend)
			if err != nil {
				return err
			}
			req.Backend = &kind
		}

		res, err := a.judge.Judge(ctx, req)
		if err != nil {
			return err
		}

		if judgeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		return renderJudge(cmd.OutOrStdout(), res)
	},
}

func readArticle(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}
	return string(b), nil
}

func init() {
	judgeCmd.Flags().StringVar(&judgeBackend, "backend", "", "backend to use (local-server, in-process)")
	judgeCmd.Flags().StringVar(&judgeModel, "model", "", "model to use")
	judgeCmd.Flags().BoolVar(&judgeJSON, "json", false, "output results as JSON")

	rootCmd.AddCommand(judgeCmd)
}
