package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visaAgent/internal/cli/ui"
)

const maxLogText = 300

// NewLogsCommand выводит запросы к классификатору страниц по заявке
func NewLogsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <id>",
		Short: "LLM логи заявки",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireRepo(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			logs, err := env.Repo.GetLlmLogsByApplicationID(id)
			if err != nil {
				env.Log.Error("Ошибка получения логов", zap.Error(err))
				return fmt.Errorf("ошибка получения логов: %w", err)
			}

			env.printf("\n"+ui.ColorBold+"=== "+ui.IconList+" LLM логи заявки #%d ==="+ui.ColorReset+"\n", id)
			if len(logs) == 0 {
				env.println(ui.ColorGray + "Логи не найдены" + ui.ColorReset)
				return nil
			}

			for _, l := range logs {
				color := ui.ColorCyan
				if l.Role == "error" {
					color = ui.ColorRed
				}
				env.printf(ui.ColorGray+"[%s]"+ui.ColorReset+" %s%s"+ui.ColorReset+" %s, токенов: %d\n",
					l.CreatedAt.Format("15:04:05"), color, l.Role, l.Model, l.TokensUsed)
				if l.ResponseText != "" {
					env.printf("  %s\n", truncate(l.ResponseText, maxLogText))
				}
			}
			env.println()
			return nil
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
