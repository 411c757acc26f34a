package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visaAgent/internal/cli/ui"
)

// NewShowCommand выводит детали заявки со всеми шагами
func NewShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Детали заявки и шаги прохода",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireRepo(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := env.Repo.GetApplicationByID(id)
			if err != nil {
				return fmt.Errorf("заявка #%d не найдена: %w", id, err)
			}

			_, _, statusText := ui.FormatStatus(app.Status)

			env.printf("\n"+ui.ColorBold+"=== Заявка #%d ==="+ui.ColorReset+"\n", app.ID)
			if app.ApplicationNumber != "" {
				env.printf(ui.ColorCyan+ui.IconDocument+" Номер:"+ui.ColorReset+" %s\n", app.ApplicationNumber)
			}
			env.printf(ui.ColorCyan+ui.IconChart+" Статус:"+ui.ColorReset+" %s\n", statusText)
			env.printf(ui.ColorCyan+ui.IconGlobe+" Страница:"+ui.ColorReset+" %s\n", ui.FormatPage(app.LastPage))
			if app.ProfilePath != "" {
				env.printf(ui.ColorCyan+ui.IconDocument+" Анкета:"+ui.ColorReset+" %s\n", app.ProfilePath)
			}
			env.printf(ui.ColorCyan+ui.IconTime+" Создана:"+ui.ColorReset+" %s\n", app.CreatedAt.Format("2006-01-02 15:04:05"))
			if app.ResultSummary != "" {
				env.printf(ui.ColorCyan+ui.IconChat+" Результат:"+ui.ColorReset+" %s\n", app.ResultSummary)
			}

			steps, err := env.Repo.GetStepsByApplicationID(app.ID)
			if err != nil {
				env.Log.Error("Ошибка получения шагов", zap.Error(err))
				return fmt.Errorf("ошибка получения шагов: %w", err)
			}

			if len(steps) == 0 {
				env.println("\n" + ui.ColorGray + "Шаги не найдены" + ui.ColorReset)
				return nil
			}

			env.printf("\n"+ui.ColorYellow+ui.IconLoop+" Шаги (%d):"+ui.ColorReset+"\n", len(steps))
			for _, step := range steps {
				env.printf(ui.ColorGray+"[%s]"+ui.ColorReset+" "+ui.ColorBold+"#%d"+ui.ColorReset+" %s "+ui.ColorCyan+"%s"+ui.ColorReset+"\n",
					step.CreatedAt.Format("15:04:05"), step.StepNo, ui.FormatPage(step.Page), step.Action)
				if step.Result == "" {
					continue
				}
				if strings.HasPrefix(step.Result, "ошибка") {
					env.printf("  "+ui.ColorRed+"[ОШИБКА]"+ui.ColorReset+" %s\n", step.Result)
				} else {
					env.printf("  "+ui.ColorGreen+"[OK]"+ui.ColorReset+" %s\n", step.Result)
				}
			}
			env.println()
			return nil
		},
	}
}
