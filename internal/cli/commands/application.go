package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visaAgent/internal/agent"
	"visaAgent/internal/appnumber"
	"visaAgent/internal/cli/ui"
	"visaAgent/internal/database"
	"visaAgent/internal/profile"
)

// NewRunCommand создает заявку и проходит анкету с начала.
func NewRunCommand(env *Env) *cobra.Command {
	var (
		profilePath string
		submit      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Заполнить новую визовую анкету",
		Long: `Заполнить новую визовую анкету AVATS данными из файла анкеты.

  По умолчанию последняя страница заполняется, но не отправляется.
  Флаг --submit (или FORM_SUBMIT_FINAL=true) включает финальную отправку.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profilePath == "" {
				profilePath = env.Cfg.Form.ProfilePath
			}
			applicant, err := loadApplicant(profilePath)
			if err != nil {
				return err
			}

			app := &database.Application{Status: database.StatusPending, ProfilePath: profilePath}
			if env.Repo != nil {
				if err := env.Repo.CreateApplication(app); err != nil {
					return fmt.Errorf("ошибка создания заявки: %w", err)
				}
				env.printf(ui.ColorGreen+ui.IconCheckmark+" Создана заявка #%d"+ui.ColorReset+"\n", app.ID)
			}

			ui.PrintWelcome(env.Out)
			env.printf(ui.ColorCyan+ui.IconPlay+" Заполнение анкеты для %s %s"+ui.ColorReset+"\n",
				applicant.Personal.Forename, applicant.Personal.Surname)

			res, err := env.newAgent(submit).Run(env.Ctx, app, applicant)
			return env.report(res, err)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "файл анкеты заявителя (по умолчанию PROFILE_PATH)")
	cmd.Flags().BoolVar(&submit, "submit", false, "отправить анкету на последней странице")
	return cmd
}

// NewResumeCommand продолжает заявку по номеру.
func NewResumeCommand(env *Env) *cobra.Command {
	var (
		profilePath string
		submit      bool
	)

	cmd := &cobra.Command{
		Use:   "resume [номер-заявки]",
		Short: "Продолжить заявку по номеру",
		Long: `Продолжить заявку через страницу восстановления AVATS.

  Номер берется из аргумента, затем из файла APP_NUMBER_FILE,
  затем из последней незавершенной заявки в БД.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := env.resolveApplication(args)
			if err != nil {
				return err
			}

			if profilePath == "" {
				profilePath = app.ProfilePath
			}
			if profilePath == "" {
				profilePath = env.Cfg.Form.ProfilePath
			}
			applicant, err := loadApplicant(profilePath)
			if err != nil {
				return err
			}

			env.printf(ui.ColorCyan+ui.IconLoop+" Продолжение заявки %s"+ui.ColorReset+"\n", app.ApplicationNumber)
			res, err := env.newAgent(submit).Resume(env.Ctx, app, applicant)
			return env.report(res, err)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "файл анкеты заявителя")
	cmd.Flags().BoolVar(&submit, "submit", false, "отправить анкету на последней странице")
	return cmd
}

// resolveApplication находит заявку для resume.
func (e *Env) resolveApplication(args []string) (*database.Application, error) {
	number := ""
	if len(args) == 1 {
		number = args[0]
	}

	if number == "" {
		stored, err := e.numbers().Load()
		switch {
		case err == nil:
			number = stored
		case !errors.Is(err, appnumber.ErrNotFound):
			return nil, err
		}
	}

	if e.Repo == nil {
		if number == "" {
			return nil, fmt.Errorf("номер заявки не указан и не сохранен в %s", e.Cfg.Form.AppNumberFile)
		}
		return &database.Application{ApplicationNumber: number, Status: database.StatusPending}, nil
	}

	if number == "" {
		app, err := e.Repo.LatestResumable()
		if err != nil {
			return nil, fmt.Errorf("ошибка поиска незавершенной заявки: %w", err)
		}
		if app == nil {
			return nil, fmt.Errorf("нет заявки для продолжения")
		}
		return app, nil
	}

	app, err := e.Repo.GetApplicationByNumber(number)
	if err == nil {
		return app, nil
	}

	e.Log.Debug("Заявка не найдена в БД, создаем запись", zap.String("application_number", number), zap.Error(err))
	app = &database.Application{ApplicationNumber: number, Status: database.StatusPending}
	if err := e.Repo.CreateApplication(app); err != nil {
		return nil, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return app, nil
}

func (e *Env) report(res *agent.Result, err error) error {
	if res == nil {
		return err
	}

	icon, color, text := ui.FormatStatus(res.Status)
	e.println()
	e.printf(ui.ColorBold+"Итог:"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", color, icon, text)
	e.printf("  "+ui.ColorGray+"Шагов:"+ui.ColorReset+" %d, "+ui.ColorGray+"последняя страница:"+ui.ColorReset+" %s\n",
		res.Steps, ui.FormatPage(res.FinalState.String()))
	if res.ApplicationNumber != "" {
		e.printf("  "+ui.ColorGray+"Номер заявки:"+ui.ColorReset+" %s\n", res.ApplicationNumber)
	}
	e.printf("  "+ui.ColorGray+ui.IconChat+ui.ColorReset+" %s\n", res.Summary)

	if err != nil {
		if res.ApplicationNumber != "" {
			ui.PrintHint(e.Out, res.ApplicationNumber)
		}
		return err
	}
	return nil
}

func loadApplicant(path string) (*profile.Applicant, error) {
	applicant, err := profile.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applicant.Validate(); err != nil {
		return nil, fmt.Errorf("анкета %s: %w", path, err)
	}
	return applicant, nil
}

// NewListCommand выводит список заявок.
func NewListCommand(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список заявок",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireRepo(); err != nil {
				return err
			}

			apps, err := env.Repo.ListApplications(limit, 0)
			if err != nil {
				env.Log.Error("Ошибка чтения заявок", zap.Error(err))
				return fmt.Errorf("ошибка чтения заявок: %w", err)
			}

			env.println("\n" + ui.ColorBold + ui.IconList + " Список заявок:" + ui.ColorReset)
			env.println()
			if len(apps) == 0 {
				env.println(ui.ColorGray + "  Заявок нет" + ui.ColorReset)
				return nil
			}
			for _, a := range apps {
				icon, color, text := ui.FormatStatus(a.Status)
				env.printf("  "+ui.ColorBold+"#%d"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", a.ID, color, icon, text)
				number := a.ApplicationNumber
				if number == "" {
					number = "без номера"
				}
				env.printf("  "+ui.ColorGray+"└─"+ui.ColorReset+" %s, %s, %s\n",
					number, ui.FormatPage(a.LastPage), a.UpdatedAt.Format("2006-01-02 15:04"))
				env.println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "сколько заявок показать")
	return cmd
}
