package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visaAgent/internal/cli/ui"
	"visaAgent/internal/form"
	"visaAgent/internal/site"
)

// NewDetectCommand открывает URL и показывает, как агент распознает страницу.
func NewDetectCommand(env *Env) *cobra.Command {
	var screenshot string

	cmd := &cobra.Command{
		Use:   "detect [url]",
		Short: "Распознать страницу AVATS по URL",
		Long: `Открыть URL в браузере и вывести распознанное состояние страницы,
  номер заявки и сообщения валидаторов. Без аргумента открывается AVATS_HOME_URL.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := env.Cfg.Form.HomeURL
			if len(args) == 1 {
				url = args[0]
			}
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				url = "https://" + url
			}

			br := env.openBrowser()
			env.println(ui.ColorCyan + ui.IconGlobe + " Запуск браузера..." + ui.ColorReset)
			if err := br.Launch(env.Ctx); err != nil {
				return fmt.Errorf("ошибка запуска: %w", err)
			}
			defer func() {
				if err := br.Close(); err != nil {
					env.Log.Warn("Ошибка закрытия браузера", zap.Error(err))
				}
			}()

			env.printf(ui.ColorCyan+ui.IconArrow+" Открытие %s..."+ui.ColorReset+"\n", url)
			if err := br.Navigate(env.Ctx, url); err != nil {
				return fmt.Errorf("ошибка навигации: %w", err)
			}

			snapshot, err := br.GetPageSnapshot(env.Ctx)
			if err != nil {
				return fmt.Errorf("ошибка снимка страницы: %w", err)
			}

			detector := site.NewDetector(env.Cfg.Form.HomeURL, form.Signatures(form.Catalog()))
			state := detector.Detect(snapshot.URL, snapshot.Text)
			source := "эвристики"

			if state.Kind == site.KindUnknown {
				if classifier := env.classifier(); classifier != nil {
					c, err := classifier.ClassifyPage(env.Ctx, snapshot.URL, snapshot.Text, nil)
					if err != nil {
						env.Log.Warn("Классификатор недоступен", zap.Error(err))
					} else if s, ok := c.State(); ok {
						state = s
						source = "LLM: " + c.String()
					}
				}
			}

			env.printf("\n"+ui.ColorBold+"Страница:"+ui.ColorReset+" %s "+ui.ColorGray+"(%s)"+ui.ColorReset+"\n",
				ui.FormatPage(state.String()), source)
			env.printf("  "+ui.ColorGray+"URL:"+ui.ColorReset+" %s\n", snapshot.URL)
			env.printf("  "+ui.ColorGray+"Заголовок:"+ui.ColorReset+" %s\n", snapshot.Title)
			if number, ok := site.ExtractApplicationNumber(snapshot.HTML); ok {
				env.printf("  "+ui.ColorGray+"Номер заявки:"+ui.ColorReset+" %s\n", number)
			}
			for _, msg := range snapshot.ValidationErrors {
				env.printf("  "+ui.ColorRed+"[ВАЛИДАЦИЯ]"+ui.ColorReset+" %s\n", msg)
			}

			if screenshot != "" {
				if err := br.Screenshot(env.Ctx, screenshot); err != nil {
					return fmt.Errorf("ошибка скриншота: %w", err)
				}
				env.printf("  "+ui.ColorGray+"Скриншот:"+ui.ColorReset+" %s\n", screenshot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&screenshot, "screenshot", "", "сохранить скриншот страницы в файл")
	return cmd
}
