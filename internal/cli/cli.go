// Package cli собирает корневую команду visa.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visaAgent/internal/cli/commands"
	"visaAgent/internal/config"
	"visaAgent/internal/database"
	"visaAgent/internal/logger"
	"visaAgent/internal/migrations"
)

// NewRootCommand создает команду visa. Конфигурация, логгер и БД поднимаются
// перед запуском любой подкоманды; освобождает их env.Close.
func NewRootCommand(env *commands.Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "visa",
		Short:         "Заполнение визовой анкеты AVATS через браузер",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(env)
		},
	}
	root.SetOut(env.Out)

	root.AddCommand(
		commands.NewRunCommand(env),
		commands.NewResumeCommand(env),
		commands.NewListCommand(env),
		commands.NewShowCommand(env),
		commands.NewLogsCommand(env),
		commands.NewDetectCommand(env),
	)
	return root
}

func setup(env *commands.Env) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	env.Cfg = cfg

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		return err
	}
	env.Log = log
	env.OnClose(func() { _ = log.Sync() })

	if !cfg.DatabaseEnabled() {
		log.Debug("БД не настроена, номер заявки хранится только в файле",
			zap.String("file", cfg.Form.AppNumberFile))
		return nil
	}

	if err := migrations.Run(cfg, log); err != nil {
		return err
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	env.DB = db
	env.OnClose(func() { db.Close(log) })
	env.Repo = database.NewApplicationRepository(db.DB)
	return nil
}

// Execute запускает CLI с аргументами процесса.
func Execute(ctx context.Context) error {
	return execute(&commands.Env{Ctx: ctx, Out: os.Stdout}, os.Args[1:])
}

// execute освобождает ресурсы окружения и тогда, когда команда вернула ошибку.
func execute(env *commands.Env, args []string) error {
	defer env.Close()

	root := NewRootCommand(env)
	root.SetArgs(args)
	return root.ExecuteContext(env.Ctx)
}
