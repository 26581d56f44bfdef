// Cascade CLI — инструмент командной строки для выполнения workflow
// файлов и просмотра архива запусков.
//
// Использование:
//
//	cascade [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	run       Выполнить workflow файл
//	validate  Проверить workflow файл без выполнения
//	steps     Список доступных типов шагов
//	runs      Просмотр архива запусков (list, show, steps)
//	stats     Сводка по архиву
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Cascade/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "cascade",
		Short:         "Cascade CLI — workflow step runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(outputFn),
		cli.NewValidateCmd(outputFn),
		cli.NewStepsCmd(outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
		cli.NewStatsCmd(clientFn, outputFn),
	)

	// Ctrl-C отменяет контекст команды: начатая группа шагов
	// дорабатывает, остальные пропускаются.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
