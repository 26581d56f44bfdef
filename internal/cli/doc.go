// Package cli реализует инструмент командной строки Cascade.
//
// # Обзор
//
// CLI объединяет две роли:
//
//   - Локальное выполнение: run, validate, steps. Workflow файл
//     загружается и выполняется движком прямо в процессе команды —
//     сервер не нужен.
//   - Просмотр архива: runs list/show/steps, stats. Эти команды
//     обращаются к cascade-api по HTTP.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Cascade API. Инкапсулирует GET запросы, парсинг
// конвертов (dataResponse, listResponse, errorResponse) и обработку
// ошибок. Типы ответов дублируются из api/dto.go, чтобы клиентские
// команды не зависели от серверного пакета.
//
//	client := cli.NewClient("http://localhost:8080")
//	runs, err := client.ListRuns(cli.ListRunsOpts{Failed: true})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) и журнал —
// в stderr. Это позволяет использовать pipe:
//
//	cascade runs list --json | jq .
//
// Отчёт локального запуска выводится через Output.Report: таблица
// шагов с итоговой строкой либо документ {summary, results}.
//
// ## Commands
//
// Cobra-команды:
//   - run FILE: выполнить workflow (флаги --config, --var, --publish,
//     --workers, --timeout, --retries, --no-stop-on-failure)
//   - validate FILE: проверить файл без выполнения
//   - steps: список зарегистрированных типов шагов
//   - runs: list, show, steps — просмотр архива
//   - stats: сводка по архиву
//
// Каждая группа создаётся через фабричную функцию (NewRunCmd и т.д.),
// принимающую clientFn и/или outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
//
// Запуск с флагом --publish (или mq.publish в конфигурации) публикует
// события run.started и run.completed; недоступный RabbitMQ понижает
// команду до локального режима с предупреждением в stderr.
package cli
