// ThirdSpace - переводчик буфера обмена через OpenRouter.
//
// Без аргументов работает в системном трее и переводит буфер обмена по
// горячей клавише (по умолчанию Ctrl+Alt+T). Подкоманды позволяют перевести
// текст из терминала, посмотреть каталог моделей и текущие настройки.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thirdspace/internal/app"
	"thirdspace/internal/clipboard"
	"thirdspace/internal/config"
	"thirdspace/internal/hotkey"
	"thirdspace/internal/i18n"
	"thirdspace/internal/logging"
	"thirdspace/internal/translate"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

var (
	logLevel string
	verbose  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "thirdspace: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "thirdspace",
		Short: "Translate the clipboard with a hotkey",
		Long: `ThirdSpace translates the text in your clipboard through OpenRouter.

Without a subcommand it runs in the system tray: copy text, press the hotkey
(Ctrl+Alt+T by default) and the translation replaces the clipboard contents.

Settings live in ~/.thirdspace/config.json; OPENROUTER_API_KEY is used when
the file has no key. Logs are written to ~/.thirdspace/logs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from "+logging.LevelEnv+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror logs to stderr")

	root.AddCommand(
		newTranslateCmd(),
		newModelsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// setup переносит данные старых версий, читает конфигурацию и создаёт логгер.
func setup(stderr bool) (*app.Deps, func(), error) {
	dataDir, err := config.AppDir()
	if err != nil {
		return nil, nil, err
	}
	migrateErr := config.MigrateLegacy(config.DefaultLegacyPaths(), dataDir)

	logsDir, _ := config.LogsDir()
	log, closeLog, logErr := logging.New(logging.Options{
		Dir:    logsDir,
		Level:  logLevel,
		Stderr: stderr,
	})
	if logErr != nil {
		log.Warnw("File logging unavailable", "error", logErr)
	}
	if migrateErr != nil {
		log.Errorw("Legacy data migration failed", "error", migrateErr)
	}

	cfg, err := config.New()
	if err != nil {
		log.Warnw("Config not loaded, using defaults", "path", cfg.Path(), "error", err)
	}
	i18n.SetLanguage(i18n.Parse(cfg.UILanguage()))

	return app.NewDeps(cfg, dataDir, log), closeLog, nil
}

func runTray() error {
	deps, closeLog, err := setup(true)
	if err != nil {
		return err
	}
	defer closeLog()

	deps.Log.Infow("ThirdSpace starting", "version", Version, "config", deps.Config.Path())

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() {
		app.New(deps).Run()
	})
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		target  string
		model   string
		copyTo  bool
		noThink bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text from arguments or stdin",
		Long: `Translate text once and print the result.

The text is taken from the arguments, or from stdin when no arguments are
given. Settings come from the config file; flags override them for this run.

Examples:
  thirdspace translate "Hola mundo"
  echo "Bonjour" | thirdspace translate --to German
  thirdspace translate --copy < notes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			deps, closeLog, err := setup(verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			settings := translate.SettingsFunc(func() translate.Settings {
				s := deps.TranslationSettings()
				if target != "" {
					s.TargetLanguage = target
				}
				if model != "" {
					s.Model = model
				}
				if noThink {
					s.Reasoning = false
				}
				return s
			})

			buf := &textBuffer{in: text}
			coordinator := translate.NewCoordinator(
				deps.Client,
				deps.Codec,
				buf,
				logPresenter{log: deps.Log},
				settings,
				deps.Log.Named("translate"),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, _ := coordinator.Translate(ctx, translate.SourceCLI)
			if !res.OK() {
				return fmt.Errorf("%s: %w", i18n.T(res.Kind().MessageKey()), res.Err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)

			if copyTo {
				cb := clipboard.NewDetached(deps.Log.Named("clipboard"))
				if err := cb.WriteText(res.Text); err != nil {
					return fmt.Errorf("%s: %w", i18n.T("error_clipboard"), err)
				}
				holdClipboard(ctx, cb, cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language (overrides config)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (overrides config)")
	cmd.Flags().BoolVar(&copyTo, "copy", false, "Also copy the translation to the clipboard")
	cmd.Flags().BoolVar(&noThink, "no-reasoning", false, "Disable reasoning for this request")
	return cmd
}

type heldClipboard interface {
	Held() <-chan struct{}
}

// holdClipboard не даёт процессу выйти, пока он единственный владелец
// скопированного текста (X11 без xclip/xsel).
func holdClipboard(ctx context.Context, cb heldClipboard, stderr io.Writer) {
	held := cb.Held()
	if held == nil {
		return
	}
	fmt.Fprintln(stderr, "Keeping the translation in the clipboard until it is replaced (Ctrl+C to quit).")
	select {
	case <-held:
	case <-ctx.Done():
	}
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// textBuffer подменяет буфер обмена для одноразового перевода из терминала.
type textBuffer struct {
	in  string
	out string
}

func (b *textBuffer) ReadText() (string, error) { return b.in, nil }

func (b *textBuffer) WriteText(text string) error {
	b.out = text
	return nil
}

// logPresenter пишет уведомления в лог вместо системных всплывающих окон.
type logPresenter struct {
	log *zap.SugaredLogger
}

func (p logPresenter) Notify(kind translate.NotifyKind, title string) {
	p.log.Debugw("Notification", "kind", kind, "title", title)
}

// ---------------------------------------------------------------------------
// models
// ---------------------------------------------------------------------------

func newModelsCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Long: `List built-in and cached OpenRouter models.

With --refresh the catalog is fetched from OpenRouter (requires an API key)
and cached in ~/.thirdspace/models.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeLog, err := setup(verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			if refresh {
				ctx, cancel := context.WithTimeout(cmd.Context(), deps.Config.Snapshot().Timeout())
				defer cancel()
				if _, err := deps.Models.Refresh(ctx, deps.Config.APIKey()); err != nil {
					return fmt.Errorf("refresh models: %w", err)
				}
			}

			current := deps.Config.Snapshot().Model
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, m := range deps.Models.List() {
				mark := " "
				if m.ID == current {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s\n", mark, m.ID, m.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the model list from OpenRouter")
	return cmd
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the config file path and current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			s := cfg.Snapshot()

			keySource := "config"
			if s.APIKey == "" && cfg.APIKey() != "" {
				keySource = config.APIKeyEnv
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "path\t%s\n", cfg.Path())
			fmt.Fprintf(w, "api_key\t%s (%s)\n", config.MaskKey(cfg.APIKey()), keySource)
			fmt.Fprintf(w, "model\t%s\n", s.Model)
			fmt.Fprintf(w, "target_language\t%s\n", s.TargetLanguage)
			fmt.Fprintf(w, "reasoning_enabled\t%t\n", s.ReasoningEnabled)
			fmt.Fprintf(w, "hotkey\t%s\n", cfg.Hotkey())
			fmt.Fprintf(w, "notifications\t%t\n", s.Notifications)
			fmt.Fprintf(w, "ui_language\t%s\n", s.UILanguage)
			fmt.Fprintf(w, "timeout_seconds\t%d\n", s.TimeoutSeconds)
			if s.BaseURL != "" {
				fmt.Fprintf(w, "base_url\t%s\n", s.BaseURL)
			}
			return w.Flush()
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "thirdspace %s\n", Version)
		},
	}
}
