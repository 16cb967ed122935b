package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thirdspace/internal/failure"
	"thirdspace/internal/i18n"
	"thirdspace/internal/prompt"
)

// Coordinator - автомат Idle/InFlight: одновременно выполняется не более
// одного перевода, остальные запуски отбрасываются.
type Coordinator struct {
	sender    Sender
	encoder   Encoder
	clipboard Clipboard
	presenter Presenter
	settings  SettingsProvider
	log       *zap.SugaredLogger
	gate      Gate

	mu        sync.Mutex
	inFlight  bool
	starters  []func(Source)
	listeners []func(Result)
	wg        sync.WaitGroup
}

// NewCoordinator создаёт координатор. При encoder == nil используется стандартный кодек.
func NewCoordinator(
	sender Sender,
	encoder Encoder,
	clipboard Clipboard,
	presenter Presenter,
	settings SettingsProvider,
	logger *zap.SugaredLogger,
) *Coordinator {
	if encoder == nil {
		encoder = prompt.NewCodec("")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Coordinator{
		sender:    sender,
		encoder:   encoder,
		clipboard: clipboard,
		presenter: presenter,
		settings:  settings,
		log:       logger,
	}
}

// Gate возвращает шлюз горячей клавиши, общий с окном настроек.
func (c *Coordinator) Gate() *Gate {
	return &c.gate
}

// OnStart добавляет слушателя начала принятого запроса.
func (c *Coordinator) OnStart(fn func(Source)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starters = append(c.starters, fn)
}

// OnResult добавляет слушателя результата; вызывается после снятия guard.
func (c *Coordinator) OnResult(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State возвращает текущее состояние.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return StateInFlight
	}
	return StateIdle
}

// Handler возвращает callback для источника запуска (горячая клавиша, пункт меню).
func (c *Coordinator) Handler(ctx context.Context, src Source) func() {
	return func() {
		c.Trigger(ctx, src)
	}
}

// Trigger запускает перевод в фоне. Возвращает false, если запуск отброшен
// шлюзом или уже выполняющимся запросом.
func (c *Coordinator) Trigger(ctx context.Context, src Source) bool {
	if !c.acquire(src) {
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx, src)
	}()
	return true
}

// Translate выполняет перевод синхронно. ok == false, если запуск отброшен.
func (c *Coordinator) Translate(ctx context.Context, src Source) (res Result, ok bool) {
	if !c.acquire(src) {
		return Result{}, false
	}
	return c.run(ctx, src), true
}

// Wait ждёт завершения фоновых переводов.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) acquire(src Source) bool {
	if src == SourceHotkey && c.gate.Paused() {
		c.log.Debugw("Hotkey trigger ignored while gate is paused")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		c.log.Debugw("Translation requested while busy", "source", src)
		return false
	}
	c.inFlight = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Coordinator) run(ctx context.Context, src Source) Result {
	res := Result{ID: uuid.NewString(), Source: src}
	log := c.log.With("request_id", res.ID, "source", src)

	text, err := c.process(ctx, src, log)

	if err != nil {
		res.Err = classify(err)
		log.Errorw("Translation failed",
			"kind", res.Err.Kind,
			"status", res.Err.Status,
			"message", res.Err.Message,
			"excerpt", res.Err.Excerpt,
			"error", res.Err.Err,
		)
		c.notify(log, NotifyError, i18n.T(res.Err.Kind.MessageKey()))
	} else {
		res.Text = text
		log.Infow("Translation applied", "translated_len", len(text))
		c.notify(log, NotifySuccess, i18n.T("notify_done"))
	}

	c.mu.Lock()
	listeners := append([]func(Result){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		safely(log, "result listener", func() { fn(res) })
	}
	return res
}

// process держит guard до конца запроса; паника любого участника
// превращается в ошибку, guard снимается отложенно на любом пути.
func (c *Coordinator) process(ctx context.Context, src Source, log *zap.SugaredLogger) (translated string, err error) {
	defer c.release()
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Translation panicked", "panic", r)
			translated = ""
			err = failure.Wrap(failure.NetworkError, "request aborted", fmt.Errorf("panic: %v", r))
		}
	}()

	c.mu.Lock()
	starters := append([]func(Source){}, c.starters...)
	c.mu.Unlock()
	for _, fn := range starters {
		safely(log, "start listener", func() { fn(src) })
	}

	return c.execute(ctx, log)
}

// execute: чтение буфера → encode → send → decode → запись в буфер.
func (c *Coordinator) execute(ctx context.Context, log *zap.SugaredLogger) (string, error) {
	input, err := c.clipboard.ReadText()
	if err != nil {
		return "", failure.Wrap(failure.Clipboard, "read clipboard", err)
	}

	s := c.settings.TranslationSettings()
	req := Request{
		SourceText:     input,
		TargetLanguage: s.TargetLanguage,
		Model:          s.Model,
		APIKey:         s.APIKey,
		Reasoning:      s.Reasoning,
	}

	log.Infow("Translation triggered",
		"model", req.Model,
		"target_language", req.TargetLanguage,
		"reasoning", req.Reasoning,
		"input_len", len(req.SourceText),
	)

	encoded, err := c.encoder.Encode(req.SourceText, req.TargetLanguage)
	if err != nil {
		return "", err
	}

	c.notify(log, NotifyProcessing, i18n.T("notify_processing"))

	raw, err := c.sender.Send(ctx, encoded, req.Model, req.APIKey, req.Reasoning)
	if err != nil {
		return "", err
	}

	translated, err := prompt.Decode(raw)
	if err != nil {
		return "", err
	}
	if prompt.IsMultiParagraph(req.SourceText) {
		translated = prompt.RestoreParagraphs(translated)
	}

	if err := c.clipboard.WriteText(translated); err != nil {
		return "", failure.Wrap(failure.Clipboard, "write clipboard", err)
	}
	return translated, nil
}

func (c *Coordinator) notify(log *zap.SugaredLogger, kind NotifyKind, title string) {
	safely(log, "presenter", func() { c.presenter.Notify(kind, title) })
}

// safely вызывает слушателя; его паника логируется и не доходит до координатора.
func safely(log *zap.SugaredLogger, who string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Listener panicked", "listener", who, "panic", r)
		}
	}()
	fn()
}

func classify(err error) *failure.Error {
	if fe, ok := failure.As(err); ok {
		return fe
	}
	return failure.Wrap(failure.NetworkError, "unclassified", err)
}
