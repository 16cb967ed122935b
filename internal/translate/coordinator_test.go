package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"thirdspace/internal/failure"
	"thirdspace/internal/openrouter"
	"thirdspace/internal/prompt"
)

func TestCoordinatorEndToEndSuccess(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{text: "Hola mundo"}
	presenter := &fakePresenter{}
	sender := &fakeSender{reply: "<<<TRANSLATION>>>Hello world<<<END_TRANSLATION>>>"}
	c := NewCoordinator(sender, nil, clipboard, presenter, defaultSettings("sk-test"), nil)

	res, ok := c.Translate(context.Background(), SourceMenu)
	if !ok {
		t.Fatalf("trigger was ignored")
	}
	if !res.OK() || res.Text != "Hello world" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ID == "" || res.Source != SourceMenu {
		t.Fatalf("result missing id/source: %+v", res)
	}

	if got := clipboard.lastWrite(); got != "Hello world" {
		t.Fatalf("clipboard write = %q", got)
	}
	if kinds := presenter.snapshot(); len(kinds) != 2 || kinds[0] != NotifyProcessing || kinds[1] != NotifySuccess {
		t.Fatalf("unexpected notifications: %v", kinds)
	}

	call := sender.lastCall()
	if call.model != "google/gemini-3-flash-preview" || call.apiKey != "sk-test" || !call.reasoning {
		t.Fatalf("unexpected send arguments: %+v", call)
	}
	if call.prompt.User != "Hola mundo" {
		t.Fatalf("unexpected user content: %q", call.prompt.User)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle state after request")
	}
}

func TestCoordinatorMissingAPIKeyMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	clipboard := &fakeClipboard{text: "Hola mundo"}
	presenter := &fakePresenter{}
	client := openrouter.New(openrouter.Config{BaseURL: server.URL}, nil)
	c := NewCoordinator(client, nil, clipboard, presenter, defaultSettings(""), nil)

	res, ok := c.Translate(context.Background(), SourceMenu)
	if !ok {
		t.Fatalf("trigger was ignored")
	}
	if res.Kind() != failure.MissingAPIKey {
		t.Fatalf("expected MissingAPIKey, got %+v", res)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no network call, got %d", hits)
	}
	if kinds := presenter.snapshot(); len(kinds) == 0 || kinds[len(kinds)-1] != NotifyError {
		t.Fatalf("expected error notification, got %v", kinds)
	}
	if clipboard.writeCount() != 0 {
		t.Fatalf("clipboard must not be written on failure")
	}
}

func TestCoordinatorSuppressesDuplicateTriggers(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		reply:   "<<<TRANSLATION>>>ok<<<END_TRANSLATION>>>",
		started: make(chan struct{}, 1),
		unblock: make(chan struct{}),
	}
	c := NewCoordinator(sender, nil, &fakeClipboard{text: "text"}, &fakePresenter{}, defaultSettings("sk"), nil)

	if !c.Trigger(context.Background(), SourceHotkey) {
		t.Fatalf("first trigger was ignored")
	}
	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("sender was not called")
	}

	if c.State() != StateInFlight {
		t.Fatalf("expected in-flight state")
	}
	if c.Trigger(context.Background(), SourceHotkey) {
		t.Fatalf("duplicate hotkey trigger was accepted")
	}
	if _, ok := c.Translate(context.Background(), SourceMenu); ok {
		t.Fatalf("duplicate menu trigger was accepted")
	}
	if c.State() != StateInFlight {
		t.Fatalf("duplicate trigger changed state")
	}

	close(sender.unblock)
	c.Wait()

	if n := sender.callCount(); n != 1 {
		t.Fatalf("expected exactly one API call, got %d", n)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle state after completion")
	}
	if !c.Trigger(context.Background(), SourceHotkey) {
		t.Fatalf("trigger after completion was ignored")
	}
	c.Wait()
}

func TestCoordinatorEmptyInput(t *testing.T) {
	t.Parallel()

	presenter := &fakePresenter{}
	sender := &fakeSender{}
	clipboard := &fakeClipboard{text: "  \n "}
	c := NewCoordinator(sender, nil, clipboard, presenter, defaultSettings("sk"), nil)

	res, _ := c.Translate(context.Background(), SourceMenu)
	if res.Kind() != failure.EmptyInput {
		t.Fatalf("expected EmptyInput, got %+v", res)
	}
	if sender.callCount() != 0 {
		t.Fatalf("API client must not be invoked for empty input")
	}
	if kinds := presenter.snapshot(); len(kinds) != 1 || kinds[0] != NotifyError {
		t.Fatalf("unexpected notifications: %v", kinds)
	}
}

func TestCoordinatorMalformedResponseLeavesClipboard(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{text: "Hola"}
	sender := &fakeSender{reply: "<<<TRANSLATION>>>Hello"}
	c := NewCoordinator(sender, nil, clipboard, &fakePresenter{}, defaultSettings("sk"), nil)

	res, _ := c.Translate(context.Background(), SourceMenu)
	if res.Kind() != failure.MalformedResponse {
		t.Fatalf("expected MalformedResponse, got %+v", res)
	}
	if res.Err.Excerpt == "" {
		t.Fatalf("expected response excerpt for diagnostics")
	}
	if clipboard.writeCount() != 0 {
		t.Fatalf("clipboard was written on malformed response")
	}
}

func TestCoordinatorGateBlocksOnlyHotkey(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{reply: "<<<TRANSLATION>>>x<<<END_TRANSLATION>>>"}
	c := NewCoordinator(sender, nil, &fakeClipboard{text: "y"}, &fakePresenter{}, defaultSettings("sk"), nil)

	c.Gate().Pause()
	if _, ok := c.Translate(context.Background(), SourceHotkey); ok {
		t.Fatalf("hotkey trigger accepted while gate paused")
	}
	if sender.callCount() != 0 {
		t.Fatalf("API called for gated trigger")
	}
	if _, ok := c.Translate(context.Background(), SourceMenu); !ok {
		t.Fatalf("menu trigger must ignore the gate")
	}

	c.Gate().Resume()
	if _, ok := c.Translate(context.Background(), SourceHotkey); !ok {
		t.Fatalf("hotkey trigger ignored after resume")
	}
	if sender.callCount() != 2 {
		t.Fatalf("expected 2 API calls, got %d", sender.callCount())
	}
}

func TestCoordinatorReleasesGuardOnPanic(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{panicMsg: "transport exploded"}
	c := NewCoordinator(sender, nil, &fakeClipboard{text: "x"}, &fakePresenter{}, defaultSettings("sk"), nil)

	res, ok := c.Translate(context.Background(), SourceMenu)
	if !ok {
		t.Fatalf("trigger was ignored")
	}
	if res.Kind() != failure.NetworkError {
		t.Fatalf("expected NetworkError, got %+v", res)
	}
	if c.State() != StateIdle {
		t.Fatalf("guard not released after panic")
	}
}

func TestCoordinatorSurvivesPanickingListeners(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{text: "Hola"}
	sender := &fakeSender{reply: "<<<TRANSLATION>>>Hello<<<END_TRANSLATION>>>"}
	c := NewCoordinator(sender, nil, clipboard, &fakePresenter{panicMsg: "toast exploded"}, defaultSettings("sk"), nil)
	c.OnStart(func(Source) {
		panic("tray exploded")
	})
	c.OnResult(func(Result) {
		panic("icon exploded")
	})

	res, ok := c.Translate(context.Background(), SourceMenu)
	if !ok {
		t.Fatalf("trigger was ignored")
	}
	if !res.OK() || clipboard.lastWrite() != "Hello" {
		t.Fatalf("listener panic must not fail the request: %+v", res)
	}
	if c.State() != StateIdle {
		t.Fatalf("guard not released after listener panic")
	}

	// фоновый запуск не должен ронять горутину
	if !c.Trigger(context.Background(), SourceHotkey) {
		t.Fatalf("next trigger was ignored")
	}
	c.Wait()
	if sender.callCount() != 2 || c.State() != StateIdle {
		t.Fatalf("calls=%d state=%s", sender.callCount(), c.State())
	}
}

func TestCoordinatorRestoresParagraphs(t *testing.T) {
	t.Parallel()

	clipboard := &fakeClipboard{text: "Uno\n\nDos"}
	sender := &fakeSender{reply: "<<<TRANSLATION>>>\nOne\n%%\nTwo\n<<<END_TRANSLATION>>>"}
	c := NewCoordinator(sender, nil, clipboard, &fakePresenter{}, defaultSettings("sk"), nil)

	res, _ := c.Translate(context.Background(), SourceMenu)
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if sender.lastCall().prompt.User != "Uno\n%%\nDos" {
		t.Fatalf("unexpected encoded input: %q", sender.lastCall().prompt.User)
	}
	if got := clipboard.lastWrite(); got != "One\n\nTwo" {
		t.Fatalf("clipboard write = %q", got)
	}
}

func TestCoordinatorClipboardFailures(t *testing.T) {
	t.Parallel()

	readFail := NewCoordinator(&fakeSender{}, nil, &fakeClipboard{readErr: errors.New("no display")}, &fakePresenter{}, defaultSettings("sk"), nil)
	res, _ := readFail.Translate(context.Background(), SourceMenu)
	if res.Kind() != failure.Clipboard {
		t.Fatalf("expected Clipboard failure on read, got %+v", res)
	}

	writeFail := NewCoordinator(
		&fakeSender{reply: "<<<TRANSLATION>>>a<<<END_TRANSLATION>>>"},
		nil,
		&fakeClipboard{text: "b", writeErr: errors.New("locked")},
		&fakePresenter{},
		defaultSettings("sk"),
		nil,
	)
	res, _ = writeFail.Translate(context.Background(), SourceMenu)
	if res.Kind() != failure.Clipboard {
		t.Fatalf("expected Clipboard failure on write, got %+v", res)
	}
}

func TestCoordinatorUnclassifiedErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("something odd")}
	c := NewCoordinator(sender, nil, &fakeClipboard{text: "x"}, &fakePresenter{}, defaultSettings("sk"), nil)

	res, _ := c.Translate(context.Background(), SourceMenu)
	if res.Kind() != failure.NetworkError {
		t.Fatalf("expected NetworkError, got %+v", res)
	}
}

func TestCoordinatorNotifiesListeners(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{reply: "<<<TRANSLATION>>>done<<<END_TRANSLATION>>>"}
	c := NewCoordinator(sender, nil, &fakeClipboard{text: "x"}, &fakePresenter{}, defaultSettings("sk"), nil)

	started := make(chan Source, 1)
	c.OnStart(func(src Source) {
		started <- src
	})
	results := make(chan Result, 1)
	c.OnResult(func(r Result) {
		results <- r
	})

	if !c.Trigger(context.Background(), SourceMenu) {
		t.Fatalf("trigger was ignored")
	}
	select {
	case r := <-results:
		if r.Text != "done" {
			t.Fatalf("unexpected result: %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener not called")
	}
	if src := <-started; src != SourceMenu {
		t.Fatalf("start listener got %q", src)
	}
	c.Wait()
}

func TestGateIsIdempotent(t *testing.T) {
	t.Parallel()

	var g Gate
	g.Resume()
	if g.Paused() {
		t.Fatalf("resume without pause must be a no-op")
	}

	g.Pause()
	g.Pause()
	g.Resume()
	if g.Paused() {
		t.Fatalf("expected gate resumed after pause, pause, resume")
	}
}

func defaultSettings(apiKey string) SettingsFunc {
	return func() Settings {
		return Settings{
			APIKey:         apiKey,
			Model:          "google/gemini-3-flash-preview",
			TargetLanguage: "English",
			Reasoning:      true,
		}
	}
}

type sendCall struct {
	prompt    prompt.Encoded
	model     string
	apiKey    string
	reasoning bool
}

type fakeSender struct {
	reply    string
	err      error
	panicMsg string
	started  chan struct{}
	unblock  chan struct{}

	mu    sync.Mutex
	calls []sendCall
}

func (f *fakeSender) Send(ctx context.Context, p prompt.Encoded, model, apiKey string, reasoning bool) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sendCall{prompt: p, model: model, apiKey: apiKey, reasoning: reasoning})
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.unblock != nil {
		<-f.unblock
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.reply, f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSender) lastCall() sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return sendCall{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeClipboard struct {
	text     string
	readErr  error
	writeErr error

	mu     sync.Mutex
	writes []string
}

func (f *fakeClipboard) ReadText() (string, error) {
	return f.text, f.readErr
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeClipboard) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeClipboard) lastWrite() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return ""
	}
	return f.writes[len(f.writes)-1]
}

type fakePresenter struct {
	panicMsg string

	mu    sync.Mutex
	kinds []NotifyKind
}

func (f *fakePresenter) Notify(kind NotifyKind, title string) {
	f.mu.Lock()
	f.kinds = append(f.kinds, kind)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
}

func (f *fakePresenter) snapshot() []NotifyKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]NotifyKind(nil), f.kinds...)
}
