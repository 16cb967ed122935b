// Package settings - окно настроек на Gio.
package settings

import (
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"go.uber.org/zap"

	"thirdspace/internal/config"
	"thirdspace/internal/i18n"
	"thirdspace/internal/models"
)

// Options - зависимости окна.
type Options struct {
	// Capture ставит горячую клавишу на паузу, пока записывается новая.
	Capture Capture
	// OnApply сохраняет настройки. При ошибке окно остаётся открытым.
	OnApply func(config.Settings) error
	// OnFailure вызывается, если окно не удалось создать.
	OnFailure func(error)
	Log       *zap.SugaredLogger
}

// Window представляет окно настроек.
type Window struct {
	mu   sync.Mutex
	opts Options
	log  *zap.SugaredLogger

	// Состояние окна
	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	form     *form
	rec      recorder
	status   string // ошибка последнего Apply
	applying bool

	// Виджеты
	apiKeyEd    widget.Editor
	targetEd    widget.Editor
	reasoning   widget.Bool
	modelBtns   map[string]*widget.Clickable
	langBtns    map[i18n.Language]*widget.Clickable
	recordBtn   widget.Clickable
	applyBtn    widget.Clickable
	cancelBtn   widget.Clickable
	modelList   widget.List
	contentList widget.List

	recordTag     int // стабильный tag для фокуса поля записи
	hotkeyFilters []event.Filter
}

// New создаёт окно настроек. Окно не показывается до вызова Show.
func New(opts Options) *Window {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	w := &Window{
		opts:      opts,
		log:       opts.Log,
		rec:       recorder{capture: opts.Capture},
		modelBtns: make(map[string]*widget.Clickable),
		langBtns:  make(map[i18n.Language]*widget.Clickable),
	}

	w.apiKeyEd.SingleLine = true
	w.apiKeyEd.Mask = '•'
	w.targetEd.SingleLine = true
	w.modelList.Axis = layout.Vertical
	w.contentList.Axis = layout.Vertical

	for _, lang := range i18n.AvailableLanguages() {
		w.langBtns[lang] = new(widget.Clickable)
	}
	w.initHotkeyFilters()
	return w
}

func (w *Window) initHotkeyFilters() {
	tag := &w.recordTag
	mods := key.ModCtrl | key.ModShift | key.ModAlt | key.ModSuper | key.ModCommand

	filters := []event.Filter{
		key.FocusFilter{Target: tag},
		// пустое имя - любая клавиша, включая одиночные модификаторы
		key.Filter{Focus: tag, Optional: mods},
	}
	for _, name := range []key.Name{
		key.NameSpace, key.NameReturn, key.NameEnter, key.NameTab, key.NameEscape,
		key.NameDeleteForward, key.NameUpArrow, key.NameDownArrow, key.NameLeftArrow, key.NameRightArrow,
	} {
		filters = append(filters, key.Filter{Focus: tag, Name: name, Optional: mods})
	}
	w.hotkeyFilters = filters
}

// Show открывает окно с текущими настройками (неблокирующая).
func (w *Window) Show(current config.Settings, list []models.ModelInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		if w.window != nil {
			w.window.Perform(system.ActionRaise)
		}
		return
	}

	w.form = newForm(current, list)
	w.ensureModelButtons()
	w.apiKeyEd.SetText(current.APIKey)
	w.targetEd.SetText(current.TargetLanguage)
	w.reasoning.Value = current.ReasoningEnabled
	w.status = ""
	w.applying = false

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.runEventLoop(w.stopCh, w.doneCh)
}

// SetModels обновляет каталог моделей в открытом окне.
func (w *Window) SetModels(list []models.ModelInfo) {
	w.mu.Lock()
	if w.form != nil {
		w.form.setModels(list)
		w.ensureModelButtons()
	}
	win := w.window
	w.mu.Unlock()

	if win != nil {
		win.Invalidate()
	}
}

// modelButtons возвращает копию карты кнопок. Вызывается под w.mu.
func (w *Window) modelButtons() map[string]*widget.Clickable {
	out := make(map[string]*widget.Clickable, len(w.modelBtns))
	for id, btn := range w.modelBtns {
		out[id] = btn
	}
	return out
}

func (w *Window) ensureModelButtons() {
	for _, m := range w.form.models {
		if w.modelBtns[m.ID] == nil {
			w.modelBtns[m.ID] = new(widget.Clickable)
		}
	}
}

// Hide закрывает окно.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.rec.blur()
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if doneCh != nil {
		select {
		case <-doneCh:
		case <-time.After(time.Second):
		}
	}
}

// IsVisible возвращает true, если окно показано.
func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Window) runEventLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		// окно могли уже открыть заново
		if w.doneCh == doneCh {
			w.running = false
			w.window = nil
		}
		w.rec.blur()
		w.mu.Unlock()
	}()

	win := new(app.Window)
	win.Option(
		app.Title(i18n.T("settings_title")),
		app.Size(unit.Dp(460), unit.Dp(640)),
		app.MinSize(unit.Dp(400), unit.Dp(520)),
	)
	w.mu.Lock()
	w.window = win
	w.mu.Unlock()

	go func() {
		select {
		case <-stopCh:
			win.Perform(system.ActionClose)
		case <-doneCh:
		}
	}()

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			if e.Err != nil {
				w.log.Errorw("Settings window failed", "error", e.Err)
				if w.opts.OnFailure != nil {
					go w.opts.OnFailure(e.Err)
				}
			}
			return
		case app.ConfigEvent:
			// окно потеряло фокус - поле записи тоже
			if !e.Config.Focused {
				w.mu.Lock()
				w.rec.blur()
				w.mu.Unlock()
			}
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.handleEvents(gtx)
			w.draw(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) handleEvents(gtx layout.Context) {
	if w.recordBtn.Clicked(gtx) {
		w.mu.Lock()
		recording := w.rec.active
		if !recording {
			w.rec.focus()
		}
		w.mu.Unlock()

		if recording {
			w.stopRecording(gtx)
		} else {
			gtx.Execute(key.FocusCmd{Tag: &w.recordTag})
		}
	}

	w.handleHotkeyRecording(gtx)

	w.mu.Lock()
	btns := w.modelButtons()
	w.mu.Unlock()
	for id, btn := range btns {
		if btn.Clicked(gtx) {
			w.mu.Lock()
			w.form.model = id
			w.mu.Unlock()
		}
	}

	for lang, btn := range w.langBtns {
		if btn.Clicked(gtx) {
			w.mu.Lock()
			w.form.language = lang
			w.mu.Unlock()
		}
	}

	if w.reasoning.Update(gtx) {
		w.mu.Lock()
		w.form.reason = w.reasoning.Value
		w.mu.Unlock()
	}

	if w.cancelBtn.Clicked(gtx) {
		// Hide ждёт завершения цикла событий, поэтому не из него самого
		go w.Hide()
	}

	if w.applyBtn.Clicked(gtx) {
		w.apply()
	}
}

func (w *Window) stopRecording(gtx layout.Context) {
	w.mu.Lock()
	w.rec.blur()
	w.mu.Unlock()
	gtx.Execute(key.FocusCmd{Tag: nil})
}

func (w *Window) handleHotkeyRecording(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(w.hotkeyFilters...)
		if !ok {
			return
		}

		switch e := ev.(type) {
		case key.FocusEvent:
			w.mu.Lock()
			if e.Focus {
				w.rec.focus()
			} else {
				w.rec.blur()
			}
			w.mu.Unlock()

		case key.Event:
			if e.State != key.Press {
				continue
			}
			if e.Name == key.NameEscape {
				w.stopRecording(gtx)
				continue
			}

			w.mu.Lock()
			hk, done := w.rec.press(modifiersOf(e.Modifiers), keyOf(e.Name))
			if done {
				w.form.hotkey = hk
			}
			w.mu.Unlock()

			if done {
				w.stopRecording(gtx)
			}
		}
	}
}

// apply проверяет форму и передаёт настройки в OnApply в фоне.
func (w *Window) apply() {
	w.mu.Lock()
	if w.applying || w.form == nil {
		w.mu.Unlock()
		return
	}
	w.form.apiKey = w.apiKeyEd.Text()
	w.form.target = w.targetEd.Text()

	s, err := w.form.settings()
	if err != nil {
		w.status = err.Error()
		w.mu.Unlock()
		return
	}
	w.applying = true
	w.status = ""
	onApply := w.opts.OnApply
	w.mu.Unlock()

	go func() {
		var err error
		if onApply != nil {
			err = onApply(s)
		}

		w.mu.Lock()
		w.applying = false
		if err != nil {
			w.status = err.Error()
		}
		win := w.window
		w.mu.Unlock()

		if err != nil {
			w.log.Warnw("Settings not applied", "error", err)
			if win != nil {
				win.Invalidate()
			}
			return
		}
		w.Hide()
	}()
}

func modifiersOf(m key.Modifiers) map[config.Modifier]bool {
	return map[config.Modifier]bool{
		config.ModCtrl:  m.Contain(key.ModCtrl),
		config.ModShift: m.Contain(key.ModShift),
		config.ModAlt:   m.Contain(key.ModAlt),
		config.ModSuper: m.Contain(key.ModSuper) || m.Contain(key.ModCommand),
	}
}

// keyOf переводит имя клавиши Gio в config.Key; "" для модификаторов и
// клавиш, которые нельзя зарегистрировать.
func keyOf(name key.Name) config.Key {
	switch name {
	case key.NameSpace:
		return config.KeySpace
	case key.NameReturn, key.NameEnter:
		return config.KeyReturn
	case key.NameTab:
		return config.KeyTab
	case key.NameDeleteForward:
		return config.KeyDelete
	case key.NameUpArrow:
		return config.KeyUp
	case key.NameDownArrow:
		return config.KeyDown
	case key.NameLeftArrow:
		return config.KeyLeft
	case key.NameRightArrow:
		return config.KeyRight
	}
	hk, err := config.ParseHotkey(string(name))
	if err != nil || len(hk.Modifiers) > 0 {
		return ""
	}
	return hk.Key
}
