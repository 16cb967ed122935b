package settings

import (
	"image"
	"image/color"

	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"thirdspace/internal/i18n"
	"thirdspace/internal/models"
)

// Палитра - тёмная тема
var (
	colorBG         = color.NRGBA{R: 28, G: 30, B: 36, A: 255}
	colorPanel      = color.NRGBA{R: 42, G: 45, B: 54, A: 255}
	colorPanelLight = color.NRGBA{R: 54, G: 58, B: 70, A: 255}
	colorText       = color.NRGBA{R: 238, G: 240, B: 245, A: 255}
	colorTextDim    = color.NRGBA{R: 138, G: 144, B: 158, A: 255}
	colorAccent     = color.NRGBA{R: 74, G: 144, B: 226, A: 255}
	colorWarning    = color.NRGBA{R: 245, G: 158, B: 11, A: 255}
	colorError      = color.NRGBA{R: 239, G: 83, B: 80, A: 255}
	colorSelected   = color.NRGBA{R: 52, G: 92, B: 150, A: 255}
)

// view - снимок состояния для одного кадра.
type view struct {
	models    []models.ModelInfo
	modelBtns map[string]*widget.Clickable
	model     string
	language  i18n.Language
	hotkey    string
	recording bool
	recorded  string
	status    string
	applying  bool
}

func (w *Window) snapshot() view {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil {
		return view{}
	}
	return view{
		models:    append([]models.ModelInfo(nil), w.form.models...),
		modelBtns: w.modelButtons(),
		model:     w.form.model,
		language:  w.form.language,
		hotkey:    w.form.hotkey.String(),
		recording: w.rec.active,
		recorded:  w.rec.preview(),
		status:    w.status,
		applying:  w.applying,
	}
}

func (w *Window) draw(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, colorBG, clip.Rect{Max: gtx.Constraints.Max}.Op())
	v := w.snapshot()
	th := material.NewTheme()

	sections := []layout.Widget{
		func(gtx layout.Context) layout.Dimensions { return w.drawAPIKeySection(gtx, th) },
		func(gtx layout.Context) layout.Dimensions { return w.drawModelSection(gtx, th, v) },
		func(gtx layout.Context) layout.Dimensions { return w.drawTranslationSection(gtx, th) },
		func(gtx layout.Context) layout.Dimensions { return w.drawHotkeySection(gtx, v) },
		func(gtx layout.Context) layout.Dimensions { return w.drawLanguageSection(gtx, v) },
	}

	return layout.UniformInset(unit.Dp(20)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return label(gtx, i18n.T("settings_title"), 22, colorText, font.Bold)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),

			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(th, &w.contentList).Layout(gtx, len(sections), func(gtx layout.Context, i int) layout.Dimensions {
					return layout.Inset{Bottom: unit.Dp(12)}.Layout(gtx, sections[i])
				})
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if v.status == "" {
					return layout.Dimensions{}
				}
				return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return label(gtx, i18n.T("settings_apply_failed")+": "+v.status, 12, colorError, font.Normal)
				})
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return w.drawButtons(gtx, v.applying)
			}),
		)
	})
}

func (w *Window) drawAPIKeySection(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return sectionHeader(gtx, i18n.T("settings_api_key"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawEditor(gtx, th, &w.apiKeyEd, "sk-or-...")
			}),
		)
	})
}

func (w *Window) drawModelSection(gtx layout.Context, th *material.Theme, v view) layout.Dimensions {
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return sectionHeader(gtx, i18n.T("settings_model"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				// список прокручивается отдельно от окна
				gtx.Constraints.Max.Y = gtx.Dp(unit.Dp(200))
				return material.List(th, &w.modelList).Layout(gtx, len(v.models), func(gtx layout.Context, i int) layout.Dimensions {
					m := v.models[i]
					return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return drawModelItem(gtx, v.modelBtns[m.ID], m, m.ID == v.model)
					})
				})
			}),
		)
	})
}

func drawModelItem(gtx layout.Context, btn *widget.Clickable, m models.ModelInfo, selected bool) layout.Dimensions {
	if btn == nil {
		return layout.Dimensions{}
	}

	bg := colorPanelLight
	if selected {
		bg = colorSelected
	}
	return withBackground(gtx, bg, 6, func(gtx layout.Context) layout.Dimensions {
		return material.Clickable(gtx, btn, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return drawRadio(gtx, selected)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
							layout.Rigid(func(gtx layout.Context) layout.Dimensions {
								return label(gtx, m.Name, 13, colorText, font.Medium)
							}),
							layout.Rigid(func(gtx layout.Context) layout.Dimensions {
								return label(gtx, m.ID, 10, colorTextDim, font.Normal)
							}),
						)
					}),
				)
			})
		})
	})
}

func (w *Window) drawTranslationSection(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return sectionHeader(gtx, i18n.T("settings_target"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawEditor(gtx, th, &w.targetEd, "English")
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				cb := material.CheckBox(th, &w.reasoning, i18n.T("settings_reasoning_label"))
				cb.Color = colorText
				cb.IconColor = colorAccent
				return cb.Layout(gtx)
			}),
		)
	})
}

func (w *Window) drawHotkeySection(gtx layout.Context, v view) layout.Dimensions {
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return sectionHeader(gtx, i18n.T("settings_hotkey"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return w.drawHotkeyField(gtx, v)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						if v.recording {
							return drawButton(gtx, &w.recordBtn, i18n.T("settings_hotkey_stop"), colorWarning, true)
						}
						return drawButton(gtx, &w.recordBtn, i18n.T("settings_hotkey_record"), colorAccent, true)
					}),
				)
			}),
		)
	})
}

// drawHotkeyField рисует поле записи и регистрирует его tag для фокуса.
func (w *Window) drawHotkeyField(gtx layout.Context, v view) layout.Dimensions {
	text, fg, bg := "⌨  "+v.hotkey, colorAccent, colorPanelLight
	if v.recording {
		text = i18n.T("settings_hotkey_press")
		if v.recorded != "" {
			text = v.recorded + "+..."
		}
		fg, bg = colorWarning, color.NRGBA{R: 78, G: 60, B: 22, A: 255}
	}

	dims := withBackground(gtx, bg, 8, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return label(gtx, text, 16, fg, font.Medium)
		})
	})

	area := clip.Rect{Max: dims.Size}.Push(gtx.Ops)
	event.Op(gtx.Ops, &w.recordTag)
	area.Pop()
	return dims
}

func (w *Window) drawLanguageSection(gtx layout.Context, v view) layout.Dimensions {
	langs := i18n.AvailableLanguages()
	return drawPanel(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return sectionHeader(gtx, i18n.T("settings_ui_language"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				children := make([]layout.FlexChild, 0, len(langs)*2)
				for _, lang := range langs {
					lang := lang
					bg := colorPanelLight
					if lang == v.language {
						bg = colorAccent
					}
					children = append(children,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return drawButton(gtx, w.langBtns[lang], i18n.LanguageName(lang), bg, true)
						}),
						layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					)
				}
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx, children...)
			}),
		)
	})
}

func (w *Window) drawButtons(gtx layout.Context, applying bool) layout.Dimensions {
	applyBG := colorAccent
	if applying {
		applyBG = colorPanel
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Dimensions{}
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawButton(gtx, &w.cancelBtn, i18n.T("settings_cancel"), colorPanel, true)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawButton(gtx, &w.applyBtn, i18n.T("settings_apply"), applyBG, !applying)
		}),
	)
}

func label(gtx layout.Context, text string, size float32, fg color.NRGBA, weight font.Weight) layout.Dimensions {
	th := material.NewTheme()
	th.Palette.Fg = fg
	lbl := material.Label(th, unit.Sp(size), text)
	lbl.Font.Weight = weight
	return lbl.Layout(gtx)
}

func sectionHeader(gtx layout.Context, text string) layout.Dimensions {
	return label(gtx, text, 12, colorTextDim, font.Medium)
}

func drawEditor(gtx layout.Context, th *material.Theme, ed *widget.Editor, hint string) layout.Dimensions {
	return withBackground(gtx, colorPanelLight, 6, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			e := material.Editor(th, ed, hint)
			e.Color = colorText
			e.HintColor = colorTextDim
			return e.Layout(gtx)
		})
	})
}

func drawPanel(gtx layout.Context, content layout.Widget) layout.Dimensions {
	return withBackground(gtx, colorPanel, 12, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(16)).Layout(gtx, content)
	})
}

func drawButton(gtx layout.Context, btn *widget.Clickable, text string, bg color.NRGBA, enabled bool) layout.Dimensions {
	fg := colorText
	if !enabled {
		fg = colorTextDim
	}
	return withBackground(gtx, bg, 8, func(gtx layout.Context) layout.Dimensions {
		return material.Clickable(gtx, btn, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{
				Top: unit.Dp(10), Bottom: unit.Dp(10),
				Left: unit.Dp(18), Right: unit.Dp(18),
			}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return label(gtx, text, 14, fg, font.Medium)
			})
		})
	})
}

// withBackground рисует содержимое поверх скруглённой подложки его размера.
func withBackground(gtx layout.Context, bg color.NRGBA, radius unit.Dp, content layout.Widget) layout.Dimensions {
	macro := op.Record(gtx.Ops)
	dims := content(gtx)
	call := macro.Stop()

	rr := gtx.Dp(radius)
	rect := clip.RRect{
		Rect: image.Rectangle{Max: dims.Size},
		NE:   rr, NW: rr, SE: rr, SW: rr,
	}
	paint.FillShape(gtx.Ops, bg, rect.Op(gtx.Ops))
	call.Add(gtx.Ops)
	return dims
}

func drawRadio(gtx layout.Context, selected bool) layout.Dimensions {
	size := gtx.Dp(unit.Dp(16))
	border := gtx.Dp(unit.Dp(2))

	outer, inner := colorTextDim, colorPanelLight
	innerR := size/2 - border
	if selected {
		outer, inner = colorAccent, colorText
		innerR = size/2 - border*2
	}

	c := size / 2
	paint.FillShape(gtx.Ops, outer, clip.Ellipse{Max: image.Pt(size, size)}.Op(gtx.Ops))
	paint.FillShape(gtx.Ops, inner, clip.Ellipse{
		Min: image.Pt(c-innerR, c-innerR),
		Max: image.Pt(c+innerR, c+innerR),
	}.Op(gtx.Ops))
	return layout.Dimensions{Size: image.Pt(size, size)}
}
