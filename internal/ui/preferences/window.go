package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the settings UI.
type Window struct {
	window        fyne.Window
	values        Values
	onSave        func(Values)
	preset        *widget.Select
	work          *widget.Entry
	shortBreak    *widget.Entry
	longBreak     *widget.Entry
	sessions      *widget.Entry
	autoBreaks    *widget.Check
	autoWork      *widget.Check
	sound         *widget.Check
	volume        *widget.Slider
	notifications *widget.Check
	startOnLogin  *widget.Check
	dailyTarget   *widget.Entry
	saveButton    *widget.Button
}

// New creates the settings window. onSave receives the edited values.
func New(app fyne.App, title string, values Values, onSave func(Values)) *Window {
	window := app.NewWindow(title + " Settings")
	prefs := &Window{
		window:        window,
		onSave:        onSave,
		work:          widget.NewEntry(),
		shortBreak:    widget.NewEntry(),
		longBreak:     widget.NewEntry(),
		sessions:      widget.NewEntry(),
		autoBreaks:    widget.NewCheck("Start breaks automatically", nil),
		autoWork:      widget.NewCheck("Start focus sessions automatically", nil),
		sound:         widget.NewCheck("Play a chime", nil),
		volume:        widget.NewSlider(0, 100),
		notifications: widget.NewCheck("Desktop notifications", nil),
		startOnLogin:  widget.NewCheck("Start on login", nil),
		dailyTarget:   widget.NewEntry(),
	}
	prefs.volume.Step = 5
	prefs.preset = widget.NewSelect(PresetOptions(), prefs.presetChanged)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Preset", prefs.preset),
			widget.NewFormItem("Focus (min)", prefs.work),
			widget.NewFormItem("Short break (min)", prefs.shortBreak),
			widget.NewFormItem("Long break (min)", prefs.longBreak),
			widget.NewFormItem("Sessions before long break", prefs.sessions),
		),
		prefs.autoBreaks,
		prefs.autoWork,
		widget.NewLabelWithStyle("Notifications", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.notifications,
		prefs.sound,
		widget.NewForm(widget.NewFormItem("Volume", prefs.volume)),
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.startOnLogin,
		widget.NewForm(widget.NewFormItem("Daily goal (pomodoros)", prefs.dailyTarget)),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(420, 560))

	prefs.SetValues(values)
	return prefs
}

// Show displays the settings window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetValues replaces the form contents.
func (prefs *Window) SetValues(values Values) {
	prefs.values = values
	prefs.work.SetText(values.WorkMinutes)
	prefs.shortBreak.SetText(values.ShortBreakMinutes)
	prefs.longBreak.SetText(values.LongBreakMinutes)
	prefs.sessions.SetText(values.SessionsBeforeLong)
	prefs.preset.SetSelected(values.Preset)
	prefs.autoBreaks.SetChecked(values.AutoStartBreaks)
	prefs.autoWork.SetChecked(values.AutoStartWork)
	prefs.sound.SetChecked(values.SoundEnabled)
	prefs.volume.SetValue(values.Volume)
	prefs.notifications.SetChecked(values.NotificationsEnabled)
	prefs.startOnLogin.SetChecked(values.StartOnLogin)
	prefs.dailyTarget.SetText(values.DailyTarget)
}

// Duration entries are only editable for the custom preset.
func (prefs *Window) presetChanged(name string) {
	entries := []*widget.Entry{prefs.work, prefs.shortBreak, prefs.longBreak, prefs.sessions}
	if name == CustomPreset {
		for _, entry := range entries {
			entry.Enable()
		}
		return
	}
	for _, entry := range entries {
		entry.Disable()
	}
	values, ok := presetValues(name)
	if !ok {
		return
	}
	prefs.work.SetText(values.WorkMinutes)
	prefs.shortBreak.SetText(values.ShortBreakMinutes)
	prefs.longBreak.SetText(values.LongBreakMinutes)
	prefs.sessions.SetText(values.SessionsBeforeLong)
}

func (prefs *Window) handleSave() {
	values := Values{
		Preset:               prefs.preset.Selected,
		WorkMinutes:          prefs.work.Text,
		ShortBreakMinutes:    prefs.shortBreak.Text,
		LongBreakMinutes:     prefs.longBreak.Text,
		SessionsBeforeLong:   prefs.sessions.Text,
		AutoStartBreaks:      prefs.autoBreaks.Checked,
		AutoStartWork:        prefs.autoWork.Checked,
		SoundEnabled:         prefs.sound.Checked,
		Volume:               prefs.volume.Value,
		NotificationsEnabled: prefs.notifications.Checked,
		StartOnLogin:         prefs.startOnLogin.Checked,
		DailyTarget:          prefs.dailyTarget.Text,
	}
	prefs.values = values
	if prefs.onSave != nil {
		prefs.onSave(values)
	}
	prefs.window.Hide()
}
