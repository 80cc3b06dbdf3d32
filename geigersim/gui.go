package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"

	"github.com/itohio/gogeiger/pkg/config"
	"github.com/itohio/gogeiger/pkg/lcdview"
	"github.com/itohio/gogeiger/pkg/sim"
	"github.com/itohio/gogeiger/pkg/trend"
)

// sliderDecades is the range of the logarithmic activity slider.
const sliderDecades = 4.5

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	sim     *sim.Sim
	history *trend.History

	window      fyne.Window
	lcdView     *lcdview.Widget
	chart       *trend.Widget
	statusLabel *widget.Label
	activity    *widget.Label

	// Throttling for UI updates
	lastStatus time.Time
	lastChart  time.Time
	updateMu   sync.Mutex
}

func runGUI(cfg *config.Config, cfgPath string, s *sim.Sim) {
	application := app.NewWithID("com.itohio.gogeiger")

	window := application.NewWindow("Geiger Counter")
	window.Resize(fyne.NewSize(900, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:         cfg,
		cfgPath:     cfgPath,
		sim:         s,
		history:     trend.NewHistory(cfg.Trend.Window),
		window:      window,
		lcdView:     lcdview.New(),
		chart:       trend.NewWidget(cfg.Trend.Window, cfg.Trend.MaxPoints),
		statusLabel: widget.NewLabel(""),
		activity:    widget.NewLabel(""),
	}

	toolbar := createToolbar(state)
	window.SetContent(container.NewBorder(
		container.NewVBox(toolbar, state.lcdView),
		state.statusLabel,
		nil,
		nil,
		state.chart,
	))

	state.connect()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Run(ctx); err != nil {
			log.WithError(err).Error("Simulation failed")
		}
	}()
	window.SetOnClosed(func() {
		cancel()
		<-done
	})

	window.ShowAndRun()
}

// connect routes simulator updates into the history and the widgets. UI
// updates are throttled to about 30 frames per second of wall clock time.
func (state *appState) connect() {
	const (
		statusInterval = 33 * time.Millisecond
		chartInterval  = 100 * time.Millisecond
	)

	state.sim.OnUpdate(func(st sim.Status) {
		state.history.Add(trend.Point{
			Time:        st.Elapsed,
			CPM:         st.CPM,
			Voltage:     st.Voltage,
			TubeVolts:   st.TubeVolts,
			DutyPercent: st.DutyPercent,
		})

		if !state.due(&state.lastStatus, statusInterval) {
			return
		}
		lines := st.Lines
		text := statusText(st)
		fyne.Do(func() {
			state.lcdView.SetLines(lines)
			state.statusLabel.SetText(text)
		})
	})

	state.history.OnUpdate(func(points []trend.Point) {
		if !state.due(&state.lastChart, chartInterval) {
			return
		}
		fyne.Do(func() {
			state.chart.UpdateData(points)
		})
	})
}

func (state *appState) due(last *time.Time, interval time.Duration) bool {
	state.updateMu.Lock()
	defer state.updateMu.Unlock()
	now := time.Now()
	if now.Sub(*last) < interval {
		return false
	}
	*last = now
	return true
}

// createToolbar creates the settings button and the source activity slider.
func createToolbar(state *appState) fyne.CanvasObject {
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	slider := widget.NewSlider(0, sliderDecades)
	slider.Step = 0.01
	slider.SetValue(float64(cpmToSlider(state.cfg.Sim.SourceCPM)))
	state.activity.SetText(activityText(state.cfg.Sim.SourceCPM))
	slider.OnChanged = func(v float64) {
		cpm := sliderToCPM(float32(v))
		state.activity.SetText(activityText(cpm))
	}
	slider.OnChangeEnded = func(v float64) {
		cpm := sliderToCPM(float32(v))
		state.cfg.Sim.SourceCPM = cpm
		state.sim.SetSourceCPM(cpm)
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(settingsBtn, widget.NewLabel("Source")),
		state.activity,
		slider,
	)
}

// sliderToCPM maps a slider position onto 0..10^sliderDecades-1 CPM.
func sliderToCPM(v float32) float32 {
	return math32.Round(math32.Pow(10, v) - 1)
}

func cpmToSlider(cpm float32) float32 {
	return min(math32.Log10(max(cpm, 0)+1), sliderDecades)
}

func activityText(cpm float32) string {
	return fmt.Sprintf("%6.0f cpm", cpm)
}

func statusText(st sim.Status) string {
	return fmt.Sprintf("t=%s  tube=%.1fV  detected=%d  missed=%d  beeps=%d  late=%d  out-of-range=%d  lcd-errors=%d",
		st.Elapsed.Truncate(time.Second),
		st.TubeVolts,
		st.Detected,
		st.Missed,
		st.Beeps,
		st.Diagnostics.LateTasks,
		st.Diagnostics.OutOfRange,
		st.Diagnostics.DisplayErrors,
	)
}
