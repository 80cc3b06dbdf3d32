package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gogeiger/pkg/lcd"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSimulationTab(state),
		createRegulatorTab(state),
		createTasksTab(state),
		createLCDTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// save writes the configuration. Everything except the source activity is
// read once at start up, so the user is told to restart.
func (state *appState) save(restart bool) {
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	log.WithField("file", state.cfgPath).Info("Configuration saved")
	if restart {
		dialog.ShowInformation("Settings", "Restart the simulator to apply the new settings.", state.window)
	}
}

func floatEntry(v float32, prec int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(float64(v), 'f', prec, 32))
	return e
}

func uintEntry(v uint32) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatUint(uint64(v), 10))
	return e
}

func intEntry(v int64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatInt(v, 10))
	return e
}

func durationEntry(v time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(v.String())
	return e
}

func parseFloat32(e *widget.Entry, dst *float32) {
	if v, err := strconv.ParseFloat(e.Text, 32); err == nil {
		*dst = float32(v)
	}
}

func parseUint32(e *widget.Entry, dst *uint32) {
	if v, err := strconv.ParseUint(e.Text, 10, 32); err == nil {
		*dst = uint32(v)
	}
}

func parseInt32(e *widget.Entry, dst *int32) {
	if v, err := strconv.ParseInt(e.Text, 10, 32); err == nil {
		*dst = int32(v)
	}
}

func parseDuration(e *widget.Entry, dst *time.Duration) {
	if v, err := time.ParseDuration(e.Text); err == nil && v > 0 {
		*dst = v
	}
}

// createSimulationTab creates the simulated hardware tab.
func createSimulationTab(state *appState) *container.TabItem {
	c := &state.cfg.Sim

	sourceEntry := floatEntry(c.SourceCPM, 0)
	plateauEntry := floatEntry(c.PlateauVolts, 0)
	gainEntry := floatEntry(c.SupplyGain, 0)
	tauEntry := durationEntry(c.SupplyTau)
	noiseEntry := floatEntry(c.NoiseVolts, 2)
	speedEntry := floatEntry(c.Speed, 1)
	seedEntry := intEntry(c.Seed)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Source (cpm)", Widget: sourceEntry},
			{Text: "Plateau (V)", Widget: plateauEntry},
			{Text: "Supply Gain (V at 100%)", Widget: gainEntry},
			{Text: "Supply Time Constant", Widget: tauEntry},
			{Text: "Sensor Noise (V)", Widget: noiseEntry},
			{Text: "Speed (x real time)", Widget: speedEntry},
			{Text: "Random Seed", Widget: seedEntry},
		},
		OnSubmit: func() {
			parseFloat32(sourceEntry, &c.SourceCPM)
			c.SourceCPM = max(c.SourceCPM, 0)
			state.sim.SetSourceCPM(c.SourceCPM)

			parseFloat32(plateauEntry, &c.PlateauVolts)
			parseFloat32(gainEntry, &c.SupplyGain)
			parseDuration(tauEntry, &c.SupplyTau)
			parseFloat32(noiseEntry, &c.NoiseVolts)
			var speed float32
			parseFloat32(speedEntry, &speed)
			if speed > 0 {
				c.Speed = speed
			}
			if v, err := strconv.ParseInt(seedEntry.Text, 10, 64); err == nil {
				c.Seed = v
			}
			state.save(true)
		},
	}

	return container.NewTabItem("Simulation", form)
}

// createRegulatorTab creates the voltage regulator tab.
func createRegulatorTab(state *appState) *container.TabItem {
	c := &state.cfg.Geiger.Regulator

	targetEntry := intEntry(int64(c.TargetVolts))
	bandEntry := intEntry(int64(c.BandVolts))
	vrefEntry := floatEntry(c.VRef, 2)
	dividerEntry := floatEntry(c.DividerRatio, 1)
	divisorEntry := intEntry(int64(c.ErrorDivisor))
	minStepEntry := intEntry(int64(c.MinStep))
	maxStepEntry := intEntry(int64(c.MaxStep))
	doseEntry := uintEntry(state.cfg.Geiger.Display.DoseFactor)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Target (V)", Widget: targetEntry},
			{Text: "Dead Band (±V)", Widget: bandEntry},
			{Text: "ADC Reference (V)", Widget: vrefEntry},
			{Text: "Divider Ratio", Widget: dividerEntry},
			{Text: "Volts per Step", Widget: divisorEntry},
			{Text: "Min Step", Widget: minStepEntry},
			{Text: "Max Step", Widget: maxStepEntry},
			{Text: "Dose Factor (cpm/100 per uSv/h)", Widget: doseEntry},
		},
		OnSubmit: func() {
			parseInt32(targetEntry, &c.TargetVolts)
			parseInt32(bandEntry, &c.BandVolts)
			parseFloat32(vrefEntry, &c.VRef)
			parseFloat32(dividerEntry, &c.DividerRatio)
			parseInt32(divisorEntry, &c.ErrorDivisor)
			parseInt32(minStepEntry, &c.MinStep)
			parseInt32(maxStepEntry, &c.MaxStep)
			parseUint32(doseEntry, &state.cfg.Geiger.Display.DoseFactor)
			state.save(true)
		},
	}

	return container.NewTabItem("Regulator", form)
}

// createTasksTab creates the task period tab.
func createTasksTab(state *appState) *container.TabItem {
	c := &state.cfg.Geiger.Tasks

	cpmEntry := uintEntry(c.CPM)
	displayEntry := uintEntry(c.Display)
	beepEntry := uintEntry(c.Beep)
	voltageEntry := uintEntry(c.Voltage)
	windowEntry := durationEntry(state.cfg.Trend.Window)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "CPM Tick (ms)", Widget: cpmEntry},
			{Text: "Display Refresh (ms)", Widget: displayEntry},
			{Text: "Beep (ms, 0 = every pass)", Widget: beepEntry},
			{Text: "Voltage Regulation (ms)", Widget: voltageEntry},
			{Text: "Chart Window", Widget: windowEntry},
		},
		OnSubmit: func() {
			parseUint32(cpmEntry, &c.CPM)
			parseUint32(displayEntry, &c.Display)
			parseUint32(beepEntry, &c.Beep)
			parseUint32(voltageEntry, &c.Voltage)
			parseDuration(windowEntry, &state.cfg.Trend.Window)
			state.save(true)
		},
	}

	return container.NewTabItem("Tasks", form)
}

// createLCDTab creates the bench LCD tab.
func createLCDTab(state *appState) *container.TabItem {
	ports, err := lcd.Ports()
	if err != nil {
		log.WithError(err).Warn("Failed to list serial ports")
	}
	portOptions := []string{""}
	portMap := map[string]string{"": ""} // Map display name to actual port name

	for _, port := range ports {
		displayName := port.Name
		if port.Description != "" && port.Description != port.Name {
			displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
		}
		portOptions = append(portOptions, displayName)
		portMap[displayName] = port.Name
	}

	currentPort := state.cfg.LCD.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	portSelect.SetSelected(currentDisplay)
	baudEntry := intEntry(int64(state.cfg.LCD.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			selectedPort, ok := portMap[portSelect.Selected]
			if !ok {
				selectedPort = portSelect.Selected
			}
			state.cfg.LCD.Port = selectedPort
			if v, err := strconv.Atoi(baudEntry.Text); err == nil && v > 0 {
				state.cfg.LCD.BaudRate = v
			}
			state.save(true)
		},
	}

	return container.NewTabItem("Bench LCD", form)
}
