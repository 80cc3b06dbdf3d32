package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/itohio/gogeiger/pkg/sim"
)

// runHeadless runs the simulation until duration elapses or the process is
// interrupted, logging the appliance state once per simulated second.
func runHeadless(s *sim.Sim, duration time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	s.OnUpdate(secondLogger(log))

	if err := s.Run(ctx); err != nil {
		return err
	}

	st := s.Status()
	log.WithFields(logrus.Fields{
		"elapsed":  st.Elapsed.Truncate(time.Millisecond),
		"detected": st.Detected,
		"missed":   st.Missed,
		"beeps":    st.Beeps,
		"late":     st.Diagnostics.LateTasks,
	}).Info("Run finished")
	return nil
}

// secondLogger returns a status callback that logs when the appliance's
// seconds counter advances. It runs on the simulator's main loop only.
func secondLogger(l logrus.FieldLogger) func(sim.Status) {
	var last uint32
	return func(st sim.Status) {
		if st.Seconds == last {
			return
		}
		last = st.Seconds
		l.WithFields(statusFields(st)).Info(st.Lines[0])
	}
}

func statusFields(st sim.Status) logrus.Fields {
	return logrus.Fields{
		"t":     st.Seconds,
		"cpm":   st.CPM,
		"volts": st.Voltage,
		"tube":  int32(st.TubeVolts),
		"duty":  st.DutyPercent,
		"dose":  doseText(st.Dose, st.Milli),
	}
}

// doseText renders a dose in hundredths the way the LCD does.
func doseText(hundredths uint32, milli bool) string {
	unit := "uSv/h"
	if milli {
		unit = "mSv/h"
	}
	return fmt.Sprintf("%d.%02d%s", hundredths/100, hundredths%100, unit)
}
