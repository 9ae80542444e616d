package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mousephone/client/internal/app"
	"github.com/mousephone/client/internal/motion"
	"github.com/mousephone/client/internal/orientation"
	"github.com/mousephone/client/internal/session"
)

// runTUI starts the interactive trackpad. The alternate screen owns the
// terminal, so logs go to the configured file.
func runTUI(cmd *cobra.Command, f globalFlags) error {
	e, err := newEngine(cmd, f, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	cfg := e.cfg

	src, err := orientation.Open(orientation.Settings{
		Kind:           cfg.Sensor.Source,
		Path:           cfg.Sensor.Path,
		RateHz:         cfg.Sensor.RateHz,
		SweepAmplitude: cfg.Sensor.SweepAmplitude,
		SweepPeriod:    cfg.Sensor.SweepPeriod,
	}, e.log)
	if err != nil {
		return err
	}
	manual, _ := src.(*orientation.Manual)

	machine := session.NewMachine(e.channel, e.log)
	go machine.Run(ctx)
	defer machine.Close()
	machine.SetTarget(cfg.Server.Host, cfg.Server.Port)

	transform := motion.New(cfg.Motion.Sensitivity, cfg.Motion.Threshold)
	gyro := orientation.NewAdapter(src, transform, e.channel, e.log)
	defer gyro.Disable()

	m := app.New(app.Deps{
		Machine:   machine,
		Channel:   e.channel,
		Gyro:      gyro,
		Manual:    manual,
		Transform: transform,
		TiltStep:  cfg.Sensor.TiltStep,
		Log:       e.log,
	})

	e.log.Info().
		Str("source", cfg.Sensor.Source).
		Str("target", cfg.Server.Host+":"+cfg.Server.Port).
		Msg("starting")

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
