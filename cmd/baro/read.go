package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/barometer/cmd/baro/console"
	"github.com/mklimuk/barometer/pressure"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read barometric pressure and temperature",
	Flags: adapterFlags,
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))

		bus, err := openBus(c)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer func() { _ = bus.Release(ctx) }()

		addr, err := sensorAddress(c)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		s := pressure.NewMPL115A2(bus, pressure.WithAddress(addr))
		m, err := s.GetPressTemp(ctx)
		if err != nil {
			return console.Exit(1, "error getting pressure read: %s", console.Red(err))
		}
		console.Printf("%s %s kPa\n%s  %s °C\n",
			console.PictoPressure, console.White(m.PressureKPa),
			console.PictoThermometer, console.White(m.TemperatureC))
		return nil
	},
}
