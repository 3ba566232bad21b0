package main

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/barometer/cmd/baro/console"
	"github.com/mklimuk/barometer/pressure"
)

var registerCmd = cli.Command{
	Name:  "register",
	Usage: "access sensor configuration registers",
	Subcommands: cli.Commands{
		&registerSetCmd,
	},
}

var registerSetCmd = cli.Command{
	Name:      "set",
	Usage:     "write a configuration register",
	ArgsUsage: "<register> <value> (hex)",
	Flags:     adapterFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exit(1, "expected 2 arguments, got %d", c.NArg())
		}
		reg, err := hex.DecodeString(c.Args().Get(0))
		if err != nil || len(reg) != 1 {
			return console.Exit(1, "could not decode register address: %v", err)
		}
		value, err := hex.DecodeString(c.Args().Get(1))
		if err != nil || len(value) != 1 {
			return console.Exit(1, "could not decode register value: %v", err)
		}

		answer, err := console.YesOrNo("write register on the device?")
		if err != nil {
			return console.Exit(1, "prompt error: %v", err)
		}
		if answer != console.Yes {
			console.Print("aborted")
			return nil
		}

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
		err = s.SetRegister(ctx, reg[0], value[0])
		if errors.Is(err, pressure.ErrRegisterNotWritable) {
			return console.Exit(1, "%s %s", console.PictoStop, console.Red(err))
		}
		if err != nil {
			return console.Exit(1, "register write error: %s", console.Red(err))
		}
		console.Printf("%s wrote %#x to register %#x\n", console.PictoPin, value[0], reg[0])
		return nil
	},
}
