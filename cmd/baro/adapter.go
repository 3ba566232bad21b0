package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/barometer"
	"github.com/mklimuk/barometer/adapter"
	i2cbus "github.com/mklimuk/barometer/i2c"
)

var adapterFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Value:   "mcp2221",
		Usage:   "transport adapter: mcp2221, periph or nanopi",
	},
	&cli.StringFlag{
		Name:  "bus",
		Value: "1",
		Usage: "i2c bus name (periph) or number (nanopi)",
	},
	&cli.StringFlag{
		Name:  "address",
		Value: "60",
		Usage: "sensor i2c address (hex)",
	},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
}

func openBus(c *cli.Context) (barometer.I2CBus, error) {
	switch c.String("adapter") {
	case "mcp2221":
		return adapter.NewMCP2221(), nil
	case "periph":
		return i2cbus.NewGenericBus(c.String("bus"))
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		busNr, err := strconv.Atoi(c.String("bus"))
		if err != nil {
			return nil, fmt.Errorf("invalid bus number %q: %w", c.String("bus"), err)
		}
		return adapter.NewGobotBus(npi, busNr), nil
	}
	return nil, fmt.Errorf("unknown adapter %q", c.String("adapter"))
}

func sensorAddress(c *cli.Context) (byte, error) {
	addr, err := strconv.ParseUint(c.String("address"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid sensor address %q: %w", c.String("address"), err)
	}
	return byte(addr), nil
}
