/*
PMS7003 simulator

Writes active mode frames to serial device. Test without sensor:

	socat -d -d pty,raw,echo=0 pty,raw,echo=0
	pms7003sim -s /dev/pts/3
	pms7003 -s /dev/pts/4
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
	"github.com/urfave/cli/v2"

	"pms7003"
)

func loadModel(filename string) (SensorModel, error) {
	model := DefaultSensorModel()
	if filename == "" {
		return model, nil
	}
	byt, errRead := os.ReadFile(filename)
	if errRead != nil {
		return model, errors.Wrap(errRead, "model reading error")
	}
	if errMarsh := json.Unmarshal(byt, &model); errMarsh != nil {
		return model, errors.Wrapf(errMarsh, "invalid model %v", filename)
	}
	return model, nil
}

func run(c *cli.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	model, errModel := loadModel(c.String("model"))
	if errModel != nil {
		return errModel
	}
	conn := model.Connectivity
	conn.IdleCharacters = conn.IdleCharacters || c.Bool("noise")
	conn.InvalidCRC = conn.InvalidCRC || c.Bool("bad-crc")
	model.Connectivity = conn

	port, errOpen := serial.OpenPort(&serial.Config{Name: c.String("device"), Baud: c.Int("baud")})
	if errOpen != nil {
		return errors.Wrapf(errOpen, "serial link fail %v", c.String("device"))
	}
	defer port.Close()

	color.Set(color.FgCyan)
	fmt.Printf("Single sensor PMS7003 SIM on %v model=%#v\n", c.String("device"), model)
	color.Unset()

	done := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		close(done)
	}()

	sim := NewSimSensor(model, port, logger, c.Int64("seed"))
	return sim.Run(done)
}

func main() {
	app := &cli.App{
		Name:  "pms7003sim",
		Usage: "simulate PMS7003 sensor on serial device",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "device", Aliases: []string{"s"}, Required: true, Usage: "serial device file"},
			&cli.IntFlag{Name: "baud", Value: pms7003.DEFAULTBAUD},
			&cli.StringFlag{Name: "model", Usage: "sensor model json file"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "noise random seed"},
			&cli.BoolFlag{Name: "noise", Usage: "line noise between frames"},
			&cli.BoolFlag{Name: "bad-crc", Usage: "send invalid checksums"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("SIM FAIL %v\n", err.Error())
		os.Exit(-1)
	}
}
