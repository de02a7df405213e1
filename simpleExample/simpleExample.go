/*
Simple example how to read single PMS7003 sensor in active mode

Retry policy is here, library does not retry.
Checksum, framing and timeout errors are retried until too many in row. IO errors stop right away
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hjkoskel/listserialports"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"pms7003"
	"pms7003/promexport"
)

const (
	flagDevice   = "device"
	flagBaud     = "baud"
	flagTimeout  = "timeout"
	flagBackend  = "backend"
	flagCount    = "count"
	flagRetries  = "retries"
	flagTextfile = "textfile"
	flagJSON     = "json"
	flagVerbose  = "verbose"
)

// What reading loop needs from sensor
type reader interface {
	Read() (pms7003.Reading, error)
	Stats() pms7003.Stats
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pms7003",
		Usage: "read particulate matter from PMS7003 sensor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagDevice, Aliases: []string{"s"}, EnvVars: []string{"PMS7003_DEVICE"}, Usage: "serial device file, lists ports if empty"},
			&cli.IntFlag{Name: flagBaud, Value: pms7003.DEFAULTBAUD, Usage: "baud rate"},
			&cli.DurationFlag{Name: flagTimeout, Value: pms7003.DEFAULTTIMEOUT, Usage: "read timeout"},
			&cli.StringFlag{Name: flagBackend, Value: string(pms7003.DefaultBackend()), Usage: "serial backend termios, tarm or term"},
			&cli.IntFlag{Name: flagCount, Aliases: []string{"n"}, Value: 0, Usage: "stop after this many readings, 0=forever"},
			&cli.IntFlag{Name: flagRetries, Value: 5, Usage: "max failed reads in row before giving up"},
			&cli.StringFlag{Name: flagTextfile, Usage: "write prometheus metrics to this file after each read (node_exporter textfile collector)"},
			&cli.BoolFlag{Name: flagJSON, Usage: "print readings as json lines"},
			&cli.BoolFlag{Name: flagVerbose, Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Set(color.FgRed)
		fmt.Printf("ERR=%v\n", err.Error())
		color.Unset()
		os.Exit(-1)
	}
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func listPorts() error {
	fmt.Printf("Please define serial device. (-h for help)\nList of serial ports\n")
	proped, errProbing := listserialports.Probe(false)
	if errProbing != nil {
		return errors.Wrap(errProbing, "probing serial ports")
	}
	for _, ser := range proped {
		fmt.Print(ser.ToPrintoutFormat())
	}
	return nil
}

func run(c *cli.Context) error {
	device := c.String(flagDevice)
	if device == "" {
		return listPorts()
	}
	backend, err := pms7003.ParseBackend(c.String(flagBackend))
	if err != nil {
		return err
	}
	logger := newLogger(c.Bool(flagVerbose))

	var exporter *promexport.Exporter
	textfile := c.String(flagTextfile)
	if textfile != "" {
		exporter = promexport.New()
	}
	deviceLabel := filepath.Base(device)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printJSON := c.Bool(flagJSON)
	onReading := func(r pms7003.Reading) {
		if printJSON {
			b, errMarsh := json.Marshal(r)
			if errMarsh != nil {
				logger.Errorf("marshal error %v", errMarsh)
				return
			}
			fmt.Printf("%s\n", b)
		} else {
			color.Set(color.FgHiYellow)
			fmt.Printf("%v %v\n", time.Now().Format(time.RFC3339), r.ToString())
			color.Unset()
		}
		if exporter != nil {
			exporter.Observe(deviceLabel, r)
		}
	}
	onError := func(err error) {
		logger.WithField("device", device).Warnf("read failed: %v", err)
		if exporter != nil {
			exporter.ObserveError(deviceLabel, err)
		}
	}
	afterRead := func() {
		if exporter == nil {
			return
		}
		if errWrite := exporter.WriteTextfile(textfile); errWrite != nil {
			logger.Errorf("metrics: %v", errWrite)
		}
	}

	return pms7003.With(device, func(s *pms7003.Sensor) error {
		logger.Infof("reading %v", device)
		errLoop := readLoop(ctx, s, loopSettings{
			count:     c.Int(flagCount),
			retries:   c.Int(flagRetries),
			onReading: onReading,
			onError:   onError,
			afterRead: afterRead,
		})
		logger.Infof("stats %#v", s.Stats())
		return errLoop
	},
		pms7003.WithBaud(c.Int(flagBaud)),
		pms7003.WithTimeout(c.Duration(flagTimeout)),
		pms7003.WithBackend(backend),
		pms7003.WithLogger(logger),
	)
}

type loopSettings struct {
	count     int //0=forever
	retries   int //failures in row allowed
	onReading func(pms7003.Reading)
	onError   func(error)
	afterRead func()
}

func readLoop(ctx context.Context, sensor reader, settings loopSettings) error {
	got := 0
	failedInRow := 0
	for settings.count == 0 || got < settings.count {
		if ctx.Err() != nil {
			return nil //Interrupted is normal exit
		}
		r, err := sensor.Read()
		if err == nil {
			failedInRow = 0
			got++
			if settings.onReading != nil {
				settings.onReading(r)
			}
		} else {
			if settings.onError != nil {
				settings.onError(err)
			}
			if !pms7003.Retryable(err) {
				return err
			}
			failedInRow++
			if settings.retries < failedInRow {
				return errors.Wrapf(err, "giving up after %v failed reads in row", failedInRow)
			}
		}
		if settings.afterRead != nil {
			settings.afterRead()
		}
	}
	return nil
}
