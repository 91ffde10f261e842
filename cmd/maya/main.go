// Copyright 2018-2019 The logrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/jrivets/log4g"
	"github.com/logrange/maya/pkg/maya"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v2"
)

const (
	Version = "0.1.0"
)

const (
	// Common flag names
	argLogCfgFile = "log-config-file"
	argCfgFile    = "config-file"
	argEnvFile    = "env-file"
	argTimezone   = "timezone"
	argDayFirst   = "day-first"
	argPrefer     = "prefer"
	argFormat     = "format"

	// Interval commands flag names
	argChunk     = "chunk"
	argRemainder = "remainder"
	argGrid      = "grid"
	argSnapOut   = "snap-out"
	argStep      = "step"
	argInput     = "input"
	argStats     = "stats"

	envPrefix = "MAYA_"
)

var (
	log    = log4g.GetLogger("maya")
	cfg    = maya.GetDefaultConfig()
	parser *maya.Parser
)

// main is the entry point for the 'maya' command. It groups the library
// functionality in one executable:
//
//	now, parse, when 	- print date-times in different formats
//	split, quantize		- interval operations
//	intervals			- generate date-times between two bounds
//	flatten 			- merge logfmt interval records read from a file or stdin
//	shell 				- interactive mode
func main() {
	defer log4g.Shutdown()

	fmtFlag := &cli.StringFlag{
		Name:  argFormat,
		Usage: "output format: iso, rfc2822, rfc3339, epoch, slang or go layout",
		Value: "iso",
	}

	app := &cli.App{
		Name:    "maya",
		Version: Version,
		Usage:   "Datetimes for humans",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  argLogCfgFile,
				Usage: "The log4g configuration file name",
			},
			&cli.StringFlag{
				Name:  argCfgFile,
				Usage: "The maya configuration file name",
			},
			&cli.StringFlag{
				Name:  argEnvFile,
				Usage: "The file with " + envPrefix + "* variables",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  argTimezone,
				Usage: "IANA timezone for values without a zone and for counting days",
			},
			&cli.BoolFlag{
				Name:  argDayFirst,
				Usage: "read 01/05/2016 as 1st of May",
			},
			&cli.StringFlag{
				Name:  argPrefer,
				Usage: "current, past or future, which date a bare weekday refers to",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			&cli.Command{
				Name:   "now",
				Usage:  "print the current date-time",
				Action: runNow,
				Flags:  []cli.Flag{fmtFlag},
			},
			&cli.Command{
				Name:      "parse",
				Usage:     "parse a machine produced date-time, e.g. 2016-10-01T14:30:00+05:30",
				ArgsUsage: "<value>",
				Action:    runParse,
				Flags:     []cli.Flag{fmtFlag},
			},
			&cli.Command{
				Name:      "when",
				Usage:     "parse a date-time written by people, e.g. \"tomorrow at 5pm\"",
				ArgsUsage: "<value>",
				Action:    runWhen,
				Flags:     []cli.Flag{fmtFlag},
			},
			&cli.Command{
				Name:      "split",
				Usage:     "split an ISO 8601 interval into chunks",
				ArgsUsage: "<interval>",
				Action:    runSplit,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argChunk,
						Usage: "chunk duration, e.g. 1h, 1d12h or PT90M",
						Value: "1h",
					},
					&cli.BoolFlag{
						Name:  argRemainder,
						Usage: "include the last chunk, if it is shorter",
					},
				},
			},
			&cli.Command{
				Name:      "quantize",
				Usage:     "snap an ISO 8601 interval to a grid",
				ArgsUsage: "<interval>",
				Action:    runQuantize,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argGrid,
						Usage: "grid duration, e.g. 15m or 1d",
						Value: "1h",
					},
					&cli.BoolFlag{
						Name:  argSnapOut,
						Usage: "grow the interval to the grid, instead of shrinking it",
					},
				},
			},
			&cli.Command{
				Name:      "intervals",
				Usage:     "print date-times from start (inclusive) to end (exclusive)",
				ArgsUsage: "<start> <end>",
				Action:    runIntervals,
				Flags: []cli.Flag{
					fmtFlag,
					&cli.StringFlag{
						Name:  argStep,
						Usage: "the step duration",
						Value: "1d",
					},
				},
			},
			&cli.Command{
				Name:   "flatten",
				Usage:  "merge overlapping logfmt interval records, e.g. start=... end=...",
				Action: runFlatten,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argInput,
						Usage: "the file to read records from, stdin if empty",
					},
					&cli.BoolFlag{
						Name:  argStats,
						Usage: "print the coverage statistics",
					},
				},
			},
			&cli.Command{
				Name:   "shell",
				Usage:  "run the interactive shell",
				Action: runShell,
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func before(c *cli.Context) error {
	logCfgFile := c.String(argLogCfgFile)
	if logCfgFile != "" {
		if _, err := os.Stat(logCfgFile); os.IsNotExist(err) {
			log.Warn("No file ", logCfgFile, " will use default log4g configuration")
		} else {
			log.Info("Loading log4g config from ", logCfgFile)
			err := log4g.ConfigF(logCfgFile)
			if err != nil {
				err := errors.Wrapf(err, "Could not parse %s file as a log4g configuration, please check syntax ", logCfgFile)
				log.Fatal(err)
				return err
			}
		}
	}

	// file settings go first, the environment and flags overwrite them
	fc, err := maya.ReadConfigFromFile(c.String(argCfgFile))
	if err != nil {
		return err
	}
	cfg.Apply(fc)

	ec, err := configFromEnv(c.String(argEnvFile))
	if err != nil {
		return err
	}
	cfg.Apply(ec)
	applyParamsToCfg(c)

	parser, err = maya.NewParser(cfg)
	return err
}

// configFromEnv reads MAYA_* variables, the env file values don't overwrite
// the variables which are already set.
func configFromEnv(envFile string) (*maya.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "could not load env file %s", envFile)
		}
	}

	params := make(map[string]interface{})
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		kvs := strings.SplitN(kv[len(envPrefix):], "=", 2)
		if len(kvs) != 2 {
			continue
		}
		k := strings.ToLower(kvs[0])
		if k == "formats" {
			params[k] = strings.Split(kvs[1], ";")
			continue
		}
		params[k] = kvs[1]
	}
	if len(params) == 0 {
		return nil, nil
	}
	log.Debug("Config params from environment ", params)
	return maya.ConfigFromMap(params)
}

func applyParamsToCfg(c *cli.Context) {
	if tz := c.String(argTimezone); tz != "" {
		cfg.Timezone = tz
	}
	if c.Bool(argDayFirst) {
		cfg.DayFirst = true
	}
	if p := c.String(argPrefer); p != "" {
		cfg.Prefer = p
	}
}

func runNow(c *cli.Context) error {
	fmt.Println(formatDT(maya.Now(), c.String(argFormat)))
	return nil
}

func runParse(c *cli.Context) error {
	v, err := oneArg(c)
	if err != nil {
		return err
	}
	dt, err := parser.Parse(v)
	if err != nil {
		return err
	}
	fmt.Println(formatDT(dt, c.String(argFormat)))
	return nil
}

func runWhen(c *cli.Context) error {
	v, err := oneArg(c)
	if err != nil {
		return err
	}
	dt, err := parser.When(v)
	if err != nil {
		return err
	}
	fmt.Println(formatDT(dt, c.String(argFormat)))
	return nil
}

func runSplit(c *cli.Context) error {
	v, err := oneArg(c)
	if err != nil {
		return err
	}
	iv, err := parser.ParseInterval(v)
	if err != nil {
		return err
	}
	chunk, err := maya.ParseDuration(c.String(argChunk))
	if err != nil {
		return err
	}
	it, err := iv.Split(chunk, c.Bool(argRemainder))
	if err != nil {
		return err
	}
	for iv := range it.Seq() {
		fmt.Println(iv.ISO8601())
	}
	return nil
}

func runQuantize(c *cli.Context) error {
	v, err := oneArg(c)
	if err != nil {
		return err
	}
	iv, err := parser.ParseInterval(v)
	if err != nil {
		return err
	}
	grid, err := maya.ParseDuration(c.String(argGrid))
	if err != nil {
		return err
	}
	res, err := iv.Quantize(grid, c.Bool(argSnapOut), parser.Location())
	if err != nil {
		return err
	}
	fmt.Println(res.ISO8601())
	return nil
}

func runIntervals(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expecting <start> <end>, but got %v", c.Args().Slice())
	}
	start, err := parseAny(c.Args().Get(0))
	if err != nil {
		return err
	}
	end, err := parseAny(c.Args().Get(1))
	if err != nil {
		return err
	}
	step, err := maya.ParseDuration(c.String(argStep))
	if err != nil {
		return err
	}
	it, err := maya.Intervals(start, end, step)
	if err != nil {
		return err
	}
	frmt := c.String(argFormat)
	for dt := range it.Seq() {
		fmt.Println(formatDT(dt, frmt))
	}
	return nil
}

func runFlatten(c *cli.Context) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("no arguments expected, but %s", c.Args())
	}

	var r io.Reader = os.Stdin
	if fn := c.String(argInput); fn != "" {
		f, err := os.Open(fn)
		if err != nil {
			return errors.Wrapf(err, "could not open %s", fn)
		}
		defer f.Close()
		r = f
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyOnIntTermSignal(cancel)

	ivs, err := parser.NewRecordReader(r).ReadAll(ctx)
	if err != nil {
		return err
	}

	if !c.Bool(argStats) {
		for _, iv := range maya.Flatten(ivs) {
			fmt.Println(iv.ISO8601())
		}
		return nil
	}

	s := maya.Summarize(ivs)
	for _, iv := range s.Spans {
		fmt.Println(iv.ISO8601())
	}
	fmt.Printf("\nintervals: %s, spans: %s, gaps: %s\n", humanize.Comma(int64(s.Count)),
		humanize.Comma(int64(len(s.Spans))), humanize.Comma(int64(len(s.Gaps))))
	fmt.Printf("covered: %s, mean: %s, median: %s, max: %s\n\n", s.Covered, s.Mean, s.Median, s.Max)
	return nil
}

func runShell(c *cli.Context) error {
	newShell(parser, historyFilePath()).run()
	return nil
}

func oneArg(c *cli.Context) (string, error) {
	if c.Args().Len() == 0 {
		return "", fmt.Errorf("expecting one argument")
	}
	// unquoted human values come as several args: maya when next friday
	return strings.Join(c.Args().Slice(), " "), nil
}

func parseAny(s string) (maya.DT, error) {
	if dt, err := parser.Parse(s); err == nil {
		return dt, nil
	}
	return parser.When(s)
}

func formatDT(dt maya.DT, frmt string) string {
	switch strings.ToLower(frmt) {
	case "", "iso":
		return dt.ISO8601()
	case "rfc2822":
		return dt.RFC2822()
	case "rfc3339":
		return dt.RFC3339()
	case "epoch":
		return strconv.FormatFloat(dt.EpochFloat(), 'f', -1, 64)
	case "slang":
		return dt.SlangTime()
	}
	return dt.In(parser.Location()).Format(frmt)
}

func notifyOnIntTermSignal(f func()) {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		s := <-sigChan
		log.Info("Got signal \"", s, "\", cancelling context ")
		f()
	}()
}

func printError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
}

func humanDuration(d time.Duration) string {
	return strings.TrimSpace(humanize.RelTime(time.Time{}, time.Time{}.Add(d), "", ""))
}
