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
	"os/user"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/logrange/maya/pkg/maya"
	"github.com/peterh/liner"
)

type (
	shell struct {
		cfg   *shellConfig
		hfile string
	}

	command struct {
		name    string
		matcher *regexp.Regexp
		cmdFn   cmdFn
		help    string
	}

	shellConfig struct {
		parser     *maya.Parser
		format     string
		args       []string
		beforeQuit func()
	}

	cmdFn func(cfg *shellConfig, ctx context.Context) error
)

const (
	shellHistoryFileName = ".maya_history"

	cmdParseName    = "parse"
	cmdWhenName     = "when"
	cmdIntervalName = "interval"
	cmdSplitName    = "split"
	cmdQuantizeName = "quantize"
	cmdSetOptName   = "setoption"
	cmdQuitName     = "quit"
	cmdHelpName     = "help"

	optTimezone = "timezone"
	optFormat   = "format"
	optPrefer   = "prefer"
	optDayFirst = "day-first"
)

var commands []command

func init() {
	commands = []command{
		{
			name:    cmdParseName,
			matcher: regexp.MustCompile("(?i)^parse\\s+(?P<" + cmdParseName + ">.+)$"),
			cmdFn:   parseFn,
			help:    "parse machine date-times, e.g. 'parse 2016-W07T09'",
		},
		{
			name:    cmdWhenName,
			matcher: regexp.MustCompile("(?i)^when\\s+(?P<" + cmdWhenName + ">.+)$"),
			cmdFn:   whenFn,
			help:    "parse human date-times, e.g. 'when next friday at noon'",
		},
		{
			name:    cmdIntervalName,
			matcher: regexp.MustCompile("(?i)^(?:interval|iv)\\s+(?P<" + cmdIntervalName + ">\\S+)$"),
			cmdFn:   intervalFn,
			help:    "describe ISO 8601 intervals, e.g. 'iv 2016-01-01/P1D'",
		},
		{
			name:    cmdSplitName,
			matcher: regexp.MustCompile("(?i)^split\\s+(?P<" + cmdSplitName + ">\\S+\\s+\\S+)$"),
			cmdFn:   splitFn,
			help:    "split intervals into chunks, e.g. 'split 2016-01-01/P1D 6h'",
		},
		{
			name:    cmdQuantizeName,
			matcher: regexp.MustCompile("(?i)^quantize\\s+(?P<" + cmdQuantizeName + ">\\S+\\s+\\S+(?:\\s+out)?)$"),
			cmdFn:   quantizeFn,
			help:    "snap intervals to a grid, e.g. 'quantize 2016-01-01T01:10Z/PT2H 1h out'",
		},
		{
			name: cmdSetOptName,
			matcher: regexp.MustCompile("(?i)^(?:(setoption$|setopt$)|(setoption|setopt)\\s+(?P<" +
				cmdSetOptName + ">.+))"),
			cmdFn: setoptFn,
			help:  "set options (timezone, format, prefer, day-first), e.g. 'setopt timezone Europe/Paris'",
		},
		{
			name:    cmdQuitName,
			matcher: regexp.MustCompile("(?i)^(?:quit|exit)$"),
			cmdFn:   quitFn,
			help:    "exit the program",
		},
		{
			name:    cmdHelpName,
			matcher: regexp.MustCompile("(?i)^help$"),
			cmdFn:   helpFn,
			help:    "show help",
		},
	}
}

func historyFilePath() string {
	var fileDir = os.TempDir()
	usr, err := user.Current()
	if err == nil {
		fileDir = usr.HomeDir
	}
	return filepath.Join(fileDir, shellHistoryFileName)
}

//===================== shell =====================

func newShell(p *maya.Parser, hFile string) *shell {
	s := new(shell)
	s.cfg = &shellConfig{parser: p, format: "iso"}
	s.hfile = hFile
	return s
}

func (s *shell) run() {
	lnr := liner.NewLiner()
	lnr.SetCtrlCAborts(true)

	s.loadHistory(lnr)
	beforeQuit := func() {
		s.saveHistory(lnr)
		_ = lnr.Close()
		fmt.Println("bye!")
	}

	defer beforeQuit()
	s.cfg.beforeQuit = beforeQuit

	for {
		inp, err := lnr.Prompt("maya>")
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				break
			}
			printError(err)
		}

		inp = strings.TrimSpace(inp)
		if inp == "" {
			continue
		}

		lnr.AppendHistory(inp)
		if err = execCmd(inp, s.cfg, context.Background()); err != nil {
			printError(err)
		}
	}
}

func (s *shell) loadHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_RDONLY|os.O_CREATE, 0640)
	if err != nil {
		printError(err)
		return
	}
	defer f.Close()
	if _, err = lnr.ReadHistory(f); err != nil {
		printError(err)
	}
}

func (s *shell) saveHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		printError(err)
		return
	}
	defer f.Close()
	if _, err = lnr.WriteHistory(f); err != nil {
		printError(err)
	}
}

//===================== commands =====================

func execCmd(input string, cfg *shellConfig, ctx context.Context) error {
	for _, d := range commands {
		if !d.matcher.MatchString(input) {
			continue
		}
		cfg.args = nil
		if v, ok := getInputVars(d.matcher, input)[d.name]; ok && v != "" {
			cfg.args = strings.Fields(v)
		}
		return d.cmdFn(cfg, ctx)
	}
	return fmt.Errorf("unknown command=%v, try 'help'", input)
}

func getInputVars(re *regexp.Regexp, input string) map[string]string {
	match := re.FindStringSubmatch(input)
	varsMap := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i > 0 && i < len(match) && name != "" {
			varsMap[name] = match[i]
		}
	}
	return varsMap
}

func parseFn(cfg *shellConfig, _ context.Context) error {
	dt, err := cfg.parser.Parse(strings.Join(cfg.args, " "))
	if err != nil {
		return err
	}
	printDT(cfg, dt)
	return nil
}

func whenFn(cfg *shellConfig, _ context.Context) error {
	dt, err := cfg.parser.When(strings.Join(cfg.args, " "))
	if err != nil {
		return err
	}
	printDT(cfg, dt)
	return nil
}

func printDT(cfg *shellConfig, dt maya.DT) {
	fmt.Printf("%s (%s)\n", formatWith(cfg, dt), dt.SlangTime())
}

func formatWith(cfg *shellConfig, dt maya.DT) string {
	switch strings.ToLower(cfg.format) {
	case "", "iso":
		return dt.ISO8601()
	case "rfc2822":
		return dt.RFC2822()
	case "rfc3339":
		return dt.RFC3339()
	case "epoch":
		return strconv.FormatFloat(dt.EpochFloat(), 'f', -1, 64)
	case "slang":
		return dt.SlangDate()
	}
	return dt.In(cfg.parser.Location()).Format(cfg.format)
}

func intervalFn(cfg *shellConfig, _ context.Context) error {
	iv, err := cfg.parser.ParseInterval(cfg.args[0])
	if err != nil {
		return err
	}
	fmt.Printf("start:    %s\n", formatWith(cfg, iv.Start()))
	fmt.Printf("end:      %s\n", formatWith(cfg, iv.End()))
	fmt.Printf("duration: %s (%s)\n", iv.Duration(), humanDuration(iv.Duration()))
	fmt.Printf("midpoint: %s\n", formatWith(cfg, iv.Midpoint()))
	fmt.Printf("iCal:\n%s\n", iv.ICalendar())
	return nil
}

func splitFn(cfg *shellConfig, ctx context.Context) error {
	iv, err := cfg.parser.ParseInterval(cfg.args[0])
	if err != nil {
		return err
	}
	chunk, err := maya.ParseDuration(cfg.args[1])
	if err != nil {
		return err
	}
	it, err := iv.Split(chunk, true)
	if err != nil {
		return err
	}

	total := 0
	for c := range it.Seq() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Println(c.ISO8601())
		total++
	}
	fmt.Printf("\ntotal: %d\n\n", total)
	return nil
}

func quantizeFn(cfg *shellConfig, _ context.Context) error {
	iv, err := cfg.parser.ParseInterval(cfg.args[0])
	if err != nil {
		return err
	}
	grid, err := maya.ParseDuration(cfg.args[1])
	if err != nil {
		return err
	}
	res, err := iv.Quantize(grid, len(cfg.args) > 2, cfg.parser.Location())
	if err != nil {
		return err
	}
	fmt.Println(res.ISO8601())
	return nil
}

func setoptFn(cfg *shellConfig, _ context.Context) error {
	if len(cfg.args) == 0 {
		fmt.Printf("%s=%s, %s=%s\n", optFormat, cfg.format, "config", cfg.parser.Config())
		return nil
	}

	opt := strings.ToLower(cfg.args[0])
	val := strings.Join(cfg.args[1:], " ")
	if opt == optFormat {
		cfg.format = val
		return nil
	}

	pc := cfg.parser.Config()
	switch opt {
	case optTimezone:
		pc.Timezone = val
	case optPrefer:
		pc.Prefer = val
	case optDayFirst:
		switch strings.ToLower(val) {
		case "on":
			pc.DayFirst = true
		case "off":
			pc.DayFirst = false
		default:
			return fmt.Errorf("unknown value=%v for option=%v", val, opt)
		}
	default:
		return fmt.Errorf("unknown option=%v", opt)
	}

	p, err := maya.NewParser(pc)
	if err != nil {
		return err
	}
	cfg.parser = p
	return nil
}

func quitFn(cfg *shellConfig, _ context.Context) error {
	cfg.beforeQuit()
	os.Exit(0)
	return nil
}

func helpFn(_ *shellConfig, _ context.Context) error {
	fmt.Printf("\n\t%-10s\n", "[HELP]")
	for _, c := range commands {
		fmt.Printf("\n\t%-15s %s", c.name, c.help)
	}
	fmt.Print("\n\n")
	return nil
}
