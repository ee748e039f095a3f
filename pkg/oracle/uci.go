// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/pkg/fault"
)

type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	InitStr string `yaml:"init-string"`

	Options map[string]string `yaml:"options"`

	// search limits, the first non-zero one of which is used
	Depth    int           `yaml:"depth"`
	MoveTime time.Duration `yaml:"movetime"`
	Nodes    int           `yaml:"nodes"`

	// Timeout bounds a single search; it defaults to a minute.
	Timeout time.Duration `yaml:"timeout"`

	// Delay is the advisory delay attached to every suggestion.
	Delay time.Duration `yaml:"delay"`
}

// StartEngine starts the given engine and initializes it for a new game.
func StartEngine(ctx context.Context, config EngineConfig) (*Engine, error) {
	if config.Name == "" {
		config.Name = config.Cmd
	}

	var engine Engine
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)

	engine.config = config

	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, fault.Wrap(fault.EngineStartup, err, "%s", config.Name)
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, fault.Wrap(fault.EngineStartup, err, "%s", config.Name)
	}

	engine.writer = bufio.NewWriter(stdin)
	engine.reader = bufio.NewReader(stdout)
	engine.lines = make(chan string)

	engine.Cmd = process

	if err := engine.Cmd.Start(); err != nil {
		return nil, fault.Wrap(fault.EngineStartup, err, "%s", config.Name)
	}

	go func() {
		for {
			line, err := engine.reader.ReadString('\n')
			if err != nil {
				engine.err = err
				close(engine.lines)
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Debugf("info: ("+engine.config.Name+")> %s\n", line)
			engine.lines <- line
		}
	}()

	if err := engine.setup(ctx); err != nil {
		_ = engine.Kill()
		return nil, fault.Wrap(fault.EngineStartup, err, "%s", config.Name)
	}

	return &engine, nil
}

// Engine is a UCI chess engine running as a child process. It implements
// the Oracle interface.
type Engine struct {
	config EngineConfig

	*exec.Cmd

	writer *bufio.Writer
	reader *bufio.Reader

	lines chan string

	err error

	// searches are strictly sequential
	mu    sync.Mutex
	plies int
}

var _ Oracle = (*Engine)(nil)

func (engine *Engine) setup(ctx context.Context) error {
	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return err
		}
	}

	if err := engine.Initialize(ctx); err != nil {
		return err
	}

	names := make([]string, 0, len(engine.config.Options))
	for name := range engine.config.Options {
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		value := engine.config.Options[name]
		if err := engine.Write("setoption name %s value %s", name, value); err != nil {
			return err
		}
	}

	return engine.NewGame(ctx)
}

// NewGame prepares the engine for a new game of chess.
func (engine *Engine) NewGame(ctx context.Context) error {
	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize(ctx)
}

// Initialize initializes the engine on startup.
func (engine *Engine) Initialize(ctx context.Context) error {
	if err := engine.Write("uci"); err != nil {
		return err
	}

	_, err := engine.Await(ctx, "^uciok", 5*time.Second)
	return err
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize(ctx context.Context) error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await(ctx, "^readyok", 5*time.Second)
	return err
}

// Kill kills the engine.
func (engine *Engine) Kill() error {
	_ = engine.Write("quit")
	return engine.Process.Kill()
}

var ErrReadTimeout = errors.New("engine: read i/o timeout")

// Await is a utility function which waits for a particular string from
// the engine with a fixed timeout.
func (engine *Engine) Await(ctx context.Context, pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timer.C:
			// timer ran out: wait timeout
			return "", ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				// engine's output has been closed
				if engine.err != nil && engine.err != io.EOF {
					return "", engine.err
				}

				return "", io.ErrUnexpectedEOF
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

func (engine *Engine) Write(format string, a ...any) error {
	logrus.Debugf("info: ("+engine.config.Name+")< "+format+"\n", a...)

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}
