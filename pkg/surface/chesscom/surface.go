// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
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

// Package chesscom implements a game surface for chess.com, driving a
// Chromium browser over the DevTools protocol. Every read of the page is
// a single script evaluation whose result is decoded as JSON.
package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/observe"
)

type Config struct {
	// URL is navigated to after opening the page, if it is not empty.
	URL string `yaml:"url"`

	// Remote is the DevTools URL of an already running browser. A local
	// browser is launched if it is empty.
	Remote   string `yaml:"remote"`
	Headless bool   `yaml:"headless"`

	// MouseLatency is the pause between pressing a piece and moving it.
	MouseLatency time.Duration `yaml:"mouse-latency"`
}

// Surface is a chess.com page. It implements observe.Observer and
// applies moves by dragging pieces with the mouse.
type Surface struct {
	config Config

	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher

	mu     sync.Mutex
	moves  map[string]string // move list cache, by node id
	gameID string
}

var _ observe.Observer = (*Surface)(nil)

// Open connects to or launches a browser and opens the configured page.
func Open(ctx context.Context, config Config) (*Surface, error) {
	surface := &Surface{config: config, moves: make(map[string]string)}

	url := config.Remote
	if url == "" {
		l := launcher.New().
			Headless(config.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("chesscom: launch: %w", err)
		}

		url, surface.launcher = u, l
		logrus.WithField("url", url).Debug("launched local browser")
	}

	surface.browser = rod.New().ControlURL(url).Context(ctx)
	if err := surface.browser.Connect(); err != nil {
		surface.kill()
		return nil, fmt.Errorf("chesscom: connect: %w", err)
	}

	page, err := surface.openPage()
	if err != nil {
		_ = surface.Close()
		return nil, err
	}

	surface.page = page

	if config.URL != "" {
		nav, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := page.Context(nav).Navigate(config.URL); err != nil {
			_ = surface.Close()
			return nil, fmt.Errorf("chesscom: navigate %s: %w", config.URL, err)
		}

		if err := page.Context(nav).WaitLoad(); err != nil {
			logrus.WithError(err).Warn("page did not finish loading")
		}
	}

	return surface, nil
}

// openPage reuses the first page of a remote browser, which is the one the
// user is playing on, or opens a new stealth page.
func (surface *Surface) openPage() (*rod.Page, error) {
	if surface.launcher == nil {
		pages, err := surface.browser.Pages()
		if err == nil && len(pages) > 0 {
			return pages.First(), nil
		}
	}

	var (
		page *rod.Page
		err  error
	)

	if surface.config.Headless {
		page, err = stealth.Page(surface.browser)
	} else {
		page, err = surface.browser.Page(proto.TargetCreateTarget{URL: ""})
	}

	if err != nil {
		return nil, fmt.Errorf("chesscom: create page: %w", err)
	}

	return page, nil
}

// Close closes a launched browser. A remote browser is left running.
func (surface *Surface) Close() error {
	if surface.launcher == nil {
		return nil
	}

	err := surface.browser.Close()
	surface.kill()
	return err
}

func (surface *Surface) kill() {
	if surface.launcher != nil {
		surface.launcher.Kill()
	}
}

var errNotFound = errors.New("chesscom: element not found")

// eval evaluates a script on the page and decodes its JSON result into
// out. A null result is reported as errNotFound.
func (surface *Surface) eval(ctx context.Context, js string, out any) error {
	res, err := surface.page.Context(ctx).Eval(js)
	if err != nil {
		return err
	}

	raw := res.Value.Str()
	if raw == "" || raw == "null" {
		return errNotFound
	}

	return json.Unmarshal([]byte(raw), out)
}

// reading converts the result of eval into an observation reading.
func reading[T any](value T, err error) observe.Reading[T] {
	switch {
	case err == nil:
		return observe.Value(value)
	case errors.Is(err, errNotFound):
		return observe.Missing[T]()
	default:
		return observe.Transient[T](err)
	}
}

func (surface *Surface) board(ctx context.Context) (*board, error) {
	var b board
	if err := surface.eval(ctx, boardJS, &b); err != nil {
		return nil, err
	}

	return &b, nil
}

func (surface *Surface) MoveList(ctx context.Context) observe.Reading[[]string] {
	surface.mu.Lock()
	defer surface.mu.Unlock()

	if session, ok := sessionFromURL(surface.location(ctx)); ok {
		if surface.gameID != "" && session != surface.gameID {
			logrus.WithFields(logrus.Fields{
				"from": surface.gameID,
				"to":   session,
			}).Debug("game changed, dropping move cache")
			surface.moves = make(map[string]string)
		}

		surface.gameID = session
	}

	var nodes []node
	if err := surface.eval(ctx, movesJS, &nodes); err != nil {
		return reading[[]string](nil, err)
	}

	moves := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if move, cached := surface.moves[n.ID]; cached && n.ID != "" {
			moves = append(moves, move)
			continue
		}

		move, ok := assemble(n)
		if !ok {
			continue
		}

		if n.ID != "" {
			surface.moves[n.ID] = move
		}

		moves = append(moves, move)
	}

	return observe.Value(moves)
}

func (surface *Surface) EngineIsWhite(ctx context.Context) observe.Reading[bool] {
	b, err := surface.board(ctx)
	if err != nil {
		return reading(false, err)
	}

	white, err := b.isWhite()
	if err != nil {
		return observe.Missing[bool]()
	}

	return observe.Value(white)
}

func (surface *Surface) BoardReady(ctx context.Context) observe.Reading[bool] {
	b, err := surface.board(ctx)
	if err != nil {
		return reading(false, err)
	}

	return observe.Value(b.Width > 0 && len(b.Pieces) > 0)
}

func (surface *Surface) StartingPosition(ctx context.Context) observe.Reading[bool] {
	b, err := surface.board(ctx)
	if err != nil {
		return reading(false, err)
	}

	start, known := b.atStart()
	if !known {
		return observe.Missing[bool]()
	}

	return observe.Value(start)
}

func (surface *Surface) GameOver(ctx context.Context) bool {
	var over bool
	if err := surface.eval(ctx, gameOverJS, &over); err != nil {
		logrus.WithError(err).Debug("game over check failed")
		return false
	}

	return over
}

func (surface *Surface) SessionID(ctx context.Context) observe.Reading[string] {
	url := surface.location(ctx)
	if url == "" {
		return observe.Transient[string](errNotFound)
	}

	if id, ok := sessionFromURL(url); ok {
		return observe.Value(id)
	}

	return observe.Missing[string]()
}

func (surface *Surface) location(ctx context.Context) string {
	info, err := surface.page.Context(ctx).Info()
	if err != nil {
		return ""
	}

	return info.URL
}

func (surface *Surface) ResetCache(ctx context.Context) {
	surface.mu.Lock()
	defer surface.mu.Unlock()

	surface.moves = make(map[string]string)
	surface.gameID = ""
}

// RequestNewGame clicks the new game button of the game over modal, and
// reports success once the modal has disappeared.
func (surface *Surface) RequestNewGame(ctx context.Context) bool {
	for attempt := 1; attempt <= 3; attempt++ {
		if util.Sleep(ctx, 500*time.Millisecond) != nil {
			return false
		}

		var clicked bool
		if err := surface.eval(ctx, newGameJS, &clicked); err != nil || !clicked {
			logrus.WithField("attempt", attempt).Debug("no new game button found")
		} else {
			if util.Sleep(ctx, time.Second) != nil {
				return false
			}

			var modal bool
			if err := surface.eval(ctx, modalJS, &modal); err == nil && !modal {
				return true
			}

			logrus.WithField("attempt", attempt).Debug("game over modal still visible")
		}

		if util.Sleep(ctx, time.Second) != nil {
			return false
		}
	}

	return false
}

// Apply plays the given move, in engine-form notation, by dragging the
// piece across the board and picking the promotion piece if required.
// Whether the move was accepted is only known by observing the page.
func (surface *Surface) Apply(ctx context.Context, move string) error {
	if len(move) < 4 {
		return fmt.Errorf("chesscom: malformed move %q", move)
	}

	b, err := surface.board(ctx)
	if err != nil {
		return fmt.Errorf("chesscom: board: %w", err)
	}

	white, err := b.isWhite()
	if err != nil {
		return err
	}

	from, to := b.point(move[0:2], white), b.point(move[2:4], white)
	mouse := surface.page.Context(ctx).Mouse

	if err := mouse.MoveTo(from); err != nil {
		return err
	}

	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}

	if err := util.Sleep(ctx, surface.config.MouseLatency); err != nil {
		return err
	}

	if err := mouse.MoveTo(to); err != nil {
		return err
	}

	if err := mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}

	if len(move) == 5 {
		if err := util.Sleep(ctx, 100*time.Millisecond); err != nil {
			return err
		}

		picker := b.point(promotionSquare(move[2:4], move[4], white), white)
		if err := mouse.MoveTo(picker); err != nil {
			return err
		}

		return mouse.Click(proto.InputMouseButtonLeft, 1)
	}

	return nil
}
