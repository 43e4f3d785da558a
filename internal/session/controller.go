// Package session implements the per-user view state machine: which surface
// is shown (standings, tourney check, suggestion form), the transient input
// of each surface, and the timed auto-return after a successful suggestion.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/ranking"
	"github.com/dcimring/pickleball-ratings/internal/suggestion"
	"github.com/dcimring/pickleball-ratings/internal/tourney"

	"go.uber.org/zap"
)

// ErrClosed is returned by every call on a closed controller
var ErrClosed = errors.New("session closed")

// SnapshotSource provides the ranked collections currently held in memory
type SnapshotSource interface {
	Snapshot() models.Snapshot
	Loading() bool
}

// Submitter stores a feature suggestion
type Submitter interface {
	Submit(ctx context.Context, req suggestion.Request) error
}

// Options tunes the timers and limits of a controller
type Options struct {
	AutoReturnDelay    time.Duration
	NameBlurGrace      time.Duration
	MaxNameSuggestions int
}

type msg interface{ isSessionMsg() }

type navigate struct{ to View }
type selectMode struct{ mode models.Mode }
type search struct{ text string }
type sortBy struct{ key ranking.SortKey }
type pasteNames struct{ text string }
type runCheck struct{}
type submit struct{ req suggestion.Request }
type submitDone struct {
	formGen uint64
	err     error
}
type typeName struct{ text string }
type blurName struct{}
type selectName struct{ name string }
type autoReturnFired struct{ token uint64 }
type blurFired struct{ token uint64 }
type getScreen struct{ reply chan Screen }

func (navigate) isSessionMsg()        {}
func (selectMode) isSessionMsg()      {}
func (search) isSessionMsg()          {}
func (sortBy) isSessionMsg()          {}
func (pasteNames) isSessionMsg()      {}
func (runCheck) isSessionMsg()        {}
func (submit) isSessionMsg()          {}
func (submitDone) isSessionMsg()      {}
func (typeName) isSessionMsg()        {}
func (blurName) isSessionMsg()        {}
func (selectName) isSessionMsg()      {}
func (autoReturnFired) isSessionMsg() {}
func (blurFired) isSessionMsg()       {}
func (getScreen) isSessionMsg()       {}

// deferred is a cancellable timer owned by the controller loop. A fired
// timer only takes effect if its token is still the current one.
type deferred struct {
	timer *time.Timer
	token uint64
}

func (d *deferred) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.token++
}

// fired consumes a timer message, reporting whether it is still current
func (d *deferred) fired(token uint64) bool {
	if d.timer == nil || token != d.token {
		return false
	}
	d.timer = nil
	return true
}

// Controller owns the view state of one session. All state is confined to
// the loop goroutine; methods post messages to it.
type Controller struct {
	inbox     chan msg
	source    SnapshotSource
	submitter Submitter
	opts      Options
	logger    *zap.Logger

	state      State
	formGen    uint64
	autoReturn deferred
	blur       deferred

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController starts a controller in the standings view. It stops when
// parent is cancelled or Close is called.
func NewController(parent context.Context, source SnapshotSource, submitter Submitter, opts Options, logger *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)

	c := &Controller{
		inbox:     make(chan msg, 64),
		source:    source,
		submitter: submitter,
		opts:      opts,
		logger:    logger,
		state:     initialState(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go c.loop()
	return c
}

func (c *Controller) loop() {
	defer close(c.done)
	defer c.blur.stop()
	defer c.autoReturn.stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case m := <-c.inbox:
			c.handle(m)
		}
	}
}

func (c *Controller) handle(m msg) {
	switch m := m.(type) {
	case navigate:
		if m.to != c.state.View {
			c.autoReturn.stop()
		}
		c.enter(m.to)

	case selectMode:
		c.state.Mode = m.mode

	case search:
		c.state.Search = m.text

	case sortBy:
		c.state.Sort = c.state.Sort.Toggle(m.key)

	case pasteNames:
		c.state.PastedNames = m.text

	case runCheck:
		snap := c.source.Snapshot()
		c.state.Report = tourney.Check(c.state.PastedNames, snap.Singles, snap.Doubles)

	case submit:
		c.startSubmit(m.req)

	case submitDone:
		c.finishSubmit(m)

	case autoReturnFired:
		if c.autoReturn.fired(m.token) {
			c.logger.Debug("auto-returning to standings")
			c.enter(ViewStandings)
		}

	case typeName:
		c.blur.stop()
		c.state.NameInput = m.text
		c.state.ShowNameSuggestions = strings.TrimSpace(m.text) != ""

	case blurName:
		if c.state.ShowNameSuggestions {
			c.schedule(&c.blur, c.opts.NameBlurGrace, func(token uint64) msg { return blurFired{token: token} })
		}

	case blurFired:
		if c.blur.fired(m.token) {
			c.state.ShowNameSuggestions = false
		}

	case selectName:
		c.blur.stop()
		c.state.NameInput = m.name
		c.state.ShowNameSuggestions = false

	case getScreen:
		m.reply <- c.screen()
	}
}

// enter switches views. The suggestion form is reset only when it is
// freshly shown, not when it is already the current view.
func (c *Controller) enter(v View) {
	if v == ViewSuggestionForm && c.state.View != ViewSuggestionForm {
		c.formGen++
		c.blur.stop()
		c.state.NameInput = ""
		c.state.ShowNameSuggestions = false
		c.state.Submission = Submission{Status: SubmissionIdle}
	}
	c.state.View = v
}

func (c *Controller) startSubmit(req suggestion.Request) {
	if c.state.View != ViewSuggestionForm {
		return
	}
	switch c.state.Submission.Status {
	case SubmissionPending, SubmissionSuccess:
		return
	}

	c.state.Submission = Submission{Status: SubmissionPending}
	gen := c.formGen
	go func() {
		err := c.submitter.Submit(c.ctx, req)
		c.post(submitDone{formGen: gen, err: err})
	}()
}

func (c *Controller) finishSubmit(m submitDone) {
	// the form was left or reopened while the request was in flight
	if m.formGen != c.formGen || c.state.View != ViewSuggestionForm {
		return
	}

	if m.err != nil {
		c.logger.Warn("suggestion submission failed", zap.Error(m.err))
		c.state.Submission = Submission{Status: SubmissionError, Message: suggestion.UserMessage(m.err)}
		return
	}

	c.state.Submission = Submission{Status: SubmissionSuccess}
	c.schedule(&c.autoReturn, c.opts.AutoReturnDelay, func(token uint64) msg { return autoReturnFired{token: token} })
}

// schedule replaces any pending timer in d with a new one
func (c *Controller) schedule(d *deferred, after time.Duration, fire func(token uint64) msg) {
	d.stop()
	token := d.token
	d.timer = time.AfterFunc(after, func() {
		c.post(fire(token))
	})
}

// post delivers a message from a goroutine other than the caller's
func (c *Controller) post(m msg) {
	select {
	case c.inbox <- m:
	case <-c.ctx.Done():
	}
}

func (c *Controller) screen() Screen {
	s := Screen{
		State:   c.state,
		Loading: c.source.Loading(),
	}

	switch c.state.View {
	case ViewStandings:
		snap := c.source.Snapshot()
		s.Rows = ranking.View(snap.Collection(c.state.Mode), c.state.Search, c.state.Sort)
	case ViewSuggestionForm:
		if c.state.ShowNameSuggestions {
			names := ranking.DistinctNames(c.source.Snapshot())
			s.NameSuggestions = ranking.SuggestNames(names, c.state.NameInput, c.opts.MaxNameSuggestions)
		}
	}
	return s
}

func (c *Controller) send(m msg) error {
	select {
	case <-c.ctx.Done():
		return ErrClosed
	default:
	}

	select {
	case c.inbox <- m:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// Navigate switches to view v. Leaving the current view cancels any pending
// auto-return.
func (c *Controller) Navigate(v View) error { return c.send(navigate{to: v}) }

// SelectMode switches the standings between singles and doubles
func (c *Controller) SelectMode(mode models.Mode) error { return c.send(selectMode{mode: mode}) }

// Search sets the standings search text
func (c *Controller) Search(text string) error { return c.send(search{text: text}) }

// SortBy applies a sort-header activation
func (c *Controller) SortBy(key ranking.SortKey) error { return c.send(sortBy{key: key}) }

// PasteNames sets the tourney check input
func (c *Controller) PasteNames(text string) error { return c.send(pasteNames{text: text}) }

// RunCheck replaces the tourney report using the current snapshot
func (c *Controller) RunCheck() error { return c.send(runCheck{}) }

// Submit sends a suggestion from the form. It is ignored outside the form
// and while a previous submission is pending or has succeeded.
func (c *Controller) Submit(req suggestion.Request) error { return c.send(submit{req: req}) }

// TypeName updates the suggestion form name input
func (c *Controller) TypeName(text string) error { return c.send(typeName{text: text}) }

// BlurName hides the name suggestions after the blur grace period
func (c *Controller) BlurName() error { return c.send(blurName{}) }

// SelectName picks a suggested name
func (c *Controller) SelectName(name string) error { return c.send(selectName{name: name}) }

// Screen returns the current state and derived view
func (c *Controller) Screen(ctx context.Context) (Screen, error) {
	reply := make(chan Screen, 1)
	if err := c.send(getScreen{reply: reply}); err != nil {
		return Screen{}, err
	}

	select {
	case s := <-reply:
		return s, nil
	case <-c.done:
		return Screen{}, ErrClosed
	case <-ctx.Done():
		return Screen{}, ctx.Err()
	}
}

// Close tears the controller down. Pending timers never fire afterwards.
func (c *Controller) Close() {
	c.cancel()
	<-c.done
}

// Done is closed once the controller has stopped
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
