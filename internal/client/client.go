package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/service"
	"github.com/pageza/nutriscan/backend/internal/stats"
	"github.com/pageza/nutriscan/backend/internal/store"
)

// DefaultAdvisoryDuration is how long the camera advisory stays visible
const DefaultAdvisoryDuration = 4 * time.Second

// Syncer forwards committed entries to durable storage
type Syncer interface {
	Append(ctx context.Context, req *models.CreateEntryRequest) (models.CreateEntryResponse, error)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	UserAgent        string
	Recognizer       service.Recognizer
	Syncer           Syncer
	Timers           Timers
	Clock            func() time.Time
	AdvisoryDuration time.Duration
	// OnChange receives a snapshot after every state change
	OnChange func(State)
}

// State is a snapshot of the client
type State struct {
	View          View
	CapturedImage string
	Candidates    []models.Candidate
	Selected      string
	Recognizing   bool
	// RecognitionError is set when the last recognition failed
	RecognitionError error
	Advisory         string
	Entries          []models.DiaryEntry
}

// Client is the diary client state machine. All methods are safe for
// concurrent use; timer and recognition callbacks share the same lock.
type Client struct {
	mu sync.Mutex

	recognizer service.Recognizer
	syncer     Syncer
	timers     Timers
	clock      func() time.Time
	advisoryD  time.Duration
	onChange   func(State)
	mobile     bool
	stamps     *store.Stamper

	view        View
	manualFrom  View
	image       string
	candidates  []models.Candidate
	selected    string
	recognizing bool
	recogErr    error
	recogGen    uint64
	advisory    string
	advisoryGen uint64
	advisoryT   Timer
	entries     []models.DiaryEntry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a client showing the camera view
func New(opts Options) *Client {
	if opts.Recognizer == nil {
		opts.Recognizer = service.NewMockRecognizer(service.DefaultRecognitionDelay)
	}
	if opts.Timers == nil {
		opts.Timers = SystemTimers{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AdvisoryDuration <= 0 {
		opts.AdvisoryDuration = DefaultAdvisoryDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		recognizer: opts.Recognizer,
		syncer:     opts.Syncer,
		timers:     opts.Timers,
		clock:      opts.Clock,
		advisoryD:  opts.AdvisoryDuration,
		onChange:   opts.OnChange,
		mobile:     IsMobileUserAgent(opts.UserAgent),
		stamps:     store.NewStamper().WithClock(opts.Clock),
		view:       ViewCamera,
		entries:    []models.DiaryEntry{},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// IsMobile reports whether device capture is available
func (c *Client) IsMobile() bool {
	return c.mobile
}

// State returns a snapshot of the client
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Client) snapshot() State {
	return State{
		View:             c.view,
		CapturedImage:    c.image,
		Candidates:       append([]models.Candidate(nil), c.candidates...),
		Selected:         c.selected,
		Recognizing:      c.recognizing,
		RecognitionError: c.recogErr,
		Advisory:         c.advisory,
		Entries:          append([]models.DiaryEntry(nil), c.entries...),
	}
}

// update runs fn under the lock and publishes the new state when fn succeeds
func (c *Client) update(fn func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	var s State
	if err == nil {
		s = c.snapshot()
	}
	c.mu.Unlock()

	if err == nil && c.onChange != nil {
		c.onChange(s)
	}
	return err
}

// SelectImage captures an image from the camera view and starts recognition
func (c *Client) SelectImage(image string) error {
	return c.update(func() error {
		if image == "" {
			return ErrNoImage
		}
		if c.view != ViewCamera && c.view != ViewReviewing {
			return fmt.Errorf("%w: select image from %s", ErrInvalidTransition, c.view)
		}

		c.image = image
		c.candidates = nil
		c.selected = ""
		c.recogErr = nil
		c.recognizing = true
		c.recogGen++
		c.view = ViewRecognizing

		gen := c.recogGen
		c.wg.Add(1)
		go c.recognize(gen, image)
		return nil
	})
}

func (c *Client) recognize(gen uint64, image string) {
	defer c.wg.Done()
	candidates, err := c.recognizer.Recognize(c.ctx, image)

	_ = c.update(func() error {
		// A newer image replaced this one
		if gen != c.recogGen {
			return ErrInvalidTransition
		}
		c.recognizing = false
		if err != nil {
			log.Printf("[Client] Recognition failed: %v", err)
			c.recogErr = err
		} else {
			c.candidates = candidates
		}
		if c.view == ViewRecognizing {
			c.view = ViewReviewing
		}
		return nil
	})
}

// Wait blocks until pending recognition has finished
func (c *Client) Wait() {
	c.wg.Wait()
}

// SelectSuggestion marks one of the proposed candidates
func (c *Client) SelectSuggestion(key string) error {
	return c.update(func() error {
		if c.view != ViewReviewing {
			return fmt.Errorf("%w: select suggestion from %s", ErrInvalidTransition, c.view)
		}
		for _, cand := range c.candidates {
			if cand.Key == key {
				c.selected = key
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not a suggestion", service.ErrUnknownFood, key)
	})
}

// Confirm commits the selected candidate to the diary
func (c *Client) Confirm(ctx context.Context) (models.DiaryEntry, error) {
	var entry models.DiaryEntry
	err := c.update(func() error {
		if c.view != ViewReviewing {
			return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, c.view)
		}
		if c.selected == "" {
			return ErrNoSelection
		}

		var food models.FoodItem
		for _, cand := range c.candidates {
			if cand.Key == c.selected {
				food = cand.Food
			}
		}
		entry = c.commit(food, false)
		return nil
	})
	if err != nil {
		return models.DiaryEntry{}, err
	}

	c.sync(ctx, entry)
	return entry, nil
}

// OpenManualEntry shows the manual entry form
func (c *Client) OpenManualEntry() error {
	return c.update(func() error {
		if c.view != ViewReviewing && c.view != ViewCamera {
			return fmt.Errorf("%w: open manual entry from %s", ErrInvalidTransition, c.view)
		}
		c.manualFrom = c.view
		c.view = ViewManualEntry
		return nil
	})
}

// CloseManualEntry dismisses the form without saving
func (c *Client) CloseManualEntry() error {
	return c.update(func() error {
		if c.view != ViewManualEntry {
			return fmt.Errorf("%w: close manual entry from %s", ErrInvalidTransition, c.view)
		}
		c.view = c.manualFrom
		return nil
	})
}

// SubmitManual commits the form to the diary
func (c *Client) SubmitManual(ctx context.Context, form ManualForm) (models.DiaryEntry, error) {
	var entry models.DiaryEntry
	err := c.update(func() error {
		if c.view != ViewManualEntry {
			return fmt.Errorf("%w: submit manual entry from %s", ErrInvalidTransition, c.view)
		}
		if !form.CanSubmit() {
			return ErrNameRequired
		}
		entry = c.commit(form.Food(), true)
		return nil
	})
	if err != nil {
		return models.DiaryEntry{}, err
	}

	c.sync(ctx, entry)
	return entry, nil
}

// commit appends a new entry, clears the capture and shows the diary
func (c *Client) commit(food models.FoodItem, manual bool) models.DiaryEntry {
	entry := models.DiaryEntry{
		Food:     food,
		Image:    c.image,
		IsManual: manual,
	}
	c.stamps.Stamp(&entry)
	c.entries = append(c.entries, entry)

	c.image = ""
	c.candidates = nil
	c.selected = ""
	c.recogErr = nil
	c.view = ViewDiary
	return entry
}

func (c *Client) sync(ctx context.Context, entry models.DiaryEntry) {
	if c.syncer == nil {
		return
	}
	resp, err := c.syncer.Append(ctx, &models.CreateEntryRequest{
		Food:     entry.Food,
		Image:    entry.Image,
		IsManual: entry.IsManual,
	})
	if err != nil {
		log.Printf("[Client] Failed to sync entry %d, kept locally: %v", entry.ID, err)
		return
	}
	log.Printf("[Client] Synced entry %d as %d", entry.ID, resp.ID)
}

// Navigate switches between the camera, diary and stats views. The camera view
// resumes a capture still in progress.
func (c *Client) Navigate(view View) error {
	return c.update(func() error {
		switch view {
		case ViewDiary, ViewStats:
			c.view = view
		case ViewCamera:
			switch {
			case c.recognizing:
				c.view = ViewRecognizing
			case c.image != "":
				c.view = ViewReviewing
			default:
				c.view = ViewCamera
			}
		default:
			return fmt.Errorf("%w: navigate to %s", ErrInvalidTransition, view)
		}
		return nil
	})
}

// TakePhoto reports whether device capture may open. Off a handheld device it
// shows the camera advisory instead, cleared after the advisory duration.
func (c *Client) TakePhoto() (bool, error) {
	if c.mobile {
		return true, nil
	}
	err := c.update(func() error {
		if c.advisoryT != nil {
			c.advisoryT.Stop()
		}
		c.advisory = AdvisoryCameraUnavailable
		c.advisoryGen++
		gen := c.advisoryGen
		c.advisoryT = c.timers.AfterFunc(c.advisoryD, func() { c.clearAdvisory(gen) })
		return nil
	})
	return false, err
}

// DismissAdvisory hides the camera advisory
func (c *Client) DismissAdvisory() error {
	return c.update(func() error {
		if c.advisoryT != nil {
			c.advisoryT.Stop()
			c.advisoryT = nil
		}
		c.advisory = ""
		return nil
	})
}

func (c *Client) clearAdvisory(gen uint64) {
	_ = c.update(func() error {
		if gen != c.advisoryGen {
			return ErrInvalidTransition
		}
		c.advisory = ""
		c.advisoryT = nil
		return nil
	})
}

// Entries returns the entries committed in this session
func (c *Client) Entries() []models.DiaryEntry {
	return c.State().Entries
}

// Summary aggregates the session entries for today
func (c *Client) Summary() stats.Summary {
	c.mu.Lock()
	entries := append([]models.DiaryEntry(nil), c.entries...)
	c.mu.Unlock()
	return stats.Summarize(entries, c.clock())
}

// Close stops the timers and any recognition in flight
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	if c.advisoryT != nil {
		c.advisoryT.Stop()
		c.advisoryT = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}
