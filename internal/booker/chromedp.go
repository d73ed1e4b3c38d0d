package booker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nhle/booking-agent/internal/model"
)

// Driver drives the hotel admin web UI with a headless browser to
// create a booking. It owns the browser session exclusively; nothing
// else touches the admin UI while an Execute call is in flight.
type Driver struct {
	baseURL       string
	username      string
	password      string
	headless      bool
	actionTimeout time.Duration
	screenshotDir string
}

// NewDriver creates a booking driver for the admin site at baseURL.
func NewDriver(
	baseURL, username, password string,
	headless bool,
	actionTimeout time.Duration,
	screenshotDir string,
) *Driver {
	if actionTimeout <= 0 {
		actionTimeout = 30 * time.Second
	}
	return &Driver{
		baseURL:       strings.TrimRight(baseURL, "/"),
		username:      username,
		password:      password,
		headless:      headless,
		actionTimeout: actionTimeout,
		screenshotDir: screenshotDir,
	}
}

// Booking form element IDs on the admin site.
const (
	selGuestName = "#bookingGuestName"
	selEmail     = "#bookingEmail"
	selCheckIn   = "#bookingCheckIn"
	selCheckOut  = "#bookingCheckOut"
	selRoomType  = "#bookingRoomType"
	selAdults    = "#bookingAdults"
	selChildren  = "#bookingChildren"
	selModal     = "#bookingModal"
	selSubmit    = `form#bookingForm button[type="submit"]`
)

var (
	confirmationPattern = regexp.MustCompile(
		`(?i)booking confirmed|successfully|booking created|success`)
	referencePattern = regexp.MustCompile(
		`(?i)#(\d+)|booking[_\-\s]?(?:id|no)[\s:#]*([A-Z0-9\-]+)`)
	errorSurfacePattern = regexp.MustCompile(`(?i)not available|error|failed`)
)

// Execute runs the full booking transaction. Expected failures come
// back as failed outcomes; only truly unexpected conditions surface as
// an error.
func (d *Driver) Execute(
	ctx context.Context, req model.BookingRequest,
) (model.BookingOutcome, error) {
	roomValue, ok := RoomOptionValue(req.RoomType)
	if !ok {
		// Room type absent from the admin catalog: the form cannot be
		// filled, so the attempt fails before the browser starts.
		return model.Failed(
			model.ReasonAutomationMismatch,
			fmt.Sprintf("The room type %q is not offered by the hotel.", req.RoomType),
		), nil
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if outcome, done := d.login(browserCtx); done {
		return outcome, nil
	}

	if outcome, done := d.openBookingModal(browserCtx); done {
		return outcome, nil
	}

	if outcome, done := d.fillForm(browserCtx, req, roomValue); done {
		return outcome, nil
	}

	return d.submitAndConfirm(browserCtx)
}

// login navigates to the admin site and submits the login form. The
// bool result reports whether the transaction is finished (with a
// failure outcome).
func (d *Driver) login(ctx context.Context) (model.BookingOutcome, bool) {
	var currentURL string

	err := d.step(ctx, "login",
		chromedp.Navigate(d.baseURL),
		chromedp.WaitVisible(`input[placeholder="Enter username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[placeholder="Enter username"]`, d.username, chromedp.ByQuery),
		chromedp.SendKeys(`input[placeholder="Enter password"]`, d.password, chromedp.ByQuery),
		chromedp.Click(`//button[contains(., "Login")]`),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return d.failure(ctx, "login", err), true
	}

	// Still on the login page means the credentials were rejected.
	if strings.Contains(strings.ToLower(currentURL), "login") {
		d.screenshot(ctx, "auth_failure")
		return model.Failed(
			model.ReasonAuthFailure,
			"We could not complete your booking due to a system issue. Please try again later.",
		), true
	}

	return model.BookingOutcome{}, false
}

// openBookingModal navigates to the bookings page and opens the
// create-booking modal.
func (d *Driver) openBookingModal(ctx context.Context) (model.BookingOutcome, bool) {
	err := d.step(ctx, "open_modal",
		chromedp.Navigate(d.baseURL+"/bookings"),
		chromedp.Click(`//button[contains(., "Create Booking")]`),
		chromedp.WaitVisible(selModal, chromedp.ByQuery),
	)
	if err != nil {
		return d.failure(ctx, "open_modal", err), true
	}
	return model.BookingOutcome{}, false
}

// fillForm sets every booking form field. Date and number inputs are
// set through a native value setter plus synthetic events; plain
// SendKeys does not reliably update framework-bound date inputs.
func (d *Driver) fillForm(
	ctx context.Context, req model.BookingRequest, roomValue string,
) (model.BookingOutcome, bool) {
	guestName := req.GuestName
	if guestName == "" {
		if at := strings.Index(req.GuestEmail, "@"); at > 0 {
			guestName = req.GuestEmail[:at]
		}
	}

	sets := []struct {
		sel string
		val string
	}{
		{selGuestName, guestName},
		{selEmail, req.GuestEmail},
		{selCheckIn, req.CheckIn.Format("2006-01-02")},
		{selCheckOut, req.CheckOut.Format("2006-01-02")},
		{selRoomType, roomValue},
		{selAdults, fmt.Sprintf("%d", req.Adults)},
		{selChildren, fmt.Sprintf("%d", req.Children)},
	}

	for _, s := range sets {
		var found bool
		err := d.step(ctx, "fill_form",
			chromedp.Evaluate(setFieldJS(s.sel, s.val), &found),
		)
		if err != nil {
			return d.failure(ctx, "fill_form", err), true
		}
		if !found {
			d.screenshot(ctx, "fill_form")
			return model.Failed(
				model.ReasonAutomationMismatch,
				"We could not complete your booking due to a system issue. Please try again later.",
			), true
		}
	}

	d.screenshot(ctx, "form_filled")
	return model.BookingOutcome{}, false
}

// submitAndConfirm clicks the confirm button and reads back either a
// confirmation reference or an error surface.
func (d *Driver) submitAndConfirm(ctx context.Context) (model.BookingOutcome, error) {
	var bodyText string
	var modalVisible bool
	var currentURL string

	err := d.step(ctx, "confirm",
		chromedp.ScrollIntoView(selSubmit, chromedp.ByQuery),
		chromedp.Click(selSubmit, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`document.body.innerText`, &bodyText),
		chromedp.Evaluate(modalVisibleJS, &modalVisible),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return d.failure(ctx, "confirm", err), nil
	}

	d.screenshot(ctx, "after_confirm")

	if confirmationPattern.MatchString(bodyText) || !modalVisible {
		ref := extractReference(bodyText + " " + currentURL)
		return model.Confirmed(ref), nil
	}

	if m := errorSurfacePattern.FindString(bodyText); m != "" {
		return model.Failed(
			model.ReasonAutomationMismatch,
			"The hotel could not accept this booking: "+strings.ToLower(m)+".",
		), nil
	}

	return model.Failed(
		model.ReasonAutomationMismatch,
		"The booking result could not be verified. Please try again later.",
	), nil
}

// step runs a sequence of browser actions under the per-action
// timeout.
func (d *Driver) step(ctx context.Context, label string, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, d.actionTimeout)
	defer cancel()

	if err := chromedp.Run(stepCtx, actions...); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// failure maps a step error to a typed outcome and captures a
// diagnostic screenshot.
func (d *Driver) failure(ctx context.Context, label string, err error) model.BookingOutcome {
	log.Printf("booker: %s failed: %v", label, err)
	d.screenshot(ctx, label)

	if errors.Is(err, context.DeadlineExceeded) {
		return model.Failed(
			model.ReasonTimeout,
			"The hotel website took too long to respond. Please try again later.",
		)
	}

	return model.Failed(
		model.ReasonAutomationMismatch,
		"We could not complete your booking due to a system issue. Please try again later.",
	)
}

// screenshot captures the current page for human triage. Best effort;
// failures are logged and ignored.
func (d *Driver) screenshot(ctx context.Context, label string) {
	if d.screenshotDir == "" {
		return
	}

	shotCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		log.Printf("booker: screenshot %s failed: %v", label, err)
		return
	}

	if err := os.MkdirAll(d.screenshotDir, 0o755); err != nil {
		log.Printf("booker: creating screenshot dir: %v", err)
		return
	}

	name := fmt.Sprintf("screenshot_%s_%s.png", label, time.Now().Format("20060102_150405"))
	path := filepath.Join(d.screenshotDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		log.Printf("booker: writing screenshot %s: %v", path, err)
		return
	}
	log.Printf("booker: screenshot saved: %s", path)
}

// setFieldJS builds a script that sets a form control's value through
// the native setter and dispatches input/change events, returning
// whether the element was found.
func setFieldJS(sel, val string) string {
	return fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { return false; }
		const proto = el.tagName === 'SELECT'
			? window.HTMLSelectElement.prototype
			: window.HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
		setter.call(el, %q);
		el.dispatchEvent(new Event('input',  { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		el.dispatchEvent(new Event('blur',   { bubbles: true }));
		return true;
	})()`, sel, val)
}

const modalVisibleJS = `(() => {
	const modal = document.querySelector('#bookingModal');
	if (!modal) { return false; }
	const style = window.getComputedStyle(modal);
	return style.display !== 'none' && style.visibility !== 'hidden';
})()`

// extractReference pulls a booking reference out of confirmation text
// or the page URL.
func extractReference(text string) string {
	if m := referencePattern.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return g
			}
		}
	}
	if m := regexp.MustCompile(`/bookings?/(\d+)`).FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "N/A"
}
