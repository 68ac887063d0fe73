// Package checkout runs the customer order flow: pick a plan, give contact
// details and a payment screenshot, and send it all to the API once.
package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/models"
	"github.com/alextreichler/magicworld/internal/upload"
)

// Messages shown inline in the order form.
const (
	MsgContactRequired    = "Email and Telegram Username are required."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgScreenshotRequired = "Payment screenshot is required."
	MsgUnsupportedType    = "Only JPG, PNG or WEBP images are allowed."
	MsgTooLarge           = "File is too large. Max 5MB allowed."
	MsgTooManyPixels      = "Image dimensions are too large. Try a smaller screenshot."
	MsgUnreadable         = "The screenshot could not be read. Try another image."
	MsgTimeout            = "Request timed out. Try again."
	MsgNetwork            = "Network error. Try again later."
	MsgFailed             = "Failed to place order."
	MsgSuccess            = "Order placed! We'll verify payment manually."
)

var (
	ErrFreeProduct     = errors.New("checkout: free products are downloaded, not ordered")
	ErrUnknownPlan     = errors.New("checkout: unknown plan")
	ErrPlanUnavailable = errors.New("checkout: plan has no price")
	ErrNotEditable     = errors.New("checkout: submission already sent")
)

// DefaultTimeout bounds the single upload attempt.
const DefaultTimeout = 15 * time.Second

type Uploader interface {
	UploadOrder(ctx context.Context, o api.OrderUpload) error
}

// Submission is one pass through the order form for a product and plan.
type Submission struct {
	Product  models.Product
	Plan     string
	Price    float64
	Email    string
	Telegram string
	State    State
	Message  string
}

// Open starts collecting an order for plan. The price always comes from the
// product, never from the client.
func Open(p models.Product, plan string) (*Submission, error) {
	if p.IsFree() {
		return nil, ErrFreeProduct
	}
	price, ok := p.PriceFor(plan)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if price <= 0 {
		return nil, ErrPlanUnavailable
	}
	return &Submission{Product: p, Plan: plan, Price: price, State: Collecting}, nil
}

// Input is what the customer typed and attached. File is nil when nothing
// was attached.
type Input struct {
	Email    string
	Telegram string
	File     io.Reader
}

// check is the validation gate. The first failing rule wins.
func (s *Submission) check(in Input) (*upload.Screenshot, error) {
	s.Email = strings.TrimSpace(in.Email)
	s.Telegram = strings.TrimSpace(in.Telegram)

	if s.Email == "" || s.Telegram == "" {
		return nil, &forms.ValidationError{Field: "email", Message: MsgContactRequired}
	}
	if !forms.ValidEmail(s.Email) {
		return nil, &forms.ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if in.File == nil {
		return nil, &forms.ValidationError{Field: "screenshot", Message: MsgScreenshotRequired}
	}
	shot, err := upload.Inspect(in.File)
	switch {
	case errors.Is(err, upload.ErrUnsupportedType):
		return nil, &forms.ValidationError{Field: "screenshot", Message: MsgUnsupportedType}
	case errors.Is(err, upload.ErrTooLarge):
		return nil, &forms.ValidationError{Field: "screenshot", Message: MsgTooLarge}
	case errors.Is(err, upload.ErrTooManyPixels):
		return nil, &forms.ValidationError{Field: "screenshot", Message: MsgTooManyPixels}
	case err != nil:
		return nil, &forms.ValidationError{Field: "screenshot", Message: MsgUnreadable}
	}
	return shot, nil
}

type Service struct {
	uploader Uploader
	timeout  time.Duration
	maxWidth uint
}

// NewService returns a Service that scales screenshots wider than maxWidth
// down before sending them. A zero maxWidth sends them untouched.
func NewService(u Uploader, timeout time.Duration, maxWidth uint) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{uploader: u, timeout: timeout, maxWidth: maxWidth}
}

// Submit validates in and, if it passes, sends the order in one attempt.
// On return s.State and s.Message describe the outcome. A validation failure
// leaves the state alone and makes no network call.
func (svc *Service) Submit(ctx context.Context, s *Submission, in Input) error {
	if !s.State.Editable() {
		return ErrNotEditable
	}

	shot, err := s.check(in)
	if err != nil {
		s.Message = err.Error()
		return err
	}
	if err := shot.Downscale(svc.maxWidth); err != nil {
		slog.Warn("Could not downscale screenshot, sending original", "error", err)
	}

	s.State = Submitting
	s.Message = ""
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	err = svc.uploader.UploadOrder(ctx, api.OrderUpload{
		ProductName: s.Product.Name,
		Plan:        s.Plan,
		Price:       s.Price,
		Email:       s.Email,
		Telegram:    s.Telegram,
		FileName:    shot.Name,
		ContentType: shot.ContentType,
		File:        shot.Reader(),
	})
	if err != nil {
		s.State = Failed
		s.Message = failureMessage(err)
		slog.Error("Order upload failed", "product", s.Product.Slug, "plan", s.Plan, "error", err)
		return err
	}

	s.State = Succeeded
	s.Message = MsgSuccess
	slog.Info("Order placed", "product", s.Product.Slug, "plan", s.Plan)
	return nil
}

func failureMessage(err error) string {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.As(err, &apiErr), errors.Is(err, api.ErrUnauthorized):
		return api.Message(err, MsgFailed)
	}
	return MsgNetwork
}
