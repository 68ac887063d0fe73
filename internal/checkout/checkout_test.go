package checkout

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/models"
	"github.com/alextreichler/magicworld/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aimHelper = models.Product{
	Slug:   "aim-helper",
	Name:   "Aim Helper",
	Prices: models.Price{Day: 150, Week: 700},
}

func screenshot(t *testing.T) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return &buf
}

// hugeScreenshot is a valid png whose header claims 20000x20000 pixels.
func hugeScreenshot(t *testing.T) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], 20000)
	binary.BigEndian.PutUint32(data[20:24], 20000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return bytes.NewReader(data)
}

type fakeUploader struct {
	calls []api.OrderUpload
	body  []byte
	err   error
}

func (f *fakeUploader) UploadOrder(ctx context.Context, o api.OrderUpload) error {
	f.calls = append(f.calls, o)
	f.body, _ = io.ReadAll(o.File)
	return f.err
}

func TestOpen(t *testing.T) {
	s, err := Open(aimHelper, models.PlanWeek)
	require.NoError(t, err)
	assert.Equal(t, 700.0, s.Price)
	assert.Equal(t, Collecting, s.State)

	_, err = Open(models.Product{Name: "Free"}, models.PlanDay)
	assert.ErrorIs(t, err, ErrFreeProduct)

	_, err = Open(aimHelper, "1 Month")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	weekOnly := aimHelper
	weekOnly.Prices.Day = 0
	_, err = Open(weekOnly, models.PlanDay)
	assert.ErrorIs(t, err, ErrPlanUnavailable)
}

func TestValidationGate(t *testing.T) {
	tests := []struct {
		name string
		in   func(t *testing.T) Input
		want string
	}{
		{"blank email", func(t *testing.T) Input { return Input{Telegram: "@me", File: screenshot(t)} }, MsgContactRequired},
		{"blank telegram", func(t *testing.T) Input { return Input{Email: "a@b.co", Telegram: "  ", File: screenshot(t)} }, MsgContactRequired},
		{"bad email", func(t *testing.T) Input { return Input{Email: "nope", Telegram: "@me", File: screenshot(t)} }, MsgInvalidEmail},
		{"no file", func(t *testing.T) Input { return Input{Email: "a@b.co", Telegram: "@me"} }, MsgScreenshotRequired},
		{"pdf", func(t *testing.T) Input {
			return Input{Email: "a@b.co", Telegram: "@me", File: strings.NewReader("%PDF-1.7 invoice")}
		}, MsgUnsupportedType},
		{"too large", func(t *testing.T) Input {
			big := io.MultiReader(screenshot(t), bytes.NewReader(make([]byte, upload.MaxSize)))
			return Input{Email: "a@b.co", Telegram: "@me", File: big}
		}, MsgTooLarge},
		{"huge dimensions", func(t *testing.T) Input {
			return Input{Email: "a@b.co", Telegram: "@me", File: hugeScreenshot(t)}
		}, MsgTooManyPixels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			svc := NewService(up, time.Second, 0)
			s, err := Open(aimHelper, models.PlanDay)
			require.NoError(t, err)

			err = svc.Submit(context.Background(), s, tt.in(t))
			require.Error(t, err)
			assert.Equal(t, tt.want, s.Message)
			assert.Equal(t, Collecting, s.State)
			assert.Empty(t, up.calls)
		})
	}
}

func TestValidationFailureMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	svc := NewService(api.NewClient(srv.URL, time.Second), time.Second, 0)
	s, _ := Open(aimHelper, models.PlanWeek)
	err := svc.Submit(context.Background(), s, Input{Email: "buyer@example.com", Telegram: "@buyer"})
	require.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestSubmitSuccess(t *testing.T) {
	up := &fakeUploader{}
	svc := NewService(up, time.Second, 0)
	s, _ := Open(aimHelper, models.PlanWeek)

	err := svc.Submit(context.Background(), s, Input{Email: " buyer@example.com ", Telegram: "@buyer", File: screenshot(t)})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, s.State)
	assert.Equal(t, MsgSuccess, s.Message)

	require.Len(t, up.calls, 1)
	got := up.calls[0]
	assert.Equal(t, "Aim Helper", got.ProductName)
	assert.Equal(t, models.PlanWeek, got.Plan)
	assert.Equal(t, 700.0, got.Price)
	assert.Equal(t, "buyer@example.com", got.Email)
	assert.Equal(t, "image/png", got.ContentType)
	assert.True(t, strings.HasSuffix(got.FileName, ".png"))
	assert.NotEmpty(t, up.body)

	err = svc.Submit(context.Background(), s, Input{Email: "buyer@example.com", Telegram: "@buyer", File: screenshot(t)})
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.Len(t, up.calls, 1)
}

func TestSubmitFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", api.ErrTimeout, MsgTimeout},
		{"server message", &api.Error{Status: 400, Message: "Screenshot rejected"}, "Screenshot rejected"},
		{"server silent", &api.Error{Status: 500}, MsgFailed},
		{"transport", errors.New("dial tcp: connection refused"), MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{err: tt.err}
			svc := NewService(up, time.Second, 0)
			s, _ := Open(aimHelper, models.PlanDay)

			err := svc.Submit(context.Background(), s, Input{Email: "a@b.co", Telegram: "@me", File: screenshot(t)})
			require.Error(t, err)
			assert.Equal(t, Failed, s.State)
			assert.Equal(t, tt.want, s.Message)

			up.err = nil
			require.NoError(t, svc.Submit(context.Background(), s, Input{Email: "a@b.co", Telegram: "@me", File: screenshot(t)}))
			assert.Equal(t, Succeeded, s.State)
			assert.Len(t, up.calls, 2)
		})
	}
}

func TestSubmitTimesOutAgainstSlowAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	svc := NewService(api.NewClient(srv.URL, 5*time.Second), 50*time.Millisecond, 0)
	s, _ := Open(aimHelper, models.PlanDay)
	err := svc.Submit(context.Background(), s, Input{Email: "a@b.co", Telegram: "@me", File: screenshot(t)})
	require.Error(t, err)
	assert.Equal(t, Failed, s.State)
	assert.Equal(t, MsgTimeout, s.Message)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Submitting", Submitting.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.False(t, Succeeded.Editable())
	assert.True(t, Failed.Editable())
}
