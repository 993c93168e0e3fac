package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"gymhub/internal/application/branchctx"
	"gymhub/internal/application/cartctx"
	"gymhub/internal/application/persist"
	"gymhub/internal/domain/branch"
	"gymhub/internal/domain/cart"
)

const deviceContextKey contextKey = "device"

// DeviceCookieName names the signed cookie carrying the browser's device id.
const DeviceCookieName = "gymhub_device"

// DeviceCookieMaxAge keeps a browser's client state for a year of inactivity.
const DeviceCookieMaxAge = 365 * 24 * time.Hour

// Device is the per-browser state opened for one request.
type Device struct {
	ID     string
	Branch *branchctx.Store
	Cart   *cartctx.Store
}

// DeviceSlots are the persistence slots a Device is opened from.
type DeviceSlots struct {
	Branch *persist.Slot[branch.Context]
	Cart   *persist.Slot[cart.Cart]
}

// Open rehydrates the stores of deviceID.
func (s DeviceSlots) Open(ctx context.Context, deviceID string) *Device {
	return &Device{
		ID:     deviceID,
		Branch: branchctx.Open(ctx, s.Branch, deviceID),
		Cart:   cartctx.Open(ctx, s.Cart, deviceID),
	}
}

// DeviceCookies signs and verifies the device id cookie.
type DeviceCookies struct {
	sc   *securecookie.SecureCookie
	opts CookieOptions
}

// NewDeviceCookies creates a codec signing with hashKey.
// A nil hashKey uses a random key, so device ids do not survive a restart.
func NewDeviceCookies(hashKey []byte, secure bool) *DeviceCookies {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		slog.Warn("device_cookie_key_ephemeral")
	}
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(DeviceCookieMaxAge.Seconds()))
	return &DeviceCookies{sc: sc, opts: CookieOptions{Secure: secure, MaxAge: DeviceCookieMaxAge}}
}

// Read returns the verified device id from the request.
func (d *DeviceCookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(DeviceCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var id string
	if err := d.sc.Decode(DeviceCookieName, cookie.Value, &id); err != nil {
		slog.Info("device_cookie_rejected", "error", err)
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// Encode signs a device id into a cookie value.
func (d *DeviceCookies) Encode(id string) (string, error) {
	return d.sc.Encode(DeviceCookieName, id)
}

// Issue assigns a new device id and sets its cookie.
func (d *DeviceCookies) Issue(w http.ResponseWriter) (string, error) {
	id := uuid.NewString()
	encoded, err := d.Encode(id)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   d.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(d.opts.MaxAge.Seconds()),
	})
	return id, nil
}

// Devices returns middleware that identifies the browser by its signed device
// cookie, issuing one on first visit, and opens its client-state stores.
// Static assets and health checks are skipped.
func Devices(cookies *DeviceCookies, slots DeviceSlots) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			id, ok := cookies.Read(r)
			if !ok {
				var err error
				if id, err = cookies.Issue(w); err != nil {
					slog.Error("internal_error", "error", err, "path", r.URL.Path)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
			}
			dev := slots.Open(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ContextWithDevice(r.Context(), dev)))
		})
	}
}

// DeviceFromContext returns the request's device, if the Devices middleware ran.
func DeviceFromContext(ctx context.Context) (*Device, bool) {
	d, ok := ctx.Value(deviceContextKey).(*Device)
	return d, ok && d != nil
}

// ContextWithDevice returns a context carrying dev.
func ContextWithDevice(ctx context.Context, dev *Device) context.Context {
	return context.WithValue(ctx, deviceContextKey, dev)
}

// BranchContext returns the device's branch context, or the empty context
// when the request carries no device.
func BranchContext(ctx context.Context) branch.Context {
	if d, ok := DeviceFromContext(ctx); ok {
		return d.Branch.State()
	}
	return branch.Context{}
}
