package web

import (
	"errors"
	"log/slog"
	"net/http"

	"gymhub/internal/adapters/http/middleware"
	accountStore "gymhub/internal/adapters/storage/account"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/access"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/branch"
)

// signIn replaces any session the browser holds with one for identity.
func signIn(w http.ResponseWriter, r *http.Request, identity account.Identity) error {
	if old := middleware.SessionFromContext(r.Context()); old.IsAuthenticated() {
		sessions.Delete(old.Token)
	}
	token, err := sessions.Create(identity)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, sessionCookie)
	slog.Info("auth_event", "event", "signed_in", "account_id", identity.ID, "role", string(identity.Role))
	return nil
}

// landingFor is where a freshly signed-in identity is sent.
func landingFor(role account.Role) string {
	switch role {
	case account.RoleAdmin:
		return access.RouteAdmin.Path()
	case account.RoleTrainer:
		return access.RouteTrainer.Path()
	default:
		return access.RouteDashboard.Path()
	}
}

type signInForm struct {
	Email string `json:"email"`
	Next  string `json:"next,omitempty"`
}

// handleSignIn handles GET (form) and POST (authenticate) for /signin
func handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if middleware.SessionFromContext(r.Context()).IsAuthenticated() {
			http.Redirect(w, r, access.RouteDashboard.Path(), http.StatusSeeOther)
			return
		}
		render(w, r, http.StatusOK, access.RouteSignIn, "signin.html", signInForm{Next: r.URL.Query().Get("next")}, "")
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		form := signInForm{Email: r.FormValue("email"), Next: r.FormValue("next")}

		identity, err := orchestrators.ExecuteSignIn(r.Context(), orchestrators.SignInInput{
			Email:    form.Email,
			Password: r.FormValue("password"),
		}, orchestrators.SignInDeps{AccountStore: stores.AccountStore})
		if err != nil {
			status := http.StatusUnauthorized
			switch {
			case errors.Is(err, orchestrators.ErrAccountLocked):
				status = http.StatusTooManyRequests
			case !errors.Is(err, orchestrators.ErrInvalidCredentials):
				internalError(w, err)
				return
			}
			render(w, r, status, access.RouteSignIn, "signin.html", form, err.Error())
			return
		}

		if err := signIn(w, r, identity); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, safeNext(form.Next, landingFor(identity.Role)), http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

type signUpForm struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Phone  string            `json:"phone"`
	Role   string            `json:"role"`
	Fields map[string]string `json:"fields,omitempty"`
}

// handleSignUp handles GET (form) and POST (register) for /signup
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, http.StatusOK, access.RouteSignUp, "signup.html", signUpForm{}, "")
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		form := signUpForm{
			Name:  r.FormValue("name"),
			Email: r.FormValue("email"),
			Phone: r.FormValue("phone"),
			Role:  r.FormValue("role"),
		}

		identity, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
			Name:     form.Name,
			Email:    form.Email,
			Phone:    form.Phone,
			Password: r.FormValue("password"),
			Role:     form.Role,
		}, orchestrators.SignUpDeps{
			AccountStore: stores.AccountStore,
			EmailSender:  emailSender,
			SignInURL:    signInURL,
			Now:          timeNow,
		})
		if err != nil {
			var verr *orchestrators.ValidationError
			switch {
			case errors.As(err, &verr):
				form.Fields = verr.Fields
				render(w, r, http.StatusUnprocessableEntity, access.RouteSignUp, "signup.html", form, "Please correct the highlighted fields")
			case errors.Is(err, orchestrators.ErrEmailAlreadyExists):
				render(w, r, http.StatusConflict, access.RouteSignUp, "signup.html", form, err.Error())
			default:
				internalError(w, err)
			}
			return
		}

		if err := signIn(w, r, identity); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, landingFor(identity.Role), http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout. The session, the branch context and
// the cart of the browser are all cleared.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	if sess.IsAuthenticated() {
		sessions.Delete(sess.Token)
		slog.Info("auth_event", "event", "signed_out", "account_id", sess.Identity.ID)
	}
	if dev, ok := middleware.DeviceFromContext(r.Context()); ok {
		dev.Branch.Reset(r.Context())
		dev.Cart.Clear(r.Context())
	}

	middleware.ClearSessionCookie(w, sessionCookie)
	http.Redirect(w, r, access.SignInPath, http.StatusSeeOther)
}

type sessionView struct {
	Authenticated       bool              `json:"authenticated"`
	Identity            *account.Identity `json:"identity,omitempty"`
	SelectedBranch      *branch.Branch    `json:"selectedBranch,omitempty"`
	HasMultipleBranches bool              `json:"hasMultipleBranches"`
	CartCount           int               `json:"cartCount"`
}

// handleAPISession handles GET /api/session
func handleAPISession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := middleware.SessionFromContext(r.Context())
	view := sessionView{Authenticated: sess.IsAuthenticated(), Identity: sess.Identity}
	if dev, ok := middleware.DeviceFromContext(r.Context()); ok {
		bc := dev.Branch.State()
		view.SelectedBranch = bc.Selected
		view.HasMultipleBranches = bc.HasMultipleBranches()
		view.CartCount = dev.Cart.State().Count()
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAPIProfile handles PATCH /api/profile
func handleAPIProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	identity, token, ok := requireSession(w, r)
	if !ok {
		return
	}

	var patch account.IdentityPatch
	if err := strictDecode(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		AccountID: identity.ID,
		Patch:     patch,
	}, orchestrators.UpdateProfileDeps{AccountStore: stores.AccountStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrEmptyPatch), account.IsValidationError(err):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, orchestrators.ErrEmailAlreadyExists):
			jsonError(w, http.StatusConflict, err.Error())
		case errors.Is(err, accountStore.ErrNotFound):
			jsonError(w, http.StatusNotFound, "account not found")
		default:
			internalError(w, err)
		}
		return
	}

	sessions.UpdateIdentity(token, account.IdentityPatch{
		Name:  &updated.Name,
		Email: &updated.Email,
		Phone: &updated.Phone,
	})
	writeJSON(w, http.StatusOK, updated)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleAPIChangePassword handles POST /api/profile/password
func handleAPIChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	identity, _, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       identity.ID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, orchestrators.ErrCurrentPasswordWrong):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, orchestrators.ErrPasswordFieldsEmpty),
		errors.Is(err, orchestrators.ErrNewPasswordSame),
		account.IsValidationError(err):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}
