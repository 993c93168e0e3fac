package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	accountStore "gymhub/internal/adapters/storage/account"
	"gymhub/internal/application/listutil"
	"gymhub/internal/domain/access"
	"gymhub/internal/domain/account"
)

type accountsView struct {
	Role       account.Role       `json:"role"`
	Accounts   []account.Identity `json:"accounts"`
	Page       listutil.Page      `json:"pagination"`
	TotalPages int                `json:"totalPages"`
	HasNext    bool               `json:"hasNext"`
	BasePath   string             `json:"-"`
}

// listAccounts returns one page of the accounts holding role.
func listAccounts(r *http.Request, role account.Role) (accountsView, error) {
	ctx := r.Context()
	total, err := stores.AccountStore.CountByRole(ctx, role)
	if err != nil {
		return accountsView{}, err
	}
	pg := listutil.ParsePage(r.URL.Query()).WithTotal(total)

	list, err := stores.AccountStore.List(ctx, accountStore.ListFilter{
		Limit:  pg.PerPage,
		Offset: pg.Offset(),
		Role:   role,
	})
	if err != nil {
		return accountsView{}, err
	}
	ids := make([]account.Identity, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.Identity())
	}
	return accountsView{
		Role:       role,
		Accounts:   ids,
		Page:       pg,
		TotalPages: pg.TotalPages(),
		HasNext:    pg.HasNext(),
	}, nil
}

func accountsLoader(role account.Role, basePath string) viewLoader {
	return func(r *http.Request) (any, error) {
		v, err := listAccounts(r, role)
		v.BasePath = basePath
		return v, err
	}
}

// handleAPIAdminAccounts handles GET /api/admin/members and /api/admin/trainers
func handleAPIAdminAccounts(role account.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		view, err := listAccounts(r, role)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// handleAdminAccount serves /admin/members/{id} and /admin/trainers/{id}.
// The bare collection path serves the paginated list.
func handleAdminAccount(route access.Route, role account.Role) http.HandlerFunc {
	base := route.Path()
	list := handleView(route, "accounts.html", accountsLoader(role, base))
	detail := handleView(route, "account.html", func(r *http.Request) (any, error) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, base), "/")
		a, err := stores.AccountStore.GetByID(r.Context(), id)
		if errors.Is(err, accountStore.ErrNotFound) || (err == nil && a.Role != role) {
			return nil, errNotFound
		}
		if err != nil {
			return nil, err
		}
		return a.Identity(), nil
	})
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Trim(strings.TrimPrefix(r.URL.Path, base), "/") == "" {
			list(w, r)
			return
		}
		detail(w, r)
	}
}

// maxPerfWindow bounds how far back a perf snapshot may look.
const maxPerfWindow = 7 * 24 * time.Hour

// handleAPIAdminPerf handles GET /api/admin/perf?minutes=&top=
func handleAPIAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		jsonError(w, http.StatusServiceUnavailable, "performance collection disabled")
		return
	}

	minutes := min(queryInt(r, "minutes", 60), int(maxPerfWindow/time.Minute))
	top := queryInt(r, "top", 10)
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
