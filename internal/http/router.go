package http

import (
	"net/http"
	"strings"
)

// RouterConfig collects the handlers mounted by NewRouter.
type RouterConfig struct {
	Users      *UserHandler
	Groups     *GroupHandler
	Reference  *ReferenceHandler
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the endpoint table shared with the desktop client.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Users != nil {
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			routeUsers(cfg.Users, w, r)
		})
	}

	if cfg.Groups != nil {
		mux.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Groups.List(w, r)
		})
		mux.HandleFunc("/groups/", func(w http.ResponseWriter, r *http.Request) {
			routeGroups(cfg.Groups, w, r)
		})
	}

	if cfg.Reference != nil {
		mux.HandleFunc("/subjects", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reference.Subjects(w, r)
		})
		mux.HandleFunc("/schools", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Reference.Schools(w, r)
		})
	}

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	mux.HandleFunc("/404", func(w http.ResponseWriter, r *http.Request) {
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, errorResponse{Error: "404 Not Found"})
	})

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func routeUsers(users *UserHandler, w http.ResponseWriter, r *http.Request) {
	segments := splitPath(strings.TrimPrefix(r.URL.Path, "/users/"))

	switch {
	case len(segments) == 1 && segments[0] == "signin":
		requirePost(w, r, users.SignIn)
	case len(segments) == 1 && segments[0] == "signup":
		requirePost(w, r, users.SignUp)
	case len(segments) == 1 && segments[0] == "update":
		requirePost(w, r, users.Update)
	case len(segments) == 1:
		r = r.WithContext(ContextWithUsername(r.Context(), segments[0]))
		requireGet(w, r, users.Get)
	case len(segments) == 3 && segments[1] == "events" && segments[2] == "create":
		r = r.WithContext(ContextWithUsername(r.Context(), segments[0]))
		requirePost(w, r, users.CreateEvent)
	case len(segments) == 3 && segments[1] == "events" && segments[2] == "edit":
		r = r.WithContext(ContextWithUsername(r.Context(), segments[0]))
		requirePost(w, r, users.EditEvent)
	case len(segments) == 4 && segments[1] == "events" && segments[2] == "delete":
		ctx := ContextWithUsername(r.Context(), segments[0])
		ctx = ContextWithEventID(ctx, segments[3])
		r = r.WithContext(ctx)
		requireGet(w, r, users.DeleteEvent)
	default:
		http.NotFound(w, r)
	}
}

func routeGroups(groups *GroupHandler, w http.ResponseWriter, r *http.Request) {
	segments := splitPath(strings.TrimPrefix(r.URL.Path, "/groups/"))

	switch {
	case len(segments) == 1 && segments[0] == "create":
		requirePost(w, r, groups.Create)
	case len(segments) == 1:
		r = r.WithContext(ContextWithGroupID(r.Context(), segments[0]))
		requireGet(w, r, groups.Get)
	case len(segments) == 2 && segments[1] == "join":
		r = r.WithContext(ContextWithGroupID(r.Context(), segments[0]))
		requirePost(w, r, groups.Join)
	case len(segments) == 2 && segments[1] == "leave":
		r = r.WithContext(ContextWithGroupID(r.Context(), segments[0]))
		requirePost(w, r, groups.Leave)
	case len(segments) == 2 && segments[1] == "delete":
		r = r.WithContext(ContextWithGroupID(r.Context(), segments[0]))
		requireGet(w, r, groups.Delete)
	case len(segments) == 4 && segments[1] == "events" && segments[2] == "delete":
		ctx := ContextWithGroupID(r.Context(), segments[0])
		ctx = ContextWithEventID(ctx, segments[3])
		r = r.WithContext(ctx)
		requireGet(w, r, groups.DeleteEvent)
	default:
		http.NotFound(w, r)
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func requireGet(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	next(w, r)
}

func requirePost(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	next(w, r)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
