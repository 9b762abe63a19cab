package server

import (
	"context"
	"net/http"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/logging"
	"portfolio/internal/metrics"
	"portfolio/internal/services"
	"portfolio/internal/types"
	"portfolio/internal/upload"
	"portfolio/web/static/html"

	"github.com/aarol/reload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs; the CLI builds it once.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	Store     *db.Store
	Projects  *services.ProjectService
	Blog      *services.BlogService
	Contacts  *services.ContactService
	Auth      *services.AuthService
	Dashboard *services.DashboardService
	Uploads   *upload.Uploader
	Metrics   *metrics.Metrics
	Pages     *html.Renderer
}

type Server struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *db.Store
	projects  *services.ProjectService
	blog      *services.BlogService
	contacts  *services.ContactService
	auth      *services.AuthService
	dashboard *services.DashboardService
	uploads   *upload.Uploader
	metrics   *metrics.Metrics
	pages     *html.Renderer
	tokenAuth *jwtauth.JWTAuth
	started   time.Time
}

func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Pages == nil {
		d.Pages = html.New(d.Config.IsDev())
	}
	return &Server{
		cfg:       d.Config,
		log:       d.Log,
		store:     d.Store,
		projects:  d.Projects,
		blog:      d.Blog,
		contacts:  d.Contacts,
		auth:      d.Auth,
		dashboard: d.Dashboard,
		uploads:   d.Uploads,
		metrics:   d.Metrics,
		pages:     d.Pages,
		tokenAuth: jwtauth.New("HS256", d.Config.SignKey, nil),
		started:   time.Now(),
	}
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	// One limiter for both contact routes so the form and the API share a budget.
	contactLimit := s.rateLimit(s.cfg.ContactRateMax, s.cfg.ContactRateWindow,
		"Too many contact submissions. Please try again later.")

	r := chi.NewRouter()
	r.Use(middleware.RequestID) // add unique id to each request context
	r.Use(middleware.RealIP)    // add request RemoteAddr to X-Real-IP
	r.Use(logging.RequestLogger(s.log))
	r.Use(middleware.Recoverer) // recover and log from panic, return 500
	r.Use(securityHeaders)
	r.Use(s.metrics.Middleware)

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, types.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
	})

	// handle static assets
	r.Route("/static", func(r chi.Router) {
		r.Get("/*", http.StripPrefix("/static/", http.FileServer(http.Dir("./web/static"))).ServeHTTP)
	})
	r.Get("/uploads/*", s.serveUpload)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.corsHandler())
		r.Use(middleware.SetHeader("Cache-Control", "no-store"))

		r.Get("/health", s.health)

		r.With(contactLimit).Post("/contact", s.submitContact)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.cfg.GeneralRateMax, s.cfg.GeneralRateWindow,
				"Too many requests. Please try again later."))

			r.Get("/stats", s.stats)
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.listProjects)
				r.Get("/{slug}", s.getProject)
			})
			r.Route("/blog", func(r chi.Router) {
				r.Get("/", s.listPosts)
				r.Get("/tags", s.listTags)
				r.Get("/{slug}", s.getPost)
			})

			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", s.login)
				r.Post("/logout", s.logout)
				r.Group(func(r chi.Router) {
					r.Use(jwtauth.Verifier(s.tokenAuth))
					r.Use(s.Authenticator)
					r.Get("/me", s.me)
					r.Post("/change-password", s.changePassword)
				})
			})

			// protected routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(jwtauth.Verifier(s.tokenAuth))
				r.Use(s.Authenticator)

				r.Get("/dashboard", s.adminDashboard)
				r.Route("/projects", func(r chi.Router) {
					r.Get("/", s.adminListProjects)
					r.Post("/", s.adminCreateProject)
					r.Post("/upload", s.uploadImage(upload.FolderProjects))
					r.Put("/reorder", s.adminReorderProjects)
					r.Get("/{id}", s.adminGetProject)
					r.Put("/{id}", s.adminUpdateProject)
					r.Delete("/{id}", s.adminDeleteProject)
				})
				r.Route("/blog", func(r chi.Router) {
					r.Get("/", s.adminListPosts)
					r.Post("/", s.adminCreatePost)
					r.Post("/upload", s.uploadImage(upload.FolderBlog))
					r.Post("/import", s.adminImportPost)
					r.Post("/preview", s.adminPreviewPost)
					r.Get("/{id}", s.adminGetPost)
					r.Put("/{id}", s.adminUpdatePost)
					r.Delete("/{id}", s.adminDeletePost)
				})
				r.Route("/contact", func(r chi.Router) {
					r.Get("/", s.adminListContacts)
					r.Get("/{id}", s.adminGetContact)
					r.Put("/{id}", s.adminUpdateContact)
					r.Delete("/{id}", s.adminDeleteContact)
				})
			})
		})
	})

	// public site pages
	r.Group(func(r chi.Router) {
		r.Get("/", s.homePage)
		r.Get("/projects", s.projectsPage)
		r.Get("/projects/{slug}", s.projectPage)
		r.Get("/blog", s.blogPage)
		r.Get("/blog/{slug}", s.postPage)
		r.Get("/contact", s.contactPage)
		r.With(contactLimit).Post("/contact", s.contactSubmitPage)
	})

	var handler http.Handler = r
	if s.cfg.IsDev() {
		// list of directories to recursively watch
		reloader := reload.New("web/static/html/", "web/static/css/")
		handler = reloader.Handle(handler)
	}
	return handler
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server running",
			zap.String("url", "http://"+s.cfg.Addr+s.cfg.ListenAddr()),
			zap.String("env", s.cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	grace := time.Duration(s.cfg.ShutdownGraceSeconds) * time.Second
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	s.log.Info("shutting down", zap.Duration("grace", grace))
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
