package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"
	"topspin/internal/back"
	"topspin/internal/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Server struct {
	http    *http.Server
	back    *back.Back
	limiter *rate.Limiter
}

func NewServer(back *back.Back, listenAddress string) *Server {
	s := &Server{
		back: back,
		// Plenty for an office ladder, and keeps a runaway script from
		// hammering deletions (each one replays the whole history).
		limiter: rate.NewLimiter(50, 100),
	}

	s.http = &http.Server{
		Addr:        listenAddress,
		ReadTimeout: 5 * time.Second,
		// A deletion replays the full match log before answering.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(s.rateLimit)

	r.Get("/", noContent)
	r.Get("/v1/health", s.getHealth)

	r.Get("/v1/players", s.getPlayers)
	r.Post("/v1/players", s.createPlayer)
	r.Delete("/v1/player/{id}", s.deletePlayer)
	r.Get("/v1/player/{id}/avatars", s.getPlayerAvatars)
	r.Get("/v1/player/{id}/avatar", s.getCurrentAvatar)
	r.Post("/v1/player/{id}/avatar", s.setPlayerAvatar)
	r.Get("/v1/player/{id}/lootboxes", s.getLootboxes)
	r.Post("/v1/player/{id}/lootbox", s.openLootbox)

	r.Get("/v1/matches", s.getMatches)
	r.Post("/v1/matches", s.createMatch)
	r.Delete("/v1/match/{id}", s.deleteMatch)

	r.Get("/v1/prediction", s.getPrediction)
	r.Get("/v1/avatars", s.getAvatars)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.response(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

// error maps the storage layer's failures to status codes: user mistakes are
// echoed back verbatim, unknown records 404, anything else is on us.
func (s *Server) error(w http.ResponseWriter, err error) {
	if errors.Is(err, util.ErrPublic("")) {
		s.response(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	log.Printf("error: %s", err)
	w.WriteHeader(http.StatusInternalServerError)
}

// urlID parses the {id} URL parameter.
func urlID(r *http.Request) (util.UUIDAsBlob, error) {
	id, err := util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
	if err != nil {
		return util.UUIDAsBlob{}, util.ErrPublic("invalid id")
	}

	return id, nil
}

// bodyID parses an UUID string taken from a request payload.
func bodyID(raw, field string) (util.UUIDAsBlob, error) {
	id, err := util.ParseUUIDAsBlob(raw)
	if err != nil {
		return util.UUIDAsBlob{}, util.ErrPublic("invalid " + field)
	}

	return id, nil
}
