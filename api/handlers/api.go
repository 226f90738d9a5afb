// Package handlers serves the case workflow over HTTP
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/databases/memory"
	"github.com/linesmerrill/police-case-api/gateway"
	"github.com/linesmerrill/police-case-api/workflow"
)

// App stores the router and the workflow engine, so it can be reused
type App struct {
	Router   *mux.Router
	Config   *config.Config
	Services *workflow.Services
	Auth     *api.Authenticator
	Hub      *NotificationHub
	Registry *prometheus.Registry
	// Limiter guards the reward lookup; nil disables it
	Limiter *api.RateLimiter
	// Ping backs the health check; nil reports alive
	Ping func(context.Context) error

	client databases.ClientHelper
	redis  *redis.Client
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	c := Case{Service: a.Services.Cases}
	in := Intake{Service: a.Services.Intake}
	rw := Reward{Service: a.Services.Rewards}
	p := Payment{Service: a.Services.Payments, BaseURL: a.Config.Server.BaseURL}
	s := Suspect{Service: a.Services.Suspects}
	n := Notification{Service: a.Services.Notifications}
	ev := Evidence{Service: a.Services.Evidence}
	b := Board{Service: a.Services.Boards}
	st := Stats{Service: a.Services.Stats}
	cloudinaryHandler := CloudinaryHandler{Cases: a.Services.Cases, Config: a.Config.Cloudinary}

	if a.Registry != nil {
		r.Use(api.NewHTTPMetrics(a.Registry).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}
	if a.Config.Server.RequestTimeout > 0 {
		r.Use(api.TimeoutMiddleware(a.Config.Server.RequestTimeout))
	}

	// healthchex
	r.HandleFunc("/health", api.HealthHandler(a.Ping)).Methods("GET")
	r.HandleFunc("/payments/mock-gateway/", p.MockGatewayHandler).Methods("GET")
	r.Handle("/ws/notifications", a.Auth.Middleware(http.HandlerFunc(a.Hub.HandleNotificationsWebSocket))).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	auth := a.Auth.Middleware

	apiCreate.Handle("/cases", auth(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases", auth(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/from_complaint", auth(http.HandlerFunc(c.CreateFromComplaintHandler))).Methods("POST")
	apiCreate.Handle("/cases/from_crime_scene", auth(http.HandlerFunc(c.CreateFromCrimeSceneHandler))).Methods("POST")
	apiCreate.Handle("/cases/notifications", auth(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/cases/notifications/{id}/mark_read", auth(http.HandlerFunc(n.MarkReadHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}", auth(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/{id}", auth(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PATCH")
	apiCreate.Handle("/cases/{id}", auth(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/cases/{id}/complaint", auth(http.HandlerFunc(c.ComplaintHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/complaint_strike", auth(http.HandlerFunc(c.ComplaintStrikeHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/complaint_resubmit", auth(http.HandlerFunc(c.ComplaintResubmitHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/create_crime_scene", auth(http.HandlerFunc(c.CreateCrimeSceneHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/crime_scene_approve", auth(http.HandlerFunc(c.ApproveCrimeSceneHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/crime_scene/upload-signature", auth(http.HandlerFunc(cloudinaryHandler.UploadSignatureHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/solve/submit", auth(http.HandlerFunc(c.SolveSubmitHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/solve/review", auth(http.HandlerFunc(c.SolveReviewHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/interrogations/{suspect_id}/detective_score", auth(http.HandlerFunc(c.DetectiveScoreHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/interrogations/{suspect_id}/sergent_score", auth(http.HandlerFunc(c.SergeantScoreHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/interrogations/{suspect_id}/sergeant_score", auth(http.HandlerFunc(c.SergeantScoreHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/captain/decision", auth(http.HandlerFunc(c.CaptainDecisionHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/chief/approve", auth(http.HandlerFunc(c.ChiefApproveHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/trial/verdict", auth(http.HandlerFunc(c.TrialVerdictHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/dossier", auth(http.HandlerFunc(c.DossierHandler))).Methods("GET")
	apiCreate.Handle("/cases/{id}/detective_board", auth(http.HandlerFunc(b.BoardHandler))).Methods("GET")
	apiCreate.Handle("/cases/{id}/detective_board/items", auth(http.HandlerFunc(b.CreateItemHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/detective_board/items/{item_id}", auth(http.HandlerFunc(b.UpdateItemHandler))).Methods("PATCH")
	apiCreate.Handle("/cases/{id}/detective_board/items/{item_id}", auth(http.HandlerFunc(b.DeleteItemHandler))).Methods("DELETE")
	apiCreate.Handle("/cases/{id}/detective_board/links", auth(http.HandlerFunc(b.CreateLinkHandler))).Methods("POST")
	apiCreate.Handle("/cases/{id}/detective_board/links/{link_id}", auth(http.HandlerFunc(b.DeleteLinkHandler))).Methods("DELETE")

	apiCreate.Handle("/evidence", auth(http.HandlerFunc(ev.EvidenceHandler))).Methods("GET")
	apiCreate.Handle("/evidence", auth(http.HandlerFunc(ev.CreateEvidenceHandler))).Methods("POST")
	apiCreate.Handle("/evidence/{id}", auth(http.HandlerFunc(ev.EvidenceByIDHandler))).Methods("GET")
	apiCreate.Handle("/evidence/{id}", auth(http.HandlerFunc(ev.DeleteEvidenceHandler))).Methods("DELETE")
	apiCreate.Handle("/stats", auth(http.HandlerFunc(st.StatsHandler))).Methods("GET")

	apiCreate.Handle("/suspects/most-wanted", auth(http.HandlerFunc(s.MostWantedHandler))).Methods("GET")
	apiCreate.Handle("/suspects/case/{case_id}", auth(http.HandlerFunc(s.CaseSuspectsHandler))).Methods("GET")
	apiCreate.Handle("/suspects/case/{case_id}", auth(http.HandlerFunc(s.AddSuspectHandler))).Methods("POST")
	apiCreate.Handle("/suspects/{id}/rank", auth(http.HandlerFunc(s.UpdateRankHandler))).Methods("PATCH")

	apiCreate.Handle("/intake/complaints", auth(http.HandlerFunc(in.CreateComplaintHandler))).Methods("POST")
	apiCreate.Handle("/intake/complaints", auth(http.HandlerFunc(in.ComplaintsHandler))).Methods("GET")
	apiCreate.Handle("/intake/complaints/cadet-inbox", auth(http.HandlerFunc(in.CadetInboxHandler))).Methods("GET")
	apiCreate.Handle("/intake/complaints/officer-inbox", auth(http.HandlerFunc(in.OfficerInboxHandler))).Methods("GET")
	apiCreate.Handle("/intake/complaints/{id}", auth(http.HandlerFunc(in.ComplaintByIDHandler))).Methods("GET")
	apiCreate.Handle("/intake/complaints/{id}/cadet-review", auth(http.HandlerFunc(in.CadetReviewHandler))).Methods("POST")
	apiCreate.Handle("/intake/complaints/{id}/resubmit", auth(http.HandlerFunc(in.ResubmitHandler))).Methods("POST")
	apiCreate.Handle("/intake/complaints/{id}/officer-review", auth(http.HandlerFunc(in.OfficerReviewHandler))).Methods("POST")

	apiCreate.Handle("/rewards/tips/submit", auth(http.HandlerFunc(rw.SubmitTipHandler))).Methods("POST")
	apiCreate.Handle("/rewards/tips/{id}/officer-review", auth(http.HandlerFunc(rw.OfficerReviewHandler))).Methods("POST")
	apiCreate.Handle("/rewards/tips/{id}/detective-approve", auth(http.HandlerFunc(rw.DetectiveApproveHandler))).Methods("POST")
	apiCreate.Handle("/rewards/lookup", auth(a.Limiter.Middleware(http.HandlerFunc(rw.LookupHandler)))).Methods("GET")

	apiCreate.Handle("/payments/requests", auth(http.HandlerFunc(p.CreatePaymentHandler))).Methods("POST")
	apiCreate.Handle("/payments/requests/{id}", auth(http.HandlerFunc(p.PaymentByIDHandler))).Methods("GET")
	apiCreate.Handle("/payments/requests/{id}/approve", auth(http.HandlerFunc(p.ApprovePaymentHandler))).Methods("POST")
	apiCreate.Handle("/payments/requests/{id}/initiate", auth(http.HandlerFunc(p.InitiatePaymentHandler))).Methods("POST")
	apiCreate.Handle("/payments/callback", http.HandlerFunc(p.CallbackHandler)).Methods("GET")

	return r
}

// Initialize connects the stores and collaborators named in the config and
// builds the router. With inMemory set no database is contacted.
func (a *App) Initialize(ctx context.Context, inMemory bool) error {
	if a.Config == nil {
		return fmt.Errorf("app has no config")
	}
	api.SetQueryTimeout(a.Config.Database.QueryTimeout)

	var stores *databases.Stores
	if inMemory {
		stores = memory.New().Stores()
		zap.S().Warn("police-case-api is running on the in-memory store, nothing is persisted")
	} else {
		client, err := databases.NewClient(a.Config)
		if err != nil {
			// if we fail to create a new database client, then kill the pod
			zap.S().Errorw("failed to create new client", "error", err)
			return err
		}
		if err := client.Connect(ctx); err != nil {
			// if we fail to connect to the database, then kill the pod
			zap.S().Errorw("failed to connect to database", "error", err)
			return err
		}
		a.client = client
		a.Ping = client.Ping
		db := databases.NewDatabase(a.Config, client)
		if err := databases.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
		stores = databases.NewStores(db)
		zap.S().Info("police-case-api has connected to the database")
	}

	gw, err := gateway.New(a.Config.Gateway)
	if err != nil {
		return err
	}

	a.redis, err = api.NewRedisClient(ctx, a.Config.Redis.URL)
	if err != nil {
		return err
	}
	a.Limiter = api.NewRateLimiter(a.redis, "reward_lookup", a.Config.RateLimit.LookupPerMinute, time.Minute)
	if a.Limiter == nil {
		zap.S().Info("reward lookup rate limiting is disabled")
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	directory := api.NewDirectory()
	a.Auth = api.NewAuthenticator(a.Config.Auth.JWTSecret, directory)
	a.Hub = NewNotificationHub()
	deliverers := []workflow.Deliverer{a.Hub}
	if mailer := NewEmailDeliverer(a.Config.SendGrid, directory, a.Config.Server.BaseURL); mailer != nil {
		deliverers = append(deliverers, mailer)
	}

	a.Services = workflow.New(stores, workflow.Options{
		Gateway:    gw,
		Metrics:    workflow.NewMetrics(a.Registry),
		Deliverers: deliverers,
	})

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Close releases the database and redis connections
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.S().Warnw("failed to close redis", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

// Redis returns the shared redis client, nil when none is configured
func (a *App) Redis() *redis.Client {
	return a.redis
}
