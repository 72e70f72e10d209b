package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/docuser/internal/domain/entity"
	"github.com/dropDatabas3/docuser/internal/domain/repository"
	"github.com/dropDatabas3/docuser/internal/observability/logger"
	"github.com/dropDatabas3/docuser/internal/store/docstore"
)

type userView struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Found bool   `json:"found"`
}

// find: cada uid es un UseCase.Find independiente.
func (c *cli) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find UID [UID...]",
		Short: "Busca uno o más usuarios por uid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]*entity.User, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, uid := range args {
				g.Go(func() error {
					u, err := c.app.Users.Find(ctx, uid)
					if err != nil {
						return fmt.Errorf("find %s: %w", uid, err)
					}
					results[i] = u
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			views := make([]userView, len(args))
			for i, uid := range args {
				views[i] = userView{UID: uid}
				if u := results[i]; u != nil {
					views[i] = userView{UID: u.UID(), Email: u.Email(), Found: true}
				}
			}
			if c.outFormat == "json" {
				return c.printJSON(views)
			}
			for _, v := range views {
				if v.Found {
					fmt.Fprintf(c.out, "%s %s\n", v.UID, v.Email)
				} else {
					fmt.Fprintf(c.out, "%s <not found>\n", v.UID)
				}
			}
			return nil
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update UID EMAIL",
		Short: "Reemplaza el email de un usuario existente",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, email := args[0], args[1]
			if err := c.app.Users.Update(cmd.Context(), uid, email); err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("user %s does not exist: %w", uid, err)
				}
				return err
			}
			logger.From(cmd.Context()).Debug("user updated", logger.UserID(uid), logger.Email(email))
			if c.outFormat == "json" {
				return c.printJSON(map[string]any{"uid": uid, "email": email, "updated": true})
			}
			fmt.Fprintf(c.out, "updated %s\n", uid)
			return nil
		},
	}
}

// seed escribe el documento directo en el store; no pasa por el UseCase.
func (c *cli) seedCmd() *cobra.Command {
	var uid, email string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea o reemplaza un documento de usuario (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if uid == "" {
				uid = uuid.NewString()
			}
			doc := docstore.Document{"uid": uid, "email": email}
			if err := c.app.Store.Collection(repository.UserCollection).Set(cmd.Context(), uid, doc); err != nil {
				return err
			}
			logger.From(cmd.Context()).Info("user seeded", logger.UserID(uid), logger.Email(email))
			if c.outFormat == "json" {
				return c.printJSON(userView{UID: uid, Email: email, Found: true})
			}
			fmt.Fprintln(c.out, uid)
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "uid del documento (default: UUID nuevo)")
	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	return cmd
}

// serve mantiene el store abierto y expone /metrics y /readyz.
func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mantiene el proceso vivo con endpoints de operación",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.app.Config.Ops.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           c.opsRouter(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			log := logger.From(ctx)

			errCh := make(chan error, 1)
			go func() {
				log.Info("ops server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info("shutting down ops server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "host:port de los endpoints (default: ops.addr)")
	return cmd
}

func (c *cli) opsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(c.app.HTTP.Middleware)

	ops := r.With(c.app.HTTP.TrackInflight)
	ops.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	ops.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.app.Ready(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ready"))
	})
	ops.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(c.app.Registry, promhttp.HandlerOpts{}))
	return r
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
